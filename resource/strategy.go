// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package resource

import (
	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/value"
)

// WithdrawStrategy - how a requested amount is adjusted to the divisibility
type WithdrawStrategy struct {
	Rounded bool
	Mode    decimal.RoundingMode
}

// Exact - withdraw exactly the requested amount
var Exact = WithdrawStrategy{}

// Rounded - round the requested amount to the divisibility first
func Rounded(mode decimal.RoundingMode) WithdrawStrategy {
	return WithdrawStrategy{
		Rounded: true,
		Mode:    mode,
	}
}

// Value - Enum{0} for exact, Enum{1, mode} for rounded
func (w WithdrawStrategy) Value() value.Value {
	if !w.Rounded {
		return value.Enum{Discriminator: 0}
	}
	return value.Enum{Discriminator: 1, Fields: []value.Value{value.U8(w.Mode)}}
}

// WithdrawStrategyFromValue - decode a strategy parameter
func WithdrawStrategyFromValue(v value.Value) (WithdrawStrategy, error) {
	e, err := value.AsEnum(v)
	if nil != err {
		return Exact, fault.Detailf(fault.ErrInvalidCallData, "strategy: %v", err)
	}
	switch {
	case 0 == e.Discriminator && 0 == len(e.Fields):
		return Exact, nil
	case 1 == e.Discriminator && 1 == len(e.Fields):
		mode, err := value.AsU8(e.Fields[0])
		if nil != err {
			return Exact, fault.Detailf(fault.ErrInvalidCallData, "rounding mode: %v", err)
		}
		return Rounded(decimal.RoundingMode(mode)), nil
	}
	return Exact, fault.Detailf(fault.ErrInvalidCallData, "strategy discriminator: %d", e.Discriminator)
}

// Apply - the amount actually withdrawn
// rounding failures are returned, the amount is never clamped
func (w WithdrawStrategy) Apply(amount decimal.Decimal, divisibility uint8) (decimal.Decimal, error) {
	if !w.Rounded {
		return amount, nil
	}
	return amount.Round(int32(divisibility), w.Mode)
}
