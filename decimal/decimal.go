// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package decimal

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/bitmark-inc/substated/fault"
)

// Scale - number of decimal places carried by every amount
const Scale = 18

// Decimal - a fixed scale signed amount
//
// values are immutable: every operation returns a new value and the
// stored form is always reduced so equal amounts are equal structures
type Decimal struct {
	d apd.Decimal
}

// the representable range, matching a 192 bit attos integer
var (
	maxDecimal = mustParse("3138550867693340381917894711603833208051.177722232017256447")
	minDecimal = mustParse("-3138550867693340381917894711603833208051.177722232017256448")
)

// Zero - the zero amount
var Zero = Decimal{}

// Max - the largest representable amount
func Max() Decimal { return maxDecimal }

// Min - the smallest representable amount
func Min() Decimal { return minDecimal }

func context(rounding apd.Rounder) *apd.Context {
	return &apd.Context{
		Precision:   80,
		MaxExponent: apd.MaxExponent,
		MinExponent: apd.MinExponent,
		Traps:       apd.DefaultTraps,
		Rounding:    rounding,
	}
}

func mustParse(s string) Decimal {
	d, _, err := apd.NewFromString(s)
	if nil != err {
		panic(err)
	}
	r := Decimal{}
	r.d.Set(d)
	r.normalise()
	return r
}

// New - amount from an integer
func New(value int64) Decimal {
	r := Decimal{}
	r.d.SetInt64(value)
	r.normalise()
	return r
}

// FromString - parse a decimal amount
// at most Scale fractional digits are accepted
func FromString(s string) (Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if nil != err || apd.Finite != d.Form {
		return Zero, fault.ErrInvalidDecimal
	}
	r := Decimal{}
	r.d.Set(d)
	r.normalise()
	if r.d.Exponent < -Scale {
		return Zero, fault.ErrInvalidDecimal
	}
	if !r.inRange() {
		return Zero, fault.ErrDecimalOverflow
	}
	return r, nil
}

// MustFromString - for constants and tests
func MustFromString(s string) Decimal {
	r, err := FromString(s)
	if nil != err {
		panic(err)
	}
	return r
}

func (a *Decimal) normalise() {
	a.d.Reduce(&a.d)
	if a.d.IsZero() {
		a.d.Negative = false
		a.d.Exponent = 0
	}
}

func (a Decimal) inRange() bool {
	return a.d.Cmp(&maxDecimal.d) <= 0 && a.d.Cmp(&minDecimal.d) >= 0
}

// Add - checked addition
func (a Decimal) Add(b Decimal) (Decimal, error) {
	r := Decimal{}
	if _, err := context(apd.RoundDown).Add(&r.d, &a.d, &b.d); nil != err {
		return Zero, fault.ErrDecimalOverflow
	}
	r.normalise()
	if !r.inRange() {
		return Zero, fault.ErrDecimalOverflow
	}
	return r, nil
}

// Sub - checked subtraction
func (a Decimal) Sub(b Decimal) (Decimal, error) {
	r := Decimal{}
	if _, err := context(apd.RoundDown).Sub(&r.d, &a.d, &b.d); nil != err {
		return Zero, fault.ErrDecimalOverflow
	}
	r.normalise()
	if !r.inRange() {
		return Zero, fault.ErrDecimalOverflow
	}
	return r, nil
}

// Round - round to a number of decimal places
// overflow is reported, never panics
func (a Decimal) Round(places int32, mode RoundingMode) (Decimal, error) {
	if places < 0 || places > Scale {
		return Zero, fault.ErrInvalidDivisibility
	}
	rounder, ok := rounders[mode]
	if !ok {
		return Zero, fault.ErrInvalidRoundingMode
	}
	r := Decimal{}
	if _, err := context(rounder).Quantize(&r.d, &a.d, -places); nil != err {
		return Zero, fault.ErrDecimalOverflow
	}
	r.normalise()
	if !r.inRange() {
		return Zero, fault.ErrDecimalOverflow
	}
	return r, nil
}

// Cmp - compare: -1, 0, +1
func (a Decimal) Cmp(b Decimal) int {
	return a.d.Cmp(&b.d)
}

// Equal - same amount
func (a Decimal) Equal(b Decimal) bool {
	return 0 == a.d.Cmp(&b.d)
}

// Sign - -1, 0, +1
func (a Decimal) Sign() int {
	return a.d.Sign()
}

// IsZero - zero amount
func (a Decimal) IsZero() bool { return a.d.IsZero() }

// IsNegative - below zero
func (a Decimal) IsNegative() bool { return a.d.Sign() < 0 }

// IsPositive - above zero
func (a Decimal) IsPositive() bool { return a.d.Sign() > 0 }

// IsInteger - no fractional part
func (a Decimal) IsInteger() bool {
	return a.d.Exponent >= 0
}

// DecimalPlaces - number of fractional digits in use
func (a Decimal) DecimalPlaces() int32 {
	if a.d.Exponent >= 0 {
		return 0
	}
	return -a.d.Exponent
}

// Int64 - integral value
func (a Decimal) Int64() (int64, error) {
	if !a.IsInteger() {
		return 0, fault.ErrInvalidAmount
	}
	i, err := a.d.Int64()
	if nil != err {
		return 0, fault.ErrDecimalOverflow
	}
	return i, nil
}

// String - canonical text form
func (a Decimal) String() string {
	return a.d.Text('f')
}

// MarshalText - canonical text form
func (a Decimal) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText - parse canonical text
func (a *Decimal) UnmarshalText(s []byte) error {
	r, err := FromString(string(s))
	if nil != err {
		return err
	}
	*a = r
	return nil
}
