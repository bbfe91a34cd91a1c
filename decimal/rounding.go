// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package decimal

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/bitmark-inc/substated/fault"
)

// RoundingMode - how a value is brought to a given number of places
type RoundingMode uint8

// rounding modes
const (
	ToPositiveInfinity RoundingMode = iota
	ToNegativeInfinity
	ToZero
	AwayFromZero
	ToNearestMidpointTowardZero
	ToNearestMidpointAwayFromZero
	ToNearestMidpointToEven
)

var rounders = map[RoundingMode]apd.Rounder{
	ToPositiveInfinity:            apd.RoundCeiling,
	ToNegativeInfinity:            apd.RoundFloor,
	ToZero:                        apd.RoundDown,
	AwayFromZero:                  apd.RoundUp,
	ToNearestMidpointTowardZero:   apd.RoundHalfDown,
	ToNearestMidpointAwayFromZero: apd.RoundHalfUp,
	ToNearestMidpointToEven:       apd.RoundHalfEven,
}

var roundingNames = []string{
	"ToPositiveInfinity",
	"ToNegativeInfinity",
	"ToZero",
	"AwayFromZero",
	"ToNearestMidpointTowardZero",
	"ToNearestMidpointAwayFromZero",
	"ToNearestMidpointToEven",
}

// String - name of the mode
func (mode RoundingMode) String() string {
	if int(mode) < len(roundingNames) {
		return roundingNames[mode]
	}
	return "*unknown*"
}

// ParseRoundingMode - mode from its name
func ParseRoundingMode(s string) (RoundingMode, error) {
	for i, name := range roundingNames {
		if name == s {
			return RoundingMode(i), nil
		}
	}
	return 0, fault.ErrInvalidRoundingMode
}
