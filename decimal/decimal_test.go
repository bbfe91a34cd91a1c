// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package decimal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/fault"
)

func TestFromString(t *testing.T) {
	items := []struct {
		in  string
		out string
		err error
	}{
		{"0", "0", nil},
		{"-0.000", "0", nil},
		{"100", "100", nil},
		{"100.500", "100.5", nil},
		{"0.000000000000000001", "0.000000000000000001", nil},
		{"0.0000000000000000001", "", fault.ErrInvalidDecimal},
		{"abc", "", fault.ErrInvalidDecimal},
		{"NaN", "", fault.ErrInvalidDecimal},
		{"Inf", "", fault.ErrInvalidDecimal},
		{"3138550867693340381917894711603833208051.177722232017256447", "3138550867693340381917894711603833208051.177722232017256447", nil},
		{"3138550867693340381917894711603833208052", "", fault.ErrDecimalOverflow},
	}

	for i, item := range items {
		d, err := decimal.FromString(item.in)
		assert.Equal(t, item.err, err, "%d: wrong error", i)
		if nil == item.err {
			assert.Equal(t, item.out, d.String(), "%d: wrong value", i)
		}
	}
}

func TestArithmetic(t *testing.T) {
	a := decimal.MustFromString("100.25")
	b := decimal.New(40)

	s, err := a.Add(b)
	assert.Nil(t, err, "add error")
	assert.Equal(t, "140.25", s.String(), "wrong sum")

	d, err := b.Sub(a)
	assert.Nil(t, err, "sub error")
	assert.Equal(t, "-60.25", d.String(), "wrong difference")
	assert.True(t, d.IsNegative(), "not negative")

	_, err = decimal.Max().Add(decimal.New(1))
	assert.Equal(t, fault.ErrDecimalOverflow, err, "overflow not detected")

	_, err = decimal.Min().Sub(decimal.New(1))
	assert.Equal(t, fault.ErrDecimalOverflow, err, "underflow not detected")

	assert.True(t, decimal.New(200).Equal(decimal.MustFromString("200.000")), "equal amounts differ")
	assert.Equal(t, decimal.New(200), decimal.MustFromString("200.000"), "not normalised")
}

func TestRoundingModes(t *testing.T) {
	items := []struct {
		in   string
		mode decimal.RoundingMode
		out  string
	}{
		{"1.5", decimal.ToPositiveInfinity, "2"},
		{"1.5", decimal.ToNegativeInfinity, "1"},
		{"1.5", decimal.ToZero, "1"},
		{"1.5", decimal.AwayFromZero, "2"},
		{"1.5", decimal.ToNearestMidpointTowardZero, "1"},
		{"1.5", decimal.ToNearestMidpointAwayFromZero, "2"},
		{"1.5", decimal.ToNearestMidpointToEven, "2"},
		{"-2.5", decimal.ToPositiveInfinity, "-2"},
		{"-2.5", decimal.ToNegativeInfinity, "-3"},
		{"-2.5", decimal.ToZero, "-2"},
		{"-2.5", decimal.AwayFromZero, "-3"},
		{"-2.5", decimal.ToNearestMidpointTowardZero, "-2"},
		{"-2.5", decimal.ToNearestMidpointAwayFromZero, "-3"},
		{"-2.5", decimal.ToNearestMidpointToEven, "-2"},
		{"2.4", decimal.ToNearestMidpointAwayFromZero, "2"},
		{"2.6", decimal.ToNearestMidpointTowardZero, "3"},
	}

	for i, item := range items {
		r, err := decimal.MustFromString(item.in).Round(0, item.mode)
		assert.Nil(t, err, "%d: round error", i)
		assert.Equal(t, item.out, r.String(), "%d: %s %s", i, item.in, item.mode)
	}

	r, err := decimal.MustFromString("1.23456").Round(2, decimal.ToZero)
	assert.Nil(t, err, "round error")
	assert.Equal(t, "1.23", r.String(), "wrong two place rounding")
}

func TestRoundingOverflowIsAnError(t *testing.T) {
	for mode := decimal.ToPositiveInfinity; mode <= decimal.ToNearestMidpointToEven; mode += 1 {
		_, err := decimal.Max().Round(0, mode)
		switch mode {
		case decimal.ToPositiveInfinity, decimal.AwayFromZero:
			assert.Equal(t, fault.ErrDecimalOverflow, err, "%s: overflow not reported", mode)
		default:
			assert.Nil(t, err, "%s: unexpected error", mode)
		}
	}

	_, err := decimal.New(1).Round(19, decimal.ToZero)
	assert.Equal(t, fault.ErrInvalidDivisibility, err, "bad places accepted")
}

func TestParseRoundingMode(t *testing.T) {
	m, err := decimal.ParseRoundingMode("ToNearestMidpointToEven")
	assert.Nil(t, err, "parse error")
	assert.Equal(t, decimal.ToNearestMidpointToEven, m, "wrong mode")

	_, err = decimal.ParseRoundingMode("Sideways")
	assert.Equal(t, fault.ErrInvalidRoundingMode, err, "bad mode accepted")
}
