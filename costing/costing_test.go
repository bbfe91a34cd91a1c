// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package costing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/substated/costing"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/kernel"
)

func TestFeeReserve(t *testing.T) {
	table := costing.FeeTable{
		kernel.EventCreateNode:    {Base: 10},
		kernel.EventWriteSubstate: {Base: 5, PerByte: 1},
	}
	reserve := costing.NewFeeReserve(40, table)

	assert.Nil(t, reserve.OnEvent(kernel.Event{Kind: kernel.EventCreateNode}), "create charge")
	assert.Nil(t, reserve.OnEvent(kernel.Event{Kind: kernel.EventWriteSubstate, Size: 7}), "write charge")
	assert.Nil(t, reserve.OnEvent(kernel.Event{Kind: kernel.EventDropNode}), "free checkpoint")
	assert.Equal(t, uint64(22), reserve.Consumed(), "wrong consumption")
	assert.Equal(t, uint64(18), reserve.Remaining(), "wrong remaining")

	err := reserve.OnEvent(kernel.Event{Kind: kernel.EventWriteSubstate, Size: 20})
	assert.ErrorIs(t, err, fault.ErrFeeReserveExhausted, "limit not enforced")
	assert.True(t, fault.IsErrCosting(err), "wrong error class")
	assert.Equal(t, uint64(22), reserve.Consumed(), "failed charge was applied")

	assert.Equal(t, map[string]uint64{"CreateNode": 10, "WriteSubstate": 12}, reserve.Breakdown(), "wrong breakdown")
	assert.Equal(t, []string{"CreateNode", "WriteSubstate"}, reserve.BreakdownNames(), "wrong names")
}

func TestDefaultFeeTable(t *testing.T) {
	reserve := costing.NewFeeReserve(costing.DefaultCostUnitLimit, nil)
	assert.Nil(t, reserve.OnEvent(kernel.Event{Kind: kernel.EventInvokeEnter}), "invoke charge")
	assert.Equal(t, uint64(1000), reserve.Consumed(), "wrong default invoke fee")
}

func TestInjectFailure(t *testing.T) {
	inject := costing.NewInjectFailure(3)
	for i := 0; i < 3; i += 1 {
		assert.Nil(t, inject.OnEvent(kernel.Event{Kind: kernel.EventOpenSubstate}), "early failure")
	}
	err := inject.OnEvent(kernel.Event{Kind: kernel.EventCloseSubstate})
	assert.ErrorIs(t, err, fault.ErrInjectedFailure, "failure not injected")
	assert.True(t, fault.IsErrCosting(err), "wrong error class")
	assert.Equal(t, uint64(4), inject.Count(), "wrong count")
}
