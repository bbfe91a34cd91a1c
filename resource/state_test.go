// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
)

func TestFungibleLockArithmetic(t *testing.T) {
	s := newFungibleState(decimal.New(10))

	assert.Nil(t, s.lock(decimal.New(4)), "lock 4")
	assert.Nil(t, s.lock(decimal.New(6)), "lock 6")
	assert.Nil(t, s.lock(decimal.New(4)), "lock 4 again")
	assert.True(t, decimal.New(4).Equal(s.liquid), "liquid: %s", s.liquid)
	assert.True(t, decimal.New(6).Equal(s.maxLocked()), "max locked: %s", s.maxLocked())

	total, err := s.amount()
	assert.Nil(t, err, "amount error")
	assert.True(t, decimal.New(10).Equal(total), "total: %s", total)

	assert.ErrorIs(t, s.lock(decimal.New(11)), fault.ErrInsufficientBalance, "lock beyond total")
	assert.ErrorIs(t, s.unlock(decimal.New(5)), fault.ErrLockNotFound, "unlock of unknown amount")

	assert.Nil(t, s.unlock(decimal.New(6)), "unlock 6")
	assert.True(t, decimal.New(6).Equal(s.liquid), "liquid after unlock 6: %s", s.liquid)
	assert.Nil(t, s.unlock(decimal.New(4)), "unlock 4")
	assert.True(t, decimal.New(6).Equal(s.liquid), "liquid with one lock left: %s", s.liquid)
	assert.Nil(t, s.unlock(decimal.New(4)), "unlock last 4")
	assert.True(t, decimal.New(10).Equal(s.liquid), "liquid restored: %s", s.liquid)
	assert.False(t, s.isLocked(), "still locked")
}

func TestFungibleStateValues(t *testing.T) {
	s := newFungibleState(decimal.New(10))
	assert.Nil(t, s.lock(decimal.New(3)), "lock error")

	r, err := fungibleStateFromValues(s.liquidValue(), s.lockedValue())
	assert.Nil(t, err, "decode error")
	assert.True(t, s.liquid.Equal(r.liquid), "liquid differs")
	assert.Equal(t, 1, len(r.locked), "wrong lock count")
	assert.True(t, decimal.New(3).Equal(r.maxLocked()), "locked differs")
	assert.Equal(t, uint32(1), r.locked[0].count, "wrong count")
}

func TestNonFungibleLocks(t *testing.T) {
	ids := []identifier.LocalId{identifier.IntegerId(1), identifier.IntegerId(2)}
	s := newNonFungibleState(ids)

	assert.Nil(t, s.lock(ids[:1]), "lock error")
	assert.Nil(t, s.lock(ids[:1]), "second lock error")
	assert.ErrorIs(t, s.takeIds(ids[:1]), fault.ErrNonFungibleNotFound, "locked id taken")
	assert.Equal(t, ids, s.ids(), "locked id not reported")

	assert.Nil(t, s.unlock(ids[:1]), "unlock error")
	assert.ErrorIs(t, s.takeIds(ids[:1]), fault.ErrNonFungibleNotFound, "id freed with a lock left")
	assert.Nil(t, s.unlock(ids[:1]), "last unlock error")
	assert.Nil(t, s.takeIds(ids[:1]), "unlocked take error")

	assert.ErrorIs(t, s.put(ids[1:]), fault.ErrNonFungibleExists, "duplicate id accepted")
	assert.ErrorIs(t, s.lock([]identifier.LocalId{ids[1], ids[1]}), fault.ErrInvalidAmount, "duplicate ids locked")
	assert.Equal(t, 0, len(s.locked), "failed lock changed state")

	r, err := nonFungibleStateFromValues(s.liquidValue(), s.lockedValue())
	assert.Nil(t, err, "decode error")
	assert.Equal(t, s.ids(), r.ids(), "ids differ")
}
