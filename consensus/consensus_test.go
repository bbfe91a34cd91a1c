// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/substated/authzone"
	"github.com/bitmark-inc/substated/consensus"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/storage"
)

func TestRoundsAndEpochs(t *testing.T) {
	k := newClock(t, storage.NewMemoryDatabase(), consensus.State{Epoch: 7, Timestamp: 1000}, 3)

	state, err := consensus.NextRound(k, 1, 1001)
	require.Nil(t, err, "next round error")
	assert.Equal(t, consensus.State{Epoch: 7, Round: 1, Timestamp: 1001}, state, "wrong state")

	state, err = consensus.NextRound(k, 2, 1001)
	require.Nil(t, err, "next round error")
	assert.Equal(t, uint64(2), state.Round, "wrong round")

	state, err = consensus.NextRound(k, 3, 1500)
	require.Nil(t, err, "next round error")
	assert.Equal(t, consensus.State{Epoch: 8, Round: 0, Timestamp: 1500}, state, "epoch not advanced")

	current, err := consensus.GetState(k)
	require.Nil(t, err, "get state error")
	assert.Equal(t, state, current, "wrong current state")

	assert.Nil(t, k.FinalizeRoot(), "finalise error")
}

func TestRoundMustIncrease(t *testing.T) {
	k := newClock(t, storage.NewMemoryDatabase(), consensus.State{Epoch: 1, Round: 4}, 10)
	_, err := consensus.NextRound(k, 4, 0)
	assert.True(t, errors.Is(err, fault.ErrRoundNotIncreasing), "wrong error: %v", err)
}

func TestTimestampMustNotDecrease(t *testing.T) {
	k := newClock(t, storage.NewMemoryDatabase(), consensus.State{Epoch: 1, Timestamp: 5000}, 10)
	_, err := consensus.NextRound(k, 1, 4999)
	assert.True(t, errors.Is(err, fault.ErrTimestampDecreasing), "wrong error: %v", err)
}

func TestInvalidConfig(t *testing.T) {
	k := newTestKernel(t, storage.NewMemoryDatabase())
	require.Nil(t, authzone.AddSystemProof(k), "system proof error")
	err := consensus.Create(k, consensus.State{}, consensus.Config{})
	assert.True(t, errors.Is(err, fault.ErrInvalidConsensusConfig), "wrong error: %v", err)
}

func TestCreateNeedsSystem(t *testing.T) {
	k := newTestKernel(t, storage.NewMemoryDatabase())
	err := consensus.Create(k, consensus.State{}, consensus.Config{RoundsPerEpoch: 10})
	assert.True(t, errors.Is(err, fault.ErrAuthorizationFailed), "wrong error: %v", err)
}

func TestNextRoundNeedsSystem(t *testing.T) {
	db := storage.NewMemoryDatabase()
	k := newClock(t, db, consensus.State{Epoch: 1}, 10)
	require.Nil(t, k.FinalizeRoot(), "finalise error")
	updates, err := k.Track().Updates()
	require.Nil(t, err, "updates error")
	require.Nil(t, db.Commit(updates), "commit error")

	user := newTestKernel(t, db)
	_, err = consensus.NextRound(user, 1, 0)
	assert.True(t, errors.Is(err, fault.ErrAuthorizationFailed), "wrong error: %v", err)
}

func TestReadStateFromStore(t *testing.T) {
	db := storage.NewMemoryDatabase()
	_, found, err := consensus.ReadState(db)
	require.Nil(t, err, "read error")
	assert.False(t, found, "state before genesis")

	k := newClock(t, db, consensus.State{Epoch: 3, Round: 1, Timestamp: 42}, 10)
	require.Nil(t, k.FinalizeRoot(), "finalise error")
	updates, err := k.Track().Updates()
	require.Nil(t, err, "updates error")
	require.Nil(t, db.Commit(updates), "commit error")

	state, found, err := consensus.ReadState(db)
	require.Nil(t, err, "read error")
	require.True(t, found, "state not found")
	assert.Equal(t, consensus.State{Epoch: 3, Round: 1, Timestamp: 42}, state, "wrong state")
}
