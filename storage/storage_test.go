// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/storage"
	"github.com/bitmark-inc/substated/storage/mocks"
)

// run the same checks against every committable backend
func checkCommittable(t *testing.T, db storage.CommittableDatabase) {
	err := db.Commit(initialUpdates())
	assert.Nil(t, err, "commit error")

	v, ok := db.Get(partitionA, storage.SortKey("k2"))
	assert.True(t, ok, "k2 missing")
	assert.Equal(t, []byte("v2"), v, "wrong k2")

	_, ok = db.Get(partitionA, storage.SortKey("k3"))
	assert.False(t, ok, "k3 present")

	assert.Equal(t, []string{"k1=v1", "k2=v2", "k4=v4"}, listAll(t, db, partitionA, ""), "wrong list")
	assert.Equal(t, []string{"k2=v2", "k4=v4"}, listAll(t, db, partitionA, "k2"), "wrong list from k2")

	delta := storage.NewDatabaseUpdates()
	delta.Set(partitionA, storage.SortKey("k3"), []byte("v3"))
	delta.Delete(partitionA, storage.SortKey("k1"))
	err = db.Commit(delta)
	assert.Nil(t, err, "delta commit error")
	assert.Equal(t, []string{"k2=v2", "k3=v3", "k4=v4"}, listAll(t, db, partitionA, ""), "wrong list after delta")

	reset := storage.NewDatabaseUpdates()
	reset.ResetPartition(partitionA, map[string][]byte{"r1": []byte("x")})
	err = db.Commit(reset)
	assert.Nil(t, err, "reset commit error")
	assert.Equal(t, []string{"r1=x"}, listAll(t, db, partitionA, ""), "wrong list after reset")
	_, ok = db.Get(partitionA, storage.SortKey("k2"))
	assert.False(t, ok, "reset kept old value")

	assert.Equal(t, []string{"b1=w1"}, listAll(t, db, partitionB, ""), "other partition changed")
}

func TestMemoryDatabase(t *testing.T) {
	checkCommittable(t, storage.NewMemoryDatabase())
}

func TestOverlayDatabase(t *testing.T) {
	root := storage.NewMemoryDatabase()
	checkCommittable(t, storage.NewOverlayDatabase(root))

	_, ok := root.Get(partitionB, storage.SortKey("b1"))
	assert.False(t, ok, "overlay leaked into root")
}

func TestOverlayResetDoesNotFallThrough(t *testing.T) {
	root := storage.NewMemoryDatabase()
	root.Commit(initialUpdates())

	overlay := storage.NewOverlayDatabase(root)
	reset := storage.NewDatabaseUpdates()
	reset.ResetPartition(partitionA, map[string][]byte{"k9": []byte("v9")})
	overlay.Commit(reset)

	_, ok := overlay.Get(partitionA, storage.SortKey("k1"))
	assert.False(t, ok, "reset partition fell through to root")

	v, ok := overlay.Get(partitionB, storage.SortKey("b1"))
	assert.True(t, ok, "untouched partition not read from root")
	assert.Equal(t, []byte("w1"), v, "wrong root value")

	// reset then delta applies the delta on top of the reset values
	delta := storage.NewDatabaseUpdates()
	delta.Set(partitionA, storage.SortKey("k8"), []byte("v8"))
	delta.Delete(partitionA, storage.SortKey("k9"))
	overlay.Commit(delta)

	assert.Equal(t, []string{"k8=v8"}, listAll(t, overlay, partitionA, ""), "delta not applied to reset")

	p, ok := overlay.Updates().Lookup(partitionA)
	assert.True(t, ok, "partition missing from updates")
	assert.Equal(t, storage.Reset, p.Kind, "reset lost by merge")
}

func TestOverlayListMergesRoot(t *testing.T) {
	root := storage.NewMemoryDatabase()
	root.Commit(initialUpdates())

	overlay := storage.NewOverlayDatabase(root)
	delta := storage.NewDatabaseUpdates()
	delta.Set(partitionA, storage.SortKey("k0"), []byte("new0"))
	delta.Set(partitionA, storage.SortKey("k2"), []byte("new2"))
	delta.Delete(partitionA, storage.SortKey("k4"))
	delta.Set(partitionA, storage.SortKey("k5"), []byte("new5"))
	overlay.Commit(delta)

	assert.Equal(t, []string{"k0=new0", "k1=v1", "k2=new2", "k5=new5"}, listAll(t, overlay, partitionA, ""), "wrong merge")
	assert.Equal(t, []string{"k2=new2", "k5=new5"}, listAll(t, overlay, partitionA, "k2"), "wrong merge from k2")

	// committing the overlay's updates to the root gives the same view
	err := root.Commit(overlay.Updates())
	assert.Nil(t, err, "root commit error")
	assert.Equal(t, listAll(t, overlay, partitionA, ""), listAll(t, root, partitionA, ""), "root differs from overlay")
}

func TestMergeRules(t *testing.T) {
	u := storage.NewDatabaseUpdates()
	u.Set(partitionA, storage.SortKey("a"), []byte("1"))

	later := storage.NewDatabaseUpdates()
	later.Set(partitionA, storage.SortKey("b"), []byte("2"))
	u.Merge(later)

	p, _ := u.Lookup(partitionA)
	assert.Equal(t, storage.Delta, p.Kind, "delta+delta changed kind")
	assert.Equal(t, []string{"a", "b"}, p.SortedKeys(), "delta not extended")

	reset := storage.NewDatabaseUpdates()
	reset.ResetPartition(partitionA, map[string][]byte{"c": []byte("3")})
	u.Merge(reset)

	p, _ = u.Lookup(partitionA)
	assert.Equal(t, storage.Reset, p.Kind, "reset did not replace")
	assert.Equal(t, []string{"c"}, p.SortedKeys(), "reset kept delta entries")
	assert.Equal(t, 1, u.SubstateCount(), "wrong count")
}

func TestKeyMapper(t *testing.T) {
	id, err := identifier.NewAllocator(digest.Digest{}).Allocate(identifier.EntityGlobalComponent)
	assert.Nil(t, err, "allocate error")

	key := storage.NodeKey(id)
	assert.Equal(t, storage.SpreadPrefixLength+identifier.NodeIdLength, len(key), "wrong key length")

	back, err := storage.NodeIdFromKey(key)
	assert.Nil(t, err, "key decode error")
	assert.Equal(t, id, back, "key round trip")

	key[0] ^= 0xff
	_, err = storage.NodeIdFromKey(key)
	assert.NotNil(t, err, "tampered spread prefix accepted")
}

func TestOverlayReadsRootOnce(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	root := mocks.NewMockDatabase(ctl)
	root.EXPECT().Get(partitionA, storage.SortKey("k1")).Return([]byte("v1"), true).Times(1)

	overlay := storage.NewOverlayDatabase(root)
	v, ok := overlay.Get(partitionA, storage.SortKey("k1"))
	assert.True(t, ok, "root value missing")
	assert.Equal(t, []byte("v1"), v, "wrong root value")

	// a locally written value must not consult the root
	delta := storage.NewDatabaseUpdates()
	delta.Set(partitionA, storage.SortKey("k2"), []byte("local"))
	overlay.Commit(delta)

	v, ok = overlay.Get(partitionA, storage.SortKey("k2"))
	assert.True(t, ok, "local value missing")
	assert.Equal(t, []byte("local"), v, "wrong local value")
}
