// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package resource_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/resource"
)

func TestProofLocksAmount(t *testing.T) {
	k := newTestKernel(t)
	_, vault := newFundedVault(t, k, 18, "100")

	proof, err := resource.CreateProofOfAmount(k, vault, amount("60"))
	require.Nil(t, err, "create proof error")

	balance, err := resource.Amount(k, vault)
	assert.Nil(t, err, "amount error")
	assert.True(t, amount("100").Equal(balance), "proof changed amount: %s", balance)

	_, err = resource.Take(k, vault, amount("50"))
	assert.ErrorIs(t, err, fault.ErrInsufficientBalance, "locked amount withdrawn")

	bucket, err := resource.Take(k, vault, amount("40"))
	assert.Nil(t, err, "liquid take error")

	summary, err := resource.Inspect(k, proof)
	assert.Nil(t, err, "inspect error")
	assert.True(t, amount("60").Equal(summary.Amount), "wrong proof amount: %s", summary.Amount)

	assert.Nil(t, resource.DropProof(k, proof), "drop proof error")
	_, err = resource.Take(k, vault, amount("60"))
	assert.Nil(t, err, "unlocked take error")

	assert.Nil(t, resource.Put(k, vault, bucket), "put back error")
	balance, err = resource.Amount(k, vault)
	assert.Nil(t, err, "amount error")
	assert.True(t, amount("40").Equal(balance), "wrong final balance: %s", balance)
}

func TestOverlappingProofs(t *testing.T) {
	k := newTestKernel(t)
	_, bucket := newFungible(t, k, 18, "100")

	small, err := resource.CreateProofOfAmount(k, bucket, amount("30"))
	require.Nil(t, err, "small proof error")
	large, err := resource.CreateProofOfAmount(k, bucket, amount("50"))
	require.Nil(t, err, "large proof error")

	// locks overlap: only the largest is withheld
	_, err = resource.Take(k, bucket, amount("51"))
	assert.ErrorIs(t, err, fault.ErrInsufficientBalance, "overlap not shared")

	assert.Nil(t, resource.DropProof(k, large), "drop large error")
	_, err = resource.Take(k, bucket, amount("71"))
	assert.ErrorIs(t, err, fault.ErrInsufficientBalance, "small lock released early")

	part, err := resource.Take(k, bucket, amount("70"))
	assert.Nil(t, err, "take error")
	assert.Nil(t, resource.DropProof(k, small), "drop small error")

	balance, err := resource.Amount(k, bucket)
	assert.Nil(t, err, "amount error")
	assert.True(t, amount("30").Equal(balance), "wrong balance: %s", balance)
	assert.Nil(t, resource.Put(k, bucket, part), "put error")
}

func TestLockedBucketCannotMove(t *testing.T) {
	k := newTestKernel(t)
	address, bucket := newFungible(t, k, 18, "10")
	vault, err := resource.CreateEmptyVault(k, address)
	require.Nil(t, err, "create vault error")

	proof, err := resource.CreateProofOfAll(k, bucket)
	require.Nil(t, err, "proof error")

	clone, err := resource.CloneProof(k, proof)
	require.Nil(t, err, "clone error")
	assert.Nil(t, resource.DropProof(k, proof), "drop proof error")

	// a failed put consumes its argument so use a second bucket
	other, err := resource.Mint(k, address, amount("1"))
	require.Nil(t, err, "mint error")
	_, err = resource.CreateProofOfAll(k, other)
	require.Nil(t, err, "second proof error")
	err = resource.Put(k, vault, other)
	assert.ErrorIs(t, err, fault.ErrResourceLocked, "locked bucket deposited")

	assert.Nil(t, resource.DropProof(k, clone), "drop clone error")
	assert.Nil(t, resource.Put(k, vault, bucket), "unlocked put error")
}

func TestEmptyProof(t *testing.T) {
	k := newTestKernel(t)
	address, _ := newFungible(t, k, 18, "1")
	empty, err := resource.CreateEmptyBucket(k, address)
	require.Nil(t, err, "create empty error")

	_, err = resource.CreateProofOfAll(k, empty)
	assert.ErrorIs(t, err, fault.ErrEmptyProof, "proof of nothing")
	_, err = resource.CreateProofOfAmount(k, empty, amount("0"))
	assert.ErrorIs(t, err, fault.ErrEmptyProof, "proof of zero")
}

func TestNonFungibleProofs(t *testing.T) {
	k := newTestKernel(t)
	ids := integerIds(1, 2, 3)
	_, bucket, err := resource.CreateNonFungibleResource(k, identifier.IntegerLocalId, allFlags, nonFungibles(ids))
	require.Nil(t, err, "create error")

	proof, err := resource.CreateProofOfNonFungibles(k, bucket, integerIds(3))
	require.Nil(t, err, "proof error")

	_, err = resource.TakeNonFungibles(k, bucket, integerIds(3))
	assert.ErrorIs(t, err, fault.ErrNonFungibleNotFound, "locked id withdrawn")

	held, err := resource.LocalIds(k, bucket)
	assert.Nil(t, err, "ids error")
	assert.Equal(t, ids, held, "locked ids not reported")

	summary, err := resource.Inspect(k, proof)
	assert.Nil(t, err, "inspect error")
	assert.Equal(t, integerIds(3), summary.Ids, "wrong proof ids")

	assert.Nil(t, resource.DropProof(k, proof), "drop error")
	_, err = resource.TakeNonFungibles(k, bucket, integerIds(3))
	assert.Nil(t, err, "unlocked take error")
}

func TestComposeProofs(t *testing.T) {
	k := newTestKernel(t)
	address, first := newFungible(t, k, 18, "100")
	second, err := resource.Mint(k, address, amount("100"))
	require.Nil(t, err, "mint error")

	p1, err := resource.CreateProofOfAmount(k, first, amount("30"))
	require.Nil(t, err, "first proof error")
	p2, err := resource.CreateProofOfAmount(k, second, amount("40"))
	require.Nil(t, err, "second proof error")
	proofs := []identifier.NodeId{p1, p2}

	_, err = resource.Compose(k, address, proofs, nil, resource.Request{Kind: resource.RequestAmount, Amount: amount("80")})
	assert.ErrorIs(t, err, fault.ErrInsufficientProofEvidence, "composed beyond evidence")

	composed, err := resource.Compose(k, address, proofs, nil, resource.Request{Kind: resource.RequestAmount, Amount: amount("60")})
	require.Nil(t, err, "compose error")
	summary, err := resource.Inspect(k, composed)
	assert.Nil(t, err, "inspect error")
	assert.True(t, amount("60").Equal(summary.Amount), "wrong composed amount: %s", summary.Amount)

	all, err := resource.Compose(k, address, proofs, nil, resource.Request{Kind: resource.RequestAll})
	require.Nil(t, err, "compose all error")
	summary, err = resource.Inspect(k, all)
	assert.Nil(t, err, "inspect all error")
	assert.True(t, amount("70").Equal(summary.Amount), "wrong total amount: %s", summary.Amount)

	for _, p := range []identifier.NodeId{p1, p2, composed, all} {
		assert.Nil(t, resource.DropProof(k, p), "drop error")
	}
	for _, b := range []identifier.NodeId{first, second} {
		taken, err := resource.Take(k, b, amount("100"))
		assert.Nil(t, err, "locks remain on %s", b)
		assert.Nil(t, resource.Put(k, b, taken), "put back error")
	}
}

func TestComposeVirtualIds(t *testing.T) {
	k := newTestKernel(t)
	address, _, err := resource.CreateNonFungibleResource(k, identifier.IntegerLocalId, allFlags, nil)
	require.Nil(t, err, "create error")

	virtual := integerIds(7, 8)
	proof, err := resource.Compose(k, address, nil, virtual, resource.Request{Kind: resource.RequestNonFungibles, Ids: integerIds(8)})
	require.Nil(t, err, "compose error")
	summary, err := resource.Inspect(k, proof)
	assert.Nil(t, err, "inspect error")
	assert.Equal(t, integerIds(8), summary.Ids, "wrong virtual ids")
	assert.Nil(t, resource.DropProof(k, proof), "drop error")

	_, err = resource.Compose(k, address, nil, virtual, resource.Request{Kind: resource.RequestNonFungibles, Ids: integerIds(9)})
	assert.ErrorIs(t, err, fault.ErrInsufficientProofEvidence, "unbacked id proven")
}

func TestDuplicateIdsNotProven(t *testing.T) {
	k := newTestKernel(t)
	address, bucket, err := resource.CreateNonFungibleResource(k, identifier.IntegerLocalId, allFlags, nonFungibles(integerIds(1)))
	require.Nil(t, err, "create error")

	_, err = resource.CreateProofOfNonFungibles(k, bucket, integerIds(1, 1, 1))
	assert.ErrorIs(t, err, fault.ErrInvalidAmount, "duplicate ids proven from a bucket")

	proof, err := resource.CreateProofOfNonFungibles(k, bucket, integerIds(1))
	require.Nil(t, err, "proof error")
	summary, err := resource.Inspect(k, proof)
	assert.Nil(t, err, "inspect error")
	assert.True(t, amount("1").Equal(summary.Amount), "wrong proof amount: %s", summary.Amount)

	request := resource.Request{Kind: resource.RequestNonFungibles, Ids: integerIds(1, 1)}
	_, err = resource.Compose(k, address, []identifier.NodeId{proof}, nil, request)
	assert.ErrorIs(t, err, fault.ErrInvalidAmount, "duplicate ids composed")

	_, err = resource.Compose(k, address, nil, integerIds(2), resource.Request{Kind: resource.RequestNonFungibles, Ids: integerIds(2, 2)})
	assert.ErrorIs(t, err, fault.ErrInvalidAmount, "duplicate virtual ids composed")

	assert.Nil(t, resource.DropProof(k, proof), "drop error")
	_, err = resource.TakeNonFungibles(k, bucket, integerIds(1))
	assert.Nil(t, err, "rejected proofs left a lock")
}

func TestComposeChecksDivisibility(t *testing.T) {
	k := newTestKernel(t)
	address, bucket := newFungible(t, k, 2, "100")

	proof, err := resource.CreateProofOfAmount(k, bucket, amount("10"))
	require.Nil(t, err, "proof error")
	proofs := []identifier.NodeId{proof}

	_, err = resource.Compose(k, address, proofs, nil, resource.Request{Kind: resource.RequestAmount, Amount: amount("1.005")})
	assert.ErrorIs(t, err, fault.ErrInvalidAmount, "composed below divisibility")

	composed, err := resource.Compose(k, address, proofs, nil, resource.Request{Kind: resource.RequestAmount, Amount: amount("1.05")})
	require.Nil(t, err, "compose error")
	assert.Nil(t, resource.DropProof(k, composed), "drop error")
	assert.Nil(t, resource.DropProof(k, proof), "drop error")
}
