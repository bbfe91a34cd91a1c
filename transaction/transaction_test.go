// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction_test

import (
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/substated/account"
	"github.com/bitmark-inc/substated/chain"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/manifest"
	"github.com/bitmark-inc/substated/transaction"
)

func TestKindOfPayload(t *testing.T) {
	invalid := []struct {
		record transaction.Packed
		err    error
	}{
		{transaction.Packed{}, fault.ErrTruncatedPayload},
		{transaction.Packed{transaction.Prefix}, fault.ErrTruncatedPayload},
		{transaction.Packed{0x55, 0x01}, fault.ErrInvalidPrefix},
		{transaction.Packed{transaction.Prefix, 0x05}, fault.ErrUnsupportedTransaction},
		{transaction.Packed{transaction.Prefix, 0xff}, fault.ErrUnsupportedTransaction},
	}
	for index, test := range invalid {
		_, err := test.record.Kind()
		assert.True(t, errors.Is(err, test.err), "%d: expected: %v actual: %v", index, test.err, err)
	}

	kind, err := transaction.Packed{transaction.Prefix, 0x02, 0x4d}.Kind()
	require.Nil(t, err, "kind error")
	assert.Equal(t, transaction.RoundUpdateV1Kind, kind, "wrong kind")
	assert.Equal(t, "RoundUpdateV1", kind.String(), "wrong name")
}

func TestPackUserV1(t *testing.T) {
	notary := newKey(t)
	signer := newKey(t)
	tx := newUserV1(t, notary, signer)

	record, err := transaction.Pack(tx)
	require.Nil(t, err, "pack error")
	assert.Equal(t, transaction.Prefix, record[0], "wrong prefix")
	assert.Equal(t, byte(transaction.UserV1Kind), record[1], "wrong kind byte")

	decoded, err := record.Unpack()
	require.Nil(t, err, "unpack error")
	v1, ok := decoded.(*transaction.UserV1)
	require.True(t, ok, "wrong type: %T", decoded)
	assert.Equal(t, tx.Signed.Intent.Manifest, v1.Signed.Intent.Manifest, "wrong manifest")
	assert.Equal(t, tx.Signed.Intent.Header.NotaryKey.String(), v1.Signed.Intent.Header.NotaryKey.String(), "wrong notary")

	h1, err := transaction.HashesOf(tx)
	require.Nil(t, err, "hash error")
	h2, err := transaction.HashesOf(decoded)
	require.Nil(t, err, "hash error")
	assert.Equal(t, h1, h2, "hashes differ after round trip")

	// trailing bytes
	_, err = append(record, 0x00).Unpack()
	assert.NotNil(t, err, "trailing byte accepted")
}

func TestHashesCoverContent(t *testing.T) {
	notary := newKey(t)
	tx := newUserV1(t, notary)
	before, err := tx.Hashes()
	require.Nil(t, err, "hash error")

	require.Nil(t, tx.Sign(newKey(t)), "sign error")
	after, err := tx.Hashes()
	require.Nil(t, err, "hash error")
	assert.Equal(t, before.Intent, after.Intent, "signatures changed the intent hash")
	assert.NotEqual(t, before.Signed, after.Signed, "signatures not covered")
	assert.NotEqual(t, before.Ledger, after.Ledger, "ledger hash not changed")

	tx.Signed.Intent.Header.Nonce += 1
	changed, err := tx.Hashes()
	require.Nil(t, err, "hash error")
	assert.NotEqual(t, before.Intent, changed.Intent, "nonce not covered")
}

func TestPrepareUserV1(t *testing.T) {
	notary := newKey(t)
	signer := newKey(t)
	tx := newUserV1(t, notary, signer)
	record, err := transaction.Pack(tx)
	require.Nil(t, err, "pack error")

	e, err := transaction.Prepare(record, testNetwork)
	require.Nil(t, err, "prepare error")
	h, err := tx.Hashes()
	require.Nil(t, err, "hash error")

	assert.Equal(t, transaction.UserV1Kind, e.Kind, "wrong kind")
	assert.False(t, e.System, "user transaction marked system")
	assert.Equal(t, h.Ledger, e.Hash, "wrong ledger hash")
	assert.Equal(t, h.Intent, e.IntentHash, "wrong intent hash")
	assert.Equal(t, uint64(10), e.StartEpoch, "wrong start epoch")
	assert.Equal(t, uint64(20), e.EndEpoch, "wrong end epoch")
	require.Equal(t, 1, len(e.Intents), "wrong intent count")
	assert.Equal(t, transaction.NoParent, e.Intents[0].Parent, "root has a parent")
	assert.Equal(t, []identifier.LocalId{signer.Account().SignatureId()}, e.Intents[0].Signers, "wrong signers")
}

func TestNotaryAsSignatory(t *testing.T) {
	notary := newKey(t)
	tx := &transaction.UserV1{}
	tx.Signed.Intent.Header = header(notary, 1)
	tx.Signed.Intent.Header.NotaryIsSignatory = true
	tx.Signed.Intent.Manifest = callManifest("get_state")
	require.Nil(t, tx.Sign(notary), "sign error")
	require.Nil(t, tx.Notarize(notary), "notarize error")

	e, err := transaction.PrepareTransaction(tx, testNetwork)
	require.Nil(t, err, "prepare error")
	assert.Equal(t, []identifier.LocalId{notary.Account().SignatureId()}, e.Intents[0].Signers, "notary listed twice or missing")
}

func TestPrepareUserV1Invalid(t *testing.T) {
	liveKey, err := account.NewPrivateKey(false, rand.Reader)
	require.Nil(t, err, "new key error")

	tests := []struct {
		name   string
		modify func(*testing.T) *transaction.UserV1
		err    error
	}{
		{"bad signature", func(t *testing.T) *transaction.UserV1 {
			tx := newUserV1(t, newKey(t), newKey(t))
			tx.Signed.Signatures[0].Signature[0] ^= 0xff
			return tx
		}, fault.ErrInvalidSignature},
		{"duplicate signer", func(t *testing.T) *transaction.UserV1 {
			k := newKey(t)
			return newUserV1(t, newKey(t), k, k)
		}, fault.ErrDuplicateSigner},
		{"too many signers", func(t *testing.T) *transaction.UserV1 {
			keys := make([]*account.PrivateKey, transaction.MaxSigners+1)
			for i := range keys {
				keys[i] = newKey(t)
			}
			return newUserV1(t, newKey(t), keys...)
		}, fault.ErrTooManySigners},
		{"missing notary signature", func(t *testing.T) *transaction.UserV1 {
			tx := newUserV1(t, newKey(t))
			tx.NotarySignature = nil
			return tx
		}, fault.ErrMissingNotarySignature},
		{"notary signed by someone else", func(t *testing.T) *transaction.UserV1 {
			tx := newUserV1(t, newKey(t))
			require.Nil(t, tx.Notarize(newKey(t)), "notarize error")
			return tx
		}, fault.ErrInvalidSignature},
		{"live key on test network", func(t *testing.T) *transaction.UserV1 {
			return newUserV1(t, liveKey)
		}, fault.ErrWrongNetworkForPublicKey},
		{"empty epoch range", func(t *testing.T) *transaction.UserV1 {
			notary := newKey(t)
			tx := &transaction.UserV1{}
			tx.Signed.Intent.Header = header(notary, 1)
			tx.Signed.Intent.Header.EndEpoch = tx.Signed.Intent.Header.StartEpoch
			require.Nil(t, tx.Notarize(notary), "notarize error")
			return tx
		}, fault.ErrInvalidEpochRange},
		{"epoch range too long", func(t *testing.T) *transaction.UserV1 {
			notary := newKey(t)
			tx := &transaction.UserV1{}
			tx.Signed.Intent.Header = header(notary, 1)
			tx.Signed.Intent.Header.EndEpoch = tx.Signed.Intent.Header.StartEpoch + transaction.MaxEpochRange + 1
			require.Nil(t, tx.Notarize(notary), "notarize error")
			return tx
		}, fault.ErrInvalidEpochRange},
		{"yield in v1", func(t *testing.T) *transaction.UserV1 {
			notary := newKey(t)
			tx := &transaction.UserV1{}
			tx.Signed.Intent.Header = header(notary, 1)
			tx.Signed.Intent.Manifest = manifest.NewBuilder().Add(yieldToParent()).Build()
			require.Nil(t, tx.Notarize(notary), "notarize error")
			return tx
		}, fault.ErrInvalidIntentStructure},
		{"children in v1", func(t *testing.T) *transaction.UserV1 {
			notary := newKey(t)
			tx := &transaction.UserV1{}
			tx.Signed.Intent.Header = header(notary, 1)
			tx.Signed.Intent.Children = []uint32{0}
			require.Nil(t, tx.Notarize(notary), "notarize error")
			return tx
		}, fault.ErrInvalidIntentStructure},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := transaction.PrepareTransaction(test.modify(t), testNetwork)
			assert.True(t, errors.Is(err, test.err), "expected: %v actual: %v", test.err, err)
		})
	}
}

func TestPrepareWrongNetwork(t *testing.T) {
	tx := newUserV1(t, newKey(t))
	_, err := transaction.PrepareTransaction(tx, chain.LocalNetwork)
	assert.True(t, errors.Is(err, fault.ErrNetworkMismatch), "wrong error: %v", err)
}

func TestPrepareRoundUpdate(t *testing.T) {
	record, err := transaction.Pack(transaction.RoundUpdateV1{Round: 3, Timestamp: 1000})
	require.Nil(t, err, "pack error")

	e, err := transaction.Prepare(record, testNetwork)
	require.Nil(t, err, "prepare error")
	assert.True(t, e.System, "round update not a system transaction")
	assert.True(t, e.IntentHash.IsZero(), "round update has an intent hash")
	assert.False(t, e.Hash.IsZero(), "missing ledger hash")
	require.NotNil(t, e.RoundUpdate, "missing round update")
	assert.Equal(t, uint64(3), e.RoundUpdate.Round, "wrong round")
	assert.Equal(t, int64(1000), e.RoundUpdate.Timestamp, "wrong timestamp")
	assert.Equal(t, 0, len(e.Intents), "round update has intents")
}

func TestPrepareFlash(t *testing.T) {
	flash := &transaction.FlashV1{
		Name: "seed",
		Substates: []transaction.FlashSubstate{
			{Node: identifier.ConsensusManager, Partition: 64, SortKey: []byte{0}, Value: []byte{1, 2, 3}},
			{Node: identifier.ConsensusManager, Partition: 64, SortKey: []byte{1}},
		},
	}
	record, err := transaction.Pack(flash)
	require.Nil(t, err, "pack error")

	e, err := transaction.Prepare(record, testNetwork)
	require.Nil(t, err, "prepare error")
	require.NotNil(t, e.Flash, "missing flash")
	assert.Equal(t, "seed", e.Flash.Name, "wrong name")
	require.Equal(t, 2, len(e.Flash.Substates), "wrong substate count")
	assert.Equal(t, []byte{1, 2, 3}, e.Flash.Substates[0].Value, "wrong value")
	assert.Nil(t, e.Flash.Substates[1].Value, "removal became a write")

	_, err = transaction.PrepareTransaction(&transaction.FlashV1{
		Substates: []transaction.FlashSubstate{{Partition: 64}},
	}, testNetwork)
	assert.True(t, errors.Is(err, fault.ErrInvalidIntentStructure), "wrong error: %v", err)
}

func TestPrepareGenesis(t *testing.T) {
	_, err := transaction.Pack(&transaction.Genesis{})
	assert.True(t, errors.Is(err, fault.ErrInvalidIntentStructure), "wrong error: %v", err)

	system := &transaction.GenesisSystem{
		Network:        testNetwork,
		Epoch:          1,
		Timestamp:      1600000000000,
		RoundsPerEpoch: 100,
		Manifest:       manifest.NewBuilder().Add(manifest.DropAllProofs{}).Build(),
	}
	record, err := transaction.Pack(&transaction.Genesis{System: system})
	require.Nil(t, err, "pack error")

	e, err := transaction.Prepare(record, testNetwork)
	require.Nil(t, err, "prepare error")
	assert.Equal(t, transaction.GenesisKind, e.Kind, "wrong kind")
	assert.True(t, e.System, "genesis not a system transaction")
	require.NotNil(t, e.Genesis, "missing genesis")
	assert.Equal(t, uint64(100), e.Genesis.RoundsPerEpoch, "wrong rounds per epoch")
	require.Equal(t, 1, len(e.Intents), "wrong intent count")
	assert.Equal(t, system.Manifest, e.Intents[0].Manifest, "wrong manifest")

	_, err = transaction.Prepare(record, chain.LocalNetwork)
	assert.True(t, errors.Is(err, fault.ErrNetworkMismatch), "wrong error: %v", err)
}
