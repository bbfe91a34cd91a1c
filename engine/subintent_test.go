// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/substated/account"
	"github.com/bitmark-inc/substated/authzone"
	"github.com/bitmark-inc/substated/engine"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/manifest"
	"github.com/bitmark-inc/substated/transaction"
	"github.com/bitmark-inc/substated/value"
)

// swap - the root pays the subintent's account and receives its tokens
//
// the subintent only releases its tokens when the root is signed by
// parentSigner
type swap struct {
	l           *ledger
	root        *account.PrivateKey
	seller      *account.PrivateKey
	rootAccount identifier.NodeId
	sellAccount identifier.NodeId
	token       identifier.NodeId
}

func newSwap(t *testing.T) *swap {
	l := newLedger(t, engine.Config{})
	s := &swap{
		l:      l,
		root:   newKey(t),
		seller: newKey(t),
	}
	s.rootAccount = l.createAccount(s.root)
	s.sellAccount = l.createAccount(s.seller)
	s.token = l.createToken(s.sellAccount, "50")
	return s
}

func (s *swap) transaction(parentSigner identifier.LocalId, rootSigner *account.PrivateKey) *transaction.UserV2 {
	sub := manifest.NewBuilder().
		Add(manifest.VerifyParent{Rule: authzone.RequireSigner(parentSigner)}).
		Add(withdraw(s.sellAccount, s.token, "20")).
		Add(manifest.YieldToParent{Args: value.Tuple{value.Expression(value.EntireWorktop)}}).
		Build()
	root := manifest.NewBuilder().
		Add(manifest.YieldToChild{Child: 0, Args: value.Unit()}).
		Add(depositAll(s.rootAccount)).
		Build()
	return s.build(root, sub, rootSigner)
}

// build - a root with one subintent signed by the seller
func (s *swap) build(root manifest.Manifest, sub manifest.Manifest, rootSigner *account.PrivateKey) *transaction.UserV2 {
	subHeader := s.l.header()
	subHeader.NotaryKey = nil
	tx := &transaction.UserV2{
		Root: transaction.SignedIntent{
			Intent: transaction.Intent{
				Header:   s.l.header(),
				Manifest: root,
				Children: []uint32{0},
			},
		},
		Subintents: []transaction.SignedIntent{
			{
				Intent: transaction.Intent{
					Header:   subHeader,
					Manifest: sub,
				},
			},
		},
	}
	require.Nil(s.l.t, tx.SignSubintent(0, s.seller), "sign subintent error")
	require.Nil(s.l.t, tx.SignRoot(rootSigner), "sign root error")
	require.Nil(s.l.t, tx.Notarize(s.l.notary), "notarize error")
	return tx
}

func TestSubintentSwap(t *testing.T) {
	s := newSwap(t)
	tx := s.transaction(s.root.Account().SignatureId(), s.root)

	r := s.l.commit(s.l.submit(tx))
	require.Equal(t, 2, len(r.Outputs), "wrong intent count")
	assert.Equal(t, 2, len(r.Outputs[0]), "wrong root output count")
	assert.Equal(t, 3, len(r.Outputs[1]), "wrong subintent output count")

	assert.Equal(t, "20", s.l.balance(s.rootAccount, s.token), "wrong buyer balance")
	assert.Equal(t, "30", s.l.balance(s.sellAccount, s.token), "wrong seller balance")

	h, err := tx.Hashes()
	require.Nil(t, err, "hash error")
	for _, intent := range h.Subintents {
		_, found, err := engine.CommittedBy(s.l.db, intent)
		require.Nil(t, err, "tracker error")
		assert.True(t, found, "subintent not tracked")
	}
}

func TestSubintentReplayRejected(t *testing.T) {
	s := newSwap(t)
	tx := s.transaction(s.root.Account().SignatureId(), s.root)
	s.l.commit(s.l.submit(tx))

	// the same signed subintent under a new root
	again := s.transaction(s.root.Account().SignatureId(), s.root)
	again.Subintents = tx.Subintents
	again.Root.Signatures = nil
	require.Nil(t, again.SignRoot(s.root), "sign root error")
	require.Nil(t, again.Notarize(s.l.notary), "notarize error")

	r := s.l.submit(again)
	assert.Equal(t, engine.Rejected, r.Status, "wrong status")
	assert.True(t, errors.Is(r.Err(), fault.ErrIntentAlreadyCommitted), "wrong error: %v", r.Err())
}

func TestVerifyParentFails(t *testing.T) {
	s := newSwap(t)
	other := newKey(t)
	tx := s.transaction(s.root.Account().SignatureId(), other)

	r := s.l.submit(tx)
	assert.Equal(t, engine.Failed, r.Status, "wrong status")
	assert.True(t, errors.Is(r.Err(), fault.ErrParentVerificationFailed), "wrong error: %v", r.Err())
	require.NotNil(t, r.Failure, "no failure")
	assert.Equal(t, 1, r.Failure.Intent, "wrong failed intent")
	assert.Equal(t, 0, r.Failure.Instruction, "wrong failed instruction")
	assert.Equal(t, "50", s.l.balance(s.sellAccount, s.token), "seller balance changed")
}

func TestChildWorktopIsolated(t *testing.T) {
	s := newSwap(t)
	sub := manifest.NewBuilder().
		Add(withdraw(s.sellAccount, s.token, "20")).
		Add(manifest.YieldToParent{Args: value.Unit()}).
		Add(manifest.YieldToParent{Args: value.Tuple{value.Expression(value.EntireWorktop)}}).
		Build()
	root := manifest.NewBuilder().
		Add(manifest.YieldToChild{Child: 0, Args: value.Unit()}).
		Add(manifest.AssertWorktopIsEmpty{}).
		Add(manifest.YieldToChild{Child: 0, Args: value.Unit()}).
		Add(manifest.AssertWorktopContains{Resource: s.token, Amount: amount("20")}).
		Add(depositAll(s.rootAccount)).
		Build()

	r := s.l.commit(s.l.submit(s.build(root, sub, s.root)))
	require.Equal(t, 2, len(r.Outputs), "wrong intent count")
	assert.Equal(t, 5, len(r.Outputs[0]), "wrong root output count")
	assert.Equal(t, 3, len(r.Outputs[1]), "wrong subintent output count")

	assert.Equal(t, "20", s.l.balance(s.rootAccount, s.token), "wrong buyer balance")
	assert.Equal(t, "30", s.l.balance(s.sellAccount, s.token), "wrong seller balance")
}

func TestChildKeepsUnyieldedBucket(t *testing.T) {
	s := newSwap(t)
	sub := manifest.NewBuilder().
		Add(withdraw(s.sellAccount, s.token, "20")).
		Add(manifest.YieldToParent{Args: value.Unit()}).
		Build()
	root := manifest.NewBuilder().
		Add(manifest.YieldToChild{Child: 0, Args: value.Unit()}).
		Add(depositAll(s.rootAccount)).
		Build()

	r := s.l.submit(s.build(root, sub, s.root))
	assert.Equal(t, engine.Failed, r.Status, "wrong status")
	assert.True(t, errors.Is(r.Err(), fault.ErrWorktopNotEmpty), "wrong error: %v", r.Err())
	require.NotNil(t, r.Failure, "no failure")
	assert.Equal(t, 1, r.Failure.Intent, "wrong failed intent")

	assert.Equal(t, "0", s.l.balance(s.rootAccount, s.token), "bucket reached the parent")
	assert.Equal(t, "50", s.l.balance(s.sellAccount, s.token), "seller balance changed")
}
