// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

import (
	"bytes"

	"github.com/bitmark-inc/substated/account"
	"github.com/bitmark-inc/substated/chain"
	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/manifest"
)

// NoParent - parent index of the root intent
const NoParent = -1

// ExecutableIntent - one intent thread of a validated transaction
//
// Children and Parent are indices into Executable.Intents; the root
// is always at index zero
type ExecutableIntent struct {
	Hash     digest.Digest
	Manifest manifest.Manifest
	Signers  []identifier.LocalId
	Children []int
	Parent   int
}

// Executable - a validated transaction ready for the engine
//
// System marks the kinds executed with the system proof instead of
// signatures; IntentHash is zero for them
type Executable struct {
	Kind        Kind
	Hash        digest.Digest
	IntentHash  digest.Digest
	StartEpoch  uint64
	EndEpoch    uint64
	System      bool
	Intents     []ExecutableIntent
	RoundUpdate *RoundUpdateV1
	Flash       *FlashV1
	Genesis     *GenesisSystem
}

// Prepare - decode and validate a payload for a network
func Prepare(record Packed, network uint8) (*Executable, error) {
	tx, err := record.Unpack()
	if nil != err {
		return nil, err
	}
	return PrepareTransaction(tx, network)
}

// PrepareTransaction - validate a decoded transaction for a network
func PrepareTransaction(tx Transaction, network uint8) (*Executable, error) {
	switch tx := tx.(type) {
	case *UserV1:
		return prepareUserV1(tx, network)
	case *UserV2:
		return prepareUserV2(tx, network)
	case *RoundUpdateV1:
		h, err := HashesOf(tx)
		if nil != err {
			return nil, err
		}
		return &Executable{Kind: RoundUpdateV1Kind, Hash: h.Ledger, System: true, RoundUpdate: tx}, nil
	case *FlashV1:
		if err := validateFlash(tx); nil != err {
			return nil, err
		}
		h, err := HashesOf(tx)
		if nil != err {
			return nil, err
		}
		return &Executable{Kind: FlashV1Kind, Hash: h.Ledger, System: true, Flash: tx}, nil
	case *Genesis:
		return prepareGenesis(tx, network)
	}
	return nil, fault.ErrUnsupportedTransaction
}

func prepareGenesis(tx *Genesis, network uint8) (*Executable, error) {
	h, err := HashesOf(tx)
	if nil != err {
		return nil, err
	}
	e := &Executable{Kind: GenesisKind, Hash: h.Ledger, System: true}
	if nil != tx.Flash {
		if err := validateFlash(tx.Flash); nil != err {
			return nil, err
		}
		e.Flash = tx.Flash
		return e, nil
	}
	if network != tx.System.Network {
		return nil, fault.Detailf(fault.ErrNetworkMismatch, "expected: %d  actual: %d", network, tx.System.Network)
	}
	if err := validateIntentStructure(tx.System.Manifest, 0, false); nil != err {
		return nil, err
	}
	e.Genesis = tx.System
	e.Intents = []ExecutableIntent{{
		Hash:     h.Ledger,
		Manifest: tx.System.Manifest,
		Parent:   NoParent,
	}}
	return e, nil
}

func validateFlash(tx *FlashV1) error {
	for i, s := range tx.Substates {
		if s.Node.IsZero() {
			return fault.Detailf(fault.ErrInvalidIntentStructure, "flash substate %d: zero node", i)
		}
		if len(s.Value) > maxFlashSubstate {
			return fault.Detailf(fault.ErrInvalidIntentStructure, "flash substate %d: value too large", i)
		}
	}
	return nil
}

// checkKey - keys must carry the test flag of the network
func checkKey(key *account.Account, network uint8) error {
	if chain.IsTesting(network) != key.IsTesting() {
		return fault.Detailf(fault.ErrWrongNetworkForPublicKey, "key: %s", key)
	}
	return nil
}

func checkHeader(header Header, network uint8, root bool) error {
	if network != header.Network {
		return fault.Detailf(fault.ErrNetworkMismatch, "expected: %d  actual: %d", network, header.Network)
	}
	if header.StartEpoch >= header.EndEpoch || header.EndEpoch-header.StartEpoch > MaxEpochRange {
		return fault.Detailf(fault.ErrInvalidEpochRange, "start: %d  end: %d", header.StartEpoch, header.EndEpoch)
	}
	switch {
	case root && nil == header.NotaryKey:
		return fault.ErrMissingNotarySignature
	case !root && nil != header.NotaryKey:
		return fault.Detailf(fault.ErrInvalidIntentStructure, "subintent has a notary")
	case nil != header.NotaryKey:
		return checkKey(header.NotaryKey, network)
	}
	return nil
}

// checkSignatures - verified signer ids in signature order
func checkSignatures(signatures []IntentSignature, hash digest.Digest, network uint8) ([]identifier.LocalId, error) {
	if len(signatures) > MaxSigners {
		return nil, fault.Detailf(fault.ErrTooManySigners, "count: %d", len(signatures))
	}
	signers := make([]identifier.LocalId, 0, len(signatures)+1)
	for i, s := range signatures {
		if nil == s.Signer {
			return nil, fault.Detailf(fault.ErrInvalidSignature, "signature %d: no signer", i)
		}
		if err := checkKey(s.Signer, network); nil != err {
			return nil, err
		}
		for j := 0; j < i; j += 1 {
			if bytes.Equal(signatures[j].Signer.PublicKey, s.Signer.PublicKey) {
				return nil, fault.Detailf(fault.ErrDuplicateSigner, "signer: %s", s.Signer)
			}
		}
		if err := s.Signer.CheckSignature(hash[:], s.Signature); nil != err {
			return nil, fault.Detailf(err, "signer: %s", s.Signer)
		}
		signers = append(signers, s.Signer.SignatureId())
	}
	return signers, nil
}

func addNotary(signers []identifier.LocalId, header Header) []identifier.LocalId {
	if !header.NotaryIsSignatory || nil == header.NotaryKey {
		return signers
	}
	id := header.NotaryKey.SignatureId()
	for _, s := range signers {
		if s == id {
			return signers
		}
	}
	return append(signers, id)
}

func checkNotary(header Header, signature account.Signature, signed digest.Digest) error {
	if 0 == len(signature) {
		return fault.ErrMissingNotarySignature
	}
	if err := header.NotaryKey.CheckSignature(signed[:], signature); nil != err {
		return fault.Detailf(err, "notary: %s", header.NotaryKey)
	}
	return nil
}

// validateIntentStructure - the yield instructions agree with the
// intent's position: a subintent ends by yielding to its parent, the
// root never refers to a parent and children are in range
func validateIntentStructure(m manifest.Manifest, children int, subintent bool) error {
	n := len(m.Instructions)
	for index, instruction := range m.Instructions {
		switch i := instruction.(type) {
		case manifest.YieldToChild:
			if int(i.Child) >= children {
				return fault.Detailf(fault.ErrInvalidIntentStructure, "instruction %d: child %d out of range", index, i.Child)
			}
		case manifest.YieldToParent:
			if !subintent {
				return fault.Detailf(fault.ErrInvalidIntentStructure, "instruction %d: root cannot yield to parent", index)
			}
		case manifest.VerifyParent:
			if !subintent {
				return fault.Detailf(fault.ErrInvalidIntentStructure, "instruction %d: root has no parent", index)
			}
		}
	}
	if subintent {
		if 0 == n {
			return fault.Detailf(fault.ErrInvalidIntentStructure, "empty subintent")
		}
		if _, ok := m.Instructions[n-1].(manifest.YieldToParent); !ok {
			return fault.Detailf(fault.ErrInvalidIntentStructure, "subintent must end with yield to parent")
		}
	}
	return nil
}

func prepareUserV1(tx *UserV1, network uint8) (*Executable, error) {
	intent := tx.Signed.Intent
	if err := checkHeader(intent.Header, network, true); nil != err {
		return nil, err
	}
	if 0 != len(intent.Children) {
		return nil, fault.Detailf(fault.ErrInvalidIntentStructure, "v1 intent cannot have children")
	}
	if err := validateIntentStructure(intent.Manifest, 0, false); nil != err {
		return nil, err
	}

	h, err := tx.Hashes()
	if nil != err {
		return nil, err
	}
	signers, err := checkSignatures(tx.Signed.Signatures, h.Intent, network)
	if nil != err {
		return nil, err
	}
	if err := checkNotary(intent.Header, tx.NotarySignature, h.Signed); nil != err {
		return nil, err
	}

	return &Executable{
		Kind:       UserV1Kind,
		Hash:       h.Ledger,
		IntentHash: h.Intent,
		StartEpoch: intent.Header.StartEpoch,
		EndEpoch:   intent.Header.EndEpoch,
		Intents: []ExecutableIntent{{
			Hash:     h.Intent,
			Manifest: intent.Manifest,
			Signers:  addNotary(signers, intent.Header),
			Parent:   NoParent,
		}},
	}, nil
}

func prepareUserV2(tx *UserV2, network uint8) (*Executable, error) {
	if len(tx.Subintents) > MaxSubintents {
		return nil, fault.Detailf(fault.ErrTooManySubintents, "count: %d", len(tx.Subintents))
	}

	// intent 0 is the root, subintent i is intent i+1
	all := make([]SignedIntent, 0, 1+len(tx.Subintents))
	all = append(all, tx.Root)
	all = append(all, tx.Subintents...)

	start := uint64(0)
	end := ^uint64(0)
	for i, s := range all {
		header := s.Intent.Header
		if err := checkHeader(header, network, 0 == i); nil != err {
			return nil, fault.Detailf(err, "intent: %d", i)
		}
		if header.StartEpoch > start {
			start = header.StartEpoch
		}
		if header.EndEpoch < end {
			end = header.EndEpoch
		}
	}
	if start >= end {
		return nil, fault.Detailf(fault.ErrInvalidEpochRange, "intents share no epoch")
	}

	intents, err := linkIntents(all)
	if nil != err {
		return nil, err
	}
	for i, s := range all {
		if err := validateIntentStructure(s.Intent.Manifest, len(s.Intent.Children), 0 != i); nil != err {
			return nil, fault.Detailf(err, "intent: %d", i)
		}
	}

	h, err := tx.Hashes()
	if nil != err {
		return nil, err
	}
	for i, s := range all {
		hash := h.Intent
		if 0 != i {
			hash = h.Subintents[i-1]
		}
		signers, err := checkSignatures(s.Signatures, hash, network)
		if nil != err {
			return nil, fault.Detailf(err, "intent: %d", i)
		}
		intents[i].Hash = hash
		intents[i].Manifest = s.Intent.Manifest
		intents[i].Signers = addNotary(signers, s.Intent.Header)
	}
	if err := checkNotary(tx.Root.Intent.Header, tx.NotarySignature, h.Signed); nil != err {
		return nil, err
	}

	return &Executable{
		Kind:       UserV2Kind,
		Hash:       h.Ledger,
		IntentHash: h.Intent,
		StartEpoch: start,
		EndEpoch:   end,
		Intents:    intents,
	}, nil
}

// linkIntents - every subintent has exactly one parent and is
// reachable from the root, so the intents form a tree
func linkIntents(all []SignedIntent) ([]ExecutableIntent, error) {
	intents := make([]ExecutableIntent, len(all))
	for i := range intents {
		intents[i].Parent = NoParent
	}
	for i, s := range all {
		for _, c := range s.Intent.Children {
			child := int(c) + 1
			if child >= len(all) {
				return nil, fault.Detailf(fault.ErrInvalidIntentStructure, "intent %d: child %d out of range", i, c)
			}
			if NoParent != intents[child].Parent || child == i {
				return nil, fault.Detailf(fault.ErrInvalidIntentStructure, "subintent %d has more than one parent", c)
			}
			intents[child].Parent = i
			intents[i].Children = append(intents[i].Children, child)
		}
	}

	reached := make([]bool, len(all))
	reached[0] = true
	queue := []int{0}
	for 0 != len(queue) {
		n := queue[0]
		queue = queue[1:]
		for _, c := range intents[n].Children {
			if reached[c] {
				return nil, fault.Detailf(fault.ErrInvalidIntentStructure, "cycle at subintent %d", c-1)
			}
			reached[c] = true
			queue = append(queue, c)
		}
	}
	for i, r := range reached {
		if !r {
			return nil, fault.Detailf(fault.ErrInvalidIntentStructure, "subintent %d is unreachable", i-1)
		}
	}
	return intents, nil
}
