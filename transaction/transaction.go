// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

import (
	"github.com/bitmark-inc/substated/account"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/manifest"
	"github.com/bitmark-inc/substated/storage"
)

// Kind - ledger transaction type code
type Kind uint8

// enumerate the ledger transaction kinds
// this is the byte following the prefix of "Packed"
const (
	GenesisKind       = Kind(iota) // bootstrap: flash or system
	UserV1Kind        = Kind(iota) // single notarized intent
	RoundUpdateV1Kind = Kind(iota) // consensus clock
	FlashV1Kind       = Kind(iota) // direct state updates
	UserV2Kind        = Kind(iota) // intent with subintents

	// this item must be last
	invalidKind = Kind(iota)
)

// String - for logging
func (kind Kind) String() string {
	switch kind {
	case GenesisKind:
		return "Genesis"
	case UserV1Kind:
		return "UserV1"
	case RoundUpdateV1Kind:
		return "RoundUpdateV1"
	case FlashV1Kind:
		return "FlashV1"
	case UserV2Kind:
		return "UserV2"
	default:
		return "*Unknown*"
	}
}

// Prefix - first byte of every ledger transaction payload
const Prefix byte = 0x54

// Packed - a ledger transaction payload
type Packed []byte

// Transaction - any ledger transaction
type Transaction interface {
	Kind() Kind
}

// limits
const (
	MaxSigners       = 16
	MaxSubintents    = 32
	MaxEpochRange    = 100
	maxFlashSubstate = 1 << 20
)

// Header - the validity window and notary of an intent
//
// EndEpoch is exclusive
type Header struct {
	Network           uint8            `json:"network"`
	StartEpoch        uint64           `json:"startEpoch"`
	EndEpoch          uint64           `json:"endEpoch"`
	Nonce             uint64           `json:"nonce"`
	NotaryKey         *account.Account `json:"notaryKey"`
	NotaryIsSignatory bool             `json:"notaryIsSignatory"`
}

// Intent - a manifest under a header
//
// Children index the subintents of the enclosing transaction this
// intent may yield to
type Intent struct {
	Header   Header            `json:"header"`
	Manifest manifest.Manifest `json:"-"`
	Children []uint32          `json:"children,omitempty"`
}

// IntentSignature - a signer's signature over an intent hash
type IntentSignature struct {
	Signer    *account.Account  `json:"signer"`
	Signature account.Signature `json:"signature"`
}

// SignedIntent - an intent and its signatures
type SignedIntent struct {
	Intent     Intent            `json:"intent"`
	Signatures []IntentSignature `json:"signatures"`
}

// UserV1 - a notarized single intent
type UserV1 struct {
	Signed          SignedIntent      `json:"signed"`
	NotarySignature account.Signature `json:"notarySignature"`
}

// UserV2 - a notarized root intent with its subintents
//
// every subintent carries the signatures of its own signers
type UserV2 struct {
	Root            SignedIntent      `json:"root"`
	Subintents      []SignedIntent    `json:"subintents"`
	NotarySignature account.Signature `json:"notarySignature"`
}

// RoundUpdateV1 - advance the consensus clock
type RoundUpdateV1 struct {
	Round     uint64 `json:"round"`
	Timestamp int64  `json:"timestamp"`
}

// FlashSubstate - one substate written or (nil value) removed
type FlashSubstate struct {
	Node      identifier.NodeId `json:"node"`
	Partition uint8             `json:"partition"`
	SortKey   storage.SortKey   `json:"sortKey"`
	Value     []byte            `json:"value"`
}

// FlashV1 - state updates applied without execution
type FlashV1 struct {
	Name      string          `json:"name"`
	Substates []FlashSubstate `json:"substates"`
}

// GenesisSystem - bootstrap the ledger clock and run an initial manifest
type GenesisSystem struct {
	Network        uint8             `json:"network"`
	Epoch          uint64            `json:"epoch"`
	Timestamp      int64             `json:"timestamp"`
	RoundsPerEpoch uint64            `json:"roundsPerEpoch"`
	Manifest       manifest.Manifest `json:"-"`
}

// Genesis - exactly one of Flash or System is set
type Genesis struct {
	Flash  *FlashV1       `json:"flash,omitempty"`
	System *GenesisSystem `json:"system,omitempty"`
}

// Kind - type codes
func (UserV1) Kind() Kind        { return UserV1Kind }
func (UserV2) Kind() Kind        { return UserV2Kind }
func (RoundUpdateV1) Kind() Kind { return RoundUpdateV1Kind }
func (FlashV1) Kind() Kind       { return FlashV1Kind }
func (Genesis) Kind() Kind       { return GenesisKind }
