// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

import (
	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/value"
)

// hash discriminators following the prefix byte
const (
	hashIntent            byte = 0x01
	hashSubintent         byte = 0x02
	hashTransactionIntent byte = 0x03
	hashSignedIntent      byte = 0x04
	hashNotarized         byte = 0x05
	hashLedger            byte = 0x06
)

// Hashes - the content hashes of a transaction
//
// Intent is zero for the system kinds, which are never tracked
type Hashes struct {
	Intent     digest.Digest   `json:"intent"`
	Subintents []digest.Digest `json:"subintents,omitempty"`
	Signed     digest.Digest   `json:"signed"`
	Notarized  digest.Digest   `json:"notarized"`
	Ledger     digest.Digest   `json:"ledger"`
}

func valueDigest(v value.Value) (digest.Digest, error) {
	encoded, err := value.EncodeManifest(v)
	if nil != err {
		return digest.Digest{}, err
	}
	return digest.NewDigest(encoded), nil
}

// intentHash - header, manifest and children folded under a discriminator
func intentHash(intent Intent, discriminator byte) (digest.Digest, error) {
	header, err := valueDigest(intent.Header.value())
	if nil != err {
		return digest.Digest{}, err
	}
	m, err := valueDigest(intent.Manifest.Value())
	if nil != err {
		return digest.Digest{}, err
	}
	children, err := valueDigest(childrenValue(intent.Children))
	if nil != err {
		return digest.Digest{}, err
	}
	return digest.NewAccumulator(Prefix, discriminator).Digest(header).Digest(m).Digest(children).Sum(), nil
}

func signaturesDigest(signatures []IntentSignature) (digest.Digest, error) {
	return valueDigest(signaturesValue(signatures))
}

func ledgerHash(kind Kind, payload digest.Digest) digest.Digest {
	return digest.NewAccumulator(Prefix, hashLedger, byte(kind)).Digest(payload).Sum()
}

// Hashes - of a single intent transaction
//
// signers sign Intent and the notary signs Signed
func (tx *UserV1) Hashes() (Hashes, error) {
	intent, err := intentHash(tx.Signed.Intent, hashIntent)
	if nil != err {
		return Hashes{}, err
	}
	signatures, err := signaturesDigest(tx.Signed.Signatures)
	if nil != err {
		return Hashes{}, err
	}
	signed := digest.NewAccumulator(Prefix, hashSignedIntent).Digest(intent).Digest(signatures).Sum()
	notarized := digest.NewAccumulator(Prefix, hashNotarized).Digest(signed).Bytes(tx.NotarySignature).Sum()
	return Hashes{
		Intent:    intent,
		Signed:    signed,
		Notarized: notarized,
		Ledger:    ledgerHash(UserV1Kind, notarized),
	}, nil
}

// Hashes - of a transaction with subintents
//
// the transaction intent covers the root and every subintent; root
// signers sign it, subintent signers sign their own subintent hash
func (tx *UserV2) Hashes() (Hashes, error) {
	root, err := intentHash(tx.Root.Intent, hashIntent)
	if nil != err {
		return Hashes{}, err
	}
	h := Hashes{}
	acc := digest.NewAccumulator(Prefix, hashTransactionIntent).Digest(root)
	for _, s := range tx.Subintents {
		sub, err := intentHash(s.Intent, hashSubintent)
		if nil != err {
			return Hashes{}, err
		}
		h.Subintents = append(h.Subintents, sub)
		acc.Digest(sub)
	}
	h.Intent = acc.Sum()

	signed := digest.NewAccumulator(Prefix, hashSignedIntent).Digest(h.Intent)
	rootSignatures, err := signaturesDigest(tx.Root.Signatures)
	if nil != err {
		return Hashes{}, err
	}
	signed.Digest(rootSignatures)
	for _, s := range tx.Subintents {
		d, err := signaturesDigest(s.Signatures)
		if nil != err {
			return Hashes{}, err
		}
		signed.Digest(d)
	}
	h.Signed = signed.Sum()
	h.Notarized = digest.NewAccumulator(Prefix, hashNotarized).Digest(h.Signed).Bytes(tx.NotarySignature).Sum()
	h.Ledger = ledgerHash(UserV2Kind, h.Notarized)
	return h, nil
}

// bodyHashes - the system kinds have only a ledger hash
func bodyHashes(kind Kind, body value.Value) (Hashes, error) {
	d, err := valueDigest(body)
	if nil != err {
		return Hashes{}, err
	}
	return Hashes{Ledger: ledgerHash(kind, d)}, nil
}

// HashesOf - of a transaction of any kind
func HashesOf(tx Transaction) (Hashes, error) {
	switch tx := tx.(type) {
	case *UserV1:
		return tx.Hashes()
	case UserV1:
		return tx.Hashes()
	case *UserV2:
		return tx.Hashes()
	case UserV2:
		return tx.Hashes()
	}
	body, err := toValue(tx)
	if nil != err {
		return Hashes{}, err
	}
	return bodyHashes(tx.Kind(), body)
}
