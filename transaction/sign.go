// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

import (
	"github.com/bitmark-inc/substated/account"
	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/fault"
)

func sign(signed *SignedIntent, hash digest.Digest, keys []*account.PrivateKey) {
	for _, key := range keys {
		signed.Signatures = append(signed.Signatures, IntentSignature{
			Signer:    key.Account(),
			Signature: key.Sign(hash[:]),
		})
	}
}

// Sign - append intent signatures
//
// must precede Notarize
func (tx *UserV1) Sign(keys ...*account.PrivateKey) error {
	h, err := tx.Hashes()
	if nil != err {
		return err
	}
	sign(&tx.Signed, h.Intent, keys)
	return nil
}

// Notarize - sign the signed intent with the header's notary key
func (tx *UserV1) Notarize(notary *account.PrivateKey) error {
	h, err := tx.Hashes()
	if nil != err {
		return err
	}
	tx.NotarySignature = notary.Sign(h.Signed[:])
	return nil
}

// SignRoot - append signatures over the transaction intent
func (tx *UserV2) SignRoot(keys ...*account.PrivateKey) error {
	h, err := tx.Hashes()
	if nil != err {
		return err
	}
	sign(&tx.Root, h.Intent, keys)
	return nil
}

// SignSubintent - append signatures over one subintent
func (tx *UserV2) SignSubintent(index int, keys ...*account.PrivateKey) error {
	if index < 0 || index >= len(tx.Subintents) {
		return fault.Detailf(fault.ErrInvalidIntentStructure, "no subintent: %d", index)
	}
	h, err := tx.Hashes()
	if nil != err {
		return err
	}
	sign(&tx.Subintents[index], h.Subintents[index], keys)
	return nil
}

// Notarize - sign the signed transaction intent with the root notary key
func (tx *UserV2) Notarize(notary *account.PrivateKey) error {
	h, err := tx.Hashes()
	if nil != err {
		return err
	}
	tx.NotarySignature = notary.Sign(h.Signed[:])
	return nil
}
