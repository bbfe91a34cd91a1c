// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"bytes"
	"io"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/substated/fault"
)

// PrivateKey - ed25519 signing key
type PrivateKey struct {
	Test       bool
	PrivateKey ed25519.PrivateKey
}

// seed parameters
var (
	seedHeader = []byte{0x5a, 0xfe, 0x01}
	seedNonce  = [24]byte{}
	seedIndex  = [16]byte{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03, 0xe7,
	}
)

const (
	seedPrefixLength = 1
	seedKeyLength    = 32
)

// NewPrivateKey - a fresh key from a random source
func NewPrivateKey(test bool, random io.Reader) (*PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(random)
	if nil != err {
		return nil, err
	}
	return &PrivateKey{Test: test, PrivateKey: priv}, nil
}

// PrivateKeyFromBase58Seed - derive the signing key from a seed
//
// seed: header(3) prefix(1) secret(32) checksum(4); the prefix is 0x01
// for test networks
func PrivateKeyFromBase58Seed(seedBase58Encoded string) (*PrivateKey, error) {
	seed, err := base58.Decode(seedBase58Encoded)
	if nil != err || 0 == len(seed) {
		return nil, fault.ErrCannotDecodePrivateKey
	}
	if len(seedHeader)+seedPrefixLength+seedKeyLength+checksumLength != len(seed) {
		return nil, fault.ErrInvalidSeedLength
	}
	if !bytes.Equal(seedHeader, seed[:len(seedHeader)]) {
		return nil, fault.ErrInvalidSeedHeader
	}

	checksumStart := len(seed) - checksumLength
	checksum := sha3.Sum256(seed[:checksumStart])
	if !bytes.Equal(checksum[:checksumLength], seed[checksumStart:]) {
		return nil, fault.ErrChecksumMismatch
	}

	var secretKey [seedKeyLength]byte
	copy(secretKey[:], seed[len(seedHeader)+seedPrefixLength:checksumStart])
	isTest := 0x01 == seed[len(seedHeader)]

	encrypted := secretbox.Seal([]byte{}, seedIndex[:], &seedNonce, &secretKey)
	return NewPrivateKey(isTest, bytes.NewBuffer(encrypted))
}

// PrivateKeyFromBase58 - decode the checksummed text form
func PrivateKeyFromBase58(privateKeyBase58Encoded string) (*PrivateKey, error) {
	decoded, err := base58.Decode(privateKeyBase58Encoded)
	if nil != err || len(decoded) <= checksumLength {
		return nil, fault.ErrCannotDecodePrivateKey
	}
	checksumStart := len(decoded) - checksumLength
	checksum := sha3.Sum256(decoded[:checksumStart])
	if !bytes.Equal(checksum[:checksumLength], decoded[checksumStart:]) {
		return nil, fault.ErrChecksumMismatch
	}
	return PrivateKeyFromBytes(decoded[:checksumStart])
}

// PrivateKeyFromBytes - decode the key variant and the private key
func PrivateKeyFromBytes(privateKeyBytes []byte) (*PrivateKey, error) {
	if 0 == len(privateKeyBytes) {
		return nil, fault.ErrNotPrivateKey
	}
	keyVariant := privateKeyBytes[0]
	if keyVariant&publicKeyCode == publicKeyCode {
		return nil, fault.ErrNotPrivateKey
	}
	if ED25519 != keyVariant>>algorithmShift {
		return nil, fault.ErrInvalidKeyType
	}
	if ed25519.PrivateKeySize != len(privateKeyBytes)-1 {
		return nil, fault.ErrInvalidKeyLength
	}
	privateKey := &PrivateKey{
		Test:       0 != keyVariant&testKeyCode,
		PrivateKey: append(ed25519.PrivateKey{}, privateKeyBytes[1:]...),
	}
	return privateKey, nil
}

// Account - the matching public key
func (privateKey *PrivateKey) Account() *Account {
	return &Account{
		Test:      privateKey.Test,
		PublicKey: privateKey.PrivateKey.Public().(ed25519.PublicKey),
	}
}

// Sign - signature of a message
func (privateKey *PrivateKey) Sign(message []byte) Signature {
	return ed25519.Sign(privateKey.PrivateKey, message)
}

// Bytes - key variant followed by the private key
func (privateKey *PrivateKey) Bytes() []byte {
	keyVariant := byte(ED25519 << algorithmShift)
	if privateKey.Test {
		keyVariant |= testKeyCode
	}
	return append([]byte{keyVariant}, privateKey.PrivateKey...)
}

// String - base58 encoding of the key with a checksum
func (privateKey *PrivateKey) String() string {
	buffer := privateKey.Bytes()
	checksum := sha3.Sum256(buffer)
	buffer = append(buffer, checksum[:checksumLength]...)
	return base58.Encode(buffer)
}

// MarshalText - base58 JSON form
func (privateKey PrivateKey) MarshalText() ([]byte, error) {
	return []byte(privateKey.String()), nil
}

// UnmarshalText - from the base58 JSON form
func (privateKey *PrivateKey) UnmarshalText(s []byte) error {
	p, err := PrivateKeyFromBase58(string(s))
	if nil != err {
		return err
	}
	*privateKey = *p
	return nil
}
