// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package digest

import (
	"hash"

	"golang.org/x/crypto/blake2b"
)

// Accumulator - folds a payload prefix, its discriminator and a
// sequence of canonical sub-hashes into a single content hash
type Accumulator struct {
	h hash.Hash
}

// NewAccumulator - seed an accumulator with the payload prefix and
// the discriminator bytes identifying the payload kind
func NewAccumulator(prefix byte, discriminators ...byte) *Accumulator {
	h, err := blake2b.New256(nil)
	if nil != err {
		// only fails for an oversized key
		panic(err)
	}
	h.Write([]byte{prefix})
	h.Write(discriminators)
	return &Accumulator{h: h}
}

// Digest - fold a sub-hash
func (a *Accumulator) Digest(d Digest) *Accumulator {
	a.h.Write(d[:])
	return a
}

// Bytes - fold raw bytes
func (a *Accumulator) Bytes(b []byte) *Accumulator {
	a.h.Write(b)
	return a
}

// Sum - the accumulated hash
func (a *Accumulator) Sum() Digest {
	var d Digest
	copy(d[:], a.h.Sum(nil))
	return d
}
