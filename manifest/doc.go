// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package manifest - the instruction set of a transaction intent
//
// an instruction encodes as an enum whose discriminator is its opcode
// and whose fields are its operands, inside a manifest payload; so
// bucket, proof, reservation and named address ids appear as the
// manifest only value kinds and are resolved during execution
//
// ids are numbered per kind in the order instructions produce them
package manifest
