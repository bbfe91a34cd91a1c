// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transaction - ledger transaction payloads
//
// A payload is the prefix byte 0x54, a kind byte and the manifest
// encoding of the body. User transactions carry one notarized intent
// (UserV1) or a root intent with subintents (UserV2); the system kinds
// advance the consensus clock, flash state directly or bootstrap the
// ledger.
//
// Prepare decodes a payload, computes its content hashes, checks the
// network, epoch range, signatures and subintent tree and returns an
// Executable for the engine.
package transaction
