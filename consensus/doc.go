// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package consensus holds the consensus manager component: the ledger
// clock of epoch, round and proposer timestamp
//
// the clock is advanced only by round update transactions, which run
// with the system execution proof in their root auth zone; intents are
// valid only for the epochs named in their header
package consensus
