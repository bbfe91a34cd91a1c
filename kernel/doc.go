// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package kernel - the node, substate and call frame core
//
// Nodes live either on the heap (transient, dropped by the end of the
// transaction) or in the track (global nodes and everything they own,
// backed by a storage.Database).  Every invocation runs in its own call
// frame which records the nodes it owns and the nodes it may reference.
// Substates are accessed through lock handles; a mutable handle excludes
// every other handle on the same address.
//
// Execution is single threaded.  A kernel is created per transaction and
// discarded afterwards; the only output is the set of updates collected by
// the track.
package kernel
