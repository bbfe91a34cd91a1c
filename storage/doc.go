// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - substate store interface and its backends
//
// state is addressed as (node key, partition number, sort key) and
// read through the Database interface; updates are applied as a
// single DatabaseUpdates batch through Committable
//
// backends:
//   MemoryDatabase  - sorted in-memory maps, used by tests and tools
//   OverlayDatabase - pending updates layered over any Database
//   LevelDB         - persistent, goleveldb with a read cache
package storage
