// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches
//
// The classes follow the execution taxonomy:
//
//   DecodeError      - malformed payloads, fatal to the parse step
//   KernelError      - protocol faults, always abort the transaction
//   ApplicationError - matchable blueprint level errors
//   CostingError     - fee reserve exhaustion, possibly injected
//
// plus the general Exists/Invalid/Length/NotFound/Process/Record
// classes used by the storage and command layers.
package fault
