// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package engine executes prepared transactions against a substate store
//
// each intent of a transaction runs in its own kernel stack; the
// executor resumes them in turn as they yield to each other and
// collects the resulting state updates into a receipt, which is only
// committed when the whole transaction succeeded
package engine
