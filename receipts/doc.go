// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package receipts keeps an sqlite journal of executed transactions
//
// every receipt is appended with a sequence number whether or not it
// was committed, so rejected and failed payloads can be inspected later
package receipts
