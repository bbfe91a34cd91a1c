// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package resource implements resource managers and the containers that
// hold resources: buckets, vaults and proofs
//
// every blueprint here lives in the resource package address; a bucket,
// vault or proof has its resource manager as outer object, so the
// resource of a container is always known from its type info
//
// container state is two fields: liquid (withdrawable) and locked
// (backing proofs). For fungible resources the locked field maps each
// locked amount to a count and the locked quantity is the largest key,
// so overlapping proofs share the same underlying units. For
// non-fungibles the locked field maps each id to a count.
package resource
