// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/storage"
	"github.com/bitmark-inc/substated/transaction"
	"github.com/bitmark-inc/substated/value"
)

// committed intents and subintents are keyed by their hash, the value
// is the ledger hash of the transaction that carried them
var trackerPartition = storage.NewPartitionKey(identifier.TransactionTracker, kernel.MainPartition)

func committed(db storage.Database, intent digest.Digest) bool {
	_, found := db.Get(trackerPartition, intent[:])
	return found
}

// intentHashes - the transaction intent followed by any subintents
func intentHashes(e *transaction.Executable) []digest.Digest {
	hashes := []digest.Digest{e.IntentHash}
	for _, intent := range e.Intents {
		if transaction.NoParent != intent.Parent {
			hashes = append(hashes, intent.Hash)
		}
	}
	return hashes
}

func track(updates *storage.DatabaseUpdates, e *transaction.Executable) {
	ledger := value.MustEncode(value.Bytes(e.Hash[:]))
	for _, h := range intentHashes(e) {
		updates.Set(trackerPartition, append(storage.SortKey{}, h[:]...), ledger)
	}
}

// CommittedBy - ledger hash of the transaction that committed an intent
func CommittedBy(db storage.Database, intent digest.Digest) (digest.Digest, bool, error) {
	data, found := db.Get(trackerPartition, intent[:])
	if !found {
		return digest.Digest{}, false, nil
	}
	v, err := value.Decode(data)
	if nil != err {
		return digest.Digest{}, false, err
	}
	b, err := value.AsBytes(v)
	if nil != err {
		return digest.Digest{}, false, err
	}
	var d digest.Digest
	if err := digest.FromBytes(&d, b); nil != err {
		return digest.Digest{}, false, err
	}
	return d, true, nil
}
