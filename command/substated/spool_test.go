// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/substated/background"
	"github.com/bitmark-inc/substated/chain"
	"github.com/bitmark-inc/substated/engine"
	"github.com/bitmark-inc/substated/manifest"
	"github.com/bitmark-inc/substated/receipts"
	"github.com/bitmark-inc/substated/storage"
	"github.com/bitmark-inc/substated/transaction"
)

func newTestSpool(t *testing.T) (*spool, *storage.MemoryDatabase) {
	directory := t.TempDir()
	config := &SpoolType{
		Inbox:     filepath.Join(directory, "inbox"),
		Done:      filepath.Join(directory, "done"),
		Failed:    filepath.Join(directory, "failed"),
		RateLimit: 1000,
		RateBurst: 10,
	}
	for _, d := range []string{config.Inbox, config.Done, config.Failed} {
		require.Nil(t, os.MkdirAll(d, 0700), "mkdir error")
	}

	executor, err := engine.New(engine.Config{Network: chain.TestingNetwork})
	require.Nil(t, err, "executor error")

	journal, err := receipts.Open(filepath.Join(directory, "receipts.sqlite3"))
	require.Nil(t, err, "journal error")
	t.Cleanup(func() { journal.Close() })

	db := storage.NewMemoryDatabase()
	return newSpool(config, executor, db, journal), db
}

func genesisPayload(t *testing.T) []byte {
	return genesisFor(t, chain.TestingNetwork)
}

func genesisFor(t *testing.T, network uint8) []byte {
	record, err := transaction.Pack(&transaction.Genesis{
		System: &transaction.GenesisSystem{
			Network:        network,
			Epoch:          1,
			Timestamp:      1000,
			RoundsPerEpoch: 10,
			Manifest:       manifest.NewBuilder().Build(),
		},
	})
	require.Nil(t, err, "pack error")
	return record
}

func drop(t *testing.T, s *spool, name string, data []byte) {
	temp := filepath.Join(s.inbox, name+tempSuffix)
	require.Nil(t, ioutil.WriteFile(temp, data, 0600), "write error")
	require.Nil(t, os.Rename(temp, filepath.Join(s.inbox, name)), "rename error")
}

func readReceipt(t *testing.T, filename string) *engine.Receipt {
	text, err := ioutil.ReadFile(filename)
	require.Nil(t, err, "receipt read error")
	r := &engine.Receipt{}
	require.Nil(t, json.Unmarshal(text, r), "receipt decode error")
	return r
}

func TestSpoolCommits(t *testing.T) {
	s, _ := newTestSpool(t)
	drop(t, s, "0001-genesis", genesisPayload(t))

	s.drain(nil)

	_, err := os.Stat(filepath.Join(s.inbox, "0001-genesis"))
	assert.True(t, os.IsNotExist(err), "payload left in inbox")
	assert.FileExists(t, filepath.Join(s.done, "0001-genesis"), "payload not done")

	r := readReceipt(t, filepath.Join(s.done, "0001-genesis"+receiptSuffix))
	assert.Equal(t, engine.Succeeded, r.Status, "wrong status")
	assert.Equal(t, transaction.GenesisKind, r.Kind, "wrong kind")

	entry, err := s.journal.Get(r.Hash)
	require.Nil(t, err, "journal error")
	assert.True(t, entry.Committed, "not committed")
	assert.Equal(t, "0001-genesis", entry.Source, "wrong source")
}

func TestSpoolFailsBadPayload(t *testing.T) {
	s, _ := newTestSpool(t)
	drop(t, s, "0001-genesis", genesisPayload(t))
	drop(t, s, "0002-network", genesisFor(t, chain.LocalNetwork))
	drop(t, s, "0003-garbage", []byte{0x01, 0x02, 0x03})

	s.drain(nil)

	assert.FileExists(t, filepath.Join(s.done, "0001-genesis"), "genesis not done")
	assert.FileExists(t, filepath.Join(s.failed, "0002-network"), "wrong network not failed")
	assert.FileExists(t, filepath.Join(s.failed, "0003-garbage"), "garbage not failed")

	r := readReceipt(t, filepath.Join(s.failed, "0003-garbage"+receiptSuffix))
	assert.Equal(t, engine.Rejected, r.Status, "wrong status")

	counts, err := s.journal.Count()
	require.Nil(t, err, "count error")
	assert.Equal(t, uint64(1), counts[engine.Succeeded], "wrong succeeded count")
	assert.Equal(t, uint64(2), counts[engine.Rejected], "wrong rejected count")
}

func TestSpoolIgnoresTemporary(t *testing.T) {
	s, _ := newTestSpool(t)
	require.Nil(t, ioutil.WriteFile(filepath.Join(s.inbox, "partial"+tempSuffix), []byte{1}, 0600), "write error")
	require.Nil(t, ioutil.WriteFile(filepath.Join(s.inbox, ".hidden"), []byte{1}, 0600), "write error")

	assert.Equal(t, 0, len(s.pending()), "temporary file is pending")
}

func TestSpoolWatchesInbox(t *testing.T) {
	s, _ := newTestSpool(t)

	bg := background.Start(background.Processes{s}, nil)
	defer bg.Stop()

	drop(t, s, "0001-genesis", genesisPayload(t))

	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(s.done, "0001-genesis"+receiptSuffix))
		return nil == err
	}, 5*time.Second, 20*time.Millisecond, "payload was not processed")
}
