// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/substated/chain"
	"github.com/bitmark-inc/substated/engine"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/storage"
)

// run - the command line with captured output
func run(t *testing.T, args ...string) (string, error) {
	var w, e bytes.Buffer
	app := newApp(&w, &e)
	err := app.Run(append([]string{"substate-cli", "--network", "testing"}, args...))
	return w.String(), err
}

func genesisFile(t *testing.T) string {
	filename := filepath.Join(t.TempDir(), "genesis.payload")
	_, err := run(t, "genesis", "--output", filename, "--epoch", "5", "--timestamp", "1000", "--rounds", "10")
	require.Nil(t, err, "genesis error")
	return filename
}

func TestHash(t *testing.T) {
	filename := genesisFile(t)

	out, err := run(t, "hash", filename)
	require.Nil(t, err, "hash error")

	var result hashResult
	require.Nil(t, json.Unmarshal([]byte(out), &result), "json error")
	assert.Equal(t, "Genesis", result.Kind, "wrong kind")
	assert.False(t, result.Hashes.Ledger.IsZero(), "no ledger hash")
	assert.True(t, result.Hashes.Intent.IsZero(), "system payload has an intent hash")
}

func TestDecodeValidity(t *testing.T) {
	filename := genesisFile(t)

	out, err := run(t, "decode", filename)
	require.Nil(t, err, "decode error")
	var result map[string]interface{}
	require.Nil(t, json.Unmarshal([]byte(out), &result), "json error")
	assert.Equal(t, true, result["valid"], "testing genesis invalid")

	var w, e bytes.Buffer
	err = newApp(&w, &e).Run([]string{"substate-cli", "--network", "local", "decode", filename})
	require.Nil(t, err, "decode error")
	require.Nil(t, json.Unmarshal(w.Bytes(), &result), "json error")
	assert.Equal(t, false, result["valid"], "genesis valid on another network")
}

func TestExecuteSequence(t *testing.T) {
	genesis := genesisFile(t)
	round := filepath.Join(t.TempDir(), "round.payload")
	_, err := run(t, "round", "--output", round, "--round", "1", "--timestamp", "2000")
	require.Nil(t, err, "round error")

	out, err := run(t, "execute", genesis, round, genesis)
	require.Nil(t, err, "execute error")

	var results []struct {
		File    string         `json:"file"`
		Receipt engine.Receipt `json:"receipt"`
		Error   string         `json:"error"`
	}
	require.Nil(t, json.Unmarshal([]byte(out), &results), "json error")
	require.Equal(t, 3, len(results), "wrong result count")
	assert.Equal(t, engine.Succeeded, results[0].Receipt.Status, "genesis failed: %s", results[0].Error)
	assert.Equal(t, engine.Succeeded, results[1].Receipt.Status, "round failed: %s", results[1].Error)
	assert.Equal(t, genesis, results[2].File, "wrong file")
}

func TestArgumentErrors(t *testing.T) {
	_, err := run(t, "hash")
	assert.NotNil(t, err, "missing file accepted")

	_, err = run(t, "execute")
	assert.NotNil(t, err, "no payloads accepted")

	_, err = run(t, "genesis")
	assert.NotNil(t, err, "missing output accepted")

	_, err = run(t, "round", "--output", filepath.Join(t.TempDir(), "r"))
	assert.NotNil(t, err, "missing round accepted")

	var w, e bytes.Buffer
	err = newApp(&w, &e).Run([]string{"substate-cli", "--network", "elsewhere", "hash", "x"})
	assert.NotNil(t, err, "unknown network accepted")
}

func TestDumpPartition(t *testing.T) {
	db := storage.NewMemoryDatabase()
	executor, err := engine.New(engine.Config{Network: chain.TestingNetwork})
	require.Nil(t, err, "executor error")

	record, err := readPayload(genesisFile(t))
	require.Nil(t, err, "read error")
	r := executor.ExecutePayload(db, record)
	require.True(t, r.IsSuccess(), "genesis: %v", r.Err())
	require.Nil(t, engine.Commit(db, r), "commit error")

	partition := storage.NewPartitionKey(identifier.ConsensusManager, kernel.MainPartition)
	entries, err := dumpPartition(db, partition, 100, true)
	require.Nil(t, err, "dump error")
	require.NotEqual(t, 0, len(entries), "no consensus substates")
	for _, entry := range entries {
		assert.NotEqual(t, "", entry.Decoded, "value not decoded")
	}

	entries, err = dumpPartition(db, partition, 1, false)
	require.Nil(t, err, "dump error")
	assert.Equal(t, 1, len(entries), "count not applied")
	assert.Equal(t, "", entries[0].Decoded, "decoded without verbose")
}
