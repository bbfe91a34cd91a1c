// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfiguration(t *testing.T, text string) string {
	name := filepath.Join(t.TempDir(), "substated.conf")
	require.Nil(t, ioutil.WriteFile(name, []byte(text), 0600), "write error")
	return name
}

func TestConfigurationDefaults(t *testing.T) {
	name := writeConfiguration(t, `
return {
    data_directory = ".",
    chain = network,
    execution = {
        cost_unit_limit = 5000000,
    },
    blueprints = {
        {
            package = "pkg",
            name = "Counter",
            file = "counter.wasm",
            functions = { "new" },
            methods = { "increment" },
        },
    },
}
`)
	directory := filepath.Dir(name)

	options, err := getConfiguration(name, map[string]string{"network": "Testing"})
	require.Nil(t, err, "configuration error")

	assert.Equal(t, "testing", options.Chain, "wrong chain")
	assert.Equal(t, filepath.Join(directory, "data", "testing.leveldb"), options.Database.Name, "wrong database")
	assert.Equal(t, filepath.Join(directory, "data", defaultReceiptsDatabase), options.Database.Receipts, "wrong receipts")
	assert.Equal(t, filepath.Join(directory, "spool", "inbox"), options.Spool.Inbox, "wrong inbox")
	assert.DirExists(t, options.Spool.Done, "done not created")
	assert.DirExists(t, options.Spool.Failed, "failed not created")
	assert.Equal(t, uint64(5000000), options.Execution.CostUnitLimit, "wrong cost limit")
	assert.Equal(t, defaultRateBurst, options.Spool.RateBurst, "wrong burst")

	require.Equal(t, 1, len(options.Blueprints), "wrong blueprint count")
	assert.Equal(t, filepath.Join(directory, "counter.wasm"), options.Blueprints[0].File, "wrong blueprint file")
	assert.Equal(t, []string{"increment"}, options.Blueprints[0].Methods, "wrong methods")
}

func TestConfigurationErrors(t *testing.T) {
	tests := []string{
		`return { data_directory = ".", chain = "nowhere" }`,
		`return { data_directory = "" }`,
		`return { data_directory = ".", database = { name = "sub/dir.leveldb" } }`,
		`return { data_directory = ".", spool = { rate_limit = 0 } }`,
	}
	for i, text := range tests {
		_, err := getConfiguration(writeConfiguration(t, text), nil)
		assert.NotNil(t, err, "%d: configuration accepted", i)
	}
}

func TestParseDefines(t *testing.T) {
	v, err := parseDefines([]string{"a=1", "b=x=y", "c="})
	require.Nil(t, err, "parse error")
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y", "c": ""}, v, "wrong variables")

	_, err = parseDefines([]string{"=1"})
	assert.NotNil(t, err, "empty name accepted")
}
