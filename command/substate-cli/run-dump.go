// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/storage"
	"github.com/bitmark-inc/substated/value"
)

type dumpEntry struct {
	SortKey string `json:"sortKey"`
	Value   string `json:"value"`
	Decoded string `json:"decoded,omitempty"`
}

func runDump(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	name := c.String("database")
	if "" == name {
		return fmt.Errorf("database directory is required")
	}
	node, err := identifier.ParseNodeId(c.String("node"))
	if nil != err {
		return err
	}
	partition := c.Int("partition")
	if partition < 0 || partition > 255 {
		return fmt.Errorf("partition: %d out of range", partition)
	}
	count := c.Int("count")
	if count <= 0 {
		return fmt.Errorf("count must be positive")
	}

	db, err := storage.OpenLevelDB(name, true)
	if nil != err {
		return err
	}
	defer db.Close()

	entries, err := dumpPartition(db, storage.NewPartitionKey(node, uint8(partition)), count, m.verbose)
	if nil != err {
		return err
	}
	return printJson(m.w, entries)
}

// dumpPartition - raw entries; verbose adds the decoded value
func dumpPartition(db storage.Database, partition storage.PartitionKey, count int, verbose bool) ([]dumpEntry, error) {
	it := db.List(partition, nil)
	defer it.Release()

	entries := make([]dumpEntry, 0, count)
	for len(entries) < count && it.Next() {
		entry := dumpEntry{
			SortKey: hex.EncodeToString(it.Key()),
			Value:   hex.EncodeToString(it.Value()),
		}
		if verbose {
			if v, err := value.Decode(it.Value()); nil == err {
				entry.Decoded = spew.Sprintf("%#v", v)
			} else {
				entry.Decoded = err.Error()
			}
		}
		entries = append(entries, entry)
	}
	return entries, it.Error()
}
