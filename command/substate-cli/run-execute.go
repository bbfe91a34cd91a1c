// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/substated/engine"
	"github.com/bitmark-inc/substated/storage"
)

type executeResult struct {
	File    string          `json:"file"`
	Receipt *engine.Receipt `json:"receipt"`
	Error   string          `json:"error,omitempty"`
}

// runExecute - successes are committed to the scratch store so later
// payloads see them
func runExecute(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	if 0 == c.NArg() {
		return fmt.Errorf("at least one payload file is required")
	}

	var root storage.Database = storage.NewMemoryDatabase()
	if name := c.String("database"); "" != name {
		db, err := storage.OpenLevelDB(name, true)
		if nil != err {
			return err
		}
		defer db.Close()
		root = db
	}
	scratch := storage.NewOverlayDatabase(root)

	executor, err := engine.New(engine.Config{
		Network:       m.network,
		CostUnitLimit: c.Uint64("cost-unit-limit"),
	})
	if nil != err {
		return err
	}

	results := make([]executeResult, 0, c.NArg())
	for _, filename := range c.Args() {
		record, err := readPayload(filename)
		if nil != err {
			return err
		}
		r := executor.ExecutePayload(scratch, record)
		result := executeResult{
			File:    filename,
			Receipt: r,
		}
		if r.IsSuccess() {
			if err := engine.Commit(scratch, r); nil != err {
				return err
			}
		} else {
			result.Error = r.Err().Error()
		}
		if m.verbose {
			fmt.Fprintf(m.e, "%s: %s  cost: %d\n", filename, r.Status, r.CostConsumed)
		}
		results = append(results, result)
	}
	return printJson(m.w, results)
}
