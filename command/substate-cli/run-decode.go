// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/substated/transaction"
)

type decodeResult struct {
	Kind        string                  `json:"kind"`
	Size        int                     `json:"size"`
	Transaction transaction.Transaction `json:"transaction"`
	Valid       bool                    `json:"valid"`
	Error       string                  `json:"error,omitempty"`
}

// runDecode - JSON summary, or the full structure when verbose
func runDecode(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	filename, err := singleArgument(c)
	if nil != err {
		return err
	}
	record, err := readPayload(filename)
	if nil != err {
		return err
	}
	tx, err := record.Unpack()
	if nil != err {
		return err
	}

	if m.verbose {
		config := spew.ConfigState{
			Indent:                  "  ",
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		}
		fmt.Fprintf(m.e, "size: %d\n", len(record))
		config.Fdump(m.w, tx)
	}

	result := decodeResult{
		Kind:        tx.Kind().String(),
		Size:        len(record),
		Transaction: tx,
		Valid:       true,
	}
	if _, err := transaction.PrepareTransaction(tx, m.network); nil != err {
		result.Valid = false
		result.Error = err.Error()
	}
	return printJson(m.w, result)
}
