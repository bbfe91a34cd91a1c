// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"

	"github.com/bitmark-inc/substated/transaction"
)

type hashResult struct {
	Kind   string             `json:"kind"`
	Hashes transaction.Hashes `json:"hashes"`
}

func runHash(c *cli.Context) error {

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
	h, err := transaction.HashesOf(tx)
	if nil != err {
		return err
	}

	return printJson(m.w, hashResult{
		Kind:   tx.Kind().String(),
		Hashes: h,
	})
}
