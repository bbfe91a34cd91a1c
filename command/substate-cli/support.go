// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/substated/transaction"
)

func printJson(handle io.Writer, message interface{}) error {

	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		return err
	}

	fmt.Fprintf(handle, "%s\n", b)
	return nil
}

func readPayload(filename string) (transaction.Packed, error) {
	if "" == filename {
		return nil, fmt.Errorf("payload file is required")
	}
	data, err := ioutil.ReadFile(filename)
	if nil != err {
		return nil, err
	}
	return transaction.Packed(data), nil
}

// writePayload - via a temporary name so a watching spool never sees
// a partial file
func writePayload(filename string, tx transaction.Transaction) error {
	if "" == filename {
		return fmt.Errorf("output file is required")
	}
	record, err := transaction.Pack(tx)
	if nil != err {
		return err
	}
	temp := filename + ".tmp"
	if err := ioutil.WriteFile(temp, record, 0600); nil != err {
		return err
	}
	return os.Rename(temp, filename)
}

func singleArgument(c *cli.Context) (string, error) {
	if 1 != c.NArg() {
		return "", fmt.Errorf("one payload file is required")
	}
	return c.Args().Get(0), nil
}
