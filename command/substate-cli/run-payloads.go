// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/substated/manifest"
	"github.com/bitmark-inc/substated/transaction"
)

func now(c *cli.Context) int64 {
	if t := c.Int64("timestamp"); 0 != t {
		return t
	}
	return time.Now().UnixNano() / int64(time.Millisecond)
}

func runGenesis(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	rounds := c.Uint64("rounds")
	if 0 == rounds {
		return fmt.Errorf("rounds per epoch must be positive")
	}
	tx := &transaction.Genesis{
		System: &transaction.GenesisSystem{
			Network:        m.network,
			Epoch:          c.Uint64("epoch"),
			Timestamp:      now(c),
			RoundsPerEpoch: rounds,
			Manifest:       manifest.NewBuilder().Build(),
		},
	}
	filename := c.String("output")
	if err := writePayload(filename, tx); nil != err {
		return err
	}
	if m.verbose {
		fmt.Fprintf(m.e, "genesis: %q  epoch: %d\n", filename, tx.System.Epoch)
	}
	return nil
}

func runRound(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	round := c.Uint64("round")
	if 0 == round {
		return fmt.Errorf("round is required")
	}
	tx := &transaction.RoundUpdateV1{
		Round:     round,
		Timestamp: now(c),
	}
	filename := c.String("output")
	if err := writePayload(filename, tx); nil != err {
		return err
	}
	if m.verbose {
		fmt.Fprintf(m.e, "round: %q  round: %d\n", filename, round)
	}
	return nil
}
