// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/substated/chain"
)

type metadata struct {
	network uint8
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	app := newApp(os.Stdout, os.Stderr)
	err := app.Run(os.Args)
	logger.Finalise()
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

// initialiseLogger - the executor logs, so give it somewhere to write
//
// an already initialised logger is kept
func initialiseLogger(directory string, verbose bool) {
	level := "critical"
	if verbose {
		level = "info"
	}
	if err := os.MkdirAll(directory, 0700); nil != err {
		return
	}
	_ = logger.Initialise(logger.Configuration{
		Directory: directory,
		File:      "substate-cli.log",
		Size:      1048576,
		Count:     3,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: level,
		},
	})
}

func newApp(w io.Writer, e io.Writer) *cli.App {

	app := cli.NewApp()
	app.Name = "substate-cli"
	app.Usage = "inspect and run ledger transaction payloads"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "log-directory, L",
			Value: filepath.Join(os.TempDir(), "substate-cli"),
			Usage: " write the log into `DIRECTORY`",
		},
		cli.StringFlag{
			Name:  "network, n",
			Value: chain.Substate,
			Usage: " validate for `NETWORK` [substate|testing|local]",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "hash",
			Usage:     "show the hashes of a payload",
			ArgsUsage: "FILE",
			Action:    runHash,
		},
		{
			Name:      "decode",
			Usage:     "decode a payload",
			ArgsUsage: "FILE",
			Action:    runDecode,
		},
		{
			Name:      "execute",
			Usage:     "execute payloads in order against a scratch store",
			ArgsUsage: "FILE...",
			Flags: []cli.Flag{
				cli.Uint64Flag{
					Name:  "cost-unit-limit, l",
					Value: 0,
					Usage: " cost units per transaction `COUNT` [0 = default]",
				},
				cli.StringFlag{
					Name:  "database, d",
					Value: "",
					Usage: " read leveldb `DIRECTORY` instead of an empty store, changes are discarded",
				},
			},
			Action: runExecute,
		},
		{
			Name:      "dump",
			Usage:     "list the substates of one partition of a leveldb store",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "database, d",
					Value: "",
					Usage: "*leveldb `DIRECTORY`",
				},
				cli.StringFlag{
					Name:  "node, i",
					Value: "",
					Usage: "*base58 node `ID`",
				},
				cli.IntFlag{
					Name:  "partition, p",
					Value: 0,
					Usage: " partition `NUMBER`",
				},
				cli.IntFlag{
					Name:  "count, c",
					Value: 100,
					Usage: " maximum entries `COUNT`",
				},
			},
			Action: runDump,
		},
		{
			Name:      "genesis",
			Usage:     "create a system genesis payload",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "output, o",
					Value: "",
					Usage: "*payload `FILE`",
				},
				cli.Uint64Flag{
					Name:  "epoch, e",
					Value: 1,
					Usage: " initial `EPOCH`",
				},
				cli.Int64Flag{
					Name:  "timestamp, t",
					Value: 0,
					Usage: " initial `MILLISECONDS` [0 = now]",
				},
				cli.Uint64Flag{
					Name:  "rounds, r",
					Value: 100,
					Usage: " rounds per epoch `COUNT`",
				},
			},
			Action: runGenesis,
		},
		{
			Name:      "round",
			Usage:     "create a round update payload",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "output, o",
					Value: "",
					Usage: "*payload `FILE`",
				},
				cli.Uint64Flag{
					Name:  "round, r",
					Value: 0,
					Usage: "*new `ROUND`",
				},
				cli.Int64Flag{
					Name:  "timestamp, t",
					Value: 0,
					Usage: " `MILLISECONDS` [0 = now]",
				},
			},
			Action: runRound,
		},
		{
			Name:  "version",
			Usage: "display substate-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	app.Before = func(c *cli.Context) error {

		name := strings.ToLower(c.GlobalString("network"))
		switch name {
		case "live":
			name = chain.Substate
		case "test":
			name = chain.Testing
		}
		network, ok := chain.Network(name)
		if !ok {
			return fmt.Errorf("network: %q can only be substate/testing/local", name)
		}

		initialiseLogger(c.GlobalString("log-directory"), c.GlobalBool("verbose"))

		c.App.Metadata["config"] = &metadata{
			network: network,
			verbose: c.GlobalBool("verbose"),
			e:       c.App.ErrWriter,
			w:       c.App.Writer,
		}
		return nil
	}

	return app
}
