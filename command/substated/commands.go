// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/receipts"
)

const (
	defaultListCount = 20
	maximumListCount = 1000
)

// setup command handler
//
// commands that run without any configuration or database
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "version", "v":
		fmt.Printf("%s\n", version)

	case "start", "run":
		return false // continue processing

	case "config", "receipt", "receipts", "status":
		return false // defer processing until configuration is read

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                   (h)      - display this message\n\n")
		fmt.Printf("  version                (v)      - display version sting\n\n")
		fmt.Printf("  config                          - display the configuration after defaults are applied\n\n")
		fmt.Printf("  receipt HASH                    - show the latest receipt of a ledger transaction\n\n")
		fmt.Printf("  receipts [FROM [COUNT]]         - list journalled receipts from a sequence number\n\n")
		fmt.Printf("  status                          - count journalled receipts by status\n\n")
		fmt.Printf("  start                  (run)    - just run the program, same as no arguments\n")
		fmt.Printf("                                    for convienience when passing script arguments\n\n")
		fmt.Printf("options:\n\n")
		fmt.Printf("  -c, --config-file=FILE          - Lua configuration file\n")
		fmt.Printf("  -d, --define=NAME=VALUE         - set a Lua global before the configuration runs\n")
		fmt.Printf("  -m, --memory-stats              - log memory use periodically\n")
		fmt.Printf("  -q, --quiet                     - no console messages\n\n")
		exitwithstatus.Exit(1)
	}

	// indicate processing complete and prefor normal exit from main
	return true
}

// parseDefines - NAME=VALUE pairs from the command line
func parseDefines(defines []string) (map[string]string, error) {
	variables := make(map[string]string, len(defines))
	for _, d := range defines {
		n := strings.IndexByte(d, '=')
		if n <= 0 {
			return nil, fmt.Errorf("define: %q is not NAME=VALUE", d)
		}
		variables[d[:n]] = d[n+1:]
	}
	return variables, nil
}

// configuration command handler
//
// returns:
//   true  if command was handled
//   false if not handled and program should continue
func processConfigCommand(arguments []string, options *Configuration) bool {

	switch arguments[0] {
	case "config":
		printJSON(options)
		return true

	default:
		return false
	}
}

// data command handler
//
// the receipts journal is open
func processDataCommand(log *logger.L, arguments []string, options *Configuration, journal *receipts.Store) bool {

	command := arguments[0]
	arguments = arguments[1:]

	switch command {
	case "receipt":
		if 1 != len(arguments) {
			exitwithstatus.Message("receipt: a single hash is required")
		}
		var hash digest.Digest
		if err := hash.UnmarshalText([]byte(arguments[0])); nil != err {
			exitwithstatus.Message("receipt: hash: %q  error: %s", arguments[0], err)
		}
		entry, err := journal.Get(hash)
		if nil != err {
			exitwithstatus.Message("receipt: %s", err)
		}
		printJSON(entry)

	case "receipts":
		from, count, err := listArguments(arguments)
		if nil != err {
			exitwithstatus.Message("receipts: %s", err)
		}
		entries, err := journal.List(from, count)
		if nil != err {
			exitwithstatus.Message("receipts: %s", err)
		}
		printJSON(entries)

	case "status":
		counts, err := journal.Count()
		if nil != err {
			exitwithstatus.Message("status: %s", err)
		}
		printJSON(counts)

	default:
		return false
	}
	log.Infof("processed command: %q", command)
	return true
}

func listArguments(arguments []string) (uint64, int, error) {
	from := uint64(1)
	count := defaultListCount
	if len(arguments) > 0 {
		n, err := strconv.ParseUint(arguments[0], 10, 64)
		if nil != err {
			return 0, 0, fmt.Errorf("from: %q  error: %s", arguments[0], err)
		}
		from = n
	}
	if len(arguments) > 1 {
		n, err := strconv.Atoi(arguments[1])
		if nil != err || n <= 0 || n > maximumListCount {
			return 0, 0, fmt.Errorf("count: %q must be 1..%d", arguments[1], maximumListCount)
		}
		count = n
	}
	return from, count, nil
}

func printJSON(item interface{}) {
	b, err := json.MarshalIndent(item, "", "  ")
	if nil != err {
		fmt.Fprintf(os.Stderr, "json error: %s\n", err)
		return
	}
	fmt.Printf("%s\n", b)
}
