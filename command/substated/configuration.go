// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/substated/chain"
	"github.com/bitmark-inc/substated/configuration"
	"github.com/bitmark-inc/substated/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultLevelDBDirectory = "data"
	defaultSubstateDatabase = chain.Substate + ".leveldb"
	defaultTestingDatabase  = chain.Testing + ".leveldb"
	defaultLocalDatabase    = chain.Local + ".leveldb"
	defaultReceiptsDatabase = "receipts.sqlite3"

	defaultSpoolDirectory = "spool"
	defaultInbox          = "inbox"
	defaultDone           = "done"
	defaultFailed         = "failed"
	defaultRateLimit      = 100.0 // payloads per second
	defaultRateBurst      = 10

	defaultLogDirectory = "log"
	defaultLogFile      = "substated.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		"main":            "info",
		logger.DefaultTag: "critical",
	}
)

type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
	Receipts  string `gluamapper:"receipts" json:"receipts"`
}

// SpoolType - directories a payload passes through
type SpoolType struct {
	Directory string  `gluamapper:"directory" json:"directory"`
	Inbox     string  `gluamapper:"inbox" json:"inbox"`
	Done      string  `gluamapper:"done" json:"done"`
	Failed    string  `gluamapper:"failed" json:"failed"`
	RateLimit float64 `gluamapper:"rate_limit" json:"rate_limit"`
	RateBurst int     `gluamapper:"rate_burst" json:"rate_burst"`
}

// ExecutionType - limits applied to every transaction
type ExecutionType struct {
	CostUnitLimit    uint64 `gluamapper:"cost_unit_limit" json:"cost_unit_limit"`
	MaxTotalBlobSize int    `gluamapper:"max_total_blob_size" json:"max_total_blob_size"`
	MaxCallDepth     int    `gluamapper:"max_call_depth" json:"max_call_depth"`
	InjectFailure    uint64 `gluamapper:"inject_failure" json:"inject_failure"`
}

// BlueprintType - a wasm blueprint loaded at start up
type BlueprintType struct {
	Package   string   `gluamapper:"package" json:"package"`
	Name      string   `gluamapper:"name" json:"name"`
	File      string   `gluamapper:"file" json:"file"`
	Functions []string `gluamapper:"functions" json:"functions"`
	Methods   []string `gluamapper:"methods" json:"methods"`
}

type Configuration struct {
	DataDirectory string               `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string               `gluamapper:"pidfile" json:"pidfile"`
	Chain         string               `gluamapper:"chain" json:"chain"`
	Database      DatabaseType         `gluamapper:"database" json:"database"`
	Spool         SpoolType            `gluamapper:"spool" json:"spool"`
	Execution     ExecutionType        `gluamapper:"execution" json:"execution"`
	Blueprints    []BlueprintType      `gluamapper:"blueprints" json:"blueprints"`
	Logging       logger.Configuration `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string, variables map[string]string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		Chain:         chain.Substate,

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultSubstateDatabase,
			Receipts:  defaultReceiptsDatabase,
		},

		Spool: SpoolType{
			Directory: defaultSpoolDirectory,
			Inbox:     defaultInbox,
			Done:      defaultDone,
			Failed:    defaultFailed,
			RateLimit: defaultRateLimit,
			RateBurst: defaultRateBurst,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options, variables); err != nil {
		return nil, err
	}

	// if any test mode and the database file was not specified
	// switch to appropriate default.  Abort if then chain name is
	// not recognised.
	options.Chain = strings.ToLower(options.Chain)
	if !chain.Valid(options.Chain) {
		return nil, fmt.Errorf("Chain: %q is not supported", options.Chain)
	}

	// if database was not changed from default
	if options.Database.Name == defaultSubstateDatabase {
		switch options.Chain {
		case chain.Substate:
			// already correct default
		case chain.Testing:
			options.Database.Name = defaultTestingDatabase
		case chain.Local:
			options.Database.Name = defaultLocalDatabase
		default:
			return nil, fmt.Errorf("Chain: %s no default database setting", options.Chain)
		}
	}

	if options.Spool.RateLimit <= 0 || options.Spool.RateBurst <= 0 {
		return nil, fmt.Errorf("Spool: rate limit: %g  burst: %d must be positive", options.Spool.RateLimit, options.Spool.RateBurst)
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Spool.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}
	for i := range options.Blueprints {
		options.Blueprints[i].File = util.EnsureAbsolute(options.DataDirectory, options.Blueprints[i].File)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// fail if any of these are not simple file names i.e. must
	// not contain path seperator, then add the correct directory
	// prefix, file item is first and corresponding directory is
	// second (or nil if no prefix can be added)
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Database.Receipts, &options.Database.Directory},
		{&options.Spool.Inbox, &options.Spool.Directory},
		{&options.Spool.Done, &options.Spool.Directory},
		{&options.Spool.Failed, &options.Spool.Directory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f[0]) {
		case "", ".":
			if nil != f[1] {
				*f[0] = util.EnsureAbsolute(*f[1], *f[0])
			}
		default:
			return nil, fmt.Errorf("Files: %q is not plain name", *f[0])
		}
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Database.Directory,
		&options.Spool.Inbox,
		&options.Spool.Done,
		&options.Spool.Failed,
		&options.Logging.Directory,
	} {
		*d = util.EnsureAbsolute(options.DataDirectory, *d)
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}
