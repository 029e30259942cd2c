// Copyright 2015 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

// Package utils contains internal helper functions for gsigner commands.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tos-network/gsigner/internal/flags"
	"github.com/tos-network/gsigner/kvdb"
	"github.com/tos-network/gsigner/kvdb/leveldb"
	"github.com/tos-network/gsigner/kvdb/memorydb"
	"github.com/tos-network/gsigner/kvdb/sqlitedb"
	"github.com/tos-network/gsigner/log"
	"github.com/tos-network/gsigner/params"
	"github.com/urfave/cli/v2"
)

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.
//
// The flags are defined here so their names and help texts
// are the same for all commands.

var (
	// Store settings
	DataDirFlag = &cli.PathFlag{
		Name:     "datadir",
		Usage:    "Data directory for the signer database",
		Value:    params.DefaultDataDir(),
		Category: flags.StoreCategory,
	}
	DBEngineFlag = &cli.StringFlag{
		Name:     "db.engine",
		Usage:    "Backing database implementation to use ('leveldb', 'sqlite' or 'memory')",
		Value:    params.DefaultBackend,
		Category: flags.StoreCategory,
	}
	CacheFlag = &cli.IntFlag{
		Name:     "cache",
		Usage:    "Megabytes of memory allocated to the leveldb block cache",
		Value:    params.DefaultCache,
		Category: flags.StoreCategory,
	}
	HandlesFlag = &cli.IntFlag{
		Name:     "handles",
		Usage:    "Number of open file handles allowed to leveldb",
		Value:    params.DefaultHandles,
		Category: flags.StoreCategory,
	}

	// Logging and debug settings
	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    params.DefaultVerbosity,
		Category: flags.LoggingCategory,
	}
	LogJSONFlag = &cli.BoolFlag{
		Name:     "log.json",
		Usage:    "Format logs with JSON",
		Category: flags.LoggingCategory,
	}
	NoColorFlag = &cli.BoolFlag{
		Name:     "nocolor",
		Usage:    "Disable colored command output",
		Category: flags.LoggingCategory,
	}

	// Misc settings
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}

	// Signing settings
	PhraseFileFlag = &cli.PathFlag{
		Name:     "phrase-file",
		Usage:    "File holding the recovery phrase (prompted for when absent)",
		Category: flags.SigningCategory,
	}
	PasswordFileFlag = &cli.PathFlag{
		Name:     "password-file",
		Usage:    "File holding the derivation password (prompted for when needed)",
		Category: flags.SigningCategory,
	}
)

var (
	StoreFlags = []cli.Flag{
		DataDirFlag,
		DBEngineFlag,
		CacheFlag,
		HandlesFlag,
	}
	LoggingFlags = []cli.Flag{
		VerbosityFlag,
		LogJSONFlag,
		NoColorFlag,
	}
)

// StoreConfig selects and tunes the key-value backend.
type StoreConfig struct {
	DataDir string
	Backend string
	Cache   int
	Handles int
}

// LogConfig controls the root logger.
type LogConfig struct {
	Verbosity int
	JSON      bool
	Color     bool
}

// MakeDataDir retrieves the currently requested data directory, terminating
// if none (or the empty string) is specified.
func MakeDataDir(ctx *cli.Context) string {
	if path := ctx.Path(DataDirFlag.Name); path != "" {
		return path
	}
	Fatalf("Cannot determine default data directory, please set manually (--datadir)")
	return ""
}

// SetStoreConfig applies store related command line flags to the config.
func SetStoreConfig(ctx *cli.Context, cfg *StoreConfig) {
	if ctx.IsSet(DataDirFlag.Name) || cfg.DataDir == "" {
		cfg.DataDir = MakeDataDir(ctx)
	}
	if ctx.IsSet(DBEngineFlag.Name) || cfg.Backend == "" {
		cfg.Backend = ctx.String(DBEngineFlag.Name)
	}
	if ctx.IsSet(CacheFlag.Name) {
		cfg.Cache = ctx.Int(CacheFlag.Name)
	}
	if ctx.IsSet(HandlesFlag.Name) {
		cfg.Handles = ctx.Int(HandlesFlag.Name)
	}
}

// SetLogConfig applies logging related command line flags to the config.
func SetLogConfig(ctx *cli.Context, cfg *LogConfig) {
	if ctx.IsSet(VerbosityFlag.Name) {
		cfg.Verbosity = ctx.Int(VerbosityFlag.Name)
	}
	if ctx.IsSet(LogJSONFlag.Name) {
		cfg.JSON = ctx.Bool(LogJSONFlag.Name)
	}
	if ctx.IsSet(NoColorFlag.Name) {
		cfg.Color = !ctx.Bool(NoColorFlag.Name)
	}
}

// SetupLogging installs the root log handler. Verbosity 0 discards every
// record.
func SetupLogging(cfg *LogConfig) {
	if cfg.Verbosity <= 0 {
		log.Root().SetHandler(log.DiscardHandler())
		return
	}
	log.Setup(log.Lvl(cfg.Verbosity), cfg.JSON)
}

// OpenStore opens the key-value store described by cfg.
func OpenStore(cfg *StoreConfig) (kvdb.KeyValueStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "memory":
		log.Warn("Using an in-memory store, nothing will be persisted")
		return memorydb.New(), nil
	case "leveldb", "":
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, err
		}
		return leveldb.New(filepath.Join(cfg.DataDir, "signerdata"), cfg.Cache, cfg.Handles, false)
	case "sqlite":
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, err
		}
		return sqlitedb.New(filepath.Join(cfg.DataDir, "signer.sqlite"))
	default:
		return nil, fmt.Errorf("unknown database engine %q", cfg.Backend)
	}
}

// MakeStore opens the configured store and will hard crash if it fails.
func MakeStore(cfg *StoreConfig) kvdb.KeyValueStore {
	db, err := OpenStore(cfg)
	if err != nil {
		Fatalf("Could not open database: %v", err)
	}
	return db
}

// CheckExclusive verifies that only a single instance of the provided flags was
// set by the user.
func CheckExclusive(ctx *cli.Context, args ...cli.Flag) {
	set := make([]string, 0, 1)
	for _, flag := range args {
		if ctx.IsSet(flag.Names()[0]) {
			set = append(set, "--"+flag.Names()[0])
		}
	}
	if len(set) > 1 {
		Fatalf("Flags %v can't be used at the same time", strings.Join(set, ", "))
	}
}

// SplitAndTrim splits input separated by a comma
// and trims excessive white space from the substrings.
func SplitAndTrim(input string) (ret []string) {
	l := strings.Split(input, ",")
	for _, r := range l {
		if r = strings.TrimSpace(r); r != "" {
			ret = append(ret, r)
		}
	}
	return ret
}
