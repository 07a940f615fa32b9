// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/btcsuite/txmempool/mempool"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultBlockSize  = 4000
	defaultChains     = 8
	defaultChainDepth = 4
	defaultDebugLevel = "info"
)

// config defines the configuration options for poolsim.
//
// See loadConfig for details on the configuration load process.
type config struct {
	MaxMempool  int64  `long:"maxmempool" description:"Maximum number of virtual bytes the pool may hold before low-rate entries are evicted"`
	MinRelayFee int64  `long:"minrelayfee" description:"Minimum relay fee in satoshi per 1000 virtual bytes"`
	BlockSize   int64  `long:"blocksize" description:"Virtual size budget of each assembled block"`
	Chains      int    `long:"chains" description:"Number of independent spend chains to submit"`
	ChainDepth  int    `long:"chaindepth" description:"Number of chained spends per chain"`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	LogFile     string `long:"logfile" description:"Write logs to this file in addition to stdout, rolling it as it grows"`
}

// loadConfig initializes and parses the config using command line options.
func loadConfig() (*config, error) {
	cfg := config{
		MaxMempool:  mempool.DefaultMaxMempoolBytes,
		MinRelayFee: int64(mempool.DefaultMinRelayTxFee),
		BlockSize:   defaultBlockSize,
		Chains:      defaultChains,
		ChainDepth:  defaultChainDepth,
		DebugLevel:  defaultDebugLevel,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	if !validLogLevel(cfg.DebugLevel) {
		return nil, fmt.Errorf("the specified debug level [%v] is "+
			"invalid", cfg.DebugLevel)
	}
	if cfg.BlockSize <= 0 {
		return nil, fmt.Errorf("blocksize must be positive")
	}
	if cfg.Chains <= 0 || cfg.ChainDepth <= 0 {
		return nil, fmt.Errorf("chains and chaindepth must be positive")
	}

	return &cfg, nil
}
