// Package config parses the indexer's command-line configuration using
// jessevdk/go-flags, the same library and struct-tag style the retrieved
// full node's own config.go uses. Per spec §6, the only inputs are the
// Bitcoin RPC endpoint/credentials, the database DSN, the starting height,
// and the log level — no environment variables are consulted.
package config

import (
	"os"

	flags "github.com/jessevdk/go-flags"

	"github.com/btcrunes/runeindexer/internal/er"
)

const (
	defaultLogLevel    = "info"
	defaultLogFile     = "runeindexer.log"
	defaultStartHeight = 0
	defaultRPCHost     = "127.0.0.1:8332"
)

// Config holds every flag the indexer accepts.
type Config struct {
	RPCHost string `long:"rpchost" description:"Bitcoin Core RPC host:port" default:"127.0.0.1:8332"`
	RPCUser string `long:"rpcuser" description:"Bitcoin Core RPC username"`
	RPCPass string `long:"rpcpass" default-mask:"-" description:"Bitcoin Core RPC password"`
	RPCTLS  bool   `long:"rpctls" description:"Use TLS when connecting to Bitcoin Core"`

	DBDSN string `long:"dbdsn" description:"MySQL data source name, e.g. user:pass@tcp(host:3306)/dbname"`

	StartHeight uint64 `long:"startheight" description:"Block height to begin indexing from; indexing always starts here, whatever state the database already holds"`

	LogDir   string `long:"logdir" description:"Directory to write the rotating log file into"`
	LogLevel string `long:"loglevel" description:"Logging level: trace, debug, info, warn, error, critical" default:"info"`
}

// Load parses os.Args (excluding argv[0]) into a Config, applying defaults
// per-field the way the retrieved full node's loadConfig does.
func Load() (*Config, er.R) {
	cfg := &Config{
		RPCHost:     defaultRPCHost,
		LogLevel:    defaultLogLevel,
		StartHeight: defaultStartHeight,
	}
	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, er.E(err)
	}

	if cfg.RPCUser == "" || cfg.RPCPass == "" {
		return nil, errConfig.New("rpcuser and rpcpass are required", nil)
	}
	if cfg.DBDSN == "" {
		return nil, errConfig.New("dbdsn is required", nil)
	}

	return cfg, nil
}

// ErrType classifies configuration faults.
var ErrType = er.NewErrorType("config.Err")

var errConfig = ErrType.Code("errConfig")

// LogFilePath returns the path this config's LogDir resolves to, defaulting
// to the current directory when LogDir is empty.
func (c *Config) LogFilePath() string {
	if c.LogDir == "" {
		return defaultLogFile
	}
	return c.LogDir + string(os.PathSeparator) + defaultLogFile
}
