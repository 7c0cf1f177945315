package main

import (
	"github.com/urfave/cli/v2"
)

var (
	dataDirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the light client database",
		Value: "./lightclient",
	}
	dbFlag = &cli.StringFlag{
		Name:  "db",
		Usage: "Database backend: bolt, pebble or memory",
		Value: "bolt",
	}
	networkFlag = &cli.StringFlag{
		Name:  "network",
		Usage: "Built-in network profile: mainnet or minimal",
		Value: "mainnet",
	}
	chainConfigFileFlag = &cli.StringFlag{
		Name:  "chain-config-file",
		Usage: "YAML network profile overriding --network",
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "Logging verbosity (trace, debug, info, warn, error)",
		Value: "info",
	}
	logFormatFlag = &cli.StringFlag{
		Name:  "log-format",
		Usage: "Log format: text or json",
		Value: "text",
	}
	forceFlag = &cli.BoolFlag{
		Name:  "force",
		Usage: "Replace the trusted state with the checkpoint (weak subjectivity recovery)",
	}
	messageFlag = &cli.StringFlag{
		Name:     "message",
		Usage:    "JSON file holding the message to verify",
		Required: true,
	}
	verifierFlag = &cli.StringFlag{
		Name:  "verifier",
		Usage: "Verifier kind: beacon or basic",
		Value: "beacon",
	}
	trustedHeadersFlag = &cli.StringFlag{
		Name:  "trusted-headers",
		Usage: "JSON file of trusted execution headers for the basic verifier",
	}
)

var appFlags = []cli.Flag{
	dataDirFlag,
	dbFlag,
	networkFlag,
	chainConfigFileFlag,
	logLevelFlag,
	logFormatFlag,
}
