// Package main runs the bridge light client against update files produced by
// a relayer.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/config"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/core"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/store"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/store/bolt"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/store/memory"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/store/pebble"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/types"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/verifier"
)

var log = logrus.WithField("prefix", "main")

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := &cli.App{}
	app.Name = "beacon-lc"
	app.Usage = "verifies beacon chain light client updates and bridge messages"
	app.Flags = appFlags
	app.Before = setupLogging
	app.Commands = []*cli.Command{
		{
			Name:      "init",
			Usage:     "Bootstrap the trusted state from a checkpoint",
			ArgsUsage: "<checkpoint.json>",
			Flags:     []cli.Flag{forceFlag},
			Action:    initAction,
		},
		{
			Name:      "sync-committee-update",
			Usage:     "Apply a sync committee period update",
			ArgsUsage: "<update.json>",
			Action:    syncCommitteeAction,
		},
		{
			Name:      "finalized-update",
			Usage:     "Apply a finalized header update",
			ArgsUsage: "<update.json>",
			Action:    finalizedAction,
		},
		{
			Name:      "execution-update",
			Usage:     "Import the execution header of a finalized block",
			ArgsUsage: "<update.json>",
			Action:    executionAction,
		},
		{
			Name:   "verify",
			Usage:  "Verify that a bridge message was emitted on the execution chain",
			Flags:  []cli.Flag{messageFlag, verifierFlag, trustedHeadersFlag},
			Action: verifyAction,
		},
		{
			Name:   "status",
			Usage:  "Print the trusted state",
			Action: statusAction,
		},
	}
	return app
}

func setupLogging(ctx *cli.Context) error {
	level, err := logrus.ParseLevel(ctx.String(logLevelFlag.Name))
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	switch format := ctx.String(logFormatFlag.Name); format {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %s", format)
	}
	return nil
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	if path := ctx.String(chainConfigFileFlag.Name); path != "" {
		return config.LoadFile(path)
	}
	return config.ByName(ctx.String(networkFlag.Name))
}

func openDatabase(ctx *cli.Context) (store.Database, error) {
	dir := ctx.String(dataDirFlag.Name)
	switch kind := ctx.String(dbFlag.Name); kind {
	case "bolt":
		return bolt.New(dir)
	case "pebble":
		return pebble.New(dir)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown database backend %s", kind)
	}
}

// withClient opens the configured light client and closes its database
// once fn returns.
func withClient(ctx *cli.Context, fn func(lc *core.LightClient) error) (err error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	db, err := openDatabase(ctx)
	if err != nil {
		return errors.Wrap(err, "could not open database")
	}
	s := store.New(db)
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	lc, err := core.New(cfg, s)
	if err != nil {
		return err
	}
	return fn(lc)
}

// readJSON decodes the file at path, or stdin when path is "-".
func readJSON(path string, val interface{}) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path) // #nosec G304
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(val); err != nil {
		return errors.Wrapf(err, "could not decode %s", path)
	}
	return nil
}

func argPath(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", fmt.Errorf("%s expects exactly one update file", ctx.Command.Name)
	}
	return ctx.Args().First(), nil
}

func initAction(ctx *cli.Context) error {
	path, err := argPath(ctx)
	if err != nil {
		return err
	}
	var cp types.CheckpointUpdate
	if err := readJSON(path, &cp); err != nil {
		return err
	}
	return withClient(ctx, func(lc *core.LightClient) error {
		if ctx.Bool(forceFlag.Name) {
			return lc.ForceCheckpoint(&cp)
		}
		return lc.Initialize(&cp)
	})
}

func syncCommitteeAction(ctx *cli.Context) error {
	path, err := argPath(ctx)
	if err != nil {
		return err
	}
	var update types.SyncCommitteePeriodUpdate
	if err := readJSON(path, &update); err != nil {
		return err
	}
	return withClient(ctx, func(lc *core.LightClient) error {
		return lc.ApplySyncCommitteePeriodUpdate(&update)
	})
}

func finalizedAction(ctx *cli.Context) error {
	path, err := argPath(ctx)
	if err != nil {
		return err
	}
	var update types.FinalizedHeaderUpdate
	if err := readJSON(path, &update); err != nil {
		return err
	}
	return withClient(ctx, func(lc *core.LightClient) error {
		return lc.ApplyFinalizedHeaderUpdate(&update)
	})
}

func executionAction(ctx *cli.Context) error {
	path, err := argPath(ctx)
	if err != nil {
		return err
	}
	var update types.ExecutionHeaderUpdate
	if err := readJSON(path, &update); err != nil {
		return err
	}
	return withClient(ctx, func(lc *core.LightClient) error {
		return lc.ImportExecutionHeader(&update)
	})
}

func verifyAction(ctx *cli.Context) error {
	var msg verifier.Message
	if err := readJSON(ctx.String(messageFlag.Name), &msg); err != nil {
		return err
	}
	vcfg := &verifier.Config{Kind: ctx.String(verifierFlag.Name)}
	run := func() error {
		v, err := verifier.New(vcfg)
		if err != nil {
			return err
		}
		l, err := v.Verify(&msg)
		if err != nil {
			return err
		}
		return printJSON(l)
	}
	if vcfg.Kind == verifier.KindBasic {
		path := ctx.String(trustedHeadersFlag.Name)
		if path == "" {
			return errors.New("basic verifier needs --trusted-headers")
		}
		if err := readJSON(path, &vcfg.TrustedHeaders); err != nil {
			return err
		}
		return run()
	}
	return withClient(ctx, func(lc *core.LightClient) error {
		vcfg.Client = lc
		return run()
	})
}

type status struct {
	Network              string                  `json:"network"`
	Initialized          bool                    `json:"initialized"`
	FinalizedHeader      types.BeaconBlockHeader `json:"finalized_header"`
	FinalizedBlockRoot   string                  `json:"finalized_block_root"`
	CurrentPeriod        uint64                  `json:"current_period"`
	HasNextSyncCommittee bool                    `json:"has_next_sync_committee"`
	LatestImportTime     uint64                  `json:"latest_import_time"`
	LatestExecutionBlock uint64                  `json:"latest_execution_block"`
}

func statusAction(ctx *cli.Context) error {
	return withClient(ctx, func(lc *core.LightClient) error {
		st := status{Network: lc.Config().ConfigName, Initialized: lc.Initialized()}
		if state := lc.State(); state != nil {
			st.FinalizedHeader = state.FinalizedHeader
			st.FinalizedBlockRoot = state.FinalizedBlockRoot.Hex()
			st.CurrentPeriod = state.CurrentPeriod
			st.HasNextSyncCommittee = state.NextSyncCommittee != nil
			st.LatestImportTime = state.LatestImportTime
			st.LatestExecutionBlock = state.LatestExecutionBlock
		}
		return printJSON(st)
	})
}

func printJSON(val interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(val)
}
