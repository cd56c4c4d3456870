// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/benchtrack/benchtrack/commit"
	"github.com/benchtrack/benchtrack/extract"
	"github.com/benchtrack/benchtrack/internal/config"
	"github.com/benchtrack/benchtrack/internal/logging"
	"github.com/benchtrack/benchtrack/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// app holds the state shared by all commands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger

	stdin          io.Reader
	stdout, stderr io.Writer

	// env returns the CI environment.
	env func() commit.Env
	now func() time.Time
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      config.New(),
		stdin:  os.Stdin,
		stdout: stdout,
		stderr: stderr,
		env:    commit.EnvFromOS,
		now:    time.Now,
	}

	root := &cobra.Command{
		Use:   "benchtrack",
		Short: "Track Catch2 benchmark results across commits",
		Long: `benchtrack parses Catch2 benchmark output into reports tied to the commit
being built, and stores, compares and publishes those reports.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.stdin = cmd.InOrStdin()
			return a.init()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config `file` (default is ./benchtrack.yaml)")
	pf.String("log-level", "info", "log `level`: debug, info, warn or error")
	pf.String("log-format", "text", "log `format`: text or json")
	pf.Duration("timeout", 2*time.Minute, "abort after `duration`")
	pf.String("db-driver", "", "report database `driver`: sqlite3 or mysql")
	pf.String("db-dsn", "", "report database `dsn`")
	a.bind("log.level", pf.Lookup("log-level"))
	a.bind("log.format", pf.Lookup("log-format"))
	a.bind("timeout", pf.Lookup("timeout"))
	a.bind("db.driver", pf.Lookup("db-driver"))
	a.bind("db.dsn", pf.Lookup("db-dsn"))

	root.AddCommand(
		a.newExtractCmd(),
		a.newCompareCmd(),
		a.newHistoryCmd(),
		a.newPublishCmd(),
	)
	return root
}

// bind makes flag override the configuration key.
func (a *app) bind(key string, flag *pflag.Flag) {
	// BindPFlag only fails on a nil flag.
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func (a *app) init() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(a.stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// context returns the command context bounded by the configured
// timeout.
func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.cfg.Timeout)
}

func (a *app) openDB(ctx context.Context) (*storage.DB, error) {
	if a.cfg.DB.Driver == "" {
		return nil, fmt.Errorf("no report database configured (set --db-driver and --db-dsn)")
	}
	return storage.Open(ctx, a.cfg.DB.Driver, a.cfg.DB.DSN)
}

// readReport reads a report written by "extract". Files ending in
// .yaml or .yml are decoded as YAML, others as JSON. "-" is stdin.
func (a *app) readReport(path string) (*extract.Report, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	rep := new(extract.Report)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, rep)
	default:
		err = json.Unmarshal(data, rep)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", path, err)
	}
	if len(rep.Benches) == 0 {
		return nil, fmt.Errorf("report %s: %w", path, extract.ErrEmptyResult)
	}
	return rep, nil
}
