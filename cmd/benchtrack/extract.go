// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/benchtrack/benchtrack/benchfmt"
	"github.com/benchtrack/benchtrack/catch2fmt"
	"github.com/benchtrack/benchtrack/commit"
	"github.com/benchtrack/benchtrack/extract"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) newExtractCmd() *cobra.Command {
	var (
		eventPath string
		commitID  string
		save      bool
		publish   bool
	)
	cmd := &cobra.Command{
		Use:   "extract [flags] output-file",
		Short: "Parse benchmark output into a report",
		Long: `Extract parses the benchmark output in output-file ("-" for stdin) and
prints the resulting report. The report is tied to the commit found in
the CI event payload, or fetched from the GitHub API if a token is set.

With --save the report is also stored in the report database, and with
--publish it is sent to the configured sinks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			resolver, err := a.resolver(eventPath, commitID)
			if err != nil {
				return err
			}
			x := &extract.Extractor{Resolver: resolver, Now: a.now, Logger: a.logger}

			var rep *extract.Report
			if args[0] == "-" {
				data, err := io.ReadAll(a.stdin)
				if err != nil {
					return fmt.Errorf("reading benchmark output: %w", err)
				}
				rep, err = x.Extract(ctx, a.cfg.Tool, string(data))
				if err != nil {
					return err
				}
			} else {
				rep, err = x.ExtractFile(ctx, a.cfg.Tool, args[0])
				if err != nil {
					return err
				}
			}

			if save {
				if err := a.save(ctx, rep); err != nil {
					return err
				}
			}
			if publish {
				if err := a.publish(ctx, rep); err != nil {
					return err
				}
			}
			return writeReport(a.stdout, rep, a.cfg.Format)
		},
	}

	f := cmd.Flags()
	f.String("tool", "catch2", "benchmark `tool` that produced the output: "+strings.Join(extract.Tools(), ", "))
	f.String("format", "json", "print the report in `format`: json, yaml, text or benchfmt")
	f.String("github-token", "", "GitHub API `token` for commit lookups (default $GITHUB_TOKEN)")
	f.String("ref", "", "git `ref` to look up through the API (default $GITHUB_REF)")
	f.StringVar(&eventPath, "event", "", "event payload `file` (default $GITHUB_EVENT_PATH)")
	f.StringVar(&commitID, "commit", "", "use commit `id` instead of looking it up")
	f.BoolVar(&save, "save", false, "store the report in the report database")
	f.BoolVar(&publish, "publish", false, "publish the report to the configured sinks")
	a.bind("tool", f.Lookup("tool"))
	a.bind("format", f.Lookup("format"))
	a.bind("github.token", f.Lookup("github-token"))
	a.bind("github.ref", f.Lookup("ref"))
	return cmd
}

// resolver returns the commit resolver for the CI environment.
func (a *app) resolver(eventPath, commitID string) (commit.Resolver, error) {
	if commitID != "" {
		return commit.ResolverFunc(func(ctx context.Context) (*commit.Commit, error) {
			return &commit.Commit{ID: commitID}, nil
		}), nil
	}
	env := a.env()
	if eventPath != "" {
		env.EventPath = eventPath
	}
	chain, err := commit.NewChain(env, a.cfg.GitHub.Token, a.cfg.GitHub.Ref)
	if err != nil {
		return nil, err
	}
	chain.Logger = a.logger
	return chain, nil
}

func (a *app) save(ctx context.Context, rep *extract.Report) error {
	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Save(ctx, rep); err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "saved report", "id", rep.ID, "driver", a.cfg.DB.Driver)
	return nil
}

// writeReport writes rep to w in the named format.
func writeReport(w io.Writer, rep *extract.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		var id, msg string
		if rep.Commit != nil {
			id = rep.Commit.ID
			msg, _, _ = strings.Cut(rep.Commit.Message, "\n")
		}
		fmt.Fprintf(w, "commit: %s\ntool: %s\ndate: %s\n\n", strings.TrimSpace(id+" "+msg), rep.Tool, rep.Date.Format(time.RFC3339))
		cw := catch2fmt.NewWriter(w)
		for _, b := range rep.Benches {
			if err := cw.Write(b); err != nil {
				return err
			}
		}
		return nil
	case "benchfmt":
		return benchfmt.WriteAll(w, benchfmt.FromReport(rep))
	}
	return fmt.Errorf("unknown format %q", format)
}
