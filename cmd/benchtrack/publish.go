// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"

	"github.com/benchtrack/benchtrack/extract"
	"github.com/benchtrack/benchtrack/sink"
	"github.com/spf13/cobra"
)

func (a *app) newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish [flags] report",
		Short: "Publish a benchmark report to the configured sinks",
		Long: `Publish sends the report in the named file ("-" for stdin) to each
configured sink: the dashboard data file, a Cloud Storage bucket,
InfluxDB and a Prometheus Pushgateway.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			rep, err := a.readReport(args[0])
			if err != nil {
				return err
			}
			return a.publish(ctx, rep)
		},
	}

	f := cmd.Flags()
	f.String("data-file", "", "append reports to the dashboard data `file`")
	f.Int("max-items", 0, "keep at most `n` reports in the data file")
	f.String("gcs-bucket", "", "upload reports to Cloud Storage `bucket`")
	f.String("influx-url", "", "write points to the InfluxDB server at `url`")
	f.String("pushgateway-url", "", "push metrics to the Pushgateway at `url`")
	a.bind("sinks.datafile.path", f.Lookup("data-file"))
	a.bind("sinks.datafile.max_items", f.Lookup("max-items"))
	a.bind("sinks.gcs.bucket", f.Lookup("gcs-bucket"))
	a.bind("sinks.influx.url", f.Lookup("influx-url"))
	a.bind("sinks.pushgateway.url", f.Lookup("pushgateway-url"))
	return cmd
}

// sinks returns the configured sinks and a function releasing them.
func (a *app) sinks(ctx context.Context) (sink.Multi, func(), error) {
	s := a.cfg.Sinks
	var out sink.Multi
	var closers []func()
	release := func() {
		for _, c := range closers {
			c()
		}
	}

	if s.DataFile.Path != "" {
		out = append(out, &sink.DataFile{
			Path:     s.DataFile.Path,
			Name:     s.DataFile.Name,
			RepoURL:  s.DataFile.RepoURL,
			MaxItems: s.DataFile.MaxItems,
			Now:      a.now,
		})
	}
	if s.GCS.Bucket != "" {
		g, err := sink.NewGCS(ctx, s.GCS.Bucket, s.GCS.Prefix, s.GCS.CredentialsFile)
		if err != nil {
			release()
			return nil, nil, err
		}
		g.Logger = a.logger
		closers = append(closers, func() { g.Close() })
		out = append(out, g)
	}
	if s.Influx.URL != "" {
		in := sink.NewInflux(s.Influx.URL, s.Influx.Token, s.Influx.Org, s.Influx.Bucket)
		closers = append(closers, in.Close)
		out = append(out, in)
	}
	if s.Pushgateway.URL != "" {
		out = append(out, &sink.Pushgateway{URL: s.Pushgateway.URL, Job: s.Pushgateway.Job})
	}
	return out, release, nil
}

func (a *app) publish(ctx context.Context, rep *extract.Report) error {
	sinks, release, err := a.sinks(ctx)
	if err != nil {
		return err
	}
	defer release()
	if len(sinks) == 0 {
		return fmt.Errorf("no sinks configured")
	}
	if err := sinks.Publish(ctx, rep); err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "published report", "id", rep.ID, "sinks", len(sinks))
	return nil
}
