// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/benchtrack/benchtrack/benchunit"
	"github.com/spf13/cobra"
)

func (a *app) newHistoryCmd() *cobra.Command {
	var (
		limit int
		bench string
	)
	cmd := &cobra.Command{
		Use:   "history [flags]",
		Short: "List stored benchmark reports",
		Long: `History lists the stored reports of the configured tool, most recent
first. With --bench, it shows the mean of that benchmark in each report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			reps, err := db.History(ctx, a.cfg.Tool, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			if bench == "" {
				fmt.Fprintln(tw, "DATE\tCOMMIT\tBENCHES\tID")
			} else {
				fmt.Fprintln(tw, "DATE\tCOMMIT\tMEAN\tSTDDEV")
			}
			for _, rep := range reps {
				var id string
				if rep.Commit != nil {
					id = rep.Commit.ID
				}
				date := rep.Date.UTC().Format(time.RFC3339)
				if bench == "" {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", date, id, len(rep.Benches), rep.ID)
					continue
				}
				for _, b := range rep.Benches {
					if b.Name != bench {
						continue
					}
					mean, _ := benchunit.Seconds(b.Value, string(b.ValueUnit))
					dev, _ := benchunit.Seconds(b.Range, string(b.RangeUnit))
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", date, id, benchunit.FormatSeconds(mean), benchunit.FormatSeconds(dev))
					break
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "show at most `n` reports; 0 shows all")
	cmd.Flags().StringVar(&bench, "bench", "", "show the results of the benchmark `name`")
	return cmd
}
