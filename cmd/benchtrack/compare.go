// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/benchtrack/benchtrack/benchcmp"
	"github.com/benchtrack/benchtrack/extract"
	"github.com/spf13/cobra"
)

func (a *app) newCompareCmd() *cobra.Command {
	var (
		csv  bool
		fail bool
	)
	cmd := &cobra.Command{
		Use:   "compare [flags] [old-report] [new-report]",
		Short: "Compare two benchmark reports",
		Long: `Compare shows the change in mean run time of each benchmark between two
reports, and the geometric mean of the changes.

With two arguments, the reports are read from those files. With one, the
report in the file is compared to the most recent stored report captured
before it. With none, the two most recent stored reports are compared.

A benchmark whose mean grew by more than the threshold ratio is marked
as a regression.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			var prev, curr *extract.Report
			var err error
			switch len(args) {
			case 2:
				if prev, err = a.readReport(args[0]); err != nil {
					return err
				}
				if curr, err = a.readReport(args[1]); err != nil {
					return err
				}
			default:
				db, err := a.openDB(ctx)
				if err != nil {
					return err
				}
				defer db.Close()
				if len(args) == 1 {
					curr, err = a.readReport(args[0])
				} else {
					curr, err = db.Latest(ctx, a.cfg.Tool)
				}
				if err != nil {
					return err
				}
				if prev, err = db.Before(ctx, curr.Tool, curr.Date); err != nil {
					return err
				}
			}

			t := benchcmp.Compare(prev, curr, a.cfg.Compare.Threshold)
			if csv {
				err = t.ToCSV(a.stdout, a.stderr)
			} else {
				err = t.ToText(a.stdout)
			}
			if err != nil {
				return err
			}
			if regs := t.Regressions(); fail && len(regs) > 0 {
				return fmt.Errorf("%d benchmark(s) regressed by more than %gx, first %q", len(regs), t.Threshold, regs[0].Name)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64("threshold", benchcmp.DefaultThreshold, "report a regression above this `ratio` of new to old mean")
	f.BoolVar(&csv, "csv", false, "print CSV instead of text; warnings go to stderr")
	f.BoolVar(&fail, "fail-on-regression", false, "exit with an error if any benchmark regressed")
	a.bind("compare.threshold", f.Lookup("threshold"))
	return cmd
}
