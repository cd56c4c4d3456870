// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchtrack extracts Catch2 benchmark results from CI output, ties
// them to the commit being built, and stores, compares and publishes
// the resulting reports.
//
// Usage:
//
//	benchtrack extract [flags] output.txt
//	benchtrack compare [flags] [old.json] [new.json]
//	benchtrack history [flags]
//	benchtrack publish [flags] report.json
//
// The input of extract is the console output of a Catch2 test binary
// run with benchmarks enabled, such as:
//
//	benchmark name                       samples       iterations    estimated
//	                                     mean          low mean      high mean
//	                                     std dev       low std dev   high std dev
//	-------------------------------------------------------------------------------
//	Fibonacci 20                                   100             2     8.4318 ms
//	                                           43.186 us     41.402 us     46.246 us
//	                                           11.719 us      7.847 us     17.747 us
//
// The commit is taken from the GitHub Actions event payload named by
// $GITHUB_EVENT_PATH: the head commit of a push, or the head of a pull
// request. Otherwise, if a GitHub token is configured, it is fetched
// from the GitHub API for $GITHUB_REPOSITORY at $GITHUB_REF.
//
// With --format benchfmt, extract prints the report in the Go
// benchmark format, which benchstat reads.
//
// Settings are read from benchtrack.yaml (or the file named by
// --config), a .env file, and BENCHTRACK_* environment variables, with
// flags taking precedence. For example, BENCHTRACK_DB_DRIVER=sqlite3
// and BENCHTRACK_DB_DSN=bench.db store reports in a SQLite database,
// which compare and history read from.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "benchtrack: %s\n", err)
		os.Exit(1)
	}
}
