// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package catch2fmt provides a reader and writer for the console
// benchmark report printed by Catch2.
//
// A report consists of one or more benchmark suites. Each suite starts
// with a column header and a dashed separator, followed by one entry
// per benchmark:
//
//	benchmark name samples       iterations    estimated
//	               mean          low mean      high mean
//	               std dev       low std dev   high std dev
//	-----------------------------------------------------
//	Fibonacci 20   100           2             8.4318 ms
//	               43.186 us     41.402 us     46.246 us
//	               11.719 us      7.847 us     17.747 us
//
// The reader is structured like bufio.Scanner: Scan advances to the
// next benchmark entry, Result returns it. Unlike the Go benchmark
// format, a malformed report is a fatal error and stops the scan.
package catch2fmt

import "fmt"

// A Unit is one of the time units Catch2 prints.
type Unit string

const (
	Nanoseconds  Unit = "ns"
	Microseconds Unit = "us"
	Milliseconds Unit = "ms"
	Seconds      Unit = "s"
)

// Valid reports whether u is a unit Catch2 emits.
func (u Unit) Valid() bool {
	switch u {
	case Nanoseconds, Microseconds, Milliseconds, Seconds:
		return true
	}
	return false
}

// A Duration is a value/unit pair as printed in a report.
type Duration struct {
	Value float64 `json:"value" yaml:"value"`
	Unit  Unit    `json:"unit" yaml:"unit"`
}

func (d Duration) String() string {
	return fmt.Sprintf("%v %s", d.Value, d.Unit)
}

// noCounts is the Extra annotation used when the sample and iteration
// counts of an entry cannot be recovered.
const noCounts = "No sample/iteration data"

// A Result is a single benchmark entry of a Catch2 report.
//
// Value and Range keep the units they were printed in. The two units
// are independent and are never converted into each other.
type Result struct {
	// Name is the benchmark name, with surrounding whitespace removed.
	Name string `json:"name" yaml:"name"`

	// Value is the mean and ValueUnit its unit.
	Value     float64 `json:"value" yaml:"value"`
	ValueUnit Unit    `json:"unit" yaml:"unit"`

	// Range is the standard deviation and RangeUnit its unit.
	Range     float64 `json:"range" yaml:"range"`
	RangeUnit Unit    `json:"rangeUnit" yaml:"rangeUnit"`

	// Extra is a human-readable annotation carrying the sample and
	// iteration counts.
	Extra string `json:"extra" yaml:"extra"`

	// Samples and Iterations are the counts from the entry line, or
	// zero if they could not be parsed.
	Samples    int `json:"samples,omitempty" yaml:"samples,omitempty"`
	Iterations int `json:"iterations,omitempty" yaml:"iterations,omitempty"`

	// Estimated is the estimated total run time of the benchmark.
	Estimated Duration `json:"estimated,omitzero" yaml:"estimated,omitempty"`
}

// Mean returns the mean as a Duration.
func (r Result) Mean() Duration {
	return Duration{r.Value, r.ValueUnit}
}

// StdDev returns the standard deviation as a Duration.
func (r Result) StdDev() Duration {
	return Duration{r.Range, r.RangeUnit}
}

func countsExtra(samples, iterations int) string {
	return fmt.Sprintf("%d samples, %d iterations", samples, iterations)
}
