// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchcmp compares two benchmark reports.
//
// Benchmarks are matched by name. Each measurement is converted to
// seconds before comparison, so a mean reported in "us" in one run and
// in "ms" in the next compares correctly. A benchmark whose ratio of
// current to previous mean exceeds the threshold is a regression.
package benchcmp

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/benchtrack/benchtrack/benchunit"
	"github.com/benchtrack/benchtrack/catch2fmt"
	"github.com/benchtrack/benchtrack/extract"
)

// DefaultThreshold is the ratio above which a benchmark is reported as
// a regression if no threshold is given.
const DefaultThreshold = 2.0

// A Table compares the benchmarks of two reports.
type Table struct {
	Prev, Curr *extract.Report

	// Threshold is the regression ratio.
	Threshold float64

	// Rows holds one row per benchmark, in the order of Curr
	// followed by benchmarks only present in Prev.
	Rows []*Row

	// Summary is the geomean across Rows.
	Summary Summary

	// SummaryLabel is the label for the summary row.
	SummaryLabel string
}

// A Row compares one benchmark.
type Row struct {
	Name string

	// Prev and Curr are the results in each report. One of them
	// may be nil.
	Prev, Curr *catch2fmt.Result

	// Base and Value are the previous and current means in
	// seconds. Valid only if the corresponding result is set.
	Base, Value float64

	// HasRatio indicates that Ratio is valid.
	HasRatio bool
	// Ratio is Value / Base.
	Ratio float64

	// Regression is set if Ratio exceeds the table's threshold.
	Regression bool

	Warnings []error
}

// Summary summarizes a Table.
type Summary struct {
	// HasSummary indicates that Base and Value are valid. They
	// are the geomeans of the rows' Base and Value.
	HasSummary  bool
	Base, Value float64

	// HasRatio indicates that Ratio is valid. It is the geomean
	// of the rows' ratios.
	HasRatio bool
	Ratio    float64

	Warnings []error
}

// Compare compares curr against prev. A threshold <= 0 means
// DefaultThreshold.
func Compare(prev, curr *extract.Report, threshold float64) *Table {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	t := &Table{Prev: prev, Curr: curr, Threshold: threshold, SummaryLabel: "geomean"}

	prevByName := make(map[string]*catch2fmt.Result)
	if prev != nil {
		for i := range prev.Benches {
			b := &prev.Benches[i]
			if _, dup := prevByName[b.Name]; !dup {
				prevByName[b.Name] = b
			}
		}
	}

	seen := make(map[string]bool)
	for i := range curr.Benches {
		b := &curr.Benches[i]
		if seen[b.Name] {
			continue
		}
		seen[b.Name] = true
		t.Rows = append(t.Rows, t.newRow(b.Name, prevByName[b.Name], b))
	}
	if prev != nil {
		for i := range prev.Benches {
			b := &prev.Benches[i]
			if seen[b.Name] {
				continue
			}
			seen[b.Name] = true
			t.Rows = append(t.Rows, t.newRow(b.Name, b, nil))
		}
	}

	t.summarize()
	return t
}

func (t *Table) newRow(name string, prev, curr *catch2fmt.Result) *Row {
	row := &Row{Name: name, Prev: prev, Curr: curr}
	var okBase, okValue bool
	if prev != nil {
		row.Base, okBase = seconds(prev, &row.Warnings)
	}
	if curr != nil {
		row.Value, okValue = seconds(curr, &row.Warnings)
	}
	switch {
	case prev == nil:
		row.Warnings = append(row.Warnings, fmt.Errorf("no previous result"))
	case curr == nil:
		row.Warnings = append(row.Warnings, fmt.Errorf("missing from current run"))
	case !okBase || !okValue:
	case row.Base <= 0:
		row.Warnings = append(row.Warnings, fmt.Errorf("previous mean must be >0 to compute ratio"))
	default:
		row.HasRatio = true
		row.Ratio = row.Value / row.Base
		row.Regression = row.Ratio > t.Threshold
	}
	return row
}

// seconds returns the mean of r in seconds.
func seconds(r *catch2fmt.Result, warnings *[]error) (float64, bool) {
	_, factor := benchunit.Tidy(string(r.ValueUnit))
	if !r.ValueUnit.Valid() {
		*warnings = append(*warnings, fmt.Errorf("unknown unit %q", r.ValueUnit))
		return 0, false
	}
	return r.Value * factor, true
}

func (t *Table) summarize() {
	s := &t.Summary

	// Like benchstat, this is the geomean of the ratios rather
	// than the ratio of the geomeans, so that it only covers
	// benchmarks present in both reports.
	var bases, values, ratios []float64
	for _, row := range t.Rows {
		if !row.HasRatio {
			continue
		}
		bases = append(bases, row.Base)
		values = append(values, row.Value)
		ratios = append(ratios, row.Ratio)
	}
	if len(ratios) == 0 {
		return
	}
	if len(ratios) != len(t.Rows) {
		s.Warnings = append(s.Warnings, fmt.Errorf("benchmark set differs from previous report; geomean only covers common benchmarks"))
	}

	gb, gv := stats.GeoMean(bases), stats.GeoMean(values)
	if math.IsNaN(gb) || math.IsNaN(gv) {
		s.Warnings = append(s.Warnings, fmt.Errorf("means must be >0 to compute geomean"))
	} else {
		s.HasSummary = true
		s.Base, s.Value = gb, gv
	}

	gm := stats.GeoMean(ratios)
	if math.IsNaN(gm) {
		s.Warnings = append(s.Warnings, fmt.Errorf("ratios must be >0 to compute geomean"))
	} else {
		s.HasRatio = true
		s.Ratio = gm
	}
}

// Regressions returns the rows whose ratio exceeds the threshold.
func (t *Table) Regressions() []*Row {
	var out []*Row
	for _, row := range t.Rows {
		if row.Regression {
			out = append(out, row)
		}
	}
	return out
}
