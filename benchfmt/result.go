// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchfmt writes benchmark reports in the Go benchmark
// format, so they can be fed to tools such as benchstat.
//
// This implements the format documented at
// https://golang.org/design/14313-benchmark-format.
package benchfmt

import (
	"strings"
	"time"
	"unicode"

	"github.com/benchtrack/benchtrack/catch2fmt"
	"github.com/benchtrack/benchtrack/extract"
)

// A Result is a single benchmark result and all of its measurements.
type Result struct {
	// FileConfig is the set of file-level key/value pairs in
	// effect for this result. Use SetFileConfig to add or delete
	// keys.
	FileConfig []Config

	// Name is the benchmark name without the "Benchmark" prefix.
	// It contains no spaces.
	Name string

	// Iters is the number of iterations this benchmark's results
	// were averaged over.
	Iters int

	// Values is this benchmark's measurements and their units.
	Values []Value

	// configPos maps from Config.Key to index in FileConfig. This
	// may be nil, which indicates the index needs to be
	// constructed.
	configPos map[string]int
}

// A Config is a single key/value configuration pair.
type Config struct {
	Key   string
	Value string
}

// A Value is a single value/unit measurement from a benchmark result.
//
// Values use base units like "sec/op". OrigValue and OrigUnit, if
// OrigUnit is non-empty, give the value as it is written.
type Value struct {
	Value float64
	Unit  string

	OrigValue float64
	OrigUnit  string
}

// SetFileConfig sets file configuration key to value, overriding or
// adding the configuration as necessary. If value is "",
// SetFileConfig deletes key.
func (r *Result) SetFileConfig(key, value string) {
	if value == "" {
		r.deleteFileConfig(key)
		return
	}
	pos, ok := r.FileConfigIndex(key)
	if ok {
		r.FileConfig[pos].Value = value
		return
	}
	r.configPos[key] = len(r.FileConfig)
	r.FileConfig = append(r.FileConfig, Config{key, value})
}

func (r *Result) deleteFileConfig(key string) {
	pos, ok := r.FileConfigIndex(key)
	if !ok {
		return
	}
	// Swap with the final element so the order stays deterministic.
	last := len(r.FileConfig) - 1
	r.FileConfig[pos] = r.FileConfig[last]
	r.configPos[r.FileConfig[pos].Key] = pos
	r.FileConfig = r.FileConfig[:last]
	delete(r.configPos, key)
}

// GetFileConfig returns the value of a file configuration key, or ""
// if not present.
func (r *Result) GetFileConfig(key string) string {
	pos, ok := r.FileConfigIndex(key)
	if !ok {
		return ""
	}
	return r.FileConfig[pos].Value
}

// FileConfigIndex returns the index in r.FileConfig of key.
func (r *Result) FileConfigIndex(key string) (pos int, ok bool) {
	if r.configPos == nil {
		r.configPos = make(map[string]int)
		for i, cfg := range r.FileConfig {
			r.configPos[cfg.Key] = i
		}
	}
	pos, ok = r.configPos[key]
	return
}

// Value returns the measurement for the given unit.
func (r *Result) Value(unit string) (float64, bool) {
	for _, v := range r.Values {
		if v.Unit == unit {
			return v.Value, true
		}
	}
	return 0, false
}

// nanoseconds gives the number of nanoseconds per time unit.
var nanoseconds = map[catch2fmt.Unit]float64{
	catch2fmt.Nanoseconds:  1,
	catch2fmt.Microseconds: 1e3,
	catch2fmt.Milliseconds: 1e6,
	catch2fmt.Seconds:      1e9,
}

// FromReport converts the benchmarks of rep to Results. The commit,
// tool and capture date become file configuration. Benchmarks whose
// mean is not in a time unit are skipped.
func FromReport(rep *extract.Report) []*Result {
	var out []*Result
	for _, b := range rep.Benches {
		ns, ok := nanoseconds[b.ValueUnit]
		if !ok {
			continue
		}
		res := &Result{
			Name:  Name(b.Name),
			Iters: b.Iterations,
			Values: []Value{
				{Value: b.Value * ns / 1e9, Unit: "sec/op", OrigValue: b.Value * ns, OrigUnit: "ns/op"},
			},
		}
		if res.Iters <= 0 {
			res.Iters = 1
		}
		if ns, ok := nanoseconds[b.RangeUnit]; ok {
			res.Values = append(res.Values, Value{Value: b.Range * ns, Unit: "stddev-ns/op"})
		}
		res.SetFileConfig("tool", rep.Tool)
		if rep.Commit != nil {
			res.SetFileConfig("commit", rep.Commit.ID)
		}
		if !rep.Date.IsZero() {
			res.SetFileConfig("date", rep.Date.UTC().Format(time.RFC3339))
		}
		out = append(out, res)
	}
	return out
}

// Name converts a benchmark name to a valid Go benchmark name by
// replacing each run of white space with an underscore.
func Name(name string) string {
	return strings.Join(strings.FieldsFunc(name, unicode.IsSpace), "_")
}
