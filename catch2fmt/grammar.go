// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package catch2fmt

import (
	"regexp"
	"strconv"
	"strings"
)

// Line rules of the report grammar. Each rule classifies a single
// line; the Reader strings them together.
var (
	headerRe    = regexp.MustCompile(`^benchmark name +samples +iterations +(?:estimated|est run time)`)
	separatorRe = regexp.MustCompile(`^-+$`)
	entryRe     = regexp.MustCompile(`(\d+) +(\d+) +(\d+(?:\.\d+)?) +(ns|us|ms|s)\s*$`)
	estimateRe  = regexp.MustCompile(`^\s+(\d+(?:\.\d+)?) +(ns|us|ms|s) +\d+(?:\.\d+)? +(?:ns|us|ms|s) +\d+(?:\.\d+)? +(?:ns|us|ms|s)`)
)

// IsHeader reports whether line opens a benchmark suite.
func IsHeader(line string) bool {
	return headerRe.MatchString(line)
}

// IsSeparator reports whether line consists only of dashes.
func IsSeparator(line string) bool {
	return separatorRe.MatchString(line)
}

// An Entry is the first line of a benchmark: its name, sample count,
// iteration count and estimated run time.
type Entry struct {
	Name string

	// Samples and Iterations are the counts exactly as printed.
	Samples, Iterations string

	Estimated Duration
}

// Counts converts the sample and iteration counts. ok is false if
// either does not fit in an int.
func (e Entry) Counts() (samples, iterations int, ok bool) {
	samples, err1 := strconv.Atoi(e.Samples)
	iterations, err2 := strconv.Atoi(e.Iterations)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return samples, iterations, true
}

// MatchEntry parses line as an entry line. The name is everything
// before the trailing counts and estimate, trimmed.
//
// The rule is anchored at the end of the line only, so a name that
// itself ends in something shaped like "<int> <int> <float> <unit>"
// is split at the leftmost such suffix.
func MatchEntry(line string) (e Entry, ok bool) {
	m := entryRe.FindStringSubmatchIndex(line)
	if m == nil {
		return Entry{}, false
	}
	est, err := strconv.ParseFloat(line[m[6]:m[7]], 64)
	if err != nil {
		return Entry{}, false
	}
	return Entry{
		Name:       strings.TrimSpace(line[:m[0]]),
		Samples:    line[m[2]:m[3]],
		Iterations: line[m[4]:m[5]],
		Estimated:  Duration{est, Unit(line[m[8]:m[9]])},
	}, true
}

// MatchEstimate parses line as a mean or standard deviation line,
// which carries a point estimate followed by its low and high bounds.
// Only the point estimate is returned.
func MatchEstimate(line string) (d Duration, ok bool) {
	m := estimateRe.FindStringSubmatch(line)
	if m == nil {
		return Duration{}, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Duration{}, false
	}
	return Duration{v, Unit(m[2])}, true
}
