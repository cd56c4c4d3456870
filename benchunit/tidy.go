// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchunit normalizes the time units printed by benchmark
// tools so measurements taken in different units can be compared.
package benchunit

import (
	"strconv"
	"strings"
	"sync"
)

type tidyEntry struct {
	tidied string
	factor float64
}

var tidyCache sync.Map // unit string -> *tidyEntry

// Tidy normalizes pre-scaled time units like "us" and "ns/op" to
// "sec" and "sec/op". It returns the tidied version of unit and the
// multiplicative factor to convert a value in unit "unit" to a value
// in unit "tidied". For example, to convert value x in the untidied
// unit to the tidied unit, multiply x by factor.
//
// Units that are not time units are returned unchanged with a factor
// of 1.
func Tidy(unit string) (tidied string, factor float64) {
	// Fast path for the units Catch2 prints.
	if f, ok := timeFactor(unit); ok {
		return "sec", f
	}
	// Fast path for units with no time numerator.
	if !strings.Contains(unit, "/") {
		return unit, 1
	}

	// Check the cache.
	if tc, ok := tidyCache.Load(unit); ok {
		tc := tc.(*tidyEntry)
		return tc.tidied, tc.factor
	}

	// Do the hard work and cache it.
	tidied, factor = tidy(unit)
	tidyCache.Store(unit, &tidyEntry{tidied, factor})
	return
}

func tidy(unit string) (tidied string, factor float64) {
	// Only the numerator is edited; "B/ns" stays as is.
	num, denom, _ := strings.Cut(unit, "/")
	f, ok := timeFactor(num)
	if !ok {
		return unit, 1
	}
	return "sec/" + denom, f
}

func timeFactor(unit string) (float64, bool) {
	switch unit {
	case "s", "sec":
		return 1, true
	case "ms":
		return 1e-3, true
	case "us", "µs":
		return 1e-6, true
	case "ns":
		return 1e-9, true
	}
	return 0, false
}

// Seconds converts value in a time unit to seconds. ok is false if
// unit is not a time unit.
func Seconds(value float64, unit string) (sec float64, ok bool) {
	f, ok := timeFactor(unit)
	return value * f, ok
}

// FormatSeconds formats a duration in seconds using the largest of
// "ns", "us", "ms" and "s" that keeps the value at least 1, with four
// significant digits.
func FormatSeconds(sec float64) string {
	unit, scale := "s", 1.0
	abs := sec
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs == 0 || abs >= 1:
	case abs >= 1e-3:
		unit, scale = "ms", 1e3
	case abs >= 1e-6:
		unit, scale = "us", 1e6
	default:
		unit, scale = "ns", 1e9
	}
	return strconv.FormatFloat(sec*scale, 'g', 4, 64) + " " + unit
}
