// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package catch2fmt

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// nameWidth is the width of the benchmark name column. Longer names
// push the remaining columns to the right, as Catch2 does.
const nameWidth = 32

// A Writer writes benchmark entries in the Catch2 console layout.
//
// All entries written to a Writer form a single suite. The low and
// high bounds are not retained by Result, so the Writer repeats the
// point estimate in their place.
type Writer struct {
	w   io.Writer
	buf bytes.Buffer

	first bool
}

// NewWriter returns a writer that writes Catch2 entries to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, first: true}
}

// Write writes benchmark entry res to w, preceded by the suite header
// if this is the first entry.
func (w *Writer) Write(res Result) error {
	if w.first {
		w.writeHeader()
		w.first = false
	}

	est := res.Estimated
	if !est.Unit.Valid() {
		est = res.Mean()
	}
	pad := nameWidth
	if len(res.Name) >= pad {
		pad = len(res.Name) + 1
	}
	fmt.Fprintf(&w.buf, "%-*s%-14d%-14d%s\n", pad, res.Name, res.Samples, res.Iterations, formatDuration(est))
	w.writeEstimate(res.Mean())
	w.writeEstimate(res.StdDev())
	w.buf.WriteByte('\n')

	// Flush the buffer out to the io.Writer. Write to the buffer
	// can't fail, so we only have to check if this fails.
	_, err := w.w.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

func (w *Writer) writeHeader() {
	indent := strings.Repeat(" ", nameWidth)
	fmt.Fprintf(&w.buf, "%-*s%-14s%-14s%s\n", nameWidth, "benchmark name", "samples", "iterations", "estimated")
	fmt.Fprintf(&w.buf, "%s%-14s%-14s%s\n", indent, "mean", "low mean", "high mean")
	fmt.Fprintf(&w.buf, "%s%-14s%-14s%s\n", indent, "std dev", "low std dev", "high std dev")
	w.buf.WriteString(strings.Repeat("-", nameWidth+14+14+14))
	w.buf.WriteByte('\n')
}

func (w *Writer) writeEstimate(d Duration) {
	s := formatDuration(d)
	fmt.Fprintf(&w.buf, "%s%-14s%-14s%s\n", strings.Repeat(" ", nameWidth), s, s, s)
}

// formatDuration formats d without exponents, which the grammar does
// not accept.
func formatDuration(d Duration) string {
	return strconv.FormatFloat(d.Value, 'f', -1, 64) + " " + string(d.Unit)
}
