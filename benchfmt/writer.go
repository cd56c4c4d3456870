// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchfmt

import (
	"bufio"
	"io"
	"strconv"
)

// A Writer writes the Go benchmark format.
//
// A file configuration block is written whenever a result's
// configuration differs from the last one written, so results from
// several reports keep their own tool, commit and date.
type Writer struct {
	w *bufio.Writer

	wrote   bool
	current []Config
}

// NewWriter returns a writer that writes Go benchmark results to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes res, preceded by a configuration block if needed.
// Values with a non-empty OrigUnit are written as OrigValue OrigUnit.
func (w *Writer) Write(res *Result) error {
	if !sameConfig(w.current, res.FileConfig) {
		w.writeConfig(res.FileConfig)
	}
	w.wrote = true

	w.w.WriteString("Benchmark")
	w.w.WriteString(res.Name)
	w.w.WriteByte(' ')
	w.w.WriteString(strconv.Itoa(res.Iters))
	for _, val := range res.Values {
		v, unit := val.Value, val.Unit
		if val.OrigUnit != "" {
			v, unit = val.OrigValue, val.OrigUnit
		}
		w.w.WriteByte(' ')
		w.w.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		w.w.WriteByte(' ')
		w.w.WriteString(unit)
	}
	w.w.WriteByte('\n')
	return w.w.Flush()
}

// writeConfig writes the keys that changed from w.current to next. A
// key that is no longer set is written with an empty value, which
// clears it for readers.
func (w *Writer) writeConfig(next []Config) {
	if w.wrote {
		w.w.WriteByte('\n')
	}
	for _, old := range w.current {
		if _, ok := lookup(next, old.Key); !ok {
			w.w.WriteString(old.Key + ":\n")
		}
	}
	for _, cfg := range next {
		if v, ok := lookup(w.current, cfg.Key); ok && v == cfg.Value {
			continue
		}
		w.w.WriteString(cfg.Key + ": " + cfg.Value + "\n")
	}
	w.w.WriteByte('\n')
	w.current = append(w.current[:0], next...)
}

func lookup(cfg []Config, key string) (string, bool) {
	for _, c := range cfg {
		if c.Key == key {
			return c.Value, true
		}
	}
	return "", false
}

func sameConfig(a, b []Config) bool {
	if len(a) != len(b) {
		return false
	}
	for _, c := range b {
		if v, ok := lookup(a, c.Key); !ok || v != c.Value {
			return false
		}
	}
	return true
}

// WriteAll writes results to w.
func WriteAll(w io.Writer, results []*Result) error {
	bw := NewWriter(w)
	for _, res := range results {
		if err := bw.Write(res); err != nil {
			return err
		}
	}
	return nil
}
