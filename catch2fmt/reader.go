// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package catch2fmt

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Kinds of syntax errors. A *SyntaxError unwraps to one of these.
var (
	// ErrMalformedSuite reports a suite header that is not closed by
	// a separator, or a suite that contains no benchmark entries.
	ErrMalformedSuite = errors.New("malformed benchmark suite")

	// ErrMalformedRecord reports a benchmark entry whose mean or
	// standard deviation line is missing or malformed.
	ErrMalformedRecord = errors.New("malformed benchmark entry")
)

// A SyntaxError represents a syntax error on a particular line of a
// benchmark report.
type SyntaxError struct {
	FileName string
	Line     int

	// Bench is the name of the benchmark being parsed, if any.
	Bench string

	Msg string

	// Kind is ErrMalformedSuite or ErrMalformedRecord.
	Kind error
}

func (s *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", s.FileName, s.Line, s.Msg)
}

func (s *SyntaxError) Unwrap() error {
	return s.Kind
}

// A Reader reads benchmark entries from a Catch2 console report.
//
// The zero value of the Reader is a valid Reader, but the user must
// call Reset before using it.
type Reader struct {
	lines    *Lines
	fileName string
	err      error

	// inSuite is set between a suite's separator and the first
	// line that is not a benchmark entry.
	inSuite   bool
	suiteLine int
	suiteLen  int

	result Result
}

// NewReader constructs a reader to parse a Catch2 report from r.
// fileName is used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input.
func (r *Reader) Reset(ior io.Reader, fileName string) {
	r.lines = NewLines(ior)
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.fileName = fileName
	r.err = nil
	r.inSuite = false
	r.suiteLine = 0
	r.suiteLen = 0
	r.result = Result{}
}

// Scan advances the reader to the next benchmark entry and reports
// whether an entry was read. The caller should use the Result method
// to get it. If Scan reaches EOF or an error occurs, it returns false,
// in which case the caller should use the Err method to check for
// errors. Every error is fatal: once Scan returns false it keeps
// returning false.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	for {
		if !r.inSuite {
			if !r.nextSuite() {
				return false
			}
		}
		res, ok, err := r.parseEntry()
		if err != nil {
			r.err = err
			return false
		}
		if ok {
			r.suiteLen++
			r.result = res
			return true
		}
		// The suite ended at a line that is not an entry.
		r.inSuite = false
		if err := r.ioErr(); err != nil {
			r.err = err
			return false
		}
		if r.suiteLen == 0 {
			r.err = &SyntaxError{r.fileName, r.suiteLine, "", "no benchmark found in suite", ErrMalformedSuite}
			return false
		}
	}
}

// nextSuite discards lines up to the next suite header and then
// consumes the header block up to its closing separator. It reports
// whether a suite was entered; if not, r.err says why, or is nil at
// a clean EOF.
func (r *Reader) nextSuite() bool {
	for {
		line, ok := r.lines.Next()
		if !ok {
			r.err = r.ioErr()
			return false
		}
		if IsHeader(line) {
			break
		}
	}
	header := r.lines.Line()
	for {
		line, ok := r.lines.Next()
		if !ok {
			if r.err = r.ioErr(); r.err == nil {
				r.err = &SyntaxError{r.fileName, header, "", "separator not found after benchmark header", ErrMalformedSuite}
			}
			return false
		}
		if IsSeparator(line) {
			break
		}
	}
	r.inSuite = true
	r.suiteLine = header
	r.suiteLen = 0
	return true
}

// parseEntry parses one benchmark entry starting at the next line.
// Blank lines before the entry are skipped. If the first other line
// is not an entry line it is left unconsumed and
// parseEntry returns ok == false, meaning the suite has no more
// benchmarks.
func (r *Reader) parseEntry() (res Result, ok bool, err error) {
	// Catch2 separates entries with blank lines.
	line, ok := r.lines.Peek()
	for ok && strings.TrimSpace(line) == "" {
		r.lines.Next()
		line, ok = r.lines.Peek()
	}
	if !ok {
		return Result{}, false, nil
	}
	entry, ok := MatchEntry(line)
	if !ok {
		return Result{}, false, nil
	}
	r.lines.Next()
	if entry.Name == "" {
		return Result{}, false, &SyntaxError{r.fileName, r.lines.Line(), "", "missing benchmark name", ErrMalformedRecord}
	}

	mean, err := r.parseEstimate(entry.Name, "mean")
	if err != nil {
		return Result{}, false, err
	}
	stddev, err := r.parseEstimate(entry.Name, "std dev")
	if err != nil {
		return Result{}, false, err
	}

	res = Result{
		Name:      entry.Name,
		Value:     mean.Value,
		ValueUnit: mean.Unit,
		Range:     stddev.Value,
		RangeUnit: stddev.Unit,
		Estimated: entry.Estimated,
	}
	if samples, iters, ok := entry.Counts(); ok {
		res.Samples, res.Iterations = samples, iters
		res.Extra = countsExtra(samples, iters)
	} else {
		res.Extra = noCounts
	}

	return res, true, nil
}

// parseEstimate consumes the next line as the named estimate line of
// benchmark bench.
func (r *Reader) parseEstimate(bench, what string) (Duration, error) {
	line, ok := r.lines.Next()
	if !ok {
		if err := r.ioErr(); err != nil {
			return Duration{}, err
		}
		msg := fmt.Sprintf("%s values cannot be retrieved for benchmark %q: got EOF", what, bench)
		return Duration{}, &SyntaxError{r.fileName, r.lines.Line() + 1, bench, msg, ErrMalformedRecord}
	}
	d, ok := MatchEstimate(line)
	if !ok {
		msg := fmt.Sprintf("%s values cannot be retrieved for benchmark %q: got %q", what, bench, line)
		return Duration{}, &SyntaxError{r.fileName, r.lines.Line(), bench, msg, ErrMalformedRecord}
	}
	return d, nil
}

func (r *Reader) ioErr() error {
	if err := r.lines.Err(); err != nil {
		return fmt.Errorf("%s:%d: %w", r.fileName, r.lines.Line(), err)
	}
	return nil
}

// Result returns the last benchmark entry read.
func (r *Reader) Result() Result {
	return r.result
}

// Err returns the first error encountered by the Reader, or nil if
// the input was read to EOF without errors.
func (r *Reader) Err() error {
	return r.err
}
