// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package catch2fmt

import (
	"bufio"
	"io"
	"strings"
)

// Lines is a forward-only sequence of report lines with one line of
// lookahead.
//
// Lines are split at "\n" or "\r\n" and are otherwise returned
// unmodified. Line length is unbounded.
type Lines struct {
	r       *bufio.Reader
	eof     bool
	lineNum int
	err     error

	peeked  bool
	peek    string
	peekEOF bool
}

// NewLines returns a Lines reading from r.
func NewLines(r io.Reader) *Lines {
	return &Lines{r: bufio.NewReader(r)}
}

// LinesFromString returns a Lines over the text of s.
func LinesFromString(s string) *Lines {
	return NewLines(strings.NewReader(s))
}

func (l *Lines) fill() {
	if l.peeked {
		return
	}
	l.peeked = true
	l.peek, l.peekEOF = "", true
	if l.eof {
		return
	}
	line, err := l.r.ReadString('\n')
	if err != nil {
		l.eof = true
		if err != io.EOF {
			l.err = err
		}
		// A final line without a newline still counts.
		if line == "" {
			return
		}
	}
	line = strings.TrimSuffix(line, "\n")
	l.peek, l.peekEOF = strings.TrimSuffix(line, "\r"), false
}

// Peek returns the next line without consuming it. ok is false at the
// end of input.
func (l *Lines) Peek() (line string, ok bool) {
	l.fill()
	return l.peek, !l.peekEOF
}

// Next consumes and returns the next line. ok is false at the end of
// input.
func (l *Lines) Next() (line string, ok bool) {
	l.fill()
	if l.peekEOF {
		return "", false
	}
	l.peeked = false
	l.lineNum++
	return l.peek, true
}

// Line returns the 1-based number of the last line returned by Next,
// or 0 if Next has not returned a line yet.
func (l *Lines) Line() int {
	return l.lineNum
}

// Err returns the first non-EOF I/O error from the underlying reader.
func (l *Lines) Err() error {
	return l.err
}
