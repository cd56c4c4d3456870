// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benchtrack/benchtrack/catch2fmt"
	"github.com/benchtrack/benchtrack/commit"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = `benchmark name samples       iterations    estimated
               mean          low mean      high mean
               std dev       low std dev   high std dev
-----------------------------------------------------
`

const fibonacci = header + `Fibonacci 20   100           2             8.4318 ms
               43.186 us     41.402 us     46.246 us
               11.719 us      7.847 us     17.747 us
`

func entry(name string, i int) string {
	return fmt.Sprintf("%s   100   1   %d.5 ms\n  %d.25 us  1 us  2 us\n  0.5 ms  0.1 ms  0.9 ms\n\n", name, i, i)
}

// suites returns output with one suite per element of sizes, each with
// the given number of entries, and the names in encounter order.
func suites(sizes ...int) (string, []string) {
	var b strings.Builder
	var names []string
	for s, k := range sizes {
		b.WriteString("~~~~~~~~~~~~~~~\nsome test case\n~~~~~~~~~~~~~~~\n\n")
		b.WriteString(header)
		for i := 0; i < k; i++ {
			name := fmt.Sprintf("suite%d bench%d", s, i)
			names = append(names, name)
			b.WriteString(entry(name, i))
		}
		b.WriteString("===============\n\n")
	}
	return b.String(), names
}

func TestParseScenario(t *testing.T) {
	res, err := Parse("catch2", fibonacci)
	require.NoError(t, err)
	require.Len(t, res, 1)

	got := res[0]
	assert.Equal(t, "Fibonacci 20", got.Name)
	assert.Equal(t, 43.186, got.Value)
	assert.Equal(t, catch2fmt.Microseconds, got.ValueUnit)
	assert.Equal(t, 11.719, got.Range)
	assert.Equal(t, catch2fmt.Microseconds, got.RangeUnit)
	assert.Contains(t, got.Extra, "100")
	assert.Contains(t, got.Extra, "2")
}

func TestParseOrder(t *testing.T) {
	for _, sizes := range [][]int{{1}, {3}, {2, 1}, {1, 4, 2}} {
		t.Run(fmt.Sprint(sizes), func(t *testing.T) {
			out, names := suites(sizes...)
			res, err := Parse("catch2", out)
			require.NoError(t, err)
			var got []string
			for _, r := range res {
				got = append(got, r.Name)
			}
			assert.Equal(t, names, got)
		})
	}
}

func TestParseIndependentUnits(t *testing.T) {
	out := header + "mixed   10   1   1 s\n  3 us  2 us  4 us\n  1.5 ms  1 ms  2 ms\n"
	res, err := Parse("catch2", out)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 3.0, res[0].Value)
	assert.Equal(t, catch2fmt.Microseconds, res[0].ValueUnit)
	assert.Equal(t, 1.5, res[0].Range)
	assert.Equal(t, catch2fmt.Milliseconds, res[0].RangeUnit)
}

func TestParseErrors(t *testing.T) {
	for _, test := range []struct {
		name   string
		tool   string
		output string
		kind   error
		msg    string
	}{
		{"unsupported", "pytest", fibonacci, ErrUnsupportedTool, `unexpected tool: "pytest"`},
		{"empty", "catch2", "", ErrEmptyResult, "no benchmark result was found in catch2 output"},
		{"no header", "catch2", "All tests passed (3 assertions in 1 test case)\n", ErrEmptyResult, "All tests passed"},
		{"no separator", "catch2", "benchmark name samples iterations estimated\n  mean low high\n", catch2fmt.ErrMalformedSuite, "separator not found"},
		{"no entries", "catch2", header + "===\n", catch2fmt.ErrMalformedSuite, "no benchmark found in suite"},
		{"entry then separator", "catch2", header + "Fib   10   1   1 ms\n-----\n", catch2fmt.ErrMalformedRecord, `benchmark "Fib"`},
	} {
		t.Run(test.name, func(t *testing.T) {
			res, err := Parse(test.tool, test.output)
			assert.Nil(t, res)
			require.Error(t, err)
			assert.ErrorIs(t, err, test.kind)
			assert.Contains(t, err.Error(), test.msg)
			if test.kind != ErrUnsupportedTool {
				var oe *OutputError
				require.ErrorAs(t, err, &oe)
				assert.Equal(t, test.output, oe.Output)
			}
		})
	}
}

func TestParseRecordErrorLine(t *testing.T) {
	_, err := Parse("catch2", header+"Fib   10   1   1 ms\n")
	var se *catch2fmt.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Fib", se.Bench)
	assert.Equal(t, 6, se.Line)
	assert.Contains(t, se.Msg, "got EOF")
}

func TestRegister(t *testing.T) {
	assert.Equal(t, []string{"catch2"}, Tools())
	assert.Panics(t, func() { Register("catch2", parseCatch2) })
}

type stubResolver struct {
	called *bool
	c      *commit.Commit
	err    error
}

func (s stubResolver) Resolve(ctx context.Context) (*commit.Commit, error) {
	*s.called = true
	return s.c, s.err
}

func TestExtract(t *testing.T) {
	var called bool
	at := time.Date(2026, 4, 5, 6, 7, 8, 0, time.UTC)
	x := &Extractor{
		Resolver: stubResolver{called: &called, c: &commit.Commit{ID: "abc"}},
		Now:      func() time.Time { return at },
	}
	rep, err := x.Extract(context.Background(), "catch2", fibonacci)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "abc", rep.Commit.ID)
	assert.Equal(t, at, rep.Date)
	assert.Equal(t, "catch2", rep.Tool)
	assert.Len(t, rep.Benches, 1)
	assert.NotEqual(t, uuid.Nil, rep.ID)
}

func TestExtractParsesBeforeResolving(t *testing.T) {
	var called bool
	x := &Extractor{Resolver: stubResolver{called: &called, c: &commit.Commit{}}}

	_, err := x.Extract(context.Background(), "catch2", "garbage")
	assert.ErrorIs(t, err, ErrEmptyResult)
	assert.False(t, called, "commit resolved for unparsable output")

	_, err = x.Extract(context.Background(), "gotest", fibonacci)
	assert.ErrorIs(t, err, ErrUnsupportedTool)
	assert.False(t, called)
}

func TestExtractCommitError(t *testing.T) {
	var called bool
	boom := errors.New("boom")
	x := &Extractor{Resolver: stubResolver{called: &called, err: boom}}
	_, err := x.Extract(context.Background(), "catch2", fibonacci)
	assert.ErrorIs(t, err, boom)

	_, err = (&Extractor{}).Extract(context.Background(), "catch2", fibonacci)
	assert.ErrorIs(t, err, commit.ErrUnavailable)
}

func TestExtractFile(t *testing.T) {
	var called bool
	x := &Extractor{Resolver: stubResolver{called: &called, c: &commit.Commit{ID: "abc"}}}
	dir := t.TempDir()

	path := filepath.Join(dir, "output.txt")
	require.NoError(t, os.WriteFile(path, []byte(fibonacci), 0o644))
	rep, err := x.ExtractFile(context.Background(), "catch2", path)
	require.NoError(t, err)
	assert.Equal(t, "Fibonacci 20", rep.Benches[0].Name)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = x.ExtractFile(context.Background(), "catch2", empty)
	assert.ErrorIs(t, err, ErrEmptyResult)
	assert.Contains(t, err.Error(), empty)

	_, err = x.ExtractFile(context.Background(), "catch2", filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = x.ExtractFile(context.Background(), "nope", filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, ErrUnsupportedTool)
}
