// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benchtrack/benchtrack/commit"
	"github.com/benchtrack/benchtrack/extract"
	"github.com/benchtrack/benchtrack/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// testdata returns the absolute path of a file in testdata.
func testdata(t *testing.T, name string) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)
	return path
}

// isolate runs the test in an empty directory with no CI environment.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"GITHUB_EVENT_PATH", "GITHUB_TOKEN", "GITHUB_REPOSITORY", "GITHUB_REF", "GITHUB_API_URL"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errb bytes.Buffer
	cmd := newRootCmd(&out, &errb)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	t.Logf("benchtrack %s", strings.Join(args, " "))
	err = cmd.Execute()
	return out.String(), errb.String(), err
}

func TestExtractJSON(t *testing.T) {
	input := testdata(t, "catch2.txt")
	isolate(t)

	out, _, err := run(t, "", "extract", "--commit", "deadbeef", input)
	require.NoError(t, err)

	var rep extract.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "deadbeef", rep.Commit.ID)
	assert.Equal(t, "catch2", rep.Tool)
	var names []string
	for _, b := range rep.Benches {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"Fibonacci 10", "Fibonacci 20", "std::sort 1000"}, names)
	assert.Equal(t, "100 samples, 2 iterations", rep.Benches[1].Extra)
}

func TestExtractEventYAML(t *testing.T) {
	input, event := testdata(t, "catch2.txt"), testdata(t, "push.json")
	isolate(t)

	out, _, err := run(t, "", "extract", "--event", event, "--format", "yaml", input)
	require.NoError(t, err)

	var rep struct {
		Commit  commit.Commit `yaml:"commit"`
		Benches []struct {
			Name  string  `yaml:"name"`
			Value float64 `yaml:"value"`
			Unit  string  `yaml:"unit"`
		} `yaml:"benches"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "0123abcd4567ef", rep.Commit.ID)
	assert.Equal(t, "ada", rep.Commit.Author.Username)
	require.Len(t, rep.Benches, 3)
	assert.Equal(t, 43.186, rep.Benches[1].Value)
	assert.Equal(t, "us", rep.Benches[1].Unit)
}

func TestExtractTextStdin(t *testing.T) {
	data, err := os.ReadFile(testdata(t, "catch2.txt"))
	require.NoError(t, err)
	isolate(t)

	out, _, err := run(t, string(data), "extract", "--commit", "abc", "--format", "text", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "commit: abc\n")
	assert.Contains(t, out, "benchmark name")
	assert.Contains(t, out, "Fibonacci 20")
	assert.Contains(t, out, "43.186 us")
}

func TestExtractBenchfmt(t *testing.T) {
	input := testdata(t, "catch2.txt")
	isolate(t)

	out, _, err := run(t, "", "extract", "--commit", "abc", "--format", "benchfmt", input)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "tool: catch2\ncommit: abc\ndate: "), out)
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Benchmark") {
			lines = append(lines, line)
		}
	}
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "BenchmarkFibonacci_10 208 "), lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "Benchmarkstd::sort_1000 1 "), lines[2])
	assert.Contains(t, lines[1], " ns/op ")
	assert.True(t, strings.HasSuffix(lines[1], " stddev-ns/op"), lines[1])
}

func TestExtractErrors(t *testing.T) {
	input := testdata(t, "catch2.txt")
	dir := isolate(t)
	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("All tests passed\n"), 0o644))

	_, _, err := run(t, "", "extract", "--tool", "googlebench", "--commit", "abc", input)
	assert.ErrorIs(t, err, extract.ErrUnsupportedTool)

	_, _, err = run(t, "", "extract", "--commit", "abc", empty)
	assert.ErrorIs(t, err, extract.ErrEmptyResult)

	// No payload and no token.
	_, _, err = run(t, "", "extract", input)
	assert.ErrorIs(t, err, commit.ErrUnavailable)

	_, _, err = run(t, "", "extract", "--commit", "abc", "--format", "xml", input)
	assert.ErrorContains(t, err, "invalid configuration")

	_, _, err = run(t, "", "extract", "--commit", "abc", "--save", input)
	assert.ErrorContains(t, err, "no report database configured")
}

func TestSaveCompareHistory(t *testing.T) {
	fast, slow := testdata(t, "catch2.txt"), testdata(t, "catch2-slow.txt")
	dir := isolate(t)
	db := []string{"--db-driver", "sqlite3", "--db-dsn", filepath.Join(dir, "bench.db")}

	args := func(a ...string) []string { return append(append([]string(nil), db...), a...) }

	_, _, err := run(t, "", args("extract", "--save", "--commit", "1111111aaaa", fast)...)
	require.NoError(t, err)
	_, _, err = run(t, "", args("extract", "--save", "--commit", "2222222bbbb", slow)...)
	require.NoError(t, err)

	out, _, err := run(t, "", args("history")...)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "COMMIT")
	assert.Contains(t, lines[1], "2222222bbbb")
	assert.Contains(t, lines[2], "1111111aaaa")

	out, _, err = run(t, "", args("history", "--bench", "Fibonacci 20")...)
	require.NoError(t, err)
	assert.Contains(t, out, "98.41 us")
	assert.Contains(t, out, "43.19 us")

	out, _, err = run(t, "", args("compare")...)
	require.NoError(t, err)
	assert.Contains(t, out, "1111111")
	assert.Contains(t, out, "2222222")
	assert.Contains(t, out, "! 1 regression(s) above 2x")

	_, _, err = run(t, "", args("compare", "--fail-on-regression")...)
	assert.ErrorContains(t, err, `first "Fibonacci 20"`)

	_, _, err = run(t, "", args("compare", "--threshold", "3", "--fail-on-regression")...)
	assert.NoError(t, err)
}

func TestCompareFiles(t *testing.T) {
	fast, slow := testdata(t, "catch2.txt"), testdata(t, "catch2-slow.txt")
	dir := isolate(t)

	write := func(name, input, id string) string {
		out, _, err := run(t, "", "extract", "--commit", id, input)
		require.NoError(t, err)
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(out), 0o644))
		return path
	}
	older, newer := write("old.json", fast, "aaa"), write("new.json", slow, "bbb")

	out, stderr, err := run(t, "", "compare", "--csv", older, newer)
	require.NoError(t, err)
	assert.Contains(t, out, "name,previous sec,current sec,vs base,regression\n")
	assert.Contains(t, out, "Fibonacci 20,")
	assert.Contains(t, out, ",true\n")
	assert.Empty(t, stderr)

	_, _, err = run(t, "", "compare", older)
	assert.ErrorContains(t, err, "no report database configured")
}

func TestPublishDataFile(t *testing.T) {
	input := testdata(t, "catch2.txt")
	dir := isolate(t)
	data := filepath.Join(dir, "dev", "bench", "data.js")

	out, _, err := run(t, "", "extract", "--commit", "abc", input)
	require.NoError(t, err)

	_, _, err = run(t, out, "publish", "--data-file", data, "-")
	require.NoError(t, err)
	_, _, err = run(t, "", "extract", "--commit", "def", "--publish", "--data-file", data, input)
	assert.ErrorContains(t, err, "unknown flag: --data-file")

	t.Setenv("BENCHTRACK_SINKS_DATAFILE_PATH", data)
	_, _, err = run(t, "", "extract", "--commit", "def", "--publish", input)
	require.NoError(t, err)

	dd, err := sink.ReadDataFile(data)
	require.NoError(t, err)
	entries := dd.Entries[sink.DefaultSuite]
	require.Len(t, entries, 2)
	assert.Equal(t, "abc", entries[0].Commit.ID)
	assert.Equal(t, "def", entries[1].Commit.ID)
	assert.Len(t, entries[1].Benches, 3)
}

func TestPublishNoSinks(t *testing.T) {
	input := testdata(t, "catch2.txt")
	isolate(t)
	out, _, err := run(t, "", "extract", "--commit", "abc", input)
	require.NoError(t, err)
	_, _, err = run(t, out, "publish", "-")
	assert.EqualError(t, err, "no sinks configured")
}
