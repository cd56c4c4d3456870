// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package extract turns the captured output of a benchmark tool into a
// Report tied to the commit that was benchmarked.
//
// Parsing always runs to completion before the commit is resolved, and
// every failure is fatal: Extract either returns a Report with at
// least one result or an error.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/benchtrack/benchtrack/catch2fmt"
	"github.com/benchtrack/benchtrack/commit"
	"github.com/google/uuid"
)

var (
	// ErrUnsupportedTool reports a tool with no registered grammar.
	ErrUnsupportedTool = errors.New("unexpected tool")

	// ErrEmptyResult reports output that contains no benchmark results.
	ErrEmptyResult = errors.New("no benchmark result was found")
)

// A Report is the result of one extraction.
type Report struct {
	// ID identifies the extraction run.
	ID uuid.UUID `json:"id" yaml:"id"`

	Commit *commit.Commit `json:"commit" yaml:"commit"`

	// Date is when the report was captured, not the commit time.
	Date time.Time `json:"date" yaml:"date"`

	Tool    string             `json:"tool" yaml:"tool"`
	Benches []catch2fmt.Result `json:"benches" yaml:"benches"`
}

// A ParseFunc parses the complete output of one tool. name is used in
// error messages only.
type ParseFunc func(name, output string) ([]catch2fmt.Result, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]ParseFunc{
		"catch2": parseCatch2,
	}
)

// Register makes a grammar available under the tool name. It panics
// if the name is already registered.
func Register(tool string, parse ParseFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[tool]; dup {
		panic("extract: Register called twice for tool " + tool)
	}
	registry[tool] = parse
}

// Tools returns the sorted names of the supported tools.
func Tools() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	tools := make([]string, 0, len(registry))
	for t := range registry {
		tools = append(tools, t)
	}
	sort.Strings(tools)
	return tools
}

func lookup(tool string) (ParseFunc, error) {
	registryMu.RLock()
	parse, ok := registry[tool]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedTool, tool, strings.Join(Tools(), ", "))
	}
	return parse, nil
}

// Parse parses the output of tool into results, in the order they
// appear in output.
func Parse(tool, output string) ([]catch2fmt.Result, error) {
	return parse(tool, "", output)
}

func parse(tool, name, output string) ([]catch2fmt.Result, error) {
	fn, err := lookup(tool)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = tool + " output"
	}
	results, err := fn(name, output)
	if err != nil {
		return nil, &OutputError{Tool: tool, Output: output, Err: err}
	}
	if len(results) == 0 {
		return nil, &OutputError{Tool: tool, Output: output, Err: fmt.Errorf("%w in %s", ErrEmptyResult, name)}
	}
	return results, nil
}

// An OutputError is a parse failure. It carries the raw tool output
// so that a malformed report can be diagnosed without rerunning the
// benchmarks.
type OutputError struct {
	Tool   string
	Output string
	Err    error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("%v. %s output was:\n%s", e.Err, e.Tool, e.Output)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

func parseCatch2(name, output string) ([]catch2fmt.Result, error) {
	var results []catch2fmt.Result
	r := catch2fmt.NewReader(strings.NewReader(output), name)
	for r.Scan() {
		results = append(results, r.Result())
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// An Extractor builds Reports.
type Extractor struct {
	// Resolver determines the commit of each report.
	Resolver commit.Resolver

	// Now returns the capture time. If nil, time.Now is used.
	Now func() time.Time

	// Logger, if nil, is slog.Default().
	Logger *slog.Logger
}

// Extract parses output as the output of tool and pairs the results
// with the resolved commit.
func (x *Extractor) Extract(ctx context.Context, tool, output string) (*Report, error) {
	return x.extract(ctx, tool, "", output)
}

// ExtractFile is like Extract but reads the output from the file at
// path first.
func (x *Extractor) ExtractFile(ctx context.Context, tool, path string) (*Report, error) {
	if _, err := lookup(tool); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading benchmark output: %w", err)
	}
	return x.extract(ctx, tool, path, string(data))
}

func (x *Extractor) extract(ctx context.Context, tool, name, output string) (*Report, error) {
	logger := x.Logger
	if logger == nil {
		logger = slog.Default()
	}

	benches, err := parse(tool, name, output)
	if err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "parsed benchmark output", "tool", tool, "benches", len(benches))

	if x.Resolver == nil {
		return nil, fmt.Errorf("extract: no commit resolver: %w", commit.ErrUnavailable)
	}
	c, err := x.Resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if x.Now != nil {
		now = x.Now
	}
	rep := &Report{
		ID:      uuid.New(),
		Commit:  c,
		Date:    now(),
		Tool:    tool,
		Benches: benches,
	}
	logger.InfoContext(ctx, "extracted benchmark report", "id", rep.ID, "commit", c.ID, "benches", len(benches))
	return rep, nil
}
