// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sink

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benchtrack/benchtrack/catch2fmt"
	"github.com/benchtrack/benchtrack/commit"
	"github.com/benchtrack/benchtrack/extract"
	"github.com/google/uuid"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var captured = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

func testReport(id string) *extract.Report {
	return &extract.Report{
		ID:     uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Commit: &commit.Commit{ID: id, Message: "msg"},
		Date:   captured,
		Tool:   "catch2",
		Benches: []catch2fmt.Result{
			{Name: "Fibonacci 20", Value: 43.186, ValueUnit: catch2fmt.Microseconds, Range: 11.719, RangeUnit: catch2fmt.Microseconds, Extra: "100 samples, 2 iterations", Samples: 100, Iterations: 2},
			{Name: "Sort", Value: 2, ValueUnit: catch2fmt.Milliseconds, Range: 0.5, RangeUnit: catch2fmt.Microseconds, Extra: "100 samples, 1 iterations", Samples: 100, Iterations: 1},
		},
	}
}

func TestDataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev", "bench", "data.js")
	d := &DataFile{
		Path:     path,
		RepoURL:  "https://github.com/o/r",
		MaxItems: 2,
		Now:      func() time.Time { return captured.Add(time.Minute) },
	}
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, d.Publish(ctx, testReport(id)))
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "window.BENCHMARK_DATA = {"))

	data, err := ReadDataFile(path)
	require.NoError(t, err)
	assert.Equal(t, captured.Add(time.Minute).UnixMilli(), data.LastUpdate)
	assert.Equal(t, "https://github.com/o/r", data.RepoURL)
	entries := data.Entries[DefaultSuite]
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Commit.ID)
	assert.Equal(t, "c", entries[1].Commit.ID)
	assert.Equal(t, captured.UnixMilli(), entries[1].Date)
	assert.Equal(t, testReport("c").Benches, entries[1].Benches)

	// A second suite lives alongside the first.
	other := &DataFile{Path: path, Name: "Other"}
	require.NoError(t, other.Publish(ctx, testReport("d")))
	data, err = ReadDataFile(path)
	require.NoError(t, err)
	assert.Len(t, data.Entries[DefaultSuite], 2)
	assert.Len(t, data.Entries["Other"], 1)
	assert.Equal(t, "https://github.com/o/r", data.RepoURL)
}

func TestReadDataFile(t *testing.T) {
	dir := t.TempDir()
	data, err := ReadDataFile(filepath.Join(dir, "missing.js"))
	require.NoError(t, err)
	assert.Empty(t, data.Entries)

	bad := filepath.Join(dir, "bad.js")
	require.NoError(t, os.WriteFile(bad, []byte("window.BENCHMARK_DATA = {"), 0o644))
	_, err = ReadDataFile(bad)
	assert.ErrorContains(t, err, "decoding dashboard data")
}

type fakeWriter struct {
	points []*write.Point
	err    error
}

func (f *fakeWriter) WritePoint(ctx context.Context, point ...*write.Point) error {
	f.points = append(f.points, point...)
	return f.err
}

func TestInfluxPoints(t *testing.T) {
	fw := &fakeWriter{}
	s := &Influx{writer: fw}
	require.NoError(t, s.Publish(context.Background(), testReport("abc")))
	require.Len(t, fw.points, 2)

	p := fw.points[0]
	assert.Equal(t, Measurement, p.Name())
	assert.Equal(t, captured, p.Time())
	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, map[string]string{"name": "Fibonacci 20", "tool": "catch2", "commit": "abc"}, tags)
	fields := map[string]any{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	assert.InDelta(t, 43.186e-6, fields["mean"], 1e-15)
	assert.InDelta(t, 11.719e-6, fields["stddev"], 1e-15)
	assert.EqualValues(t, 100, fields["samples"])

	fw.err = errors.New("down")
	assert.ErrorContains(t, s.Publish(context.Background(), testReport("abc")), "writing 2 points: down")
}

func TestInfluxHTTP(t *testing.T) {
	var mu sync.Mutex
	var path, org, bucket, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		path, org, bucket, body = r.URL.Path, r.URL.Query().Get("org"), r.URL.Query().Get("bucket"), string(b)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewInflux(srv.URL, "token", "my-org", "benches")
	defer s.Close()
	require.NoError(t, s.Publish(context.Background(), testReport("abc")))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/api/v2/write", path)
	assert.Equal(t, "my-org", org)
	assert.Equal(t, "benches", bucket)
	assert.Contains(t, body, `benchmark,commit=abc,name=Fibonacci\ 20,tool=catch2`)
	assert.Contains(t, body, "samples=100i")
}

func TestUnknownUnit(t *testing.T) {
	rep := testReport("abc")
	rep.Benches[1].RangeUnit = "parsecs"
	_, err := Points(rep)
	assert.ErrorContains(t, err, `unknown unit "parsecs"`)
	_, err = Gatherer(rep)
	assert.Error(t, err)
}

func TestPushgateway(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := &Pushgateway{URL: srv.URL, Job: "ci", Client: srv.Client()}
	require.NoError(t, p.Publish(context.Background(), testReport("abc")))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/ci/tool/catch2", path)
}

func TestGatherer(t *testing.T) {
	reg, err := Gatherer(testReport("abc"))
	require.NoError(t, err)
	families, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]int{}
	for _, mf := range families {
		byName[mf.GetName()] = len(mf.GetMetric())
	}
	assert.Equal(t, map[string]int{
		"benchtrack_benchmark_mean_seconds":   2,
		"benchtrack_benchmark_stddev_seconds": 2,
		"benchtrack_report_timestamp_seconds": 1,
	}, byName)
}

func TestGCS(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		paths = append(paths, r.URL.Path)
		bodies = append(bodies, string(b))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"bucket":"bench-bucket","name":"reports/catch2/6ba7b810-9dad-11d1-80b4-00c04fd430c8.json"}`)
	}))
	defer srv.Close()
	t.Setenv("STORAGE_EMULATOR_HOST", strings.TrimPrefix(srv.URL, "http://"))

	g, err := NewGCS(context.Background(), "bench-bucket", "reports", "")
	require.NoError(t, err)
	defer g.Close()

	rep := testReport("abc")
	assert.Equal(t, "reports/catch2/6ba7b810-9dad-11d1-80b4-00c04fd430c8.json", g.ObjectName(rep))
	require.NoError(t, g.Publish(context.Background(), rep))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, paths)
	assert.Contains(t, paths[0], "/b/bench-bucket/o")
	assert.Contains(t, bodies[0], "6ba7b810-9dad-11d1-80b4-00c04fd430c8.json")
	assert.Contains(t, bodies[0], "Fibonacci 20")
}

func TestNewGCSMissingKey(t *testing.T) {
	_, err := NewGCS(context.Background(), "b", "", filepath.Join(t.TempDir(), "key.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type recordSink struct {
	got []string
	err error
}

func (r *recordSink) Publish(ctx context.Context, rep *extract.Report) error {
	r.got = append(r.got, rep.Commit.ID)
	return r.err
}

func TestMulti(t *testing.T) {
	a, b := &recordSink{err: errors.New("a failed")}, &recordSink{}
	err := Multi{a, b}.Publish(context.Background(), testReport("abc"))
	assert.EqualError(t, err, "a failed")
	assert.Equal(t, []string{"abc"}, a.got)
	assert.Equal(t, []string{"abc"}, b.got)
}
