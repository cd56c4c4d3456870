// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/benchtrack/benchtrack/catch2fmt"
	"github.com/benchtrack/benchtrack/commit"
	"github.com/benchtrack/benchtrack/extract"
)

const dataPrefix = "window.BENCHMARK_DATA = "

// DefaultSuite is the entry key used by DataFile if Name is empty.
const DefaultSuite = "Benchmark"

// DashboardData is the content of a dashboard data file.
type DashboardData struct {
	// LastUpdate is in Unix milliseconds.
	LastUpdate int64                       `json:"lastUpdate"`
	RepoURL    string                      `json:"repoUrl"`
	Entries    map[string][]DashboardEntry `json:"entries"`
}

// A DashboardEntry is one report in a dashboard data file.
type DashboardEntry struct {
	Commit *commit.Commit `json:"commit"`
	// Date is in Unix milliseconds.
	Date    int64              `json:"date"`
	Tool    string             `json:"tool"`
	Benches []catch2fmt.Result `json:"benches"`
}

// DataFile appends reports to a JavaScript data file loaded by the
// benchmark dashboard.
type DataFile struct {
	Path string

	// Name is the suite the reports are filed under.
	Name string

	// RepoURL is recorded in the file if set.
	RepoURL string

	// MaxItems, if positive, is the number of reports kept per
	// suite. Older reports are dropped.
	MaxItems int

	// Now returns the update time. If nil, time.Now is used.
	Now func() time.Time
}

// Publish appends rep to the data file, creating it if needed.
func (d *DataFile) Publish(ctx context.Context, rep *extract.Report) error {
	data, err := ReadDataFile(d.Path)
	if err != nil {
		return err
	}

	name := d.Name
	if name == "" {
		name = DefaultSuite
	}
	entries := append(data.Entries[name], DashboardEntry{
		Commit:  rep.Commit,
		Date:    rep.Date.UnixMilli(),
		Tool:    rep.Tool,
		Benches: rep.Benches,
	})
	if d.MaxItems > 0 && len(entries) > d.MaxItems {
		entries = entries[len(entries)-d.MaxItems:]
	}
	data.Entries[name] = entries

	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	data.LastUpdate = now().UnixMilli()
	if d.RepoURL != "" {
		data.RepoURL = d.RepoURL
	}

	js, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding dashboard data: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(dataPrefix)
	buf.Write(js)
	buf.WriteByte('\n')

	if err := os.MkdirAll(filepath.Dir(d.Path), 0o755); err != nil {
		return fmt.Errorf("writing dashboard data: %w", err)
	}
	tmp := d.Path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing dashboard data: %w", err)
	}
	if err := os.Rename(tmp, d.Path); err != nil {
		return fmt.Errorf("writing dashboard data: %w", err)
	}
	return nil
}

// ReadDataFile reads the dashboard data file at path. A missing file
// yields empty data.
func ReadDataFile(path string) (*DashboardData, error) {
	data := &DashboardData{Entries: make(map[string][]DashboardEntry)}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading dashboard data: %w", err)
	}
	b = bytes.TrimSpace(b)
	b = bytes.TrimSuffix(bytes.TrimPrefix(b, []byte(dataPrefix)), []byte(";"))
	if err := json.Unmarshal(b, data); err != nil {
		return nil, fmt.Errorf("decoding dashboard data %s: %w", path, err)
	}
	if data.Entries == nil {
		data.Entries = make(map[string][]DashboardEntry)
	}
	return data, nil
}
