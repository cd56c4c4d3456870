// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sink publishes benchmark reports to downstream systems: a
// dashboard data file, Google Cloud Storage, InfluxDB and a Prometheus
// Pushgateway.
package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/benchtrack/benchtrack/benchunit"
	"github.com/benchtrack/benchtrack/catch2fmt"
	"github.com/benchtrack/benchtrack/extract"
)

// A Sink publishes reports.
type Sink interface {
	Publish(ctx context.Context, rep *extract.Report) error
}

// Multi publishes to each sink in turn. All sinks are attempted; the
// errors are joined.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, rep *extract.Report) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, rep); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// commitID returns the commit ID of rep, or "" if it has none.
func commitID(rep *extract.Report) string {
	if rep.Commit == nil {
		return ""
	}
	return rep.Commit.ID
}

// seconds returns the mean and standard deviation of r in seconds.
func seconds(r catch2fmt.Result) (mean, stddev float64, err error) {
	mean, ok := benchunit.Seconds(r.Value, string(r.ValueUnit))
	if !ok {
		return 0, 0, fmt.Errorf("benchmark %q: unknown unit %q", r.Name, r.ValueUnit)
	}
	stddev, ok = benchunit.Seconds(r.Range, string(r.RangeUnit))
	if !ok {
		return 0, 0, fmt.Errorf("benchmark %q: unknown unit %q", r.Name, r.RangeUnit)
	}
	return mean, stddev, nil
}
