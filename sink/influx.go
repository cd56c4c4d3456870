// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sink

import (
	"context"
	"fmt"

	"github.com/benchtrack/benchtrack/extract"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement is the InfluxDB measurement written by Influx.
const Measurement = "benchmark"

// pointWriter is the subset of api.WriteAPIBlocking used by Influx.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Influx writes one point per benchmark to InfluxDB. Means and
// standard deviations are written in seconds.
type Influx struct {
	client influxdb2.Client
	writer pointWriter
}

// NewInflux returns an Influx sink writing to bucket in org.
func NewInflux(url, token, org, bucket string) *Influx {
	client := influxdb2.NewClient(url, token)
	return &Influx{client: client, writer: client.WriteAPIBlocking(org, bucket)}
}

// Close closes the underlying client.
func (s *Influx) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// Points returns the points written for rep.
func Points(rep *extract.Report) ([]*write.Point, error) {
	points := make([]*write.Point, 0, len(rep.Benches))
	for _, b := range rep.Benches {
		mean, stddev, err := seconds(b)
		if err != nil {
			return nil, err
		}
		p := influxdb2.NewPointWithMeasurement(Measurement).
			AddTag("commit", commitID(rep)).
			AddTag("name", b.Name).
			AddTag("tool", rep.Tool).
			AddField("mean", mean).
			AddField("stddev", stddev).
			AddField("samples", b.Samples).
			AddField("iterations", b.Iterations).
			SetTime(rep.Date)
		points = append(points, p)
	}
	return points, nil
}

func (s *Influx) Publish(ctx context.Context, rep *extract.Report) error {
	points, err := Points(rep)
	if err != nil {
		return fmt.Errorf("influx: %w", err)
	}
	if err := s.writer.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("influx: writing %d points: %w", len(points), err)
	}
	return nil
}
