// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sink

import (
	"context"
	"fmt"
	"net/http"

	"github.com/benchtrack/benchtrack/extract"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Pushgateway pushes the latest report as gauges to a Prometheus
// Pushgateway, grouped by tool. Each push replaces the previous one.
type Pushgateway struct {
	URL string
	Job string

	// Client, if nil, is http.DefaultClient.
	Client *http.Client
}

// Gatherer returns a registry holding the metrics of rep.
func Gatherer(rep *extract.Report) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	mean := factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "benchtrack",
		Name:      "benchmark_mean_seconds",
		Help:      "Mean run time of a benchmark.",
	}, []string{"name", "commit"})
	stddev := factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "benchtrack",
		Name:      "benchmark_stddev_seconds",
		Help:      "Standard deviation of the run time of a benchmark.",
	}, []string{"name", "commit"})
	captured := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "benchtrack",
		Name:      "report_timestamp_seconds",
		Help:      "Capture time of the report.",
	})

	id := commitID(rep)
	for _, b := range rep.Benches {
		m, s, err := seconds(b)
		if err != nil {
			return nil, err
		}
		mean.WithLabelValues(b.Name, id).Set(m)
		stddev.WithLabelValues(b.Name, id).Set(s)
	}
	captured.Set(float64(rep.Date.UnixNano()) / 1e9)
	return reg, nil
}

func (p *Pushgateway) Publish(ctx context.Context, rep *extract.Report) error {
	reg, err := Gatherer(rep)
	if err != nil {
		return fmt.Errorf("pushgateway: %w", err)
	}
	job := p.Job
	if job == "" {
		job = "benchtrack"
	}
	pusher := push.New(p.URL, job).Gatherer(reg).Grouping("tool", rep.Tool)
	if p.Client != nil {
		pusher = pusher.Client(p.Client)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("pushgateway: %w", err)
	}
	return nil
}
