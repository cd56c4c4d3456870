// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"

	"cloud.google.com/go/storage"
	"github.com/benchtrack/benchtrack/extract"
	"google.golang.org/api/option"
)

// GCS uploads each report as a JSON object to a Cloud Storage bucket.
// Objects are named <Prefix>/<tool>/<report id>.json.
type GCS struct {
	Bucket string
	Prefix string

	// Logger, if nil, is slog.Default().
	Logger *slog.Logger

	client *storage.Client
}

// NewGCS returns a GCS sink. If credentialsFile is empty, Application
// Default Credentials are used.
func NewGCS(ctx context.Context, bucket, prefix, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, fmt.Errorf("gcs: service account key: %w", err)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: creating storage client: %w", err)
	}
	return &GCS{Bucket: bucket, Prefix: prefix, client: client}, nil
}

// Close closes the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}

// ObjectName returns the object rep is uploaded to.
func (g *GCS) ObjectName(rep *extract.Report) string {
	return path.Join(g.Prefix, rep.Tool, rep.ID.String()+".json")
}

func (g *GCS) Publish(ctx context.Context, rep *extract.Report) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("gcs: encoding report: %w", err)
	}

	name := g.ObjectName(rep)
	w := g.client.Bucket(g.Bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	w.CacheControl = "no-cache"
	w.Metadata = map[string]string{"commit": commitID(rep), "tool": rep.Tool}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("gcs: uploading %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs: uploading %s: %w", name, err)
	}

	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "uploaded report", "object", "gs://"+g.Bucket+"/"+name)
	return nil
}
