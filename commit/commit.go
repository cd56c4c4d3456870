// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package commit determines the commit a benchmark report belongs to.
//
// The commit is looked up by a chain of ranked strategies: the
// head_commit of the CI event payload, a commit reconstructed from a
// pull_request payload, and finally the GitHub REST API if a token is
// available. The first strategy that applies wins.
package commit

import (
	"encoding/json"
	"fmt"
	"os"
)

// A User is a commit author or committer.
type User struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
}

// A Commit describes the commit that was benchmarked.
type Commit struct {
	Author    User   `json:"author" yaml:"author"`
	Committer User   `json:"committer" yaml:"committer"`
	ID        string `json:"id" yaml:"id"`
	Message   string `json:"message" yaml:"message"`
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	URL       string `json:"url" yaml:"url"`
}

// A PullRequest is the subset of a pull_request event payload used to
// reconstruct its head commit.
type PullRequest struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
	Title   string `json:"title"`
	Head    struct {
		SHA  string `json:"sha"`
		User struct {
			Login string `json:"login"`
		} `json:"user"`
		Repo struct {
			UpdatedAt string `json:"updated_at"`
		} `json:"repo"`
	} `json:"head"`
}

// An Event is a CI event payload.
type Event struct {
	HeadCommit  *Commit      `json:"head_commit"`
	PullRequest *PullRequest `json:"pull_request"`

	// Raw is the payload as read, for diagnostics.
	Raw json.RawMessage `json:"-"`
}

// ParseEvent decodes an event payload.
func ParseEvent(data []byte) (*Event, error) {
	ev := new(Event)
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("decoding event payload: %w", err)
	}
	ev.Raw = append(json.RawMessage(nil), data...)
	return ev, nil
}

// LoadEvent reads and decodes the event payload at path.
func LoadEvent(path string) (*Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading event payload: %w", err)
	}
	return ParseEvent(data)
}
