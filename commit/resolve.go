// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	// ErrNotApplicable is returned by a strategy that has nothing
	// to work with, such as an event without a head commit. A Chain
	// moves on to the next strategy.
	ErrNotApplicable = errors.New("not applicable")

	// ErrUnavailable reports that no strategy could determine the
	// commit.
	ErrUnavailable = errors.New("commit information unavailable")
)

// A Resolver determines the commit being benchmarked.
type Resolver interface {
	Resolve(ctx context.Context) (*Commit, error)
}

// A ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context) (*Commit, error)

func (f ResolverFunc) Resolve(ctx context.Context) (*Commit, error) {
	return f(ctx)
}

// PayloadResolver returns the head_commit of a push event.
type PayloadResolver struct {
	Event *Event
}

func (p PayloadResolver) Resolve(ctx context.Context) (*Commit, error) {
	if p.Event == nil || p.Event.HeadCommit == nil {
		return nil, fmt.Errorf("head_commit: %w: payload has no head commit", ErrNotApplicable)
	}
	c := *p.Event.HeadCommit
	return &c, nil
}

// PullRequestResolver reconstructs the head commit of a pull_request
// event, which carries no head_commit.
type PullRequestResolver struct {
	Event *Event
}

func (p PullRequestResolver) Resolve(ctx context.Context) (*Commit, error) {
	if p.Event == nil || p.Event.PullRequest == nil {
		return nil, fmt.Errorf("pull_request: %w: payload has no pull request", ErrNotApplicable)
	}
	pr := p.Event.PullRequest
	id := pr.Head.SHA
	// The payload only has the head user's login, which stands in
	// for the name as well.
	user := User{Name: pr.Head.User.Login, Username: pr.Head.User.Login}
	return &Commit{
		Author:    user,
		Committer: user,
		ID:        id,
		Message:   pr.Title,
		Timestamp: pr.Head.Repo.UpdatedAt,
		URL:       fmt.Sprintf("%s/commits/%s", pr.HTMLURL, id),
	}, nil
}

// A Chain tries Resolvers in order and returns the first commit found.
//
// A Resolver failing with ErrNotApplicable or any other error passes
// control to the next one. If none succeeds, the error wraps
// ErrUnavailable and every strategy's error.
type Chain struct {
	Resolvers []Resolver

	// Event is the payload the strategies inspected, quoted in the
	// error if none succeeds. It may be nil.
	Event *Event

	// Logger receives one debug record per strategy. If nil,
	// slog.Default() is used.
	Logger *slog.Logger
}

func (c Chain) Resolve(ctx context.Context) (*Commit, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var errs []error
	for i, r := range c.Resolvers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		commit, err := r.Resolve(ctx)
		if err == nil {
			logger.DebugContext(ctx, "resolved commit", "strategy", i, "id", commit.ID)
			return commit, nil
		}
		logger.DebugContext(ctx, "commit strategy failed", "strategy", i, "error", err)
		errs = append(errs, err)
	}
	return nil, &UnavailableError{Event: c.Event, Errs: errs}
}

// An UnavailableError is returned by a Chain when no strategy could
// determine the commit. It matches ErrUnavailable with errors.Is.
type UnavailableError struct {
	Event *Event
	Errs  []error
}

func (e *UnavailableError) Error() string {
	var b strings.Builder
	b.WriteString("no commit information is found")
	if e.Event != nil && len(e.Event.Raw) > 0 {
		fmt.Fprintf(&b, " in payload: %s", e.Event.Raw)
	}
	for _, err := range e.Errs {
		fmt.Fprintf(&b, "\n\t%v", err)
	}
	return b.String()
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

func (e *UnavailableError) Unwrap() []error {
	return e.Errs
}
