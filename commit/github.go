// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/net/context/ctxhttp"
	"golang.org/x/oauth2"
)

// DefaultAPIURL is the GitHub REST API endpoint.
const DefaultAPIURL = "https://api.github.com"

// An Env is the CI environment a report is extracted in.
type Env struct {
	// Owner and Repo name the repository.
	Owner, Repo string
	// Ref is the git ref or commit SHA that was built.
	Ref string
	// APIURL is the base URL of the GitHub REST API.
	APIURL string
	// EventPath is the path of the event payload file, if any.
	EventPath string
}

// EnvFromOS reads the GitHub Actions environment variables.
func EnvFromOS() Env {
	e := Env{
		Ref:       os.Getenv("GITHUB_REF"),
		APIURL:    os.Getenv("GITHUB_API_URL"),
		EventPath: os.Getenv("GITHUB_EVENT_PATH"),
	}
	e.Owner, e.Repo, _ = strings.Cut(os.Getenv("GITHUB_REPOSITORY"), "/")
	if e.APIURL == "" {
		e.APIURL = DefaultAPIURL
	}
	return e
}

// APIResolver fetches a commit from the GitHub REST API. It does not
// apply without a token.
type APIResolver struct {
	Token string
	Env   Env

	// Ref overrides Env.Ref if set.
	Ref string

	// Client is the base HTTP client. If nil, http.DefaultClient
	// is used. The token is added by an oauth2 transport on top.
	Client *http.Client
}

// apiCommit is the subset of the "get a commit" response we use.
type apiCommit struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Commit  struct {
		Message   string        `json:"message"`
		Author    *apiGitAuthor `json:"author"`
		Committer *apiGitAuthor `json:"committer"`
	} `json:"commit"`
	Author    *apiAccount `json:"author"`
	Committer *apiAccount `json:"committer"`
}

type apiGitAuthor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Date  string `json:"date"`
}

type apiAccount struct {
	Login string `json:"login"`
}

func (a APIResolver) Resolve(ctx context.Context) (*Commit, error) {
	if a.Token == "" {
		return nil, fmt.Errorf("github api: %w: no token provided", ErrNotApplicable)
	}
	ref := a.Ref
	if ref == "" {
		ref = a.Env.Ref
	}
	if a.Env.Owner == "" || a.Env.Repo == "" || ref == "" {
		return nil, fmt.Errorf("github api: %w: repository or ref unknown", ErrNotApplicable)
	}
	base := a.Env.APIURL
	if base == "" {
		base = DefaultAPIURL
	}
	u := fmt.Sprintf("%s/repos/%s/%s/commits/%s", strings.TrimSuffix(base, "/"),
		url.PathEscape(a.Env.Owner), url.PathEscape(a.Env.Repo), url.PathEscape(ref))

	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("github api: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "benchtrack")

	resp, err := ctxhttp.Do(ctx, a.client(ctx), req)
	if err != nil {
		return nil, fmt.Errorf("github api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotModified {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("could not fetch the head commit: received code %d: %s", resp.StatusCode, body)
	}

	var data apiCommit
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("github api: decoding commit: %w", err)
	}
	c := &Commit{
		ID:      data.SHA,
		Message: data.Commit.Message,
		URL:     data.HTMLURL,
	}
	if au := data.Commit.Author; au != nil {
		c.Author.Name, c.Author.Email = au.Name, au.Email
		c.Timestamp = au.Date
	}
	if cu := data.Commit.Committer; cu != nil {
		c.Committer.Name, c.Committer.Email = cu.Name, cu.Email
	}
	if data.Author != nil {
		c.Author.Username = data.Author.Login
	}
	if data.Committer != nil {
		c.Committer.Username = data.Committer.Login
	}
	return c, nil
}

func (a APIResolver) client(ctx context.Context) *http.Client {
	if a.Client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.Client)
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: a.Token}))
}

// NewChain returns the standard strategy chain for env: the event's
// head commit, then its pull request, then the GitHub API using token.
// An empty token disables the API lookup. ref, if set, overrides the
// ref from env for the API lookup.
func NewChain(env Env, token, ref string) (Chain, error) {
	var ev *Event
	if env.EventPath != "" {
		var err error
		ev, err = LoadEvent(env.EventPath)
		if err != nil {
			return Chain{}, err
		}
	}
	return Chain{
		Resolvers: []Resolver{
			PayloadResolver{ev},
			PullRequestResolver{ev},
			APIResolver{Token: token, Env: env, Ref: ref},
		},
		Event: ev,
	}, nil
}
