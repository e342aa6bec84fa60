// Package probe queries an external code host for a project's recent
// commits. It is strictly best-effort: every failure reads as "unknown".
package probe

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"time"
)

// Commit is the normalized view of one commit returned by the host.
type Commit struct {
	AuthorLogin string
}

// CommitSource answers "what are the recent commits of this repo?".
// The boolean is false when the repo is unsupported or the query failed;
// callers must treat that as unknown, never as zero.
type CommitSource interface {
	CommitsFor(repoURL string) ([]Commit, bool)
}

var githubRepoPattern = regexp.MustCompile(`^(https?://)?github\.com/(\S+/\S+)/?$`)

const (
	defaultAPIRoot = "https://api.github.com"
	requestTimeout = 5 * time.Second
)

// GitHubSource queries the public GitHub commits endpoint.
type GitHubSource struct {
	client  *http.Client
	apiRoot string
}

func NewGitHubSource() *GitHubSource {
	return NewGitHubSourceWithAPIRoot(defaultAPIRoot)
}

// NewGitHubSourceWithAPIRoot points the source at an alternate API root,
// which tests use to swap in a local server.
func NewGitHubSourceWithAPIRoot(apiRoot string) *GitHubSource {
	return &GitHubSource{
		client:  &http.Client{Timeout: requestTimeout},
		apiRoot: apiRoot,
	}
}

func (source *GitHubSource) CommitsFor(repoURL string) ([]Commit, bool) {
	if !githubRepoPattern.MatchString(repoURL) {
		return nil, false
	}
	endpoint := githubRepoPattern.ReplaceAllString(repoURL, source.apiRoot+"/repos/$2/commits?per_page=100")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false
	}

	response, err := source.client.Do(request)
	if err != nil {
		return nil, false
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, false
	}

	var payload []struct {
		Author *struct {
			Login string `json:"login"`
		} `json:"author"`
	}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, false
	}

	commits := make([]Commit, 0, len(payload))
	for _, entry := range payload {
		commit := Commit{}
		if entry.Author != nil {
			commit.AuthorLogin = entry.Author.Login
		}
		commits = append(commits, commit)
	}
	return commits, true
}
