// internal/cinotify/event.go
package cinotify

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	EventPush        = "push"
	EventPullRequest = "pull_request"

	zeroSHA = "0000000000000000000000000000000000000000"
)

// Event is the subset of a GitHub webhook event the notifier reads.
type Event struct {
	Ref         string            `json:"ref"`
	Before      string            `json:"before"`
	After       string            `json:"after"`
	Commits     []json.RawMessage `json:"commits"`
	Action      string            `json:"action"`
	PullRequest *PullRequest      `json:"pull_request"`
}

type PullRequest struct {
	Title        string `json:"title"`
	Number       int    `json:"number"`
	HTMLURL      string `json:"html_url"`
	Merged       bool   `json:"merged"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	ChangedFiles int    `json:"changed_files"`
	User         struct {
		Login string `json:"login"`
	} `json:"user"`
	Base struct {
		Ref string `json:"ref"`
	} `json:"base"`
	Head struct {
		Ref string `json:"ref"`
	} `json:"head"`
}

// LoadEvent reads the event payload at path.
func LoadEvent(path string) (*Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event: %w", err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &ev, nil
}

// Branch resolves the pushed branch: GITHUB_REF_NAME, then the event ref.
func (e *Event) Branch(env Env) string {
	if env.RefName != "" {
		return env.RefName
	}
	if e.Ref != "" {
		return strings.TrimPrefix(e.Ref, "refs/heads/")
	}
	return "unknown"
}

// SHA is GITHUB_SHA, falling back to the event's after commit.
func (e *Event) SHA(env Env) string {
	if env.SHA != "" {
		return env.SHA
	}
	return e.After
}

// CommitCount is the number of pushed commits, 1 when the event omits them.
func (e *Event) CommitCount() int {
	if e.Commits == nil {
		return 1
	}
	return len(e.Commits)
}

// DiffRange reports the before..after range to diff, if the push has one.
func (e *Event) DiffRange() (before, after string, ok bool) {
	if len(e.Commits) == 0 || e.Before == "" || e.After == "" || e.Before == zeroSHA {
		return "", "", false
	}
	return e.Before, e.After, true
}
