package cinotify

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-notifier/internal/common/discord"
	"campus-notifier/internal/common/errors"
	"campus-notifier/internal/common/logger"
)

type FakeGit struct {
	Commit     Commit
	CommitErr  error
	Files      []string
	FilesErr   error
	DiffCalled bool
}

func (g *FakeGit) HeadCommit(context.Context) (Commit, error) {
	return g.Commit, g.CommitErr
}

func (g *FakeGit) ChangedFiles(_ context.Context, _, _ string) ([]string, error) {
	g.DiffCalled = true
	return g.Files, g.FilesErr
}

type webhookRecorder struct {
	mu       sync.Mutex
	status   int
	payloads []discord.Payload
}

func newWebhook(t *testing.T, status int) (*webhookRecorder, *httptest.Server) {
	t.Helper()
	rec := &webhookRecorder{status: status}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var p discord.Payload
		_ = json.Unmarshal(body, &p)
		rec.mu.Lock()
		rec.payloads = append(rec.payloads, p)
		rec.mu.Unlock()
		w.WriteHeader(rec.status)
	}))
	t.Cleanup(srv.Close)
	return rec, srv
}

func writeEvent(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func newTestNotifier(t *testing.T, env Env, git Git) *Notifier {
	t.Helper()
	log := logger.NewTestLogger(t)
	n := NewNotifier(env, git, discord.NewClient(discord.Webhooks{}, time.Second, log), log)
	n.now = func() time.Time { return fixedNow }
	return n
}

const pushEvent = `{
	"ref": "refs/heads/develop",
	"before": "1111111",
	"after": "2222222",
	"commits": [{"id": "a"}, {"id": "b"}, {"id": "c"}]
}`

func TestRun_Push(t *testing.T) {
	rec, srv := newWebhook(t, http.StatusNoContent)
	git := &FakeGit{
		Commit: Commit{Subject: "Fix timetable sync", Author: "hanako", ShortHash: "2222222"},
		Files:  []string{"M\tlib/main.dart"},
	}
	env := Env{
		WebhookURL: srv.URL,
		EventName:  EventPush,
		EventPath:  writeEvent(t, pushEvent),
		Repository: "cit/app",
		ServerURL:  "https://github.com",
	}

	err := newTestNotifier(t, env, git).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, ExitCode(err))
	assert.True(t, git.DiffCalled)

	require.Len(t, rec.payloads, 1)
	e := rec.payloads[0].Embeds[0]
	assert.Equal(t, "🚀 開発ブランチにコミット", e.Title)
	assert.Equal(t, "Fix timetable sync", e.Description)
	assert.Equal(t, "https://github.com/cit/app/commit/2222222", e.URL)
	assert.Equal(t, "3 commits", e.Fields[3].Value)
	assert.Equal(t, "✏️ `lib/main.dart`", e.Fields[4].Value)
}

func TestRun_PushChangedFilesFailureIsIgnored(t *testing.T) {
	rec, srv := newWebhook(t, http.StatusOK)
	git := &FakeGit{
		Commit:   Commit{Subject: "s", Author: "a", ShortHash: "h"},
		FilesErr: stderrors.New("bad revision"),
	}
	env := Env{WebhookURL: srv.URL, EventName: EventPush, EventPath: writeEvent(t, pushEvent)}

	require.NoError(t, newTestNotifier(t, env, git).Run(context.Background()))
	require.Len(t, rec.payloads, 1)
	assert.Len(t, rec.payloads[0].Embeds[0].Fields, 4)
}

func TestRun_PullRequest(t *testing.T) {
	rec, srv := newWebhook(t, http.StatusNoContent)
	event := `{
		"action": "closed",
		"pull_request": {
			"title": "Menu images", "number": 7, "html_url": "https://github.com/cit/app/pull/7",
			"merged": true, "additions": 3, "deletions": 1, "changed_files": 2,
			"user": {"login": "taro"}, "base": {"ref": "main"}, "head": {"ref": "feat/menu"}
		}
	}`
	git := &FakeGit{}
	env := Env{WebhookURL: srv.URL, EventName: EventPullRequest, EventPath: writeEvent(t, event)}

	require.NoError(t, newTestNotifier(t, env, git).Run(context.Background()))
	assert.False(t, git.DiffCalled)

	require.Len(t, rec.payloads, 1)
	e := rec.payloads[0].Embeds[0]
	assert.Equal(t, "✅ PRマージ", e.Title)
	assert.Equal(t, "https://github.com/taro.png", e.Author.IconURL)
}

func TestRun_ExitCodes(t *testing.T) {
	_, okSrv := newWebhook(t, http.StatusOK)
	_, failing := newWebhook(t, http.StatusBadRequest)
	goodGit := &FakeGit{Commit: Commit{Subject: "s", Author: "a", ShortHash: "h"}}

	tests := []struct {
		name string
		env  Env
		git  Git
		code int
		want func(t *testing.T, err error)
	}{
		{
			name: "missing webhook",
			env:  Env{EventName: EventPush},
			git:  goodGit,
			code: 1,
			want: func(t *testing.T, err error) {
				assert.True(t, errors.IsCode(err, errors.ErrCodeWebhookNotConfigured))
			},
		},
		{
			name: "unsupported event",
			env:  Env{WebhookURL: okSrv.URL, EventName: "release"},
			git:  goodGit,
			code: 0,
			want: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnsupportedEvent)
			},
		},
		{
			name: "unreadable event file",
			env:  Env{WebhookURL: okSrv.URL, EventName: EventPush, EventPath: "/nonexistent/event.json"},
			git:  goodGit,
			code: 1,
		},
		{
			name: "git failure",
			env:  Env{WebhookURL: okSrv.URL, EventName: EventPush, EventPath: writeEvent(t, pushEvent)},
			git:  &FakeGit{CommitErr: stderrors.New("not a git repository")},
			code: 1,
		},
		{
			name: "pull request without payload",
			env:  Env{WebhookURL: okSrv.URL, EventName: EventPullRequest, EventPath: writeEvent(t, `{"action":"opened"}`)},
			git:  goodGit,
			code: 1,
			want: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMissingPRInfo)
			},
		},
		{
			name: "send failure",
			env:  Env{WebhookURL: failing.URL, EventName: EventPush, EventPath: writeEvent(t, pushEvent)},
			git:  goodGit,
			code: 1,
			want: func(t *testing.T, err error) {
				assert.True(t, errors.IsCode(err, errors.ErrCodeWebhookDeliveryFailed))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestNotifier(t, tt.env, tt.git).Run(context.Background())
			assert.Equal(t, tt.code, ExitCode(err))
			if tt.want != nil {
				tt.want(t, err)
			}
		})
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.test/generic")
	t.Setenv("DISCORD_WEBHOOK_URL_GITHUB", "")
	t.Setenv("GITHUB_EVENT_NAME", "push")
	t.Setenv("GITHUB_REPOSITORY", "")
	t.Setenv("GITHUB_SERVER_URL", "")
	t.Setenv("GITHUB_SHA", "abc")

	env := LoadEnv()
	assert.Equal(t, "https://discord.test/generic", env.WebhookURL)
	assert.Equal(t, "push", env.EventName)
	assert.Equal(t, "unknown/repo", env.Repository)
	assert.Equal(t, "https://github.com", env.ServerURL)
	assert.Equal(t, "abc", env.SHA)

	t.Setenv("DISCORD_WEBHOOK_URL_GITHUB", "https://discord.test/ci")
	assert.Equal(t, "https://discord.test/ci", LoadEnv().WebhookURL)
}
