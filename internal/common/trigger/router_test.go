package trigger

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"campus-notifier/internal/common/config"
	"campus-notifier/internal/common/errors"
	"campus-notifier/internal/common/logger"
	"campus-notifier/internal/models"
)

const userCreatedBody = `{
  "value": {
    "name": "projects/cit/databases/(default)/documents/users/u42",
    "fields": {"displayName": {"stringValue": "花子"}}
  }
}`

type jobFunc func(ctx context.Context) (interface{}, error)

func (f jobFunc) Run(ctx context.Context) (interface{}, error) { return f(ctx) }

func newTestRouter(t *testing.T, cfg *config.Config) *Router {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return NewRouter(cfg, logger.NewTestLogger(t), nil)
}

func TestRouter_DispatchDecodesEvent(t *testing.T) {
	r := newTestRouter(t, nil)

	var got *models.DocumentEvent
	r.Register("notify-user-created", HandlerFunc(func(ctx context.Context, ev *models.DocumentEvent) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		got = ev
		return nil
	}))

	err := r.Dispatch(context.Background(), "notify-user-created", "", []byte(userCreatedBody))
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "u42", got.DocumentID)
	assert.Equal(t, "花子", got.Current().StringOr("", "displayName"))
}

func TestRouter_DispatchErrors(t *testing.T) {
	r := newTestRouter(t, nil)
	r.Register("fails", HandlerFunc(func(context.Context, *models.DocumentEvent) error {
		return errors.NewMenuScrapeFailedError("https://example.jp", stderrors.New("boom"))
	}))

	err := r.Dispatch(context.Background(), "missing", "", []byte(`{}`))
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownTrigger))

	err = r.Dispatch(context.Background(), "fails", "", []byte(`not json`))
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidEventPayload))

	err = r.Dispatch(context.Background(), "fails", "", []byte(`{}`))
	assert.True(t, errors.IsCode(err, errors.ErrCodeMenuScrapeFailed))
}

func TestRouter_DisabledTriggerIsAcknowledged(t *testing.T) {
	cfg := &config.Config{Triggers: map[string]config.TriggerConfig{
		"notify-review-created": {Enabled: false, Timeout: 1000},
	}}
	r := newTestRouter(t, cfg)

	called := false
	r.Register("notify-review-created", HandlerFunc(func(context.Context, *models.DocumentEvent) error {
		called = true
		return nil
	}))

	require.NoError(t, r.Dispatch(context.Background(), "notify-review-created", "", []byte(`garbage`)))
	assert.False(t, called)
	assert.Equal(t, []string{"notify-review-created"}, r.Triggers())
}

func TestRouter_TriggerTimeout(t *testing.T) {
	cfg := &config.Config{Triggers: map[string]config.TriggerConfig{
		"slow": {Enabled: true, Timeout: 20},
	}}
	r := newTestRouter(t, cfg)
	r.Register("slow", HandlerFunc(func(ctx context.Context, _ *models.DocumentEvent) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	}))

	err := r.Dispatch(context.Background(), "slow", "", []byte(`{}`))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRoutes_HTTP(t *testing.T) {
	r := newTestRouter(t, nil)
	r.Register("notify-user-created", HandlerFunc(func(context.Context, *models.DocumentEvent) error { return nil }))
	r.Register("broken", HandlerFunc(func(context.Context, *models.DocumentEvent) error {
		return stderrors.New("unexpected")
	}))
	r.RegisterJob("refresh-menu-images", jobFunc(func(context.Context) (interface{}, error) {
		return map[string]int{"uploaded": 3}, nil
	}), time.Second)

	server := httptest.NewServer(r.Routes(nil))
	defer server.Close()

	post := func(path, body string) *http.Response {
		resp, err := http.Post(server.URL+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	assert.Equal(t, http.StatusNoContent, post("/triggers/notify-user-created", userCreatedBody).StatusCode)
	assert.Equal(t, http.StatusBadRequest, post("/triggers/notify-user-created", `{"value":`).StatusCode)
	assert.Equal(t, http.StatusNotFound, post("/triggers/nope", `{}`).StatusCode)

	resp := post("/triggers/broken", `{}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(errors.ErrCodeInternal), body["code"])

	resp = post("/jobs/refresh-menu-images", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var summary map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, 3, summary["uploaded"])

	health, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestRoutes_ProtobufBody(t *testing.T) {
	r := newTestRouter(t, nil)
	var got *models.DocumentEvent
	r.Register("notify-user-created", HandlerFunc(func(_ context.Context, ev *models.DocumentEvent) error {
		got = ev
		return nil
	}))

	body, err := proto.Marshal(&firestoredata.DocumentEventData{
		Value: &firestoredata.Document{
			Name: "projects/cit/databases/(default)/documents/users/u42",
			Fields: map[string]*firestoredata.Value{
				"displayName": {ValueType: &firestoredata.Value_StringValue{StringValue: "花子"}},
			},
		},
	})
	require.NoError(t, err)

	server := httptest.NewServer(r.Routes(nil))
	defer server.Close()

	resp, err := http.Post(server.URL+"/triggers/notify-user-created", "application/protobuf", strings.NewReader(string(body)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.NotNil(t, got)
	assert.Equal(t, "u42", got.DocumentID)
	assert.Equal(t, "花子", got.Current().StringOr("", "displayName"))
}

func TestRoutes_Ready(t *testing.T) {
	r := newTestRouter(t, nil)

	notReady := httptest.NewServer(r.Routes(func() error { return stderrors.New("firestore down") }))
	defer notReady.Close()
	resp, err := http.Get(notReady.URL + "/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	ready := httptest.NewServer(r.Routes(func() error { return nil }))
	defer ready.Close()
	resp2, err := http.Get(ready.URL + "/ready")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestRouter_JobsListedSeparately(t *testing.T) {
	r := newTestRouter(t, nil)
	r.Register("notify-user-created", HandlerFunc(func(context.Context, *models.DocumentEvent) error { return nil }))
	r.RegisterJob("refresh-menu-images", jobFunc(func(context.Context) (interface{}, error) { return nil, nil }), time.Second)

	assert.Equal(t, []string{"notify-user-created"}, r.Triggers())
	assert.Equal(t, []string{"refresh-menu-images"}, r.Jobs())
}
