package push

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"campus-notifier/internal/common/discord"
	"campus-notifier/internal/common/firebase"
	"campus-notifier/internal/common/logger"
	"campus-notifier/internal/embeds"
	"campus-notifier/internal/models"
)

type FakeTokenStore struct {
	mu      sync.Mutex
	tokens  map[string]string
	deleted []string
	GetErr  error
}

func newFakeTokenStore(tokens map[string]string) *FakeTokenStore {
	return &FakeTokenStore{tokens: tokens}
}

func (s *FakeTokenStore) Get(_ context.Context, userID string) (*models.DeviceToken, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.tokens[userID]
	if !ok {
		return nil, nil
	}
	return &models.DeviceToken{UserID: userID, Token: tok}, nil
}

func (s *FakeTokenStore) List(context.Context) ([]models.DeviceToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.DeviceToken, 0, len(s.tokens))
	for user, tok := range s.tokens {
		out = append(out, models.DeviceToken{UserID: user, Token: tok})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *FakeTokenStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	s.deleted = append(s.deleted, userID)
	return nil
}

type FakeMessenger struct {
	mu         sync.Mutex
	single     []*messaging.Message
	multicasts []*messaging.MulticastMessage

	// CodeByToken makes deliveries to a token fail with the given code.
	CodeByToken  map[string]string
	MulticastErr error
}

func (m *FakeMessenger) Send(_ context.Context, msg *messaging.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.single = append(m.single, msg)
	if code, ok := m.CodeByToken[msg.Token]; ok {
		return "", &firebase.DeliveryError{Code: code}
	}
	return "projects/cit/messages/1", nil
}

func (m *FakeMessenger) SendEachForMulticast(_ context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.multicasts = append(m.multicasts, msg)
	if m.MulticastErr != nil {
		return nil, m.MulticastErr
	}

	resp := &messaging.BatchResponse{}
	for _, tok := range msg.Tokens {
		if code, ok := m.CodeByToken[tok]; ok {
			resp.FailureCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Error: &firebase.DeliveryError{Code: code}})
			continue
		}
		resp.SuccessCount++
		resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: true, MessageID: "m-" + tok})
	}
	return resp, nil
}

type MockNotifier struct {
	kinds []discord.Kind
}

func (m *MockNotifier) Notify(_ context.Context, kind discord.Kind, _ *discord.Payload) error {
	m.kinds = append(m.kinds, kind)
	return nil
}

func newTestHandler(t *testing.T, store *FakeTokenStore, messenger *FakeMessenger) (*Handler, *MockNotifier) {
	notifier := &MockNotifier{}
	formatter := embeds.New(func() time.Time { return time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC) })
	return NewHandler(LoadConfig(), store, messenger, notifier, formatter, logger.NewTestLogger(t)), notifier
}

func notificationEvent(id string, data models.Doc) *models.DocumentEvent {
	return &models.DocumentEvent{
		DocumentID: id,
		After:      &models.Snapshot{Name: "projects/cit/databases/(default)/documents/notifications/" + id, Data: data},
	}
}

func manyTokens(n int) map[string]string {
	out := make(map[string]string, n)
	for i := 0; i < n; i++ {
		out[fmt.Sprintf("user-%04d", i)] = fmt.Sprintf("token-%04d", i)
	}
	return out
}

func TestHandleSingle_SendsWithDefaults(t *testing.T) {
	store := newFakeTokenStore(map[string]string{"u1": "tok-u1"})
	messenger := &FakeMessenger{}
	h, _ := newTestHandler(t, store, messenger)

	err := h.HandleSingle(context.Background(), notificationEvent("n1", models.Doc{"userId": "u1"}))
	require.NoError(t, err)

	require.Len(t, messenger.single, 1)
	msg := messenger.single[0]
	assert.Equal(t, "tok-u1", msg.Token)
	assert.Equal(t, "CIT App", msg.Notification.Title)
	assert.Equal(t, "", msg.Notification.Body)
	assert.Equal(t, map[string]string{
		"notificationId": "n1",
		"type":           "general",
		"postId":         "",
		"commentId":      "",
		"replyId":        "",
	}, msg.Data)
	assert.Equal(t, "high", msg.Android.Priority)
	assert.Equal(t, "default", msg.APNS.Payload.Aps.Sound)
}

func TestHandleSingle_CarriesReferences(t *testing.T) {
	store := newFakeTokenStore(map[string]string{"u1": "tok-u1"})
	messenger := &FakeMessenger{}
	h, _ := newTestHandler(t, store, messenger)

	err := h.HandleSingle(context.Background(), notificationEvent("n2", models.Doc{
		"userId":    "u1",
		"title":     "返信がありました",
		"body":      "あなたのコメントに返信がありました",
		"type":      "reply",
		"postId":    "p1",
		"commentId": "c1",
		"replyId":   "r1",
	}))
	require.NoError(t, err)

	msg := messenger.single[0]
	assert.Equal(t, "返信がありました", msg.Notification.Title)
	assert.Equal(t, "reply", msg.Data["type"])
	assert.Equal(t, "p1", msg.Data["postId"])
	assert.Equal(t, "c1", msg.Data["commentId"])
	assert.Equal(t, "r1", msg.Data["replyId"])
}

func TestHandleSingle_NoopCases(t *testing.T) {
	tests := []struct {
		name string
		ev   *models.DocumentEvent
	}{
		{"document gone", &models.DocumentEvent{DocumentID: "n"}},
		{"missing userId", notificationEvent("n", models.Doc{"title": "x"})},
		{"no token document", notificationEvent("n", models.Doc{"userId": "ghost"})},
		{"empty token", notificationEvent("n", models.Doc{"userId": "blank"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeTokenStore(map[string]string{"blank": ""})
			messenger := &FakeMessenger{}
			h, _ := newTestHandler(t, store, messenger)

			require.NoError(t, h.HandleSingle(context.Background(), tt.ev))
			assert.Empty(t, messenger.single)
			assert.Empty(t, store.deleted)
		})
	}
}

func TestHandleSingle_StaleTokenDeleted(t *testing.T) {
	for _, code := range []string{firebase.CodeTokenNotRegistered, firebase.CodeInvalidRegistrationToken} {
		t.Run(code, func(t *testing.T) {
			store := newFakeTokenStore(map[string]string{"u1": "tok-u1", "u2": "tok-u2"})
			messenger := &FakeMessenger{CodeByToken: map[string]string{"tok-u1": code}}
			h, _ := newTestHandler(t, store, messenger)

			require.NoError(t, h.HandleSingle(context.Background(), notificationEvent("n1", models.Doc{"userId": "u1"})))
			assert.Equal(t, []string{"u1"}, store.deleted)
			assert.Contains(t, store.tokens, "u2")
		})
	}
}

func TestHandleSingle_TransientErrorKeepsToken(t *testing.T) {
	store := newFakeTokenStore(map[string]string{"u1": "tok-u1"})
	messenger := &FakeMessenger{CodeByToken: map[string]string{"tok-u1": firebase.CodeServerUnavailable}}
	h, _ := newTestHandler(t, store, messenger)

	require.NoError(t, h.HandleSingle(context.Background(), notificationEvent("n1", models.Doc{"userId": "u1"})))
	assert.Empty(t, store.deleted)
}

func TestHandleSingle_LookupErrorIsLogged(t *testing.T) {
	store := newFakeTokenStore(nil)
	store.GetErr = stderrors.New("unavailable")
	messenger := &FakeMessenger{}
	h, _ := newTestHandler(t, store, messenger)

	require.NoError(t, h.HandleSingle(context.Background(), notificationEvent("n1", models.Doc{"userId": "u1"})))
	assert.Empty(t, messenger.single)
}

func TestBatches(t *testing.T) {
	tokens := make([]models.DeviceToken, 1200)
	sizes := func(batches [][]models.DeviceToken) []int {
		var out []int
		for _, b := range batches {
			out = append(out, len(b))
		}
		return out
	}

	assert.Equal(t, []int{500, 500, 200}, sizes(Batches(tokens, MulticastBatchSize)))
	assert.Equal(t, []int{500}, sizes(Batches(tokens[:500], MulticastBatchSize)))
	assert.Equal(t, []int{500, 1}, sizes(Batches(tokens[:501], MulticastBatchSize)))
	assert.Empty(t, Batches(nil, MulticastBatchSize))
}

func TestHandleBroadcast_1200Tokens(t *testing.T) {
	store := newFakeTokenStore(manyTokens(1200))
	messenger := &FakeMessenger{}
	h, notifier := newTestHandler(t, store, messenger)

	err := h.HandleBroadcast(context.Background(), notificationEvent("g1", models.Doc{"title": "休講のお知らせ"}))
	require.NoError(t, err)

	require.Len(t, messenger.multicasts, 3)
	assert.Len(t, messenger.multicasts[0].Tokens, 500)
	assert.Len(t, messenger.multicasts[1].Tokens, 500)
	assert.Len(t, messenger.multicasts[2].Tokens, 200)
	assert.Equal(t, "休講のお知らせ", messenger.multicasts[0].Notification.Title)
	assert.Equal(t, "g1", messenger.multicasts[0].Data["notificationId"])
	assert.Equal(t, "high", messenger.multicasts[0].Android.Priority)

	assert.Equal(t, []discord.Kind{discord.KindNotifications}, notifier.kinds)
}

func TestBroadcast_PrunesOnlyStaleTokens(t *testing.T) {
	store := newFakeTokenStore(manyTokens(1200))
	messenger := &FakeMessenger{CodeByToken: map[string]string{
		"token-0003": firebase.CodeTokenNotRegistered,
		"token-0777": firebase.CodeInvalidRegistrationToken,
		"token-1100": firebase.CodeServerUnavailable,
	}}
	h, _ := newTestHandler(t, store, messenger)

	tokens, err := store.List(context.Background())
	require.NoError(t, err)

	result := h.Broadcast(context.Background(), logger.NewTestLogger(t), GlobalContent(LoadConfig(), "g1", models.Doc{}), tokens)

	assert.Equal(t, []int{500, 500, 200}, result.Batches)
	assert.Equal(t, 1197, result.SuccessCount)
	assert.Equal(t, 3, result.FailureCount)
	assert.Equal(t, 2, result.PrunedCount)

	sort.Strings(store.deleted)
	assert.Equal(t, []string{"user-0003", "user-0777"}, store.deleted)
	assert.Contains(t, store.tokens, "user-1100")
	assert.Len(t, store.tokens, 1198)
}

func TestBroadcast_BatchErrorCountsAsFailure(t *testing.T) {
	store := newFakeTokenStore(manyTokens(10))
	messenger := &FakeMessenger{MulticastErr: stderrors.New("quota")}
	h, _ := newTestHandler(t, store, messenger)

	tokens, _ := store.List(context.Background())
	result := h.Broadcast(context.Background(), logger.NewTestLogger(t), GlobalContent(LoadConfig(), "g", models.Doc{}), tokens)

	assert.Equal(t, 10, result.FailureCount)
	assert.Zero(t, result.PrunedCount)
	assert.Empty(t, store.deleted)
}

func TestHandleBroadcast_InactiveSkipsPushButNotifies(t *testing.T) {
	store := newFakeTokenStore(manyTokens(3))
	messenger := &FakeMessenger{}
	h, notifier := newTestHandler(t, store, messenger)

	err := h.HandleBroadcast(context.Background(), notificationEvent("g2", models.Doc{"isActive": false}))
	require.NoError(t, err)

	assert.Empty(t, messenger.multicasts)
	assert.Len(t, notifier.kinds, 1)
}

func TestHandleBroadcast_NonBooleanIsActiveStillSends(t *testing.T) {
	store := newFakeTokenStore(manyTokens(3))
	messenger := &FakeMessenger{}
	h, _ := newTestHandler(t, store, messenger)

	err := h.HandleBroadcast(context.Background(), notificationEvent("g3", models.Doc{"isActive": "false"}))
	require.NoError(t, err)
	assert.Len(t, messenger.multicasts, 1)
}

// payloadRejected answers every FCM send with a message-level INVALID_ARGUMENT.
type payloadRejected struct{}

func (payloadRejected) RoundTrip(req *http.Request) (*http.Response, error) {
	body := `{"error":{"code":400,"message":"Message is too big. Limit is 4096 bytes.","status":"INVALID_ARGUMENT"}}`
	return &http.Response{
		StatusCode: http.StatusBadRequest,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func TestBroadcast_PayloadErrorPrunesNothing(t *testing.T) {
	app, err := fb.NewApp(context.Background(), &fb.Config{ProjectID: "cit"},
		option.WithHTTPClient(&http.Client{Transport: payloadRejected{}}))
	require.NoError(t, err)
	client, err := app.Messaging(context.Background())
	require.NoError(t, err)

	store := newFakeTokenStore(manyTokens(25))
	formatter := embeds.New(func() time.Time { return time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC) })
	h := NewHandler(LoadConfig(), store, firebase.NewMessenger(client), &MockNotifier{}, formatter, logger.NewTestLogger(t))

	tokens, err := store.List(context.Background())
	require.NoError(t, err)
	result := h.Broadcast(context.Background(), logger.NewTestLogger(t), GlobalContent(LoadConfig(), "g1", models.Doc{"body": strings.Repeat("長", 2000)}), tokens)

	assert.Equal(t, 25, result.FailureCount)
	assert.Zero(t, result.PrunedCount)
	assert.Empty(t, store.deleted)
	assert.Len(t, store.tokens, 25)
}

func TestBroadcast_InvalidArgumentKeepsTokens(t *testing.T) {
	store := newFakeTokenStore(manyTokens(4))
	messenger := &FakeMessenger{CodeByToken: map[string]string{
		"token-0000": firebase.CodeInvalidArgument,
		"token-0001": firebase.CodeInvalidArgument,
		"token-0002": firebase.CodeInvalidArgument,
		"token-0003": firebase.CodeInvalidArgument,
	}}
	h, _ := newTestHandler(t, store, messenger)

	tokens, _ := store.List(context.Background())
	result := h.Broadcast(context.Background(), logger.NewTestLogger(t), GlobalContent(LoadConfig(), "g", models.Doc{}), tokens)

	assert.Equal(t, 4, result.FailureCount)
	assert.Empty(t, store.deleted)
}
