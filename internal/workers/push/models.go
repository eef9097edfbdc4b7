// internal/workers/push/models.go
package push

import (
	"firebase.google.com/go/v4/messaging"

	"campus-notifier/internal/models"
)

const (
	TaskSendPush  = "send-push-notification"
	TaskBroadcast = "broadcast-global-notification"
)

// Metric modes.
const (
	ModeSingle    = "single"
	ModeMulticast = "multicast"
)

// BroadcastResult is logged once per broadcast run.
type BroadcastResult struct {
	Tokens       int   `json:"tokens"`
	Batches      []int `json:"batches"`
	SuccessCount int   `json:"successCount"`
	FailureCount int   `json:"failureCount"`
	PrunedCount  int   `json:"prunedCount"`
}

// Content is the visible part of a push plus its data payload.
type Content struct {
	Title string
	Body  string
	Data  map[string]string
}

// PersonalContent builds the push for a notifications/{id} document. Every
// cross-reference id defaults to "".
func PersonalContent(cfg *Config, notificationID string, d models.Doc) Content {
	return Content{
		Title: d.StringOr(cfg.DefaultTitle, "title"),
		Body:  d.StringOr("", "body"),
		Data: map[string]string{
			"notificationId": notificationID,
			"type":           d.StringOr(cfg.DefaultType, "type"),
			"postId":         d.StringOr("", "postId"),
			"commentId":      d.StringOr("", "commentId"),
			"replyId":        d.StringOr("", "replyId"),
		},
	}
}

// GlobalContent builds the push for a global_notifications/{id} document.
func GlobalContent(cfg *Config, notificationID string, d models.Doc) Content {
	return Content{
		Title: d.StringOr(cfg.DefaultTitle, "title"),
		Body:  d.StringOr("", "body"),
		Data: map[string]string{
			"notificationId": notificationID,
			"type":           d.StringOr(cfg.DefaultType, "type"),
		},
	}
}

func (c Content) notification() *messaging.Notification {
	return &messaging.Notification{Title: c.Title, Body: c.Body}
}

func platformConfig() (*messaging.AndroidConfig, *messaging.APNSConfig) {
	return &messaging.AndroidConfig{Priority: "high"},
		&messaging.APNSConfig{Payload: &messaging.APNSPayload{Aps: &messaging.Aps{Sound: "default"}}}
}

// Message addresses c to a single token.
func (c Content) Message(token string) *messaging.Message {
	android, apns := platformConfig()
	return &messaging.Message{
		Token:        token,
		Notification: c.notification(),
		Data:         c.Data,
		Android:      android,
		APNS:         apns,
	}
}

// Multicast addresses c to up to MulticastBatchSize tokens.
func (c Content) Multicast(tokens []string) *messaging.MulticastMessage {
	android, apns := platformConfig()
	return &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: c.notification(),
		Data:         c.Data,
		Android:      android,
		APNS:         apns,
	}
}

// Batches splits tokens into consecutive slices of at most size.
func Batches(tokens []models.DeviceToken, size int) [][]models.DeviceToken {
	if size <= 0 {
		size = MulticastBatchSize
	}
	var out [][]models.DeviceToken
	for start := 0; start < len(tokens); start += size {
		end := start + size
		if end > len(tokens) {
			end = len(tokens)
		}
		out = append(out, tokens[start:end])
	}
	return out
}
