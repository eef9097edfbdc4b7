package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"campus-notifier/internal/models"
)

// NotificationWriter creates documents in the notifications collection.
type NotificationWriter struct {
	client *firestore.Client
}

func NewNotificationWriter(client *firestore.Client) *NotificationWriter {
	return &NotificationWriter{client: client}
}

// Create stores n under a fresh id and returns the id.
func (w *NotificationWriter) Create(ctx context.Context, n models.PersonalNotification) (string, error) {
	id := uuid.NewString()
	if _, err := w.client.Collection(models.CollectionNotifications).Doc(id).Set(ctx, n); err != nil {
		return "", fmt.Errorf("create notification: %w", err)
	}
	return id, nil
}
