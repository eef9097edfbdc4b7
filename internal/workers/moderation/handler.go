// internal/workers/moderation/handler.go
package moderation

import (
	"context"
	"fmt"

	"campus-notifier/internal/common/discord"
	"campus-notifier/internal/common/errors"
	"campus-notifier/internal/common/logger"
	"campus-notifier/internal/common/trigger"
	"campus-notifier/internal/embeds"
	"campus-notifier/internal/models"
)

// NotificationWriter persists personal notifications; each one is later
// pushed by the send-push-notification trigger.
type NotificationWriter interface {
	Create(ctx context.Context, n models.PersonalNotification) (string, error)
}

type Handler struct {
	config    *Config
	notifier  discord.Notifier
	writer    NotificationWriter
	formatter *embeds.Formatter
	logger    logger.Logger
}

func NewHandler(config *Config, notifier discord.Notifier, writer NotificationWriter, formatter *embeds.Formatter, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		notifier:  notifier,
		writer:    writer,
		formatter: formatter,
		logger:    log,
	}
}

// Triggers returns every moderation trigger keyed by name.
func (h *Handler) Triggers() map[string]trigger.Handler {
	out := make(map[string]trigger.Handler, len(createKinds)+1)
	for name, kind := range createKinds {
		out[name] = h.onCreate(name, kind)
	}
	out[TaskBulletinUpdated] = trigger.HandlerFunc(h.HandleBulletinUpdated)
	return out
}

func (h *Handler) onCreate(name string, kind models.EventKind) trigger.HandlerFunc {
	log := h.logger.WithFields(map[string]interface{}{"trigger": name})

	return func(ctx context.Context, ev *models.DocumentEvent) error {
		data := ev.Current()
		if data == nil {
			log.Debug("document gone before trigger ran", map[string]interface{}{"documentId": ev.DocumentID})
			return nil
		}

		if kind == models.KindBulletinSubmitted && !IsSubmittedPending(data) {
			log.Debug("bulletin post not pending, skipping", map[string]interface{}{
				"documentId":     ev.DocumentID,
				"approvalStatus": data.StringOr("", "approvalStatus"),
			})
			return nil
		}

		h.notify(ctx, log, embeds.Event{Kind: kind, DocumentID: ev.DocumentID, Data: data})
		return nil
	}
}

// HandleBulletinUpdated sends the moderator embed on a pending or pin edge
// and writes the author's notification on the approval edge.
func (h *Handler) HandleBulletinUpdated(ctx context.Context, ev *models.DocumentEvent) error {
	log := h.logger.WithFields(map[string]interface{}{
		"trigger":    TaskBulletinUpdated,
		"documentId": ev.DocumentID,
	})

	after := ev.Current()
	if after == nil {
		return nil
	}

	t := EvaluateBulletinUpdate(ev.Previous(), after)
	if !t.Any() {
		return nil
	}

	if t.Notify() {
		h.notify(ctx, log, embeds.Event{
			Kind:         models.KindBulletinStatusChanged,
			DocumentID:   ev.DocumentID,
			Data:         after,
			PinRequested: t.BecamePinRequested,
		})
	}

	if t.BecameApproved {
		return h.writeApproval(ctx, log, ev.DocumentID, after)
	}
	return nil
}

func (h *Handler) writeApproval(ctx context.Context, log logger.Logger, postID string, post models.Doc) error {
	authorID, ok := post.String("authorId")
	if !ok {
		log.Warn("approved post has no authorId, skipping notification", nil)
		return nil
	}

	title := post.StringOr(embeds.Untitled, "title")
	id, err := h.writer.Create(ctx, models.PersonalNotification{
		UserID: authorID,
		Title:  h.config.ApprovedTitle,
		Body:   fmt.Sprintf(h.config.ApprovedBodyTmpl, title),
		Type:   models.NotificationTypeBulletinApproved,
		PostID: postID,
		IsRead: false,
	})
	if err != nil {
		return errors.NewDocumentWriteFailedError(models.CollectionNotifications, err)
	}

	log.Info("approval notification created", map[string]interface{}{
		"notificationId": id,
		"userId":         authorID,
	})
	return nil
}

// notify formats and posts an embed. Delivery failures are logged by the
// client and never fail the trigger.
func (h *Handler) notify(ctx context.Context, log logger.Logger, ev embeds.Event) {
	payload, kind, ok := h.formatter.Format(ev)
	if !ok {
		log.Warn("no embed for event kind", map[string]interface{}{"kind": string(ev.Kind)})
		return
	}

	if err := h.notifier.Notify(ctx, kind, payload); err != nil {
		log.Warn("discord notice not delivered", map[string]interface{}{
			"kind":      string(kind),
			"errorCode": string(errors.Normalize(err).Code),
		})
	}
}
