// internal/workers/push/handler.go
package push

import (
	"context"
	"sync/atomic"

	"firebase.google.com/go/v4/messaging"
	"golang.org/x/sync/errgroup"

	"campus-notifier/internal/common/discord"
	"campus-notifier/internal/common/errors"
	"campus-notifier/internal/common/firebase"
	"campus-notifier/internal/common/logger"
	"campus-notifier/internal/common/metrics"
	"campus-notifier/internal/embeds"
	"campus-notifier/internal/models"
)

// TokenStore is the user_tokens collection.
type TokenStore interface {
	// Get returns nil, nil when the user has no token document.
	Get(ctx context.Context, userID string) (*models.DeviceToken, error)
	List(ctx context.Context) ([]models.DeviceToken, error)
	Delete(ctx context.Context, userID string) error
}

// Messenger sends FCM messages.
type Messenger interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
	SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type Handler struct {
	config    *Config
	tokens    TokenStore
	messenger Messenger
	notifier  discord.Notifier
	formatter *embeds.Formatter
	logger    logger.Logger
}

func NewHandler(config *Config, tokens TokenStore, messenger Messenger, notifier discord.Notifier, formatter *embeds.Formatter, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		tokens:    tokens,
		messenger: messenger,
		notifier:  notifier,
		formatter: formatter,
		logger:    log,
	}
}

// HandleSingle pushes one notifications/{id} document to its owner's device.
// Missing user ids and tokens are not errors.
func (h *Handler) HandleSingle(ctx context.Context, ev *models.DocumentEvent) error {
	log := h.logger.WithFields(map[string]interface{}{
		"trigger":        TaskSendPush,
		"notificationId": ev.DocumentID,
	})

	data := ev.Current()
	if data == nil {
		return nil
	}

	userID, ok := data.String("userId")
	if !ok {
		log.Warn("notification has no userId", nil)
		return nil
	}
	log = log.WithFields(map[string]interface{}{"userId": userID})

	token, err := h.tokens.Get(ctx, userID)
	if err != nil {
		stdErr := errors.NewTokenLookupFailedError(userID, err)
		log.Error("token lookup failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     err,
		})
		return nil
	}
	if token == nil {
		log.Info("no FCM token document for user", nil)
		metrics.PushMessages.WithLabelValues(ModeSingle, metrics.OutcomeSkipped).Inc()
		return nil
	}
	if token.Token == "" {
		log.Info("FCM token is empty", nil)
		metrics.PushMessages.WithLabelValues(ModeSingle, metrics.OutcomeSkipped).Inc()
		return nil
	}

	content := PersonalContent(h.config, ev.DocumentID, data)
	if _, err := h.messenger.Send(ctx, content.Message(token.Token)); err != nil {
		metrics.PushMessages.WithLabelValues(ModeSingle, metrics.OutcomeFailure).Inc()
		h.reconcile(ctx, log, userID, err)
		return nil
	}

	metrics.PushMessages.WithLabelValues(ModeSingle, metrics.OutcomeSuccess).Inc()
	log.Info("push notification sent", map[string]interface{}{"title": content.Title})
	return nil
}

// HandleBroadcast notifies moderators of a new global notification and, unless
// isActive is explicitly false, multicasts it to every stored token.
func (h *Handler) HandleBroadcast(ctx context.Context, ev *models.DocumentEvent) error {
	log := h.logger.WithFields(map[string]interface{}{
		"trigger":        TaskBroadcast,
		"notificationId": ev.DocumentID,
	})

	data := ev.Current()
	if data == nil {
		return nil
	}

	h.notifyModerators(ctx, log, ev.DocumentID, data)

	if active, present := data.Bool("isActive"); present && !active {
		log.Info("global notification inactive, broadcast skipped", nil)
		metrics.PushMessages.WithLabelValues(ModeMulticast, metrics.OutcomeDisabled).Inc()
		return nil
	}

	tokens, err := h.tokens.List(ctx)
	if err != nil {
		stdErr := errors.NewTokenLookupFailedError("*", err)
		log.Error("listing tokens failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     err,
		})
		return nil
	}

	result := h.Broadcast(ctx, log, GlobalContent(h.config, ev.DocumentID, data), tokens)
	log.Info("broadcast finished", map[string]interface{}{
		"tokens":       result.Tokens,
		"batches":      len(result.Batches),
		"successCount": result.SuccessCount,
		"failureCount": result.FailureCount,
		"prunedCount":  result.PrunedCount,
	})
	return nil
}

// Broadcast sends content to tokens in batches of MulticastBatchSize and
// prunes stale tokens. Every deletion is finished when it returns.
func (h *Handler) Broadcast(ctx context.Context, log logger.Logger, content Content, tokens []models.DeviceToken) BroadcastResult {
	result := BroadcastResult{Tokens: len(tokens)}

	for i, batch := range Batches(tokens, MulticastBatchSize) {
		result.Batches = append(result.Batches, len(batch))

		regs := make([]string, len(batch))
		for j, t := range batch {
			regs[j] = t.Token
		}

		resp, err := h.messenger.SendEachForMulticast(ctx, content.Multicast(regs))
		if err != nil {
			stdErr := errors.NewPushSendFailedError(firebase.ErrorCode(err), err)
			log.Error("multicast batch failed", map[string]interface{}{
				"batch":     i,
				"size":      len(batch),
				"errorCode": string(stdErr.Code),
				"error":     err,
			})
			result.FailureCount += len(batch)
			metrics.PushMessages.WithLabelValues(ModeMulticast, metrics.OutcomeFailure).Add(float64(len(batch)))
			continue
		}

		result.SuccessCount += resp.SuccessCount
		result.FailureCount += resp.FailureCount
		metrics.PushMessages.WithLabelValues(ModeMulticast, metrics.OutcomeSuccess).Add(float64(resp.SuccessCount))
		metrics.PushMessages.WithLabelValues(ModeMulticast, metrics.OutcomeFailure).Add(float64(resp.FailureCount))

		result.PrunedCount += h.pruneBatch(ctx, log, batch, resp.Responses)
	}

	return result
}

// pruneBatch deletes the owners of stale tokens concurrently and waits for
// all deletions. Responses are index-aligned with batch.
func (h *Handler) pruneBatch(ctx context.Context, log logger.Logger, batch []models.DeviceToken, responses []*messaging.SendResponse) int {
	var g errgroup.Group
	g.SetLimit(h.cleanupConcurrency())

	var pruned int64
	for i, r := range responses {
		if i >= len(batch) || r == nil || r.Success {
			continue
		}

		owner := batch[i].UserID
		code := firebase.ErrorCode(r.Error)
		if !firebase.IsStaleToken(code) {
			log.Warn("push delivery failed, token kept", map[string]interface{}{
				"userId": owner,
				"code":   code,
			})
			continue
		}

		g.Go(func() error {
			if h.deleteToken(ctx, log, owner, code) {
				atomic.AddInt64(&pruned, 1)
			}
			return nil
		})
	}

	_ = g.Wait()
	return int(pruned)
}

// reconcile handles a failed single send.
func (h *Handler) reconcile(ctx context.Context, log logger.Logger, userID string, err error) {
	code := firebase.ErrorCode(err)
	if !firebase.IsStaleToken(code) {
		stdErr := errors.NewPushSendFailedError(code, err)
		log.Error("push notification failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"code":      code,
			"error":     err,
		})
		return
	}
	h.deleteToken(ctx, log, userID, code)
}

func (h *Handler) deleteToken(ctx context.Context, log logger.Logger, userID, code string) bool {
	stale := errors.NewPushTokenStaleError(userID, code)
	if err := h.tokens.Delete(ctx, userID); err != nil {
		log.Error("failed to delete stale token", map[string]interface{}{
			"userId": userID,
			"code":   code,
			"error":  err,
		})
		return false
	}
	metrics.PushTokensPruned.Inc()
	log.Info("stale token deleted", map[string]interface{}{
		"userId":    userID,
		"code":      code,
		"errorCode": string(stale.Code),
	})
	return true
}

func (h *Handler) notifyModerators(ctx context.Context, log logger.Logger, id string, data models.Doc) {
	if h.notifier == nil || h.formatter == nil {
		return
	}
	payload := h.formatter.GlobalNotificationCreated(id, data)
	if err := h.notifier.Notify(ctx, discord.KindNotifications, payload); err != nil {
		log.Warn("discord notice not delivered", map[string]interface{}{
			"errorCode": string(errors.Normalize(err).Code),
		})
	}
}

func (h *Handler) cleanupConcurrency() int {
	if h.config.CleanupConcurrency > 0 {
		return h.config.CleanupConcurrency
	}
	return 1
}
