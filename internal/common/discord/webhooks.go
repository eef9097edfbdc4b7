package discord

import "campus-notifier/internal/common/config"

// Kind selects the webhook a notification goes to.
type Kind string

const (
	KindUsers         Kind = "users"
	KindContacts      Kind = "contacts"
	KindBulletin      Kind = "bulletin"
	KindMenu          Kind = "menu"
	KindReview        Kind = "review"
	KindReport        Kind = "report"
	KindNotifications Kind = "notifications"
	KindCI            Kind = "ci"
)

// Webhooks resolves a Kind to a URL: kind-specific value, then the generic
// value, then "" (not configured).
type Webhooks struct {
	Generic string
	ByKind  map[Kind]string
}

func WebhooksFromConfig(cfg config.DiscordConfig) Webhooks {
	return Webhooks{
		Generic: cfg.WebhookURL,
		ByKind: map[Kind]string{
			KindUsers:    cfg.WebhookURLUsers,
			KindContacts: cfg.WebhookURLContacts,
			KindBulletin: cfg.WebhookURLBulletin,
			KindMenu:     cfg.WebhookURLMenu,
			KindReview:   cfg.WebhookURLReview,
			KindReport:   cfg.WebhookURLReport,
		},
	}
}

func (w Webhooks) URLFor(kind Kind) string {
	if url := w.ByKind[kind]; url != "" {
		return url
	}
	return w.Generic
}
