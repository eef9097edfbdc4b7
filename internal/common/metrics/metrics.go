package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TriggerInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trigger_invocations_total",
			Help: "Total number of document event and job invocations by outcome",
		},
		[]string{"trigger", "outcome"},
	)

	TriggerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "trigger_duration_seconds",
			Help: "Duration of trigger processing in seconds",
		},
		[]string{"trigger"},
	)

	DiscordPosts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discord_webhook_posts_total",
			Help: "Discord webhook posts by notification kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	PushMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_messages_total",
			Help: "FCM deliveries by mode (single, multicast) and outcome",
		},
		[]string{"mode", "outcome"},
	)

	PushTokensPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "push_tokens_pruned_total",
			Help: "Device tokens deleted after an invalid or unregistered delivery result",
		},
	)

	MenuImages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_images_total",
			Help: "Menu images processed by the refresh job by outcome",
		},
		[]string{"outcome"},
	)
)

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeSkipped  = "skipped"
	OutcomeDisabled = "disabled"
)
