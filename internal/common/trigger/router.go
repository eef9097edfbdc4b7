// internal/common/trigger/router.go
package trigger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"campus-notifier/internal/common/config"
	"campus-notifier/internal/common/errors"
	"campus-notifier/internal/common/firestoreevent"
	"campus-notifier/internal/common/logger"
	"campus-notifier/internal/common/metrics"
	"campus-notifier/internal/common/observability"
	"campus-notifier/internal/models"
)

// Handler reacts to one document event. Returning an error asks the event
// platform to redeliver.
type Handler interface {
	Handle(ctx context.Context, ev *models.DocumentEvent) error
}

type HandlerFunc func(ctx context.Context, ev *models.DocumentEvent) error

func (f HandlerFunc) Handle(ctx context.Context, ev *models.DocumentEvent) error {
	return f(ctx, ev)
}

// Job is a unit of scheduled work. The returned value is a summary that is
// logged and served back by the jobs endpoint.
type Job interface {
	Run(ctx context.Context) (interface{}, error)
}

type registration struct {
	handler Handler
	timeout time.Duration
	enabled bool
}

type jobRegistration struct {
	job     Job
	timeout time.Duration
}

type Router struct {
	cfg    *config.Config
	logger logger.Logger
	obs    *observability.Observability

	mu       sync.RWMutex
	triggers map[string]registration
	jobs     map[string]jobRegistration
}

func NewRouter(cfg *config.Config, log logger.Logger, obs *observability.Observability) *Router {
	return &Router{
		cfg:      cfg,
		logger:   log.WithFields(map[string]interface{}{"component": "trigger-router"}),
		obs:      obs,
		triggers: make(map[string]registration),
		jobs:     make(map[string]jobRegistration),
	}
}

// Register binds a handler to a trigger name. Triggers disabled in config
// stay known so their deliveries are acknowledged without running.
func (r *Router) Register(name string, h Handler) {
	tcfg := config.GetTriggerConfig(r.cfg, name)
	if tcfg.Timeout <= 0 {
		tcfg.Timeout = config.DefaultTriggerTimeout
	}

	r.mu.Lock()
	r.triggers[name] = registration{
		handler: h,
		timeout: config.GetDuration(tcfg.Timeout),
		enabled: tcfg.Enabled,
	}
	r.mu.Unlock()

	if !tcfg.Enabled {
		r.logger.Info("trigger disabled", map[string]interface{}{"trigger": name})
		return
	}
	r.logger.Info("trigger registered", map[string]interface{}{
		"trigger":    name,
		"timeout_ms": tcfg.Timeout,
	})
}

func (r *Router) RegisterJob(name string, j Job, timeout time.Duration) {
	if timeout <= 0 {
		timeout = config.GetDuration(config.DefaultJobTimeout)
	}
	r.mu.Lock()
	r.jobs[name] = jobRegistration{job: j, timeout: timeout}
	r.mu.Unlock()

	r.logger.Info("job registered", map[string]interface{}{
		"job":        name,
		"timeout_ms": timeout.Milliseconds(),
	})
}

// Triggers lists registered trigger names.
func (r *Router) Triggers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.triggers))
	for name := range r.triggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Jobs lists registered job names.
func (r *Router) Jobs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch decodes a JSON document event and runs the trigger's handler
// under its configured timeout.
func (r *Router) Dispatch(ctx context.Context, name, invocationID string, body []byte) error {
	return r.DispatchContent(ctx, name, invocationID, "application/json", body)
}

// DispatchContent is Dispatch for a body in the given content type, JSON or
// application/protobuf.
func (r *Router) DispatchContent(ctx context.Context, name, invocationID, contentType string, body []byte) error {
	r.mu.RLock()
	reg, ok := r.triggers[name]
	r.mu.RUnlock()
	if !ok {
		return errors.NewUnknownTriggerError(name)
	}
	if !reg.enabled {
		metrics.TriggerInvocations.WithLabelValues(name, metrics.OutcomeDisabled).Inc()
		return nil
	}

	ev, err := firestoreevent.DecodeContent(name, contentType, body)
	if err != nil {
		metrics.TriggerInvocations.WithLabelValues(name, metrics.OutcomeFailure).Inc()
		return errors.NewInvalidEventPayloadError(name, err)
	}

	if invocationID == "" {
		invocationID = uuid.NewString()
	}
	log := r.logger.WithFields(map[string]interface{}{
		"trigger":      name,
		"invocationId": invocationID,
		"documentId":   ev.DocumentID,
	})
	log.Debug("dispatching trigger", nil)

	ctx, cancel := context.WithTimeout(ctx, reg.timeout)
	defer cancel()

	start := time.Now()
	err = reg.handler.Handle(ctx, ev)
	r.record(ctx, name, err, time.Since(start))

	if err != nil {
		log.Error("trigger handler failed", map[string]interface{}{"error": err})
		return err
	}
	return nil
}

// RunJob runs a registered job under its timeout.
func (r *Router) RunJob(ctx context.Context, name string) (interface{}, error) {
	r.mu.RLock()
	reg, ok := r.jobs[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NewUnknownTriggerError(name)
	}

	ctx, cancel := context.WithTimeout(ctx, reg.timeout)
	defer cancel()

	start := time.Now()
	summary, err := reg.job.Run(ctx)
	r.record(ctx, name, err, time.Since(start))

	fields := map[string]interface{}{
		"job":         name,
		"duration_ms": time.Since(start).Milliseconds(),
		"summary":     summary,
	}
	if err != nil {
		fields["error"] = err
		r.logger.Error("job failed", fields)
		return summary, err
	}
	r.logger.Info("job completed", fields)
	return summary, nil
}

// JobFunc adapts RunJob for a scheduler. Failures are already logged by
// RunJob.
func (r *Router) JobFunc(name string) func() {
	return func() {
		_, _ = r.RunJob(context.Background(), name)
	}
}

func (r *Router) record(ctx context.Context, name string, err error, d time.Duration) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	metrics.TriggerInvocations.WithLabelValues(name, outcome).Inc()
	metrics.TriggerDuration.WithLabelValues(name).Observe(d.Seconds())
	r.obs.RecordTrigger(context.WithoutCancel(ctx), name, outcome, d)
}
