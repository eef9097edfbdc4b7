// internal/widget/renderer.go
package widget

import (
	"context"
	"fmt"
	"sort"

	"campus-notifier/internal/common/logger"
)

type renderFunc func(raw string) (*View, error)

var renderers = map[string]renderFunc{
	KeyBusRealtime:        renderBus,
	KeyWeeklyFullSchedule: renderWeekly,
	KeyTodaySchedule:      renderToday,
}

// Keys lists the widget cache keys in a stable order.
func Keys() []string {
	keys := make([]string, 0, len(renderers))
	for k := range renderers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Renderer reads widget blobs from a Cache and renders them. It never fails:
// cache and data errors are logged and render the empty state.
type Renderer struct {
	cache  Cache
	logger logger.Logger
}

func NewRenderer(cache Cache, log logger.Logger) *Renderer {
	return &Renderer{cache: cache, logger: log}
}

// Render renders the widget stored under key. Unknown keys return nil.
func (r *Renderer) Render(ctx context.Context, key string) *View {
	render, ok := renderers[key]
	if !ok {
		r.logger.Warn("unknown widget key", map[string]interface{}{"key": key})
		return nil
	}

	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("widget cache read failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		raw = ""
	}

	view, err := render(raw)
	if err != nil {
		r.logger.Warn("widget data rejected, showing empty state", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	} else if view.Empty {
		r.logger.Debug("no widget data", map[string]interface{}{"key": key})
	}
	return view
}

// RenderAll renders every known widget keyed by cache key.
func (r *Renderer) RenderAll(ctx context.Context) map[string]*View {
	out := make(map[string]*View, len(renderers))
	for _, key := range Keys() {
		out[key] = r.Render(ctx, key)
	}
	return out
}

// Bus, Weekly and Today are typed shorthands for Render.
func (r *Renderer) Bus(ctx context.Context) *View    { return r.Render(ctx, KeyBusRealtime) }
func (r *Renderer) Weekly(ctx context.Context) *View { return r.Render(ctx, KeyWeeklyFullSchedule) }
func (r *Renderer) Today(ctx context.Context) *View  { return r.Render(ctx, KeyTodaySchedule) }

// String is a debugging aid for previews.
func (v *View) String() string {
	return fmt.Sprintf("%s(empty=%t, text=%d, lists=%d)", v.Layout, v.Empty, len(v.Text), len(v.Lists))
}
