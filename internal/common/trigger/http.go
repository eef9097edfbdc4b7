package trigger

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campus-notifier/internal/common/errors"
)

const maxEventBytes = 1 << 20

// ReadyFunc reports whether dependencies are usable.
type ReadyFunc func() error

// Routes mounts the trigger ingress next to the health and metrics endpoints.
func (r *Router) Routes(ready ReadyFunc) http.Handler {
	errHandler := errors.NewErrorHandler(r.logger)

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Recoverer)

	mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.Get("/ready", func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil {
			if err := ready(); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.Post("/triggers/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")

		body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxEventBytes))
		if err != nil {
			errHandler.HandleTriggerError(w, name, errors.NewInvalidEventPayloadError(name, err))
			return
		}

		// Eventarc deliveries carry the CloudEvent id.
		invocationID := req.Header.Get("Ce-Id")
		if invocationID == "" {
			invocationID = middleware.GetReqID(req.Context())
		}

		if err := r.DispatchContent(req.Context(), name, invocationID, req.Header.Get("Content-Type"), body); err != nil {
			errHandler.HandleTriggerError(w, name, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.Post("/jobs/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")

		summary, err := r.RunJob(req.Context(), name)
		if err != nil {
			errHandler.HandleTriggerError(w, name, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
