// Package handlers contains the HTTP handlers of the Output Management
// Component:
//   - POST /events/listen   processes one ZGW notification
//   - GET  /events/version  reports the wired backend integrations
package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"omc/internal/core"
	"omc/internal/processor"
	"omc/internal/types"
)

// EventProcessor runs one notification. *processor.Processor implements it.
type EventProcessor interface {
	Process(ctx context.Context, event types.NotificationEvent) (processor.Summary, error)
}

// VersionReporter renders the versions register.
type VersionReporter interface {
	ReportVersions() string
}

// EventsHandler maps the events endpoints onto the processor.
type EventsHandler struct {
	processor EventProcessor
	versions  VersionReporter
	validator *core.Validator
	logger    types.Logger
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(p EventProcessor, versions VersionReporter, val *core.Validator, logger types.Logger) *EventsHandler {
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &EventsHandler{
		processor: p,
		versions:  versions,
		validator: val,
		logger:    logger,
	}
}

// RegisterRoutes mounts the /events group.
func (h *EventsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Post("/listen", h.HandleListen)
		r.Get("/version", h.HandleVersion)
	})
}

type versionResponse struct {
	Versions string `json:"versions"`
}

// HandleListen handles POST /events/listen.
//
// A processed or aborted event answers 200 with the summary. An event handed
// to the retry queue answers 202. Every other failure is rendered through
// core.Error, so the status follows the error kind.
func (h *EventsHandler) HandleListen(w http.ResponseWriter, r *http.Request) {
	var event types.NotificationEvent
	if err := core.DecodeJSON(w, r, &event); err != nil {
		core.Error(w, r, err)
		return
	}
	if h.validator != nil {
		if err := h.validator.ValidateStruct(event); err != nil {
			core.Error(w, r, err)
			return
		}
	}

	requestID := types.GetRequestID(r.Context())
	ctx := types.WithLogger(r.Context(), h.logger.With("request_id", requestID))

	summary, err := h.processor.Process(ctx, event)
	switch {
	case err != nil && summary.QueuedForRetry:
		core.JSON(w, r, http.StatusAccepted, core.APIResponse{Data: summary, Warnings: summary.Warnings})
	case err != nil:
		h.logger.Warn("notification failed",
			"request_id", requestID,
			"event", summary.Event,
			"kind", string(types.KindOf(err)),
			"error", err.Error(),
		)
		core.Error(w, r, err)
	default:
		core.JSON(w, r, http.StatusOK, core.APIResponse{Data: summary, Warnings: summary.Warnings})
	}
}

// HandleVersion handles GET /events/version.
func (h *EventsHandler) HandleVersion(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{
		Data: versionResponse{Versions: h.versions.ReportVersions()},
	})
}
