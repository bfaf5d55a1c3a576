package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hogent/event-ticket-manager/models"
	"github.com/hogent/event-ticket-manager/services"
	"github.com/hogent/event-ticket-manager/utils"
	"go.uber.org/zap"
)

// CreateEventRequest represents a new event
type CreateEventRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Date        string  `json:"date" validate:"required,isodate"`
	StartTime   string  `json:"start_time" validate:"required,clocktime"`
	EndTime     string  `json:"end_time" validate:"required,clocktime"`
	LocationID  int64   `json:"location_id" validate:"required,gte=1"`
	CategoryIDs []int64 `json:"category_ids" validate:"omitempty,dive,gte=1"`
}

// UpdateEventRequest holds optional event changes. Sending category_ids
// replaces the links; an empty array removes them all.
type UpdateEventRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Date        *string  `json:"date,omitempty" validate:"omitempty,isodate"`
	StartTime   *string  `json:"start_time,omitempty" validate:"omitempty,clocktime"`
	EndTime     *string  `json:"end_time,omitempty" validate:"omitempty,clocktime"`
	LocationID  *int64   `json:"location_id,omitempty" validate:"omitempty,gte=1"`
	CategoryIDs *[]int64 `json:"category_ids,omitempty" validate:"omitempty,dive,gte=1"`
}

// EventService defines event operations
type EventService interface {
	List(ctx context.Context) ([]*models.Event, error)
	Get(ctx context.Context, id int64) (*models.Event, error)
	Create(ctx context.Context, in services.EventInput) (*models.Event, error)
	Update(ctx context.Context, id int64, changes services.EventChanges) (*models.Event, error)
	Delete(ctx context.Context, id int64) error
}

// EventHandler handles /api/events
type EventHandler struct {
	events EventService
	logger *zap.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(events EventService, logger *zap.Logger) *EventHandler {
	return &EventHandler{events: events, logger: logger}
}

// HandleList handles GET /api/events
func (h *EventHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, ListResponse[*models.Event]{Items: events})
}

// HandleGet handles GET /api/events/{id}
func (h *EventHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"), h.logger)
	if !ok {
		return
	}
	event, err := h.events.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, event)
}

// HandleCreate handles POST /api/events
func (h *EventHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	event, err := h.events.Create(r.Context(), services.EventInput{
		Name:        req.Name,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		LocationID:  req.LocationID,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, event)
}

// HandleUpdate handles PUT /api/events/{id}
func (h *EventHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"), h.logger)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	event, err := h.events.Update(r.Context(), id, services.EventChanges{
		Name:        req.Name,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		LocationID:  req.LocationID,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, event)
}

// HandleDelete handles DELETE /api/events/{id}
func (h *EventHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"), h.logger)
	if !ok {
		return
	}
	if err := h.events.Delete(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	utils.WriteNoContent(w)
}
