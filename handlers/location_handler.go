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

// CreateLocationRequest represents a new venue
type CreateLocationRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=255"`
	Street     string `json:"street" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=255"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=255"`
}

// UpdateLocationRequest holds optional venue changes
type UpdateLocationRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Street     *string `json:"street,omitempty" validate:"omitempty,max=255"`
	City       *string `json:"city,omitempty" validate:"omitempty,max=255"`
	PostalCode *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Country    *string `json:"country,omitempty" validate:"omitempty,max=255"`
}

// LocationService defines venue operations
type LocationService interface {
	List(ctx context.Context) ([]*models.Location, error)
	Get(ctx context.Context, id int64) (*models.Location, error)
	Create(ctx context.Context, location *models.Location) (*models.Location, error)
	Update(ctx context.Context, id int64, changes services.LocationChanges) (*models.Location, error)
	Delete(ctx context.Context, id int64) error
}

// LocationHandler handles /api/locations
type LocationHandler struct {
	locations LocationService
	logger    *zap.Logger
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(locations LocationService, logger *zap.Logger) *LocationHandler {
	return &LocationHandler{locations: locations, logger: logger}
}

// HandleList handles GET /api/locations
func (h *LocationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	locations, err := h.locations.List(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, ListResponse[*models.Location]{Items: locations})
}

// HandleGet handles GET /api/locations/{id}
func (h *LocationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"), h.logger)
	if !ok {
		return
	}
	location, err := h.locations.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, location)
}

// HandleCreate handles POST /api/locations
func (h *LocationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateLocationRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	location, err := h.locations.Create(r.Context(), &models.Location{
		Name:       req.Name,
		Street:     req.Street,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, location)
}

// HandleUpdate handles PUT /api/locations/{id}
func (h *LocationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"), h.logger)
	if !ok {
		return
	}
	var req UpdateLocationRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	location, err := h.locations.Update(r.Context(), id, services.LocationChanges{
		Name:       req.Name,
		Street:     req.Street,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, location)
}

// HandleDelete handles DELETE /api/locations/{id}
func (h *LocationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"), h.logger)
	if !ok {
		return
	}
	if err := h.locations.Delete(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	utils.WriteNoContent(w)
}
