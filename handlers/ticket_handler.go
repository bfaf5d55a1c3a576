package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hogent/event-ticket-manager/auth"
	"github.com/hogent/event-ticket-manager/middleware"
	"github.com/hogent/event-ticket-manager/models"
	"github.com/hogent/event-ticket-manager/services"
	"github.com/hogent/event-ticket-manager/utils"
	"go.uber.org/zap"
)

// CreateTicketRequest represents a ticket purchase for the caller
type CreateTicketRequest struct {
	Price   *float64 `json:"price" validate:"required,gte=0"`
	Type    string   `json:"type" validate:"required,min=1,max=255"`
	EventID int64    `json:"event_id" validate:"required,gte=1"`
}

// UpdateTicketRequest holds optional ticket changes
type UpdateTicketRequest struct {
	Price   *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Type    *string  `json:"type,omitempty" validate:"omitempty,min=1,max=255"`
	EventID *int64   `json:"event_id,omitempty" validate:"omitempty,gte=1"`
}

// TicketService defines ticket operations. Every call carries the caller so
// the service can apply the ownership rule to the loaded ticket.
type TicketService interface {
	List(ctx context.Context, principal *auth.Principal) ([]*models.Ticket, error)
	Get(ctx context.Context, principal *auth.Principal, id int64) (*models.Ticket, error)
	Create(ctx context.Context, principal *auth.Principal, in services.TicketInput) (*models.Ticket, error)
	Update(ctx context.Context, principal *auth.Principal, id int64, changes services.TicketChanges) (*models.Ticket, error)
	Delete(ctx context.Context, principal *auth.Principal, id int64) error
}

// TicketHandler handles /api/tickets
type TicketHandler struct {
	tickets TicketService
	logger  *zap.Logger
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(tickets TicketService, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{tickets: tickets, logger: logger}
}

// HandleList handles GET /api/tickets
func (h *TicketHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	tickets, err := h.tickets.List(r.Context(), principal)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, ListResponse[*models.Ticket]{Items: tickets})
}

// HandleGet handles GET /api/tickets/{id}
func (h *TicketHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"), h.logger)
	if !ok {
		return
	}
	principal := middleware.GetPrincipalFromContext(r.Context())
	ticket, err := h.tickets.Get(r.Context(), principal, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, ticket)
}

// HandleCreate handles POST /api/tickets
func (h *TicketHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateTicketRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	principal := middleware.GetPrincipalFromContext(r.Context())
	ticket, err := h.tickets.Create(r.Context(), principal, services.TicketInput{
		Price:   *req.Price,
		Type:    req.Type,
		EventID: req.EventID,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, ticket)
}

// HandleUpdate handles PUT /api/tickets/{id}
func (h *TicketHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"), h.logger)
	if !ok {
		return
	}
	var req UpdateTicketRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	principal := middleware.GetPrincipalFromContext(r.Context())
	ticket, err := h.tickets.Update(r.Context(), principal, id, services.TicketChanges{
		Price:   req.Price,
		Type:    req.Type,
		EventID: req.EventID,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, ticket)
}

// HandleDelete handles DELETE /api/tickets/{id}
func (h *TicketHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"), h.logger)
	if !ok {
		return
	}
	principal := middleware.GetPrincipalFromContext(r.Context())
	if err := h.tickets.Delete(r.Context(), principal, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	utils.WriteNoContent(w)
}
