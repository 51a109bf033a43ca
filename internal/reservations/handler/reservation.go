package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"lendly/internal/reservations/service"
	httputil "lendly/pkg/http"
	"lendly/pkg/logger"
	"lendly/pkg/model"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

// actorRequest carries the explicit actor for owner-driven transitions; the
// engine never resolves "current user" from ambient state.
type actorRequest struct {
	ActorID string `json:"actor_id"`
}

func (h *ReservationHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Submit", "error", writeErr)
		}
		return
	}

	// The middleware-level idempotency cache keys on the same token.
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	booking, err := h.service.Submit(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Submit", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Submit", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	booking, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *ReservationHandler) Accept(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, h.service.Accept, "Accept")
}

func (h *ReservationHandler) Decline(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, h.service.Decline, "Decline")
}

func (h *ReservationHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	ps httprouter.Params,
	fn func(ctx context.Context, bookingID, actorID string) (*model.Booking, error),
	name string,
) {
	id := ps.ByName("id")

	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", name, "error", writeErr)
		}
		return
	}

	booking, err := fn(r.Context(), id, req.ActorID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", name, "error", err)
	}
}

func (h *ReservationHandler) Grouped(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	userID := query.Get("user_id")
	role := query.Get("role")

	groups, err := h.service.GroupForUser(r.Context(), userID, role)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Grouped", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, groups); err != nil {
		h.log.Error("failed to write success response", "handler", "Grouped", "error", err)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Submit)
	router.GET("/api/v1/reservations/grouped", h.Grouped)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.POST("/api/v1/reservations/id/:id/accept", h.Accept)
	router.POST("/api/v1/reservations/id/:id/decline", h.Decline)
}
