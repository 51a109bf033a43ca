package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"lendly/internal/items/service"
	httputil "lendly/pkg/http"
	"lendly/pkg/logger"
	"lendly/pkg/model"
)

type ItemHandler struct {
	service service.ItemService
	log     *logger.Logger
}

func NewItemHandler(service service.ItemService, log *logger.Logger) *ItemHandler {
	return &ItemHandler{
		service: service,
		log:     log,
	}
}

type itemUpdateRequest struct {
	ActorID string           `json:"actor_id"`
	Updates model.ItemUpdate `json:"updates"`
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var item model.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &item); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, item); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *ItemHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	item, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, item); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *ItemHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if ownerID := r.URL.Query().Get("owner_id"); ownerID != "" {
		items, err := h.service.GetByOwner(r.Context(), ownerID)
		if err != nil {
			if writeErr := httputil.WriteError(w, err); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
			}
			return
		}
		if err := httputil.WriteSuccess(w, items); err != nil {
			h.log.Error("failed to write success response", "handler", "GetAll", "error", err)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	items, count, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, items, count, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req itemUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "error", writeErr)
		}
		return
	}

	item, err := h.service.Update(r.Context(), id, req.ActorID, &req.Updates)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, item); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *ItemHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/items", h.Create)
	router.GET("/api/v1/items", h.GetAll)
	router.GET("/api/v1/items/id/:id", h.GetByID)
	router.PATCH("/api/v1/items/id/:id", h.Update)
}
