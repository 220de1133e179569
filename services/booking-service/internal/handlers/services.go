package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
	"github.com/studionail/nailbook/services/booking-service/internal/storage"
)

type serviceRequest struct {
	ServiceID       string `json:"service_id,omitempty"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
	IsActive        *bool  `json:"is_active"`
}

type deleteServiceRequest struct {
	ServiceID string `json:"service_id"`
}

type serviceResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Category        string    `json:"category"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      int64     `json:"price_cents"`
	IsActive        bool      `json:"is_active"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toServiceResponse(s model.Service) serviceResponse {
	return serviceResponse{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		Category:        string(s.Category),
		DurationMinutes: s.DurationMinutes,
		PriceCents:      s.PriceCents,
		IsActive:        s.IsActive,
		UpdatedAt:       s.UpdatedAt,
	}
}

func toServiceResponses(list []model.Service) []serviceResponse {
	out := make([]serviceResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toServiceResponse(s))
	}
	return out
}

// service builds the validated model from req. A missing is_active means active.
func (req serviceRequest) service(designer string) (model.Service, error) {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return model.Service{
		DesignerID:      designer,
		Name:            req.Name,
		Description:     req.Description,
		Category:        model.Category(req.Category),
		DurationMinutes: req.DurationMinutes,
		PriceCents:      req.PriceCents,
		IsActive:        active,
	}.Normalize()
}

// PublicServices lists the active price list shown on a designer's booking page.
func (h *Handler) PublicServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	designer, ok := requireID(w, r.URL.Query().Get("designer_id"), "designer_id")
	if !ok {
		return
	}
	list, err := h.store.ListServices(r.Context(), designer, true)
	if err != nil {
		h.logger.Error("list services failed", "designer_id", designer, "err", err)
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toServiceResponses(list))
}

// Services lists (GET) or adds to (POST) the authenticated designer's price list.
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	designer, ok := designerID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	switch r.Method {
	case http.MethodGet:
		list, err := h.store.ListServices(r.Context(), designer, false)
		if err != nil {
			h.logger.Error("list services failed", "designer_id", designer, "err", err)
			http.Error(w, "failed to list services", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toServiceResponses(list))
	case http.MethodPost:
		var req serviceRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		svc, err := req.service(designer)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		created, err := h.store.CreateService(r.Context(), svc)
		if err != nil {
			h.logger.Error("create service failed", "designer_id", designer, "err", err)
			http.Error(w, "failed to create service", http.StatusInternalServerError)
			return
		}
		h.logger.Info("service created", "designer_id", designer, "service_id", created.ID)
		writeJSON(w, http.StatusCreated, toServiceResponse(created))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// UpdateService replaces every field of one service. Existing appointments keep the
// name and price they were booked with.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	designer, ok := designerID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req serviceRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	id, ok := requireID(w, req.ServiceID, "service_id")
	if !ok {
		return
	}
	svc, err := req.service(designer)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	svc.ID = id
	updated, err := h.store.UpdateService(r.Context(), svc)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		h.logger.Error("update service failed", "designer_id", designer, "service_id", id, "err", err)
		http.Error(w, "failed to update service", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toServiceResponse(updated))
}

func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	designer, ok := designerID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req deleteServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	id, ok := requireID(w, req.ServiceID, "service_id")
	if !ok {
		return
	}
	if err := h.store.DeleteService(r.Context(), designer, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		h.logger.Error("delete service failed", "designer_id", designer, "service_id", id, "err", err)
		http.Error(w, "failed to delete service", http.StatusInternalServerError)
		return
	}
	h.logger.Info("service deleted", "designer_id", designer, "service_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
