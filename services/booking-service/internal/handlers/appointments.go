package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
	"github.com/studionail/nailbook/services/booking-service/internal/outbox"
	"github.com/studionail/nailbook/services/booking-service/internal/slotcache"
	"github.com/studionail/nailbook/services/booking-service/internal/storage"
)

// actions maps the designer dashboard actions to the status they move an appointment to.
var actions = map[string]model.Status{
	"approve":  model.StatusConfirmed,
	"reject":   model.StatusCancelled,
	"complete": model.StatusCompleted,
	"cancel":   model.StatusCancelled,
}

type appointmentResponse struct {
	ID          string    `json:"id"`
	ClientName  string    `json:"client_name"`
	ClientPhone string    `json:"client_phone"`
	ClientEmail string    `json:"client_email,omitempty"`
	Service     string    `json:"service"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	PriceCents  int64     `json:"price_cents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type appointmentActionRequest struct {
	AppointmentID string `json:"appointment_id"`
}

func toAppointmentResponse(a model.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:          a.ID,
		ClientName:  a.ClientName,
		ClientPhone: a.ClientPhone,
		ClientEmail: a.ClientEmail,
		Service:     a.Service,
		Date:        a.Date.String(),
		Time:        a.Time.String(),
		PriceCents:  a.PriceCents,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt,
	}
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	designer, ok := designerID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var status model.Status
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		s, err := model.ParseStatus(raw)
		if err != nil {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}
		status = s
	}
	limit := parseLimit(r.URL.Query().Get("limit"), 50, 200)

	appts, err := h.store.ListAppointments(r.Context(), designer, status, limit)
	if err != nil {
		h.logger.Error("list appointments failed", "designer_id", designer, "err", err)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	out := make([]appointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// AppointmentAction moves an appointment of the authenticated designer to the status
// bound to action.
func (h *Handler) AppointmentAction(action string) http.HandlerFunc {
	target := actions[action]
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		designer, ok := designerID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req appointmentActionRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		apptID, ok := requireID(w, req.AppointmentID, "appointment_id")
		if !ok {
			return
		}

		ctx := r.Context()
		tx, err := h.store.Begin(ctx)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		defer func() { _ = tx.Rollback(ctx) }()

		appt, err := h.store.GetAppointmentForUpdate(ctx, tx, designer, apptID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "appointment not found", http.StatusNotFound)
				return
			}
			h.logger.Error("load appointment failed", "appointment_id", apptID, "err", err)
			http.Error(w, "failed to load appointment", http.StatusInternalServerError)
			return
		}
		changed, err := appt.Status.Transition(target)
		if err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		if !changed {
			writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
			return
		}

		if err := h.store.UpdateAppointmentStatus(ctx, tx, designer, appt.ID, target); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "appointment not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to update appointment", http.StatusInternalServerError)
			return
		}
		evt, err := outbox.AppointmentStatusChanged(appt, target)
		if err != nil {
			http.Error(w, "failed to build event payload", http.StatusInternalServerError)
			return
		}
		if err := h.outbox.Insert(ctx, tx, evt); err != nil {
			http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
			return
		}
		if err := tx.Commit(ctx); err != nil {
			http.Error(w, "failed to commit", http.StatusInternalServerError)
			return
		}

		appt.Status = target
		h.invalidate(ctx, slotcache.Change{DesignerID: designer, Date: appt.Date, Kind: slotcache.KindAppointmentStatus})
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}
