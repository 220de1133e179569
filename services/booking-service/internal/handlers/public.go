package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
	"github.com/studionail/nailbook/services/booking-service/internal/outbox"
	"github.com/studionail/nailbook/services/booking-service/internal/slotcache"
	"github.com/studionail/nailbook/services/booking-service/internal/slug"
	"github.com/studionail/nailbook/services/booking-service/internal/snapshot"
	"github.com/studionail/nailbook/services/booking-service/internal/storage"
)

// UnavailableMessage is shown when availability could not be checked. It must never
// be rendered as "no slots".
const UnavailableMessage = "couldn't load availability, try again"

type designerResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Phone        string `json:"phone,omitempty"`
	Bio          string `json:"bio,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	PersonalLink string `json:"personal_link,omitempty"`
}

type slotsResponse struct {
	DesignerID string   `json:"designer_id"`
	Date       string   `json:"date,omitempty"`
	Slots      []string `json:"slots"`
}

type catalogResponse struct {
	Date     string   `json:"date,omitempty"`
	Name     string   `json:"name"`
	Seasonal bool     `json:"seasonal"`
	Slots    []string `json:"slots"`
}

// maxExtras bounds the extras a single booking may add.
const maxExtras = 10

// bookRequest names the service by id. Name and price are read from the designer's
// price list; a body carrying them is rejected as unknown fields.
type bookRequest struct {
	DesignerID  string   `json:"designer_id"`
	ServiceID   string   `json:"service_id"`
	ExtraIDs    []string `json:"extra_ids,omitempty"`
	ClientName  string   `json:"client_name"`
	ClientPhone string   `json:"client_phone"`
	ClientEmail string   `json:"client_email"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
}

type bookResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	Service       string `json:"service"`
	PriceCents    int64  `json:"price_cents"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

// Designer resolves a personal booking link slug to the public designer profile.
func (h *Handler) Designer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s := strings.TrimSpace(r.URL.Query().Get("slug"))
	if !slug.Valid(s) {
		http.Error(w, "invalid slug", http.StatusBadRequest)
		return
	}
	d, err := h.store.GetDesignerBySlug(r.Context(), s)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "designer not found", http.StatusNotFound)
			return
		}
		h.logger.Error("designer lookup failed", "slug", s, "err", err)
		http.Error(w, "failed to load designer", http.StatusInternalServerError)
		return
	}
	resp := designerResponse{ID: d.ID, Name: d.Name, Slug: d.Slug, Phone: d.Phone, Bio: d.Bio, PhotoURL: d.PhotoURL}
	if h.baseURL != "" {
		resp.PersonalLink = slug.PersonalLink(h.baseURL, d.Slug)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Slots lists the bookable times of a designer on a date. Without a date it lists the
// default catalog.
func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	designer, ok := requireID(w, r.URL.Query().Get("designer_id"), "designer_id")
	if !ok {
		return
	}
	var date model.Date
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		date = d
	}

	slots, err := h.slots.Available(r.Context(), designer, date)
	if err != nil {
		h.availabilityError(w, designer, date, err)
		return
	}
	writeJSON(w, http.StatusOK, slotsResponse{DesignerID: designer, Date: date.String(), Slots: labels(slots)})
}

func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var date model.Date
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		date = d
	}
	info := h.catalog.Info(date)
	writeJSON(w, http.StatusOK, catalogResponse{Date: date.String(), Name: info.Name, Seasonal: info.Seasonal, Slots: info.Slots.Strings()})
}

// Book creates a pending appointment priced from the designer's services. The slot
// must be offered at the time of the request; the store's unique index settles
// concurrent bookings.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	designer, ok := requireID(w, req.DesignerID, "designer_id")
	if !ok {
		return
	}
	serviceID, ok := requireID(w, req.ServiceID, "service_id")
	if !ok {
		return
	}
	extraIDs, ok := parseExtras(w, req.ExtraIDs)
	if !ok {
		return
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	at, err := model.ParseTimeOfDay(req.Time)
	if err != nil {
		http.Error(w, "invalid time", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	d, err := h.store.GetDesigner(ctx, designer)
	if err != nil || !d.IsActive {
		if err == nil || errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "designer not found", http.StatusNotFound)
			return
		}
		h.logger.Error("designer lookup failed", "designer_id", designer, "err", err)
		http.Error(w, "failed to load designer", http.StatusInternalServerError)
		return
	}

	name, price, ok := h.quote(w, r, designer, serviceID, extraIDs)
	if !ok {
		return
	}
	booking := model.BookingRequest{
		DesignerID:  designer,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		ClientEmail: req.ClientEmail,
		Service:     name,
		Date:        date,
		Time:        at,
		PriceCents:  price,
	}
	if err := booking.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	appt := booking.Appointment()

	offered, err := h.slots.Available(ctx, appt.DesignerID, appt.Date)
	if err != nil {
		h.availabilityError(w, appt.DesignerID, appt.Date, err)
		return
	}
	if !containsSlot(offered, appt.Time) {
		http.Error(w, "time slot not available", http.StatusConflict)
		return
	}

	tx, err := h.store.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := h.store.CreateAppointment(ctx, tx, appt)
	if err != nil {
		if errors.Is(err, storage.ErrSlotTaken) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		h.logger.Error("create appointment failed", "designer_id", appt.DesignerID, "err", err)
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	evt, err := outbox.AppointmentCreated(created)
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

	h.invalidate(ctx, slotcache.Change{DesignerID: created.DesignerID, Date: created.Date, Kind: slotcache.KindAppointmentCreated})
	writeJSON(w, http.StatusCreated, bookResponse{
		AppointmentID: created.ID,
		Status:        string(created.Status),
		Service:       created.Service,
		PriceCents:    created.PriceCents,
		Date:          created.Date.String(),
		Time:          created.Time.String(),
	})
}

// quote prices the booking from the stored services of designer.
func (h *Handler) quote(w http.ResponseWriter, r *http.Request, designer, serviceID string, extraIDs []string) (string, int64, bool) {
	found, err := h.store.GetServices(r.Context(), designer, append([]string{serviceID}, extraIDs...))
	if err != nil {
		h.logger.Error("service lookup failed", "designer_id", designer, "service_id", serviceID, "err", err)
		http.Error(w, "failed to load services", http.StatusInternalServerError)
		return "", 0, false
	}
	byID := make(map[string]model.Service, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}
	main, ok := byID[serviceID]
	if !ok {
		http.Error(w, "service not found", http.StatusBadRequest)
		return "", 0, false
	}
	extras := make([]model.Service, 0, len(extraIDs))
	for _, id := range extraIDs {
		e, ok := byID[id]
		if !ok {
			http.Error(w, "extra not found", http.StatusBadRequest)
			return "", 0, false
		}
		extras = append(extras, e)
	}
	name, price, err := model.Quote(main, extras)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", 0, false
	}
	return name, price, true
}

// parseExtras validates and de-duplicates the extra ids, keeping their order.
func parseExtras(w http.ResponseWriter, raw []string) ([]string, bool) {
	if len(raw) > maxExtras {
		http.Error(w, "too many extras", http.StatusBadRequest)
		return nil, false
	}
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		id, ok := parseID(r)
		if !ok {
			http.Error(w, "invalid extra_ids", http.StatusBadRequest)
			return nil, false
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, true
}

// availabilityError answers a failed slot lookup. Arguments the store refused are the
// caller's fault; anything else means availability is unknown.
func (h *Handler) availabilityError(w http.ResponseWriter, designer string, date model.Date, err error) {
	if errors.Is(err, snapshot.ErrRejected) {
		http.Error(w, "invalid availability request", http.StatusBadRequest)
		return
	}
	h.logger.Error("availability lookup failed", "designer_id", designer, "date", date.String(), "err", err)
	http.Error(w, UnavailableMessage, http.StatusServiceUnavailable)
}

func containsSlot(slots []model.TimeOfDay, t model.TimeOfDay) bool {
	for _, s := range slots {
		if s == t {
			return true
		}
	}
	return false
}
