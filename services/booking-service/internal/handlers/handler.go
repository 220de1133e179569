package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/studionail/nailbook/libs/auth"
	"github.com/studionail/nailbook/libs/httpx"
	"github.com/studionail/nailbook/services/booking-service/internal/catalog"
	"github.com/studionail/nailbook/services/booking-service/internal/model"
	"github.com/studionail/nailbook/services/booking-service/internal/outbox"
	"github.com/studionail/nailbook/services/booking-service/internal/slotcache"
)

// Store is the persistence the handlers need. *storage.Repository implements it.
type Store interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	CreateAppointment(ctx context.Context, tx pgx.Tx, appt model.Appointment) (model.Appointment, error)
	GetAppointmentForUpdate(ctx context.Context, tx pgx.Tx, designerID, appointmentID string) (model.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, tx pgx.Tx, designerID, appointmentID string, status model.Status) error
	ListAppointments(ctx context.Context, designerID string, status model.Status, limit int) ([]model.Appointment, error)
	CreateBlock(ctx context.Context, tx pgx.Tx, b model.Block) (model.Block, error)
	ListBlocks(ctx context.Context, designerID string, limit int) ([]model.Block, error)
	SetBlockActive(ctx context.Context, tx pgx.Tx, designerID, blockID string, active bool) (model.Block, error)
	DeleteBlock(ctx context.Context, tx pgx.Tx, designerID, blockID string) (model.Block, error)
	GetDesigner(ctx context.Context, designerID string) (model.Designer, error)
	GetDesignerBySlug(ctx context.Context, slug string) (model.Designer, error)
	CreateService(ctx context.Context, svc model.Service) (model.Service, error)
	ListServices(ctx context.Context, designerID string, activeOnly bool) ([]model.Service, error)
	GetServices(ctx context.Context, designerID string, ids []string) ([]model.Service, error)
	UpdateService(ctx context.Context, svc model.Service) (model.Service, error)
	DeleteService(ctx context.Context, designerID, serviceID string) error
	Statistics(ctx context.Context, designerID string, from, to model.Date) (model.Statistics, error)
	ListClients(ctx context.Context, designerID string, limit int) ([]model.Client, error)
}

type Outbox interface {
	Insert(ctx context.Context, tx pgx.Tx, evt outbox.Event) error
}

// Availability resolves and invalidates bookable slots. *slotcache.Service implements it.
type Availability interface {
	Available(ctx context.Context, designerID string, date model.Date) ([]model.TimeOfDay, error)
	Invalidate(ctx context.Context, c slotcache.Change) error
}

type Handler struct {
	store   Store
	outbox  Outbox
	slots   Availability
	catalog catalog.Config
	logger  *slog.Logger
	baseURL string
	now     func() time.Time
}

func New(store Store, outboxRepo Outbox, slots Availability, cat catalog.Config, logger *slog.Logger, baseURL string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:   store,
		outbox:  outboxRepo,
		slots:   slots,
		catalog: cat,
		logger:  logger,
		baseURL: baseURL,
		now:     time.Now,
	}
}

// Register mounts the public routes behind public and the designer routes behind designer.
func (h *Handler) Register(mux *http.ServeMux, public, designer httpx.Middleware) {
	mux.Handle("/api/v1/public/designers", public(http.HandlerFunc(h.Designer)))
	mux.Handle("/api/v1/public/slots", public(http.HandlerFunc(h.Slots)))
	mux.Handle("/api/v1/public/catalog", public(http.HandlerFunc(h.Catalog)))
	mux.Handle("/api/v1/public/services", public(http.HandlerFunc(h.PublicServices)))
	mux.Handle("/api/v1/public/book", public(http.HandlerFunc(h.Book)))

	mux.Handle("/api/v1/appointments", designer(http.HandlerFunc(h.ListAppointments)))
	for action := range actions {
		mux.Handle("/api/v1/appointments/"+action, designer(h.AppointmentAction(action)))
	}
	mux.Handle("/api/v1/blocks", designer(http.HandlerFunc(h.Blocks)))
	mux.Handle("/api/v1/blocks/toggle", designer(http.HandlerFunc(h.ToggleBlock)))
	mux.Handle("/api/v1/blocks/delete", designer(http.HandlerFunc(h.DeleteBlock)))
	mux.Handle("/api/v1/services", designer(http.HandlerFunc(h.Services)))
	mux.Handle("/api/v1/services/update", designer(http.HandlerFunc(h.UpdateService)))
	mux.Handle("/api/v1/services/delete", designer(http.HandlerFunc(h.DeleteService)))
	mux.Handle("/api/v1/statistics", designer(http.HandlerFunc(h.Statistics)))
	mux.Handle("/api/v1/clients", designer(http.HandlerFunc(h.Clients)))
}

// invalidate runs after commit. A failure here is logged: the consumer will retry
// from the outbox event.
func (h *Handler) invalidate(ctx context.Context, c slotcache.Change) {
	if err := h.slots.Invalidate(ctx, c); err != nil {
		h.logger.Warn("local slot cache invalidation failed", "designer_id", c.DesignerID, "date", c.Date.String(), "err", err)
	}
}

// designerID returns the authenticated designer. Claims carrying anything but a uuid
// are treated as unauthenticated.
func designerID(r *http.Request) (string, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return "", false
	}
	return parseID(claims.DesignerID)
}

// parseID returns the canonical form of a uuid identifier.
func parseID(raw string) (string, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// requireID parses the identifier named field, answering 400 when it is missing or
// not a uuid.
func requireID(w http.ResponseWriter, raw, field string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		http.Error(w, field+" required", http.StatusBadRequest)
		return "", false
	}
	id, ok := parseID(raw)
	if !ok {
		http.Error(w, "invalid "+field, http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseLimit(raw string, fallback, max int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= max {
		return n
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func labels(slots []model.TimeOfDay) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}
