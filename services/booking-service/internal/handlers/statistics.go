package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

// periods are the dashboard ranges, counted in days forward from the start date.
var periods = map[string]int{
	"week":  7,
	"month": 30,
	"year":  365,
}

const maxStatisticsDays = 366

type statusTotalsResponse struct {
	Count        int   `json:"count"`
	RevenueCents int64 `json:"revenue_cents"`
}

type serviceTotalsResponse struct {
	Service      string `json:"service"`
	Count        int    `json:"count"`
	RevenueCents int64  `json:"revenue_cents"`
}

type statisticsResponse struct {
	From                  string                          `json:"from"`
	To                    string                          `json:"to"`
	Total                 int                             `json:"total"`
	ByStatus              map[string]statusTotalsResponse `json:"by_status"`
	BookedRevenueCents    int64                           `json:"booked_revenue_cents"`
	CompletedRevenueCents int64                           `json:"completed_revenue_cents"`
	CancellationRate      float64                         `json:"cancellation_rate"`
	Services              []serviceTotalsResponse         `json:"services"`
	UniqueClients         int                             `json:"unique_clients"`
	ReturningClients      int                             `json:"returning_clients"`
}

type clientResponse struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
	Visits     int    `json:"visits"`
	Completed  int    `json:"completed"`
	Cancelled  int    `json:"cancelled"`
	LastDate   string `json:"last_date"`
	SpentCents int64  `json:"spent_cents"`
}

// Statistics reports appointment counts and revenue over [from, to]. Without to, the
// range spans period (week, month or year) from from; from defaults to today.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	designer, ok := designerID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	from, to, err := h.statisticsRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stats, err := h.store.Statistics(r.Context(), designer, from, to)
	if err != nil {
		h.logger.Error("statistics failed", "designer_id", designer, "from", from.String(), "to", to.String(), "err", err)
		http.Error(w, "failed to load statistics", http.StatusInternalServerError)
		return
	}

	resp := statisticsResponse{
		From:                  from.String(),
		To:                    to.String(),
		Total:                 stats.Total(),
		ByStatus:              map[string]statusTotalsResponse{},
		BookedRevenueCents:    stats.BookedRevenueCents(),
		CompletedRevenueCents: stats.ByStatus[model.StatusCompleted].RevenueCents,
		CancellationRate:      stats.CancellationRate(),
		Services:              make([]serviceTotalsResponse, 0, len(stats.Services)),
		UniqueClients:         stats.UniqueClients,
		ReturningClients:      stats.ReturningClients,
	}
	for _, s := range []model.Status{model.StatusPending, model.StatusConfirmed, model.StatusCompleted, model.StatusCancelled} {
		t := stats.ByStatus[s]
		resp.ByStatus[string(s)] = statusTotalsResponse{Count: t.Count, RevenueCents: t.RevenueCents}
	}
	for _, s := range stats.Services {
		resp.Services = append(resp.Services, serviceTotalsResponse{Service: s.Service, Count: s.Count, RevenueCents: s.RevenueCents})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) statisticsRange(r *http.Request) (model.Date, model.Date, error) {
	q := r.URL.Query()
	from := model.DateOf(h.now())
	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			return "", "", errInvalid("from")
		}
		from = d
	}
	start, err := from.Time()
	if err != nil {
		return "", "", errInvalid("from")
	}

	var to model.Date
	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			return "", "", errInvalid("to")
		}
		to = d
	} else {
		days, ok := periods[strings.TrimSpace(q.Get("period"))]
		if !ok {
			if q.Get("period") != "" {
				return "", "", errInvalid("period")
			}
			days = periods["month"]
		}
		to = model.DateOf(start.AddDate(0, 0, days))
	}
	end, err := to.Time()
	if err != nil {
		return "", "", errInvalid("to")
	}
	if end.Before(start) {
		return "", "", errors.New("to must not be before from")
	}
	if end.Sub(start).Hours() > maxStatisticsDays*24 {
		return "", "", errors.New("range too long")
	}
	return from, to, nil
}

// Clients lists the designer's client roster derived from their appointments.
func (h *Handler) Clients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	designer, ok := designerID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"), 100, 500)

	clients, err := h.store.ListClients(r.Context(), designer, limit)
	if err != nil {
		h.logger.Error("list clients failed", "designer_id", designer, "err", err)
		http.Error(w, "failed to list clients", http.StatusInternalServerError)
		return
	}
	out := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, clientResponse{
			Name:       c.Name,
			Phone:      c.Phone,
			Email:      c.Email,
			Visits:     c.Visits,
			Completed:  c.Completed,
			Cancelled:  c.Cancelled,
			LastDate:   c.LastDate.String(),
			SpentCents: c.SpentCents,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func errInvalid(param string) error { return fmt.Errorf("invalid %s", param) }
