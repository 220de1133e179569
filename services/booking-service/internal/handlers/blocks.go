package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
	"github.com/studionail/nailbook/services/booking-service/internal/outbox"
	"github.com/studionail/nailbook/services/booking-service/internal/slotcache"
	"github.com/studionail/nailbook/services/booking-service/internal/storage"
)

type blockResponse struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	FullDay   bool      `json:"full_day"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// createBlockRequest omits start and end for a full-day block.
type createBlockRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type toggleBlockRequest struct {
	BlockID string `json:"block_id"`
	Active  *bool  `json:"active"`
}

type deleteBlockRequest struct {
	BlockID string `json:"block_id"`
}

func toBlockResponse(b model.Block) blockResponse {
	return blockResponse{
		ID:        b.ID,
		Date:      b.Date.String(),
		StartTime: b.Start.String(),
		EndTime:   b.End.String(),
		FullDay:   b.IsFullDay(),
		Active:    b.Active,
		CreatedAt: b.CreatedAt,
	}
}

// Blocks lists (GET) or creates (POST) date blocks for the authenticated designer.
func (h *Handler) Blocks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listBlocks(w, r)
	case http.MethodPost:
		h.createBlock(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listBlocks(w http.ResponseWriter, r *http.Request) {
	designer, ok := designerID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	blocks, err := h.store.ListBlocks(r.Context(), designer, parseLimit(r.URL.Query().Get("limit"), 100, 500))
	if err != nil {
		h.logger.Error("list blocks failed", "designer_id", designer, "err", err)
		http.Error(w, "failed to list blocks", http.StatusInternalServerError)
		return
	}
	out := make([]blockResponse, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, toBlockResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createBlock(w http.ResponseWriter, r *http.Request) {
	designer, ok := designerID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req createBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	start, end := model.Midnight, model.LastMinute
	if strings.TrimSpace(req.StartTime) != "" || strings.TrimSpace(req.EndTime) != "" {
		if start, err = model.ParseTimeOfDay(req.StartTime); err != nil {
			http.Error(w, "invalid start_time", http.StatusBadRequest)
			return
		}
		if end, err = model.ParseTimeOfDay(req.EndTime); err != nil {
			http.Error(w, "invalid end_time", http.StatusBadRequest)
			return
		}
	}
	block, err := model.NewBlock(designer, date, start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeBlock(w, r, http.StatusCreated, "created", func(tx pgx.Tx) (model.Block, error) {
		return h.store.CreateBlock(r.Context(), tx, block)
	})
}

func (h *Handler) ToggleBlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	designer, ok := designerID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req toggleBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.Active == nil {
		http.Error(w, "block_id and active required", http.StatusBadRequest)
		return
	}
	blockID, ok := requireID(w, req.BlockID, "block_id")
	if !ok {
		return
	}
	action := "deactivated"
	if *req.Active {
		action = "activated"
	}
	h.writeBlock(w, r, http.StatusOK, action, func(tx pgx.Tx) (model.Block, error) {
		return h.store.SetBlockActive(r.Context(), tx, designer, blockID, *req.Active)
	})
}

func (h *Handler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	designer, ok := designerID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req deleteBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	blockID, ok := requireID(w, req.BlockID, "block_id")
	if !ok {
		return
	}
	h.writeBlock(w, r, http.StatusOK, "deleted", func(tx pgx.Tx) (model.Block, error) {
		return h.store.DeleteBlock(r.Context(), tx, designer, blockID)
	})
}

// writeBlock runs one block mutation with its outbox event in a single transaction,
// then invalidates the affected date.
func (h *Handler) writeBlock(w http.ResponseWriter, r *http.Request, code int, action string, mutate func(pgx.Tx) (model.Block, error)) {
	ctx := r.Context()
	tx, err := h.store.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	block, err := mutate(tx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "block not found", http.StatusNotFound)
			return
		}
		h.logger.Error("block write failed", "action", action, "err", err)
		http.Error(w, "failed to save block", http.StatusInternalServerError)
		return
	}
	evt, err := outbox.BlockChanged(block, action)
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

	h.invalidate(ctx, slotcache.Change{DesignerID: block.DesignerID, Date: block.Date, Kind: slotcache.KindBlockChanged})
	writeJSON(w, code, toBlockResponse(block))
}
