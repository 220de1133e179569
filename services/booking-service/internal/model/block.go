package model

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var ErrInvalidBlockRange = errors.New("block start must be before end")

// Block is a designer-declared unavailability window on one date.
// Active means the block is in effect.
type Block struct {
	ID         string
	DesignerID string
	Date       Date
	Start      TimeOfDay
	End        TimeOfDay
	Active     bool
	CreatedAt  time.Time
}

// IsFullDay matches only the 00:00-23:59 sentinel pair.
func (b Block) IsFullDay() bool {
	return b.Start == Midnight && b.End == LastMinute
}

// IsDegenerate reports an empty window: start at or after end on a non full-day block.
func (b Block) IsDegenerate() bool {
	return !b.IsFullDay() && b.Start >= b.End
}

// NewBlock validates a block before it is written. New blocks start active.
func NewBlock(designerID string, date Date, start, end TimeOfDay) (Block, error) {
	if strings.TrimSpace(designerID) == "" {
		return Block{}, errors.New("designer_id is required")
	}
	if date.IsZero() {
		return Block{}, fmt.Errorf("%w: empty", ErrMalformedDate)
	}
	if !start.Valid() || !end.Valid() {
		return Block{}, ErrMalformedTime
	}
	b := Block{DesignerID: designerID, Date: date.Normalize(), Start: start, End: end, Active: true}
	if b.IsDegenerate() {
		return Block{}, fmt.Errorf("%w: %s-%s", ErrInvalidBlockRange, start, end)
	}
	return b, nil
}

// BlockRecord is an availability row as stored. IsAvailable=false marks a block in effect.
type BlockRecord struct {
	ID           string
	DesignerID   string
	DayOfWeek    *int
	SpecificDate *string
	StartTime    string
	EndTime      string
	IsAvailable  bool
	CreatedAt    time.Time
}

// BlockFromRecord converts a stored row. ok is false for rows without a specific
// date, which are weekly rules and have no effect on date resolution.
func BlockFromRecord(rec BlockRecord) (b Block, ok bool, err error) {
	if rec.SpecificDate == nil || strings.TrimSpace(*rec.SpecificDate) == "" {
		return Block{}, false, nil
	}
	date, err := ParseDate(*rec.SpecificDate)
	if err != nil {
		return Block{}, false, fmt.Errorf("block %s: %w", rec.ID, err)
	}
	start, err := ParseTimeOfDay(rec.StartTime)
	if err != nil {
		return Block{}, false, fmt.Errorf("block %s: %w", rec.ID, err)
	}
	end, err := ParseTimeOfDay(rec.EndTime)
	if err != nil {
		return Block{}, false, fmt.Errorf("block %s: %w", rec.ID, err)
	}
	return Block{
		ID:         rec.ID,
		DesignerID: rec.DesignerID,
		Date:       date,
		Start:      start,
		End:        end,
		Active:     !rec.IsAvailable,
		CreatedAt:  rec.CreatedAt,
	}, true, nil
}

// LogDegenerate emits a data-quality warning for stored blocks that can never match a slot.
func LogDegenerate(logger *slog.Logger, blocks []Block) {
	if logger == nil {
		return
	}
	for _, b := range blocks {
		if b.IsDegenerate() {
			logger.Warn("degenerate availability block ignored",
				"block_id", b.ID,
				"designer_id", b.DesignerID,
				"date", b.Date.String(),
				"start", b.Start.String(),
				"end", b.End.String(),
			)
		}
	}
}
