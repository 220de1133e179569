package main

import (
	"testing"

	"github.com/studionail/nailbook/services/booking-service/internal/catalog"
	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

func TestPreviewCrossesSeasonBoundary(t *testing.T) {
	rows, err := preview(catalog.Default(), model.MustParseDate("2025-11-30"), 3)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Date != "2025-11-30" || rows[0].Seasonal {
		t.Fatalf("expected default catalog on 2025-11-30, got %+v", rows[0])
	}
	if rows[1].Date != "2025-12-01" || !rows[1].Seasonal || len(rows[1].Slots) != 8 {
		t.Fatalf("expected seasonal catalog on 2025-12-01, got %+v", rows[1])
	}
}
