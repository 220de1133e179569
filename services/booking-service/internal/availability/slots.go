package availability

import (
	"github.com/studionail/nailbook/services/booking-service/internal/catalog"
	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

// BlockedBy reports whether slot falls inside an active block.
//
// Slots are points in time: a slot is blocked when start <= slot < end. The full-day
// sentinel (00:00-23:59) blocks every slot. A degenerate window blocks nothing.
func BlockedBy(slot model.TimeOfDay, b model.Block) bool {
	if !b.Active {
		return false
	}
	if b.IsFullDay() {
		return true
	}
	return slot.Minutes() >= b.Start.Minutes() && slot.Minutes() < b.End.Minutes()
}

// OccupiedSlots returns the times claimed by non-cancelled appointments of designerID on date.
func OccupiedSlots(appts []model.Appointment, designerID string, date model.Date) map[model.TimeOfDay]struct{} {
	date = date.Normalize()
	occupied := make(map[model.TimeOfDay]struct{})
	for _, a := range appts {
		if a.DesignerID != designerID || !a.Date.Equal(date) || !a.Status.Occupies() {
			continue
		}
		occupied[a.Time] = struct{}{}
	}
	return occupied
}

// AvailableSlots returns the catalog slots for date that are neither occupied nor blocked,
// in catalog order. A zero date returns the default catalog unfiltered. The result may be empty.
//
// It only reads its inputs and is safe for concurrent use.
func AvailableSlots(date model.Date, designerID string, catalogFn catalog.Func, appts []model.Appointment, blocks []model.Block) []model.TimeOfDay {
	if date.IsZero() {
		return []model.TimeOfDay(catalogFn(""))
	}
	if designerID == "" {
		return []model.TimeOfDay{}
	}
	date = date.Normalize()
	slots := catalogFn(date)

	dayBlocks := make([]model.Block, 0, len(blocks))
	for _, b := range blocks {
		if b.DesignerID != designerID || !b.Date.Equal(date) || !b.Active {
			continue
		}
		if b.IsFullDay() {
			return []model.TimeOfDay{}
		}
		dayBlocks = append(dayBlocks, b)
	}

	occupied := OccupiedSlots(appts, designerID, date)
	out := make([]model.TimeOfDay, 0, len(slots))
	for _, s := range slots {
		if _, taken := occupied[s]; taken {
			continue
		}
		if blockedByAny(s, dayBlocks) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func blockedByAny(slot model.TimeOfDay, blocks []model.Block) bool {
	for _, b := range blocks {
		if BlockedBy(slot, b) {
			return true
		}
	}
	return false
}
