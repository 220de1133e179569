package availability

import (
	"math/rand"
	"reflect"
	"sync"
	"testing"

	"github.com/studionail/nailbook/services/booking-service/internal/catalog"
	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

const (
	designer = "designer-1"
	target   = model.Date("2026-01-28")
)

var fiveSlots = catalog.Func(func(model.Date) catalog.Catalog {
	return catalog.Catalog{
		model.MustParseTimeOfDay("08:00"),
		model.MustParseTimeOfDay("10:00"),
		model.MustParseTimeOfDay("13:00"),
		model.MustParseTimeOfDay("15:00"),
		model.MustParseTimeOfDay("17:00"),
	}
})

func tod(s string) model.TimeOfDay { return model.MustParseTimeOfDay(s) }

func appt(at string, status model.Status) model.Appointment {
	return model.Appointment{ID: "a-" + at, DesignerID: designer, Date: target, Time: tod(at), Status: status}
}

func block(start, end string, active bool) model.Block {
	return model.Block{ID: "b-" + start, DesignerID: designer, Date: target, Start: tod(start), End: tod(end), Active: active}
}

func labels(slots []model.TimeOfDay) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}

func TestAvailableSlots_Scenarios(t *testing.T) {
	all := []string{"08:00", "10:00", "13:00", "15:00", "17:00"}
	tests := []struct {
		name   string
		appts  []model.Appointment
		blocks []model.Block
		want   []string
	}{
		{"empty day", nil, nil, all},
		{"confirmed appointment", []model.Appointment{appt("10:00", model.StatusConfirmed)}, nil, []string{"08:00", "13:00", "15:00", "17:00"}},
		{"full-day block", nil, []model.Block{block("00:00", "23:59", true)}, []string{}},
		{"partial block", nil, []model.Block{block("09:00", "11:00", true)}, []string{"08:00", "13:00", "15:00", "17:00"}},
		{"cancelled appointment", []model.Appointment{appt("08:00", model.StatusCancelled)}, nil, all},
		{"inactive full-day block", nil, []model.Block{block("00:00", "23:59", false)}, all},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := labels(AvailableSlots(target, designer, fiveSlots, tt.appts, tt.blocks))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBlockedBy(t *testing.T) {
	tests := []struct {
		name  string
		slot  string
		block model.Block
		want  bool
	}{
		{"inside", "09:30", block("09:00", "10:00", true), true},
		{"at start", "09:00", block("09:00", "10:00", true), true},
		{"at end is free", "10:00", block("09:00", "10:00", true), false},
		{"before", "08:59", block("09:00", "10:00", true), false},
		{"inactive", "09:30", block("09:00", "10:00", false), false},
		{"full day", "23:59", block("00:00", "23:59", true), true},
		{"empty window", "09:00", block("09:00", "09:00", true), false},
		{"inverted window", "10:00", block("11:00", "09:00", true), false},
		{"near full day is a range", "23:59", block("00:00", "23:58", true), false},
	}
	for _, tt := range tests {
		if got := BlockedBy(tod(tt.slot), tt.block); got != tt.want {
			t.Fatalf("%s: BlockedBy(%s) = %v, want %v", tt.name, tt.slot, got, tt.want)
		}
	}
}

func TestOccupiedSlots(t *testing.T) {
	appts := []model.Appointment{
		appt("08:00", model.StatusPending),
		appt("08:00", model.StatusConfirmed),
		appt("10:00", model.StatusCompleted),
		appt("13:00", model.StatusCancelled),
		{DesignerID: "other", Date: target, Time: tod("15:00"), Status: model.StatusConfirmed},
		{DesignerID: designer, Date: "2026-01-29", Time: tod("17:00"), Status: model.StatusConfirmed},
		{DesignerID: designer, Date: "2026-01-28T00:00:00Z", Time: tod("17:00"), Status: model.StatusPending},
	}
	got := OccupiedSlots(appts, designer, target)
	want := map[model.TimeOfDay]struct{}{tod("08:00"): {}, tod("10:00"): {}, tod("17:00"): {}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAvailableSlots_NoDateReturnsDefault(t *testing.T) {
	appts := []model.Appointment{appt("08:00", model.StatusConfirmed)}
	blocks := []model.Block{block("00:00", "23:59", true)}
	got := labels(AvailableSlots("", designer, fiveSlots, appts, blocks))
	if !reflect.DeepEqual(got, labels(fiveSlots(""))) {
		t.Fatalf("expected unfiltered default catalog, got %v", got)
	}
}

func TestAvailableSlots_EmptyDesigner(t *testing.T) {
	got := AvailableSlots(target, "", fiveSlots, nil, nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", got)
	}
}

func TestAvailableSlots_FullDayDominates(t *testing.T) {
	appts := []model.Appointment{appt("08:00", model.StatusConfirmed), appt("13:00", model.StatusCancelled)}
	blocks := []model.Block{block("09:00", "10:00", true), block("00:00", "23:59", true)}
	if got := AvailableSlots(target, designer, fiveSlots, appts, blocks); len(got) != 0 {
		t.Fatalf("expected no slots, got %v", labels(got))
	}
}

func TestAvailableSlots_CancellationFreesSlot(t *testing.T) {
	a := appt("15:00", model.StatusConfirmed)
	before := labels(AvailableSlots(target, designer, fiveSlots, []model.Appointment{a}, nil))
	if contains(before, "15:00") {
		t.Fatalf("confirmed slot offered: %v", before)
	}
	a.Status = model.StatusCancelled
	after := labels(AvailableSlots(target, designer, fiveSlots, []model.Appointment{a}, nil))
	if !contains(after, "15:00") {
		t.Fatalf("cancelled slot not freed: %v", after)
	}
}

func TestAvailableSlots_HalfOpenBoundary(t *testing.T) {
	hourly := catalog.Func(func(model.Date) catalog.Catalog {
		return catalog.Catalog{tod("08:00"), tod("09:00"), tod("09:30"), tod("10:00"), tod("11:00")}
	})
	got := labels(AvailableSlots(target, designer, hourly, nil, []model.Block{block("09:00", "10:00", true)}))
	want := []string{"08:00", "10:00", "11:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAvailableSlots_IgnoresOtherDesignersAndDates(t *testing.T) {
	blocks := []model.Block{
		{DesignerID: "other", Date: target, Start: tod("00:00"), End: tod("23:59"), Active: true},
		{DesignerID: designer, Date: "2026-01-27", Start: tod("00:00"), End: tod("23:59"), Active: true},
	}
	got := AvailableSlots(target, designer, fiveSlots, nil, blocks)
	if len(got) != 5 {
		t.Fatalf("expected all slots, got %v", labels(got))
	}
}

func TestAvailableSlots_Concurrent(t *testing.T) {
	appts := []model.Appointment{appt("10:00", model.StatusConfirmed)}
	blocks := []model.Block{block("14:00", "16:00", true)}
	want := labels(AvailableSlots(target, designer, fiveSlots, appts, blocks))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := labels(AvailableSlots(target, designer, fiveSlots, appts, blocks))
			if !reflect.DeepEqual(got, want) {
				t.Errorf("expected %v, got %v", want, got)
			}
		}()
	}
	wg.Wait()
}

// reference recomputes the result without the full-day short-circuit.
func reference(date model.Date, designerID string, fn catalog.Func, appts []model.Appointment, blocks []model.Block) []model.TimeOfDay {
	occupied := OccupiedSlots(appts, designerID, date)
	out := []model.TimeOfDay{}
	for _, s := range fn(date) {
		if _, ok := occupied[s]; ok {
			continue
		}
		blocked := false
		for _, b := range blocks {
			if b.DesignerID == designerID && b.Date.Equal(date) && BlockedBy(s, b) {
				blocked = true
			}
		}
		if !blocked {
			out = append(out, s)
		}
	}
	return out
}

type randomDay struct {
	catalog catalog.Func
	slots   catalog.Catalog
	appts   []model.Appointment
	blocks  []model.Block
}

func genDay(r *rand.Rand) randomDay {
	var slots catalog.Catalog
	for m := 6 * 60; m < 21*60; m += 30 {
		if r.Intn(3) == 0 {
			slots = append(slots, model.TimeOfDay(m))
		}
	}
	pick := func() model.TimeOfDay {
		if len(slots) > 0 && r.Intn(2) == 0 {
			return slots[r.Intn(len(slots))]
		}
		return model.TimeOfDay(r.Intn(24 * 60))
	}
	statuses := []model.Status{model.StatusPending, model.StatusConfirmed, model.StatusCompleted, model.StatusCancelled}
	designers := []string{designer, designer, "other"}
	dates := []model.Date{target, target, "2026-01-29"}

	d := randomDay{slots: slots}
	d.catalog = func(model.Date) catalog.Catalog {
		out := make(catalog.Catalog, len(slots))
		copy(out, slots)
		return out
	}
	for i := r.Intn(6); i > 0; i-- {
		d.appts = append(d.appts, model.Appointment{
			DesignerID: designers[r.Intn(len(designers))],
			Date:       dates[r.Intn(len(dates))],
			Time:       pick(),
			Status:     statuses[r.Intn(len(statuses))],
		})
	}
	for i := r.Intn(4); i > 0; i-- {
		b := model.Block{
			DesignerID: designers[r.Intn(len(designers))],
			Date:       dates[r.Intn(len(dates))],
			Start:      pick(),
			End:        pick(),
			Active:     r.Intn(4) != 0,
		}
		if r.Intn(8) == 0 {
			b.Start, b.End = model.Midnight, model.LastMinute
		}
		d.blocks = append(d.blocks, b)
	}
	return d
}

func TestAvailableSlots_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(20251201))
	for i := 0; i < 2000; i++ {
		d := genDay(r)
		got := AvailableSlots(target, designer, d.catalog, d.appts, d.blocks)

		// Idempotent.
		if again := AvailableSlots(target, designer, d.catalog, d.appts, d.blocks); !reflect.DeepEqual(got, again) {
			t.Fatalf("case %d: not idempotent: %v vs %v", i, got, again)
		}
		// Ordered subsequence of the catalog.
		j := 0
		for _, s := range got {
			for j < len(d.slots) && d.slots[j] != s {
				j++
			}
			if j == len(d.slots) {
				t.Fatalf("case %d: %v is not a subsequence of %v", i, got, d.slots)
			}
			j++
		}
		// Short-circuit does not change the result.
		if ref := reference(target, designer, d.catalog, d.appts, d.blocks); !reflect.DeepEqual(got, ref) {
			t.Fatalf("case %d: expected %v, got %v", i, ref, got)
		}
		for _, b := range d.blocks {
			if b.DesignerID == designer && b.Date == target && b.Active && b.IsFullDay() && len(got) != 0 {
				t.Fatalf("case %d: full-day block left %v", i, got)
			}
		}
		// Inactive and degenerate blocks have no effect.
		var effective []model.Block
		for _, b := range d.blocks {
			if b.Active && !b.IsDegenerate() {
				effective = append(effective, b)
			}
		}
		if pruned := AvailableSlots(target, designer, d.catalog, d.appts, effective); !reflect.DeepEqual(got, pruned) {
			t.Fatalf("case %d: ignored blocks changed result: %v vs %v", i, got, pruned)
		}
		// No date skips filtering.
		if def := AvailableSlots("", designer, d.catalog, d.appts, d.blocks); !reflect.DeepEqual(def, []model.TimeOfDay(d.catalog(""))) {
			t.Fatalf("case %d: zero date filtered: %v", i, def)
		}
	}
}

func TestAvailableSlots_CancellingNeverRemovesSlots(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		d := genDay(r)
		before := AvailableSlots(target, designer, d.catalog, d.appts, d.blocks)
		cancelled := make([]model.Appointment, len(d.appts))
		copy(cancelled, d.appts)
		for k := range cancelled {
			if r.Intn(2) == 0 {
				cancelled[k].Status = model.StatusCancelled
			}
		}
		after := AvailableSlots(target, designer, d.catalog, cancelled, d.blocks)
		for _, s := range before {
			if !containsSlot(after, s) {
				t.Fatalf("case %d: cancelling removed %s", i, s)
			}
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsSlot(list []model.TimeOfDay, s model.TimeOfDay) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
