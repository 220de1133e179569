package model

import (
	"errors"
	"testing"
)

func TestServiceNormalize(t *testing.T) {
	s, err := Service{Name: "  Gel manicure ", DurationMinutes: 60, PriceCents: 4500}.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if s.Name != "Gel manicure" || s.Category != CategoryService {
		t.Fatalf("unexpected service: %+v", s)
	}

	bad := []Service{
		{Name: "", DurationMinutes: 60},
		{Name: "Gel", DurationMinutes: 0},
		{Name: "Gel", DurationMinutes: 9 * 60},
		{Name: "Gel", DurationMinutes: 60, PriceCents: -1},
		{Name: "Gel", DurationMinutes: 60, Category: "addons"},
	}
	for _, b := range bad {
		if _, err := b.Normalize(); !errors.Is(err, ErrInvalidService) {
			t.Fatalf("Normalize(%+v): expected ErrInvalidService, got %v", b, err)
		}
	}
}

func TestQuoteSumsExtras(t *testing.T) {
	main := Service{ID: "s1", DesignerID: "d1", Name: "Gel manicure", Category: CategoryService, PriceCents: 4500, IsActive: true}
	art := Service{ID: "s2", DesignerID: "d1", Name: "Nail art", Category: CategoryExtra, PriceCents: 1500, IsActive: true}
	gems := Service{ID: "s3", DesignerID: "d1", Name: "Gems", Category: CategoryExtra, PriceCents: 500, IsActive: true}

	name, price, err := Quote(main, []Service{art, gems})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if name != "Gel manicure + Nail art + Gems" || price != 6500 {
		t.Fatalf("Quote = %q, %d", name, price)
	}

	if _, _, err := Quote(art, nil); !errors.Is(err, ErrInvalidService) {
		t.Fatalf("an extra alone must not be bookable, got %v", err)
	}
	inactive := main
	inactive.IsActive = false
	if _, _, err := Quote(inactive, nil); !errors.Is(err, ErrInvalidService) {
		t.Fatalf("inactive service must not be bookable, got %v", err)
	}
	foreign := art
	foreign.DesignerID = "d2"
	if _, _, err := Quote(main, []Service{foreign}); !errors.Is(err, ErrInvalidService) {
		t.Fatalf("another designer's extra must be refused, got %v", err)
	}
	if _, _, err := Quote(main, []Service{main}); !errors.Is(err, ErrInvalidService) {
		t.Fatalf("a main service is not an extra, got %v", err)
	}
}

func TestStatisticsTotals(t *testing.T) {
	s := Statistics{
		ByStatus: map[Status]StatusTotals{
			StatusPending:   {Count: 1, RevenueCents: 4000},
			StatusCompleted: {Count: 2, RevenueCents: 9000},
			StatusCancelled: {Count: 1, RevenueCents: 5000},
		},
		Services: []ServiceTotals{
			{Service: "Mani", Count: 1, RevenueCents: 4000},
			{Service: "Gel", Count: 2, RevenueCents: 9000},
			{Service: "Art", Count: 1, RevenueCents: 4000},
		},
	}
	if s.Total() != 4 || s.BookedRevenueCents() != 13000 {
		t.Fatalf("Total = %d, BookedRevenueCents = %d", s.Total(), s.BookedRevenueCents())
	}
	if s.CancellationRate() != 0.25 {
		t.Fatalf("CancellationRate = %v", s.CancellationRate())
	}
	s.SortServices()
	if s.Services[0].Service != "Gel" || s.Services[1].Service != "Art" || s.Services[2].Service != "Mani" {
		t.Fatalf("unexpected order: %+v", s.Services)
	}
	if (Statistics{}).CancellationRate() != 0 {
		t.Fatal("empty statistics must not divide by zero")
	}
}
