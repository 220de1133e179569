package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Category separates bookable main services from the extras added on top of them.
type Category string

const (
	CategoryService Category = "services"
	CategoryExtra   Category = "extras"
)

const maxServiceMinutes = 8 * 60

var ErrInvalidService = errors.New("invalid service")

func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryService, CategoryExtra:
		return c, nil
	case "":
		return CategoryService, nil
	default:
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidService, s)
	}
}

// Service is an entry of a designer's price list.
type Service struct {
	ID              string
	DesignerID      string
	Name            string
	Description     string
	Category        Category
	DurationMinutes int
	PriceCents      int64
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Normalize trims the text fields and checks the values a designer may store.
func (s Service) Normalize() (Service, error) {
	s.Name = strings.TrimSpace(s.Name)
	s.Description = strings.TrimSpace(s.Description)
	if s.Name == "" {
		return Service{}, fmt.Errorf("%w: name required", ErrInvalidService)
	}
	if s.PriceCents < 0 {
		return Service{}, fmt.Errorf("%w: price must not be negative", ErrInvalidService)
	}
	if s.DurationMinutes <= 0 || s.DurationMinutes > maxServiceMinutes {
		return Service{}, fmt.Errorf("%w: duration must be between 1 and %d minutes", ErrInvalidService, maxServiceMinutes)
	}
	c, err := ParseCategory(string(s.Category))
	if err != nil {
		return Service{}, err
	}
	s.Category = c
	return s, nil
}

// Quote names and prices a booking of main plus extras from the stored price list.
// main must be an active main service, every extra an active extra of the same designer.
func Quote(main Service, extras []Service) (name string, priceCents int64, err error) {
	if !main.IsActive || main.Category != CategoryService {
		return "", 0, fmt.Errorf("%w: %s is not bookable", ErrInvalidService, main.ID)
	}
	names := []string{main.Name}
	priceCents = main.PriceCents
	for _, e := range extras {
		if !e.IsActive || e.Category != CategoryExtra || e.DesignerID != main.DesignerID {
			return "", 0, fmt.Errorf("%w: %s is not an available extra", ErrInvalidService, e.ID)
		}
		names = append(names, e.Name)
		priceCents += e.PriceCents
	}
	return strings.Join(names, " + "), priceCents, nil
}
