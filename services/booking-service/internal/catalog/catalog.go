package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

var ErrInvalidConfig = errors.New("invalid slot catalog config")

// Catalog is the ordered list of bookable start times for one date.
type Catalog []model.TimeOfDay

// Func selects the catalog in effect for a date. A zero date yields the default catalog.
type Func func(model.Date) Catalog

func (c Catalog) Strings() []string {
	out := make([]string, len(c))
	for i, t := range c {
		out[i] = t.String()
	}
	return out
}

func (c Catalog) Contains(t model.TimeOfDay) bool {
	for _, s := range c {
		if s == t {
			return true
		}
	}
	return false
}

// Override replaces the default catalog for dates in [From, To].
type Override struct {
	Name  string
	From  model.Date
	To    model.Date
	Slots Catalog
}

func (o Override) covers(d model.Date) bool {
	d = d.Normalize()
	return !d.Before(o.From) && !o.To.Before(d)
}

type Config struct {
	Default   Catalog
	Overrides []Override
}

// Info describes the catalog selected for a date.
type Info struct {
	Slots    Catalog
	Seasonal bool
	Name     string
}

// Default is the studio's schedule: five slots a day, with an
// expanded December 2025 promotion.
func Default() Config {
	return Config{
		Default: mustSlots("08:00", "10:00", "13:00", "15:00", "17:00"),
		Overrides: []Override{{
			Name:  "december-2025",
			From:  "2025-12-01",
			To:    "2025-12-31",
			Slots: mustSlots("08:00", "09:00", "10:00", "13:00", "14:00", "15:00", "16:00", "17:00"),
		}},
	}
}

func mustSlots(raw ...string) Catalog {
	c := make(Catalog, len(raw))
	for i, s := range raw {
		c[i] = model.MustParseTimeOfDay(s)
	}
	return c
}

// Info returns the first override covering date, or the default catalog.
// The returned slice is a copy.
func (c Config) Info(date model.Date) Info {
	if !date.IsZero() {
		for _, o := range c.Overrides {
			if o.covers(date) {
				return Info{Slots: clone(o.Slots), Seasonal: true, Name: o.Name}
			}
		}
	}
	return Info{Slots: clone(c.Default), Name: "default"}
}

func (c Config) Func() Func {
	return func(d model.Date) Catalog { return c.Info(d).Slots }
}

func clone(c Catalog) Catalog {
	out := make(Catalog, len(c))
	copy(out, c)
	return out
}

func (c Config) Validate() error {
	if err := validateSlots("default", c.Default); err != nil {
		return err
	}
	for i, o := range c.Overrides {
		name := o.Name
		if name == "" {
			name = fmt.Sprintf("overrides[%d]", i)
		}
		if _, err := model.ParseDate(o.From.String()); err != nil {
			return fmt.Errorf("%w: %s: from: %v", ErrInvalidConfig, name, err)
		}
		if _, err := model.ParseDate(o.To.String()); err != nil {
			return fmt.Errorf("%w: %s: to: %v", ErrInvalidConfig, name, err)
		}
		if o.To.Before(o.From) {
			return fmt.Errorf("%w: %s: window %s..%s is inverted", ErrInvalidConfig, name, o.From, o.To)
		}
		if err := validateSlots(name, o.Slots); err != nil {
			return err
		}
	}
	return nil
}

func validateSlots(name string, c Catalog) error {
	if len(c) == 0 {
		return fmt.Errorf("%w: %s: no slots", ErrInvalidConfig, name)
	}
	for i := 1; i < len(c); i++ {
		if c[i] <= c[i-1] {
			return fmt.Errorf("%w: %s: slots must be strictly ascending (%s after %s)", ErrInvalidConfig, name, c[i], c[i-1])
		}
	}
	return nil
}

type fileConfig struct {
	Default   []string       `yaml:"default"`
	Overrides []fileOverride `yaml:"overrides"`
}

type fileOverride struct {
	Name  string   `yaml:"name"`
	From  string   `yaml:"from"`
	To    string   `yaml:"to"`
	Slots []string `yaml:"slots"`
}

// Parse reads a YAML catalog:
//
//	default: ["08:00", "10:00"]
//	overrides:
//	  - name: december-2025
//	    from: 2025-12-01
//	    to: 2025-12-31
//	    slots: ["08:00", "09:00"]
func Parse(data []byte) (Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	def, err := parseSlots("default", fc.Default)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{Default: def}
	for i, fo := range fc.Overrides {
		name := strings.TrimSpace(fo.Name)
		if name == "" {
			name = fmt.Sprintf("overrides[%d]", i)
		}
		from, err := model.ParseDate(fo.From)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: from: %v", ErrInvalidConfig, name, err)
		}
		to, err := model.ParseDate(fo.To)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: to: %v", ErrInvalidConfig, name, err)
		}
		slots, err := parseSlots(name, fo.Slots)
		if err != nil {
			return Config{}, err
		}
		cfg.Overrides = append(cfg.Overrides, Override{Name: name, From: from, To: to, Slots: slots})
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseSlots(name string, raw []string) (Catalog, error) {
	c := make(Catalog, 0, len(raw))
	for _, s := range raw {
		t, err := model.ParseTimeOfDay(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
		c = append(c, t)
	}
	return c, nil
}

// Load reads a YAML catalog from path. An empty path returns Default().
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read slot catalog: %w", err)
	}
	return Parse(data)
}
