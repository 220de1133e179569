package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrMalformedDate = errors.New("malformed calendar date")

const dateLayout = "2006-01-02"

// Date is a calendar date in canonical YYYY-MM-DD form. The zero value means no date.
type Date string

// NormalizeDate strips a trailing time-of-day component ("2025-12-01T10:00:00Z" or
// "2025-12-01 10:00"). It does not validate.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		s = s[:i]
	}
	return s
}

func ParseDate(s string) (Date, error) {
	n := NormalizeDate(s)
	if _, err := time.Parse(dateLayout, n); err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return Date(n), nil
}

func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

func (d Date) IsZero() bool { return d == "" }

// Normalize is idempotent: d.Normalize().Normalize() == d.Normalize().
func (d Date) Normalize() Date { return Date(NormalizeDate(string(d))) }

func (d Date) Equal(o Date) bool { return d.Normalize() == o.Normalize() }

func (d Date) Before(o Date) bool { return d.Normalize() < o.Normalize() }

func (d Date) String() string { return string(d) }

// Time returns midnight UTC of the date.
func (d Date) Time() (time.Time, error) {
	t, err := time.Parse(dateLayout, string(d.Normalize()))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, string(d))
	}
	return t, nil
}

// Weekday follows time.Weekday (Sunday = 0), the value stored in the legacy day_of_week column.
func (d Date) Weekday() (time.Weekday, error) {
	t, err := d.Time()
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}
