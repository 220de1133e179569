package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedTime = errors.New("malformed time of day")

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
type TimeOfDay int

const (
	Midnight   TimeOfDay = 0
	LastMinute TimeOfDay = 23*60 + 59
)

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS". Seconds are validated and dropped.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	raw := strings.TrimSpace(s)
	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	h, err := parseClockField(parts[0], 23)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	m, err := parseClockField(parts[1], 59)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	if len(parts) == 3 {
		if _, err := parseClockField(parts[2], 59); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
		}
	}
	return TimeOfDay(h*60 + m), nil
}

func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func parseClockField(s string, max int) (int, error) {
	if len(s) != 2 {
		return 0, errors.New("want two digits")
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > max {
		return 0, errors.New("out of range")
	}
	return n, nil
}

func (t TimeOfDay) Minutes() int { return int(t) }

func (t TimeOfDay) Valid() bool { return t >= 0 && t < 24*60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d minutes", ErrMalformedTime, int(t))
	}
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
