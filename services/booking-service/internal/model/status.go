package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedStatus   = errors.New("malformed appointment status")
	ErrInvalidTransition = errors.New("invalid appointment status transition")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrMalformedStatus, s)
	}
}

// Occupies reports whether an appointment in this status claims its slot.
func (s Status) Occupies() bool { return s != StatusCancelled }

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// Transition validates moving from s to next. Cancelling an already cancelled
// appointment is accepted as a no-op; changed reports whether a write is needed.
func (s Status) Transition(next Status) (changed bool, err error) {
	if s == StatusCancelled && next == StatusCancelled {
		return false, nil
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true, nil
		}
	}
	return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
}
