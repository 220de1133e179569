package model

import (
	"fmt"
	"strings"
	"time"
)

type Appointment struct {
	ID          string
	DesignerID  string
	ClientName  string
	ClientPhone string
	ClientEmail string
	Service     string
	Date        Date
	Time        TimeOfDay
	PriceCents  int64
	Status      Status
	CreatedAt   time.Time
}

// AppointmentRecord is an appointments row as stored, before validation.
type AppointmentRecord struct {
	ID          string
	DesignerID  string
	ClientName  string
	ClientPhone string
	ClientEmail string
	Service     string
	Date        string
	Time        string
	PriceCents  int64
	Status      string
	CreatedAt   time.Time
}

// AppointmentFromRecord parses a stored row. Malformed date, time or status values
// are reported with the row id so the bad record can be located.
func AppointmentFromRecord(rec AppointmentRecord) (Appointment, error) {
	date, err := ParseDate(rec.Date)
	if err != nil {
		return Appointment{}, fmt.Errorf("appointment %s: %w", rec.ID, err)
	}
	tod, err := ParseTimeOfDay(rec.Time)
	if err != nil {
		return Appointment{}, fmt.Errorf("appointment %s: %w", rec.ID, err)
	}
	status, err := ParseStatus(rec.Status)
	if err != nil {
		return Appointment{}, fmt.Errorf("appointment %s: %w", rec.ID, err)
	}
	return Appointment{
		ID:          rec.ID,
		DesignerID:  rec.DesignerID,
		ClientName:  rec.ClientName,
		ClientPhone: rec.ClientPhone,
		ClientEmail: rec.ClientEmail,
		Service:     rec.Service,
		Date:        date,
		Time:        tod,
		PriceCents:  rec.PriceCents,
		Status:      status,
		CreatedAt:   rec.CreatedAt,
	}, nil
}

// BookingRequest is what a client submits through the personal booking link. Service
// and PriceCents are filled from Quote, never from the submitted body.
type BookingRequest struct {
	DesignerID  string
	ClientName  string
	ClientPhone string
	ClientEmail string
	Service     string
	Date        Date
	Time        TimeOfDay
	PriceCents  int64
}

// Validate checks required fields; the date and time are already typed.
func (b BookingRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(b.DesignerID) == "" {
		missing = append(missing, "designer_id")
	}
	if strings.TrimSpace(b.ClientName) == "" {
		missing = append(missing, "client_name")
	}
	if strings.TrimSpace(b.ClientPhone) == "" {
		missing = append(missing, "client_phone")
	}
	if strings.TrimSpace(b.Service) == "" {
		missing = append(missing, "service")
	}
	if b.Date.IsZero() {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if b.PriceCents < 0 {
		return fmt.Errorf("price must not be negative")
	}
	return nil
}

func (b BookingRequest) Appointment() Appointment {
	return Appointment{
		DesignerID:  strings.TrimSpace(b.DesignerID),
		ClientName:  strings.TrimSpace(b.ClientName),
		ClientPhone: strings.TrimSpace(b.ClientPhone),
		ClientEmail: strings.TrimSpace(b.ClientEmail),
		Service:     strings.TrimSpace(b.Service),
		Date:        b.Date,
		Time:        b.Time,
		PriceCents:  b.PriceCents,
		Status:      StatusPending,
	}
}
