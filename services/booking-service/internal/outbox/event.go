package outbox

import (
	"encoding/json"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

const (
	TypeAppointmentCreated       = "booking.appointment.created.v1"
	TypeAppointmentStatusChanged = "booking.appointment.status_changed.v1"
	TypeBlockChanged             = "availability.block.changed.v1"
)

// Topics lists every event type this service publishes. The Kafka topic name equals EventType.
var Topics = []string{TypeAppointmentCreated, TypeAppointmentStatusChanged, TypeBlockChanged}

// Event is the domain event envelope written to the outbox table. PartitionKey is
// the designer id, so every change to one designer's calendar stays ordered.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	PartitionKey  string
	Payload       []byte
}

// ChangePayload is the body of every availability-affecting event. Consumers only
// need DesignerID and Date to invalidate.
type ChangePayload struct {
	DesignerID    string `json:"designer_id"`
	Date          string `json:"date"`
	AppointmentID string `json:"appointment_id,omitempty"`
	Time          string `json:"time,omitempty"`
	Status        string `json:"status,omitempty"`
	BlockID       string `json:"block_id,omitempty"`
	Action        string `json:"action,omitempty"`
}

func AppointmentCreated(appt model.Appointment) (Event, error) {
	return newEvent("appointment", appt.ID, TypeAppointmentCreated, ChangePayload{
		DesignerID:    appt.DesignerID,
		Date:          appt.Date.String(),
		AppointmentID: appt.ID,
		Time:          appt.Time.String(),
		Status:        string(appt.Status),
	})
}

func AppointmentStatusChanged(appt model.Appointment, status model.Status) (Event, error) {
	return newEvent("appointment", appt.ID, TypeAppointmentStatusChanged, ChangePayload{
		DesignerID:    appt.DesignerID,
		Date:          appt.Date.String(),
		AppointmentID: appt.ID,
		Time:          appt.Time.String(),
		Status:        string(status),
	})
}

// BlockChanged records a block being created, toggled or deleted.
func BlockChanged(b model.Block, action string) (Event, error) {
	return newEvent("availability", b.ID, TypeBlockChanged, ChangePayload{
		DesignerID: b.DesignerID,
		Date:       b.Date.String(),
		BlockID:    b.ID,
		Action:     action,
	})
}

func newEvent(aggregateType, aggregateID, eventType string, payload ChangePayload) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		PartitionKey:  payload.DesignerID,
		Payload:       body,
	}, nil
}
