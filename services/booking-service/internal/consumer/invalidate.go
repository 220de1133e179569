package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
	"github.com/studionail/nailbook/services/booking-service/internal/outbox"
	"github.com/studionail/nailbook/services/booking-service/internal/slotcache"
)

type Invalidator interface {
	Invalidate(ctx context.Context, c slotcache.Change) error
}

var kinds = map[string]slotcache.Kind{
	outbox.TypeAppointmentCreated:       slotcache.KindAppointmentCreated,
	outbox.TypeAppointmentStatusChanged: slotcache.KindAppointmentStatus,
	outbox.TypeBlockChanged:             slotcache.KindBlockChanged,
}

// InvalidateHandler turns availability events into cache invalidations. Unknown
// event types are ignored.
func InvalidateHandler(inv Invalidator) Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		kind, ok := kinds[msg.Topic]
		if !ok {
			return nil
		}
		var p outbox.ChangePayload
		if err := json.Unmarshal(msg.Value, &p); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Topic, err)
		}
		if p.DesignerID == "" {
			return fmt.Errorf("%s: missing designer_id", msg.Topic)
		}
		date, err := model.ParseDate(p.Date)
		if err != nil {
			// The designer's generation still moves; the date only steers warming.
			date = ""
		}
		return inv.Invalidate(ctx, slotcache.Change{DesignerID: p.DesignerID, Date: date, Kind: kind})
	}
}
