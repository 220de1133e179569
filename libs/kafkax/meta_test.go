package kafkax

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestExtractEventMetaFallbacks(t *testing.T) {
	msg := kafka.Message{Topic: "availability.block.changed.v1", Key: []byte("designer-1")}
	meta := ExtractEventMeta(msg)
	if meta.EventID != "designer-1" || meta.EventType != "availability.block.changed.v1" {
		t.Fatalf("unexpected meta: %+v", meta)
	}

	msg.Headers = MetaHeaders(EventMeta{EventID: "evt-1", EventType: "custom"})
	meta = ExtractEventMeta(msg)
	if meta.EventID != "evt-1" || meta.EventType != "custom" {
		t.Fatalf("unexpected meta from headers: %+v", meta)
	}
}

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers: %v", got)
	}
	if SplitBrokers("") != nil {
		t.Fatal("expected nil for empty broker list")
	}
}

func TestTraceHeadersRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	headers := InjectTraceHeaders(ctx, MetaHeaders(EventMeta{EventID: "e", EventType: "t"}))
	if HeaderValue(headers, "traceparent") == "" {
		t.Fatal("expected traceparent header")
	}

	out := ExtractTraceContext(context.Background(), kafka.Message{Headers: headers})
	if got := trace.SpanContextFromContext(out).TraceID(); got != traceID {
		t.Fatalf("trace id mismatch: %s", got)
	}
}
