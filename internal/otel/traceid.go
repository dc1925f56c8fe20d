package otel

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"

	"github.com/google/uuid"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type traceIDKey struct{}

// ContextWithTraceID asks the provider's ID generator to use id for the next
// root span started from ctx.
func ContextWithTraceID(ctx context.Context, id trace.TraceID) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

// TraceIDFromRunID maps a run ID to a trace ID. UUIDs and 32-char hex IDs are
// used as-is; anything else is hashed with SHA-256.
func TraceIDFromRunID(runID string) trace.TraceID {
	if u, err := uuid.Parse(runID); err == nil {
		return trace.TraceID(u)
	}
	if len(runID) == 32 {
		if id, err := trace.TraceIDFromHex(runID); err == nil {
			return id
		}
	}
	hash := sha256.Sum256([]byte(runID))
	var id trace.TraceID
	copy(id[:], hash[:16])
	return id
}

// runIDGenerator honors trace IDs placed in the context by
// ContextWithTraceID and is random otherwise.
type runIDGenerator struct{}

var _ sdktrace.IDGenerator = runIDGenerator{}

// NewIDGenerator returns the ID generator installed by InitProvider.
func NewIDGenerator() sdktrace.IDGenerator {
	return runIDGenerator{}
}

func (runIDGenerator) NewIDs(ctx context.Context) (trace.TraceID, trace.SpanID) {
	if id, ok := ctx.Value(traceIDKey{}).(trace.TraceID); ok && id.IsValid() {
		return id, randomSpanID()
	}
	var id trace.TraceID
	for !id.IsValid() {
		binary.BigEndian.PutUint64(id[:8], rand.Uint64())
		binary.BigEndian.PutUint64(id[8:], rand.Uint64())
	}
	return id, randomSpanID()
}

func (runIDGenerator) NewSpanID(_ context.Context, _ trace.TraceID) trace.SpanID {
	return randomSpanID()
}

func randomSpanID() trace.SpanID {
	var id trace.SpanID
	for !id.IsValid() {
		binary.BigEndian.PutUint64(id[:], rand.Uint64())
	}
	return id
}
