package shared

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	withTrace := SetTraceID(ctx)
	traceID := GetTraceID(withTrace)
	_, err := uuid.Parse(traceID)
	assert.NoError(t, err, "generated trace IDs are UUIDs")

	assert.Empty(t, GetTraceID(ctx), "original context is unchanged")
	assert.NotEqual(t, traceID, GetTraceID(SetTraceID(ctx)))
}

func TestWithTraceID(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "abc-123", GetTraceID(WithTraceID(ctx, "abc-123")))
	assert.NotEmpty(t, GetTraceID(WithTraceID(ctx, "")))

	long := strings.Repeat("x", maxTraceIDLength+1)
	assert.NotEqual(t, long, GetTraceID(WithTraceID(ctx, long)))
}

func TestGetTraceIDWithInvalidContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, 123)
	assert.Empty(t, GetTraceID(ctx))
}
