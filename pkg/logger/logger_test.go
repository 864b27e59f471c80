package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	require.NoError(t, Init("development"))
	assert.NotNil(t, Get())

	require.NoError(t, Init("production"))
	assert.NotNil(t, Get())
}

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := ContextWithCorrelationID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", CorrelationIDFromContext(ctx))
}

func TestCorrelationIDMissing(t *testing.T) {
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
	assert.Empty(t, CorrelationIDFromContext(nil))
}

func TestWithContextNilSafe(t *testing.T) {
	require.NoError(t, Init("development"))
	assert.NotNil(t, WithContext(nil))
	assert.NotNil(t, WithContext(context.Background()))
}
