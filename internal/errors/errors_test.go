package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	err := New(ErrTypeDatabase, "connection failed")
	assert.Equal(t, "database: connection failed", err.Error())

	wrapped := Wrap(fmt.Errorf("dial tcp: refused"), ErrTypeDatabase, "connection failed")
	assert.Equal(t, "database: connection failed (caused by: dial tcp: refused)", wrapped.Error())
}

func TestWrap_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Wrap(cause, ErrTypeIngest, "load failed")

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, cause, err.Unwrap())
}

func TestIsType(t *testing.T) {
	err := Newf(ErrTypeGeneration, "model %s unavailable", "gemini")

	assert.True(t, IsType(err, ErrTypeGeneration))
	assert.False(t, IsType(err, ErrTypeSynthesis))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrTypeGeneration))
	assert.False(t, IsType(nil, ErrTypeGeneration))
}

func TestIsType_ThroughWrapping(t *testing.T) {
	inner := New(ErrTypeTracker, "fetch failed")
	outer := fmt.Errorf("query: %w", inner)

	assert.True(t, IsType(outer, ErrTypeTracker))
	assert.Equal(t, ErrTypeTracker, GetType(outer))
}

func TestGetType_PlainError(t *testing.T) {
	assert.Equal(t, ErrTypeInternal, GetType(fmt.Errorf("plain")))
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("missing API key", "llm.api_key")

	require.Contains(t, err.Message, "llm.api_key")
	assert.Equal(t, ErrTypeConfig, err.Type)
	assert.NotEmpty(t, err.Suggestions)
}
