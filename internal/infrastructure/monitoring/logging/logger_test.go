package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Defaults(t *testing.T) {
	l, err := NewLogger(Config{})
	require.NoError(t, err)
	require.NotNil(t, l)
}

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "city", Value: "台北市"}, String("city", "台北市"))
	assert.Equal(t, Field{Key: "k", Value: 5}, Int("k", 5))
	assert.Equal(t, Field{Key: "price", Value: 25000.0}, Float64("price", 25000.0))
	assert.Equal(t, Field{Key: "error", Value: "<nil>"}, Err(nil))
	assert.Equal(t, Field{Key: "error", Value: "boom"}, Err(errors.New("boom")))
}

func TestObservedFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewLoggerFromCore(core)

	l.With(String("component", "cache")).Info("warmup complete", Int("districts", 12))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "warmup complete", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "cache", fields["component"])
	assert.EqualValues(t, 12, fields["districts"])
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l := NewNopLogger()
	SetDefault(l)
	assert.Equal(t, l, Default())

	// nil must not replace the current default
	SetDefault(nil)
	assert.Equal(t, l, Default())
}
