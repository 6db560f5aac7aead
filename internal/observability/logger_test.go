package observability

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("info"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("bogus"))
}

func TestLoggerChaining(t *testing.T) {
	logger := NopLogger().WithComponent("matching").WithSession("s1")

	// Chained fields and events must not panic on a nop logger.
	logger.Info().
		Str("query", "hello").
		Float64("confidence", 0.91).
		Bool("matched", true).
		Msg("scored")
}
