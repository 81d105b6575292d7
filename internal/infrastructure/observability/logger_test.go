package observability

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInitLogger_StampsServiceName(t *testing.T) {
	var buf bytes.Buffer

	logger := InitLogger("gateway-api", "info", &buf)
	logger.Info().Msg("ready")

	assert.Contains(t, buf.String(), `"service":"gateway-api"`)
	assert.Contains(t, buf.String(), `"message":"ready"`)
}

func TestInitLogger_LevelParsing(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{name: "warn", level: "warn", want: zerolog.WarnLevel},
		{name: "uppercase", level: "ERROR", want: zerolog.ErrorLevel},
		{name: "unknown falls back to info", level: "verbose", want: zerolog.InfoLevel},
		{name: "empty falls back to info", level: "", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := InitLogger("gateway-api", tt.level, &bytes.Buffer{})
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestInitLogger_SuppressesBelowLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := InitLogger("gateway-api", "error", &buf)
	logger.Info().Msg("dropped")

	assert.Empty(t, buf.String())
}
