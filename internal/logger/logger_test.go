package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Development(t *testing.T) {
	log := New("development")
	assert.NotNil(t, log)

	// Check that the logger uses development config (has DebugLevel enabled)
	core := log.Core()
	assert.True(t, core.Enabled(zapcore.DebugLevel), "development logger should allow debug level")
}

func TestNewLogger_Production(t *testing.T) {
	log := New("production")
	assert.NotNil(t, log)

	// Check that production logger disables debug logging
	core := log.Core()
	assert.False(t, core.Enabled(zapcore.DebugLevel), "production logger should not allow debug level")
}

func TestNewWithLevel(t *testing.T) {
	tests := []struct {
		level    string
		format   string
		enabled  zapcore.Level
		disabled zapcore.Level
		checkLow bool
	}{
		{level: "debug", format: "json", enabled: zapcore.DebugLevel},
		{level: "warn", format: "console", enabled: zapcore.WarnLevel, disabled: zapcore.InfoLevel, checkLow: true},
		{level: "error", format: "json", enabled: zapcore.ErrorLevel, disabled: zapcore.WarnLevel, checkLow: true},
		{level: "bogus", format: "json", enabled: zapcore.InfoLevel, disabled: zapcore.DebugLevel, checkLow: true},
	}
	for _, tc := range tests {
		t.Run(tc.level+"/"+tc.format, func(t *testing.T) {
			log, err := NewWithLevel(tc.level, tc.format, "onvlo")
			require.NoError(t, err)

			assert.True(t, log.Core().Enabled(tc.enabled))
			if tc.checkLow {
				assert.False(t, log.Core().Enabled(tc.disabled))
			}
		})
	}
}
