package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromRetryConfig(t *testing.T) {
	cfg := FromRetryConfig(5, 200, 2000, 1.5, 0)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.InitialBackoff)
	assert.Equal(t, 2*time.Second, cfg.MaxBackoff)
	assert.InDelta(t, 1.5, cfg.Multiplier, 0.0001)
	assert.Zero(t, cfg.JitterFraction)
}

func TestFromRetryConfig_ZeroKeepsDefaults(t *testing.T) {
	def := DefaultRetryConfig()
	cfg := FromRetryConfig(0, 0, 0, 0, -1)
	assert.Equal(t, def.MaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, def.InitialBackoff, cfg.InitialBackoff)
	assert.Equal(t, def.MaxBackoff, cfg.MaxBackoff)
	assert.InDelta(t, def.Multiplier, cfg.Multiplier, 0.0001)
	assert.InDelta(t, def.JitterFraction, cfg.JitterFraction, 0.0001)
}
