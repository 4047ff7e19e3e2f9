package alert_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agrisense/cropsentry-go/internal/alert"
)

func TestHistoryAllowUnknownType(t *testing.T) {
	h := alert.NewHistory(5 * time.Minute)

	assert.True(t, h.Allow(alert.TypeWaterStress))
	_, found := h.LastSent(alert.TypeWaterStress)
	assert.False(t, found)
}

func TestHistoryRateLimitsPerType(t *testing.T) {
	h := alert.NewHistory(5 * time.Minute)
	sentAt := time.Now()

	h.MarkSent(alert.TypeWaterStress, sentAt)

	assert.False(t, h.Allow(alert.TypeWaterStress))
	got, found := h.LastSent(alert.TypeWaterStress)
	assert.True(t, found)
	assert.Equal(t, sentAt, got)

	// Other types keep their own windows.
	assert.True(t, h.Allow(alert.TypePestRisk))
	assert.True(t, h.Allow(alert.TypeLowBattery))
}

func TestHistoryEntryExpires(t *testing.T) {
	h := alert.NewHistory(20 * time.Millisecond)

	h.MarkSent(alert.TypePestRisk, time.Now())
	assert.False(t, h.Allow(alert.TypePestRisk))

	time.Sleep(40 * time.Millisecond)
	assert.True(t, h.Allow(alert.TypePestRisk))
}

func TestHistoryZeroWindowDisablesLimiting(t *testing.T) {
	h := alert.NewHistory(0)

	h.MarkSent(alert.TypeWaterStress, time.Now())
	assert.True(t, h.Allow(alert.TypeWaterStress))
}
