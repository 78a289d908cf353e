package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTodayUsesConfiguredLocation(t *testing.T) {
	// 23:30 UTC is already the next day in UTC+3.
	instant := time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)
	msk := time.FixedZone("MSK", 3*60*60)

	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), NewWithFunc(func() time.Time { return instant }, time.UTC).Today())
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), NewWithFunc(func() time.Time { return instant }, msk).Today())
}

func TestManualAdvance(t *testing.T) {
	m := NewManual(time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC))
	c := m.Clock()
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), c.Today())

	m.Advance(24 * time.Hour)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), c.Today())
}
