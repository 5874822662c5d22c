package clock_test

import (
	"testing"
	"time"

	"github.com/opsboard/report-api/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestFakeClock(t *testing.T) {
	start := time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC)
	c := clock.NewFakeClock(start)
	assert.Equal(t, start, c.Now())

	c.Advance(2 * time.Minute)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 1, 0, 0, time.UTC), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}
