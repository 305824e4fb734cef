package hardware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bujia-iot/iot-terminal/pkg/storage"
)

func TestOffsetClock(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	current := base
	clock := NewOffsetClock(time.UTC)
	clock.now = func() time.Time { return current }

	assert.Equal(t, base, clock.Now())

	clock.Set(time.Date(2030, 1, 2, 3, 4, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2030, 1, 2, 3, 4, 0, 0, time.UTC), clock.Now())

	current = current.Add(90 * time.Second)
	assert.Equal(t, time.Date(2030, 1, 2, 3, 5, 30, 0, time.UTC), clock.Now())
}

func TestLogActuator(t *testing.T) {
	a := NewLogActuator(storage.DefaultBasicConfig().Pins)

	a.SetRelay(true)
	a.SetIndicator(true)
	relay, indicator := a.State()
	assert.True(t, relay)
	assert.True(t, indicator)

	a.SetRelay(true)
	a.SetRelay(false)
	a.SetRelay(true)
	assert.Equal(t, 2, a.Pulses())
}
