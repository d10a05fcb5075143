package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickReportsAfterInterval(t *testing.T) {
	p := NewProfiler(time.Millisecond)
	p.lastTime = time.Now().Add(-time.Second)

	assert.True(t, p.Tick(3))
	stats := p.Last()
	assert.Equal(t, 3, stats.Passes)
	assert.Greater(t, stats.FPS, 0.0)
	assert.Greater(t, stats.SysMB, 0.0)
}

func TestTickWaitsForInterval(t *testing.T) {
	p := NewProfiler(time.Hour)
	assert.False(t, p.Tick(1))
	assert.False(t, p.Tick(1))
	assert.Equal(t, Stats{}, p.Last())
}
