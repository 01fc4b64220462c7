package frames

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexAt30FPS(t *testing.T) {
	r := Index(30, 0, 0.5, 1.0, 3)

	assert.Equal(t, 0, r.Start)
	assert.Equal(t, 15, r.Mid)
	assert.Equal(t, 30, r.End)
	assert.Equal(t, 12, r.FullSquatStart)
	assert.Equal(t, 18, r.FullSquatEnd)
	assert.Equal(t, 31, r.Len())
}

func TestIndexTruncates(t *testing.T) {
	// 25 fps * 1.5s = 37.5 -> 37
	r := Index(25, 1.5, 2.0, 2.9, 0)
	assert.Equal(t, 37, r.Start)
	assert.Equal(t, 50, r.Mid)
	assert.Equal(t, 72, r.End)
	assert.Equal(t, 13, r.FullSquatStart)
	assert.Equal(t, 13, r.FullSquatEnd)
}

func TestWindowIsRelativeToStart(t *testing.T) {
	r := Index(30, 2.0, 2.5, 3.0, 2)
	assert.Equal(t, 60, r.Start)
	assert.Equal(t, 13, r.FullSquatStart)
	assert.Equal(t, 17, r.FullSquatEnd)
	assert.True(t, r.InWindow(15))
	assert.False(t, r.InWindow(12))
	assert.False(t, r.InWindow(18))
}

func TestClippedWindow(t *testing.T) {
	// Window wider than the segment on both sides.
	r := Index(30, 0, 0.1, 0.2, 10)
	lo, hi, ok := r.ClippedWindow()
	assert.True(t, ok)
	assert.Equal(t, 0, lo)
	assert.Equal(t, r.Last(), hi)
	assert.Less(t, r.FullSquatStart, 0)
}

func TestWindowNeverEmptyForNonNegativeHalfWidth(t *testing.T) {
	for fps := 24.0; fps <= 60; fps += 6 {
		for n := 0; n < 20; n++ {
			r := Index(fps, 1.0, 1.0+float64(n)/30, 3.0, n)
			assert.LessOrEqual(t, r.FullSquatStart, r.FullSquatEnd)
			_, _, ok := r.ClippedWindow()
			assert.True(t, ok, "fps=%v n=%d", fps, n)
		}
	}
}

func TestLenEmptyWhenEndBeforeStart(t *testing.T) {
	r := Range{Start: 10, End: 5}
	assert.Equal(t, 0, r.Len())
}
