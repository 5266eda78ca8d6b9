package sessiontimer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestWarningFiresOnce(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	var warnings int
	tr := New(Config{
		Limit:     30 * time.Minute,
		Now:       clock.now,
		OnWarning: func(Snapshot) { warnings++ },
	})

	clock.advance(27 * time.Minute)
	s := tr.Tick()
	assert.False(t, s.Warned)
	require.Zero(t, warnings)

	clock.advance(90 * time.Second) // 28m30s elapsed, 90s remaining
	s = tr.Tick()
	assert.True(t, s.Warned)
	assert.Equal(t, 1, warnings)

	clock.advance(10 * time.Second)
	tr.Tick()
	assert.Equal(t, 1, warnings, "warning must be one-shot")
}

func TestExpiryLatches(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	var expirations int
	tr := New(Config{
		Limit:     10 * time.Minute,
		Now:       clock.now,
		OnExpired: func(Snapshot) { expirations++ },
	})

	clock.advance(10 * time.Minute)
	s := tr.Tick()
	assert.True(t, s.Expired)
	assert.Equal(t, time.Duration(0), s.Remaining)
	require.Equal(t, 1, expirations)

	clock.advance(time.Minute)
	tr.Tick()
	assert.Equal(t, 1, expirations)

	// raising the limit does not un-expire
	tr.SetLimit(60 * time.Minute)
	s = tr.Tick()
	assert.True(t, s.Expired)
	assert.Equal(t, 1, expirations)
}

func TestUntimedSessionNeverExpires(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	tr := New(Config{Now: clock.now})

	clock.advance(12 * time.Hour)
	s := tr.Tick()
	assert.False(t, s.Warned)
	assert.False(t, s.Expired)
	assert.Equal(t, time.Duration(0), s.Remaining)
	assert.Equal(t, 12*time.Hour, s.Elapsed)
}

func TestWarningSurvivesSetLimit(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	var warnings int
	tr := New(Config{
		Limit:     5 * time.Minute,
		Now:       clock.now,
		OnWarning: func(Snapshot) { warnings++ },
	})

	clock.advance(4 * time.Minute)
	tr.Tick()
	require.Equal(t, 1, warnings)

	tr.SetLimit(30 * time.Minute)
	s := tr.Tick()
	assert.True(t, s.Warned, "latch stays raised after the limit changes")
	assert.Equal(t, 1, warnings)

	// inside the warning window of the new deadline too
	clock.advance(25 * time.Minute)
	tr.Tick()
	assert.Equal(t, 1, warnings, "warning fires at most once per session")
}

func TestStopFreezesCallbacks(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	var expirations int
	tr := New(Config{
		Limit:     time.Minute,
		Now:       clock.now,
		OnExpired: func(Snapshot) { expirations++ },
	})

	tr.Stop()
	clock.advance(time.Hour)
	s := tr.Tick()
	assert.False(t, s.Expired)
	assert.Zero(t, expirations)
}
