package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	c := NewMemory()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 42, time.Minute)
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 42, got)
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory()

	c.Set("short", "value", 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	_, ok := c.Get("short")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemorySetOverwritesTTL(t *testing.T) {
	c := NewMemory()

	c.Set("k", "old", 10*time.Millisecond)
	c.Set("k", "new", time.Minute)
	time.Sleep(25 * time.Millisecond)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

func TestMemoryDeletePrefix(t *testing.T) {
	c := NewMemory()

	c.Set("reports:1:standings", 1, time.Minute)
	c.Set("reports:1:schedule", 2, time.Minute)
	c.Set("reports:2:standings", 3, time.Minute)
	c.Set("portal:college:1", 4, time.Minute)

	removed := c.DeletePrefix("reports:1:")
	assert.Equal(t, 2, removed)

	_, ok := c.Get("reports:2:standings")
	assert.True(t, ok)
	_, ok = c.Get("portal:college:1")
	assert.True(t, ok)
}

func TestInvalidateTournament(t *testing.T) {
	c := NewMemory()

	c.Set(ReportKey(7, "standings"), 1, time.Minute)
	c.Set(ReportKey(7, "results"), 2, time.Minute)
	c.Set(CollegePortalKey(7), 3, time.Minute)
	c.Set(ProPortalKey(7), 4, time.Minute)
	c.Set(StandingsPollKey(7), 5, time.Minute)
	c.Set(ReportKey(8, "standings"), 6, time.Minute)

	removed := InvalidateTournament(c, 7)
	assert.Equal(t, 5, removed)

	_, ok := c.Get(ReportKey(8, "standings"))
	assert.True(t, ok, "other tournaments stay cached")
	assert.Equal(t, 1, c.Len())
}
