package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("rejects an empty table", func(t *testing.T) {
		tbl, err := New(nil)
		require.ErrorIs(t, err, ErrEmptyTable)
		require.Nil(t, tbl)

		tbl, err = New([]time.Duration{})
		require.ErrorIs(t, err, ErrEmptyTable)
		require.Nil(t, tbl)
	})

	t.Run("rejects zero and negative periods", func(t *testing.T) {
		_, err := New([]time.Duration{time.Hour, 0})
		require.ErrorIs(t, err, ErrNonPositivePeriod)

		_, err = New([]time.Duration{-time.Second})
		require.ErrorIs(t, err, ErrNonPositivePeriod)
	})

	t.Run("copies the input", func(t *testing.T) {
		periods := []time.Duration{time.Minute, time.Hour}
		tbl, err := New(periods)
		require.NoError(t, err)

		periods[0] = -time.Minute
		assert.Equal(t, time.Minute, tbl.At(0))
	})
}

func TestParse(t *testing.T) {
	periods, err := Parse("720h, 168h,24h")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{720 * time.Hour, 168 * time.Hour, 24 * time.Hour}, periods)

	_, err = Parse("720h,not-a-duration")
	require.Error(t, err)
}

func TestAt(t *testing.T) {
	tbl, err := New([]time.Duration{10 * time.Second, 20 * time.Second})
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, tbl.At(0))
	assert.Equal(t, 20*time.Second, tbl.At(1))
	assert.Equal(t, 10*time.Second, tbl.At(2))
	assert.Equal(t, 20*time.Second, tbl.At(5))
	assert.Equal(t, 20*time.Second, tbl.At(-1))
	assert.Equal(t, 10*time.Second, tbl.At(-2))
}

func TestAdvance(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	at := func(sec int64) time.Time { return epoch.Add(time.Duration(sec) * time.Second) }

	t.Run("single period", func(t *testing.T) {
		tbl, err := New([]time.Duration{30 * time.Second})
		require.NoError(t, err)

		next, idx := tbl.Advance(at(100), 0, at(100))
		assert.Equal(t, at(130), next)
		assert.Equal(t, 0, idx)
	})

	t.Run("catches up through skipped windows in table order", func(t *testing.T) {
		tbl, err := New([]time.Duration{10 * time.Second, 20 * time.Second})
		require.NoError(t, err)

		// 100 -> 110 (idx 0 consumed) -> 130 (idx 1 consumed) -> 140 (idx 0
		// consumed again), first value strictly after 135.
		next, idx := tbl.Advance(at(100), 0, at(135))
		assert.Equal(t, at(140), next)
		assert.Equal(t, 1, idx)
	})

	t.Run("no catch-up needed when next is already in the future", func(t *testing.T) {
		tbl, err := New([]time.Duration{10 * time.Second})
		require.NoError(t, err)

		next, idx := tbl.Advance(at(200), 0, at(150))
		assert.Equal(t, at(200), next)
		assert.Equal(t, 0, idx)
	})

	t.Run("normalizes out-of-range positions", func(t *testing.T) {
		tbl, err := New([]time.Duration{10 * time.Second, 20 * time.Second})
		require.NoError(t, err)

		// A corrupted persisted position must not panic; -1 wraps to the last
		// table entry, so the walk starts with the 20s period.
		next, idx := tbl.Advance(at(100), -1, at(100))
		assert.Equal(t, at(120), next)
		assert.Equal(t, 0, idx)

		next, idx = tbl.Advance(at(100), 3, at(100))
		assert.Equal(t, at(120), next)
		assert.Equal(t, 0, idx)
	})

	t.Run("result is always strictly after now", func(t *testing.T) {
		tables := [][]time.Duration{
			{time.Second},
			{3 * time.Second, 5 * time.Second},
			{time.Second, time.Minute, time.Hour},
		}

		for _, periods := range tables {
			tbl, err := New(periods)
			require.NoError(t, err)

			for _, lag := range []int64{0, 1, 59, 3600, 86400} {
				now := at(1000 + lag)
				next, idx := tbl.Advance(at(1000), 0, now)
				assert.True(t, next.After(now), "periods=%v lag=%d", periods, lag)
				assert.Less(t, idx, tbl.Len())
			}
		}
	})
}
