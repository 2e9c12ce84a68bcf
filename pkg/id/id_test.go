package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsMonotonic(t *testing.T) {
	t.Parallel()

	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		assert.Len(t, next, 26)
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestAtRoundTripsTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	got, err := Time(At(ts))
	require.NoError(t, err)
	assert.True(t, got.Equal(ts))

	_, err = Time("not-a-ulid")
	require.Error(t, err)
}

func TestClientOrderID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "bandtrader-01HX", ClientOrderID("01HX"))
}
