package keypool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmpty(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrNoKeys)

	_, err = New([]string{"", ""})
	require.ErrorIs(t, err, ErrNoKeys)
}

func TestAcquireRotatesOnExhaustion(t *testing.T) {
	pool, err := New([]string{"a", "b", "c"})
	require.NoError(t, err)
	require.Equal(t, 3, pool.Remaining())

	key, err := pool.Acquire()
	require.NoError(t, err)
	require.Equal(t, "a", key)

	// stable until exhausted
	key, err = pool.Acquire()
	require.NoError(t, err)
	require.Equal(t, "a", key)

	pool.MarkExhausted("a")
	key, err = pool.Acquire()
	require.NoError(t, err)
	require.Equal(t, "b", key)
	require.Equal(t, 2, pool.Remaining())

	pool.MarkExhausted("b")
	pool.MarkExhausted("c")
	_, err = pool.Acquire()
	require.ErrorIs(t, err, ErrExhausted)
	require.Equal(t, 0, pool.Remaining())
}

func TestMarkExhaustedIgnoresUnknownKeys(t *testing.T) {
	pool, err := New([]string{"a"})
	require.NoError(t, err)

	pool.MarkExhausted("nope")
	require.Equal(t, 1, pool.Remaining())
}
