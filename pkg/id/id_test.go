package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunIDSortsByCreation(t *testing.T) {
	prev := NewRunID()
	for i := 0; i < 1000; i++ {
		next := NewRunID()
		require.Len(t, next, 26)
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestTime(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	orig := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = orig })

	got, err := Time(NewRunID())
	require.NoError(t, err)
	assert.True(t, fixed.Equal(got), "got %v", got)

	_, err = Time("not-a-ulid")
	assert.Error(t, err)
}
