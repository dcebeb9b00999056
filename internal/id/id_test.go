package id

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortableWithinSameInstant(t *testing.T) {
	at := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)

	prev := New(at)
	for i := 0; i < 100; i++ {
		next := New(at)
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestNewEncodesTimestamp(t *testing.T) {
	at := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)

	parsed, err := ulid.Parse(New(at))
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(at), parsed.Time())
}
