package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnAppendAndGet(t *testing.T) {
	c := newColumn[int]()
	c.Append(10)
	c.Append(20)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 10, c.Get(0))
	assert.Equal(t, 20, c.Get(1))
}

func TestColumnSetBeforeOverlay(t *testing.T) {
	c := newColumn[int]()
	c.Append(1)
	require.NoError(t, c.Set(0, 5))
	assert.Equal(t, 5, c.Get(0))
}

func TestColumnExtendOnlyCopyDelegatesReads(t *testing.T) {
	base := newColumn[int]()
	base.Append(1)
	base.Append(2)

	overlay := base.ExtendOnlyCopy()
	assert.Equal(t, 2, overlay.Len())
	assert.Equal(t, 1, overlay.Get(0))
	assert.Equal(t, 2, overlay.Get(1))

	overlay.Append(3)
	assert.Equal(t, 3, overlay.Len())
	assert.Equal(t, 2, base.Len())
}

func TestColumnSetOnBaselineRangeViaOverlayFails(t *testing.T) {
	base := newColumn[int]()
	base.Append(1)
	overlay := base.ExtendOnlyCopy()

	err := overlay.Set(0, 99)
	require.ErrorIs(t, err, ErrImmutableBaselineViolation)
	assert.Equal(t, 1, base.Get(0))
	assert.Equal(t, 1, overlay.Get(0))
}

func TestColumnSetOnOverlayTailSucceeds(t *testing.T) {
	base := newColumn[int]()
	base.Append(1)
	overlay := base.ExtendOnlyCopy()
	overlay.Append(2)

	require.NoError(t, overlay.Set(1, 42))
	assert.Equal(t, 42, overlay.Get(1))
	assert.Equal(t, 1, base.Get(0))
}

func TestColumnNestedOverlay(t *testing.T) {
	base := newColumn[int]()
	base.Append(1)
	mid := base.ExtendOnlyCopy()
	mid.Append(2)
	leaf := mid.ExtendOnlyCopy()
	leaf.Append(3)

	assert.Equal(t, 3, leaf.Len())
	assert.Equal(t, 1, leaf.Get(0))
	assert.Equal(t, 2, leaf.Get(1))
	assert.Equal(t, 3, leaf.Get(2))

	require.ErrorIs(t, leaf.Set(0, 9), ErrImmutableBaselineViolation)
	require.ErrorIs(t, leaf.Set(1, 9), ErrImmutableBaselineViolation)
	require.NoError(t, leaf.Set(2, 9))
}
