package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTurnRestrictionsStartingAt(t *testing.T) {
	tr := NewTurnRestrictions()
	id := tr.Add([]EdgeID{2, 4, 8}, true)

	found := tr.StartingAt(EdgeID(2))
	assert.Equal(t, []RestrictionID{id}, found)
	assert.Empty(t, tr.StartingAt(EdgeID(4)))

	got := tr.Get(id)
	assert.True(t, got.Prohibited)
	assert.Equal(t, []EdgeID{2, 4, 8}, got.EdgeSequence)
}

func TestTurnRestrictionsMultipleAtSameEdge(t *testing.T) {
	tr := NewTurnRestrictions()
	id1 := tr.Add([]EdgeID{0, 2}, true)
	id2 := tr.Add([]EdgeID{0, 6}, false)

	found := tr.StartingAt(EdgeID(0))
	assert.ElementsMatch(t, []RestrictionID{id1, id2}, found)
}
