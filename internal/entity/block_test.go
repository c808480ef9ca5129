package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoord_Key(t *testing.T) {
	t.Run("Formats the wire key as x-y", func(t *testing.T) {
		// Given: a coordinate
		coord := Coord{X: 5, Y: 12}

		// When: building its wire key
		key := coord.Key()

		// Then: it matches the x-y layout
		assert.Equal(t, "5-12", key)
	})

	t.Run("Negative components keep their sign", func(t *testing.T) {
		// Given: an out-of-grid coordinate
		coord := Coord{X: -1, Y: 0}

		// When: building its wire key
		key := coord.Key()

		// Then: the sign survives
		assert.Equal(t, "-1-0", key)
	})
}

func TestCoord_Within(t *testing.T) {
	t.Run("Accepts every corner of the grid", func(t *testing.T) {
		// Given: a 50x50 grid
		for _, coord := range []Coord{{0, 0}, {49, 0}, {0, 49}, {49, 49}} {
			// Then: all four corners are inside
			assert.True(t, coord.Within(DefaultGridSize), "coord %v", coord)
		}
	})

	t.Run("Rejects coordinates outside the grid", func(t *testing.T) {
		// Given: a 50x50 grid
		for _, coord := range []Coord{{50, 0}, {0, 50}, {-1, 0}, {0, -1}, {50, 50}} {
			// Then: each candidate is outside
			assert.False(t, coord.Within(DefaultGridSize), "coord %v", coord)
		}
	})
}

func TestBlock_Coord(t *testing.T) {
	// Given: a claim record
	block := &Block{X: 7, Y: 3, Owner: "user-1"}

	// When: reading its coordinate
	coord := block.Coord()

	// Then: it mirrors the record's position
	assert.Equal(t, Coord{X: 7, Y: 3}, coord)
}
