package entity

import (
	"fmt"
	"time"
)

// DefaultGridSize is the side length of the claimable grid: 50x50 = 2,500 blocks.
const DefaultGridSize = 50

// Coord identifies one grid cell.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key returns the wire/persistence key for the coordinate, e.g. "5-5".
// Internally blocks are keyed by the Coord value itself, never by this string.
func (that Coord) Key() string {
	return fmt.Sprintf("%d-%d", that.X, that.Y)
}

// Within reports whether the coordinate fits a grid of the given size.
func (that Coord) Within(size int) bool {
	return that.X >= 0 && that.X < size && that.Y >= 0 && that.Y < size
}

// Block is the permanent ownership record of one claimed cell.
// It is created exactly once per coordinate; only OwnerName may change
// afterwards, when the owning user renames.
type Block struct {
	X          int       `json:"x"`
	Y          int       `json:"y"`
	Owner      string    `json:"owner"`
	OwnerName  string    `json:"ownerName"`
	OwnerColor string    `json:"ownerColor"`
	ClaimedAt  time.Time `json:"claimedAt"`

	// Seq is the claim sequence number, used as a stable tie-breaker
	// when owners have equal block counts.
	Seq int64 `json:"-"`
}

func (that *Block) Coord() Coord {
	return Coord{X: that.X, Y: that.Y}
}
