package engine

import (
	"fmt"
	"strings"
)

const (
	// Validation constants
	MinGridSize     = 1
	MaxGridSize     = 50
	MaxBulkMoves    = 50
	MaxSolverStates = 250000

	WebSocketBufferSize = 256
)

// Position represents row/column coordinates, row-major from the top-left corner
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String formats the position as (row,col)
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Direction is one of the four orthogonal moves
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
	Up    Direction = "up"
	Down  Direction = "down"
)

// Directions lists every supported direction in a stable order
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection normalizes a direction name. Anything other than the four
// directions is rejected.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Left:
		return Left, true
	case Right:
		return Right, true
	case Up:
		return Up, true
	case Down:
		return Down, true
	}
	return "", false
}

// Delta returns the row and column offsets for a single step
func (d Direction) Delta() (int, int) {
	switch d {
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	}
	return 0, 0
}

// Step returns the position one step away in direction d
func (p Position) Step(d Direction) Position {
	dr, dc := d.Delta()
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

// Inventory is the ordered sequence of collected items
type Inventory []Item

// Clone returns an independent copy of the inventory
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	copy(out, inv)
	return out
}

// Contains reports whether the inventory holds at least one item
func (inv Inventory) Contains(item Item) bool {
	return inv.IndexOf(item) >= 0
}

// IndexOf returns the index of the first matching item or -1
func (inv Inventory) IndexOf(item Item) int {
	for i, it := range inv {
		if it == item {
			return i
		}
	}
	return -1
}

// Consume returns a copy with the first matching item removed. ok is false
// when the item is not present, in which case the original is returned.
func (inv Inventory) Consume(item Item) (Inventory, bool) {
	idx := inv.IndexOf(item)
	if idx < 0 {
		return inv, false
	}
	out := make(Inventory, 0, len(inv)-1)
	out = append(out, inv[:idx]...)
	out = append(out, inv[idx+1:]...)
	return out, true
}

// Strings returns the tile identifiers of the inventory items
func (inv Inventory) Strings() []string {
	out := make([]string, len(inv))
	for i, it := range inv {
		out[i] = it.String()
	}
	return out
}
