package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Grid is a rectangular row-major array of cells
type Grid [][]Cell

// ParseGrid converts tile identifiers into a Grid. Rows must be non-empty and
// of equal length.
func ParseGrid(cells [][]string) (Grid, error) {
	if len(cells) < MinGridSize {
		return nil, fmt.Errorf("grid has no rows")
	}
	if len(cells) > MaxGridSize {
		return nil, fmt.Errorf("grid has %d rows, maximum is %d", len(cells), MaxGridSize)
	}

	width := len(cells[0])
	if width < MinGridSize || width > MaxGridSize {
		return nil, fmt.Errorf("grid width must be between %d and %d, got %d", MinGridSize, MaxGridSize, width)
	}

	grid := make(Grid, len(cells))
	for r, row := range cells {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", r, len(row), width)
		}
		grid[r] = make([]Cell, width)
		for c, id := range row {
			cell, err := ParseCell(id)
			if err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", r, c, err)
			}
			grid[r][c] = cell
		}
	}
	return grid, nil
}

// Rows returns the grid height
func (g Grid) Rows() int {
	return len(g)
}

// Cols returns the grid width
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// InBounds reports whether pos lies inside the grid
func (g Grid) InBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < g.Rows() && pos.Col >= 0 && pos.Col < g.Cols()
}

// At returns the cell at pos. It panics when pos is outside the grid.
func (g Grid) At(pos Position) Cell {
	if !g.InBounds(pos) {
		panic(fmt.Sprintf("engine: position %s outside %dx%d grid", pos, g.Rows(), g.Cols()))
	}
	return g[pos.Row][pos.Col]
}

// Clone returns a deep copy of the grid rows
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for r, row := range g {
		out[r] = make([]Cell, len(row))
		copy(out[r], row)
	}
	return out
}

// Strings returns the tile identifiers of the grid
func (g Grid) Strings() [][]string {
	out := make([][]string, len(g))
	for r, row := range g {
		out[r] = make([]string, len(row))
		for c, cell := range row {
			out[r][c] = cell.String()
		}
	}
	return out
}

// MarshalJSON encodes the grid as rows of tile identifiers
func (g Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Strings())
}

// UnmarshalJSON decodes rows of tile identifiers
func (g *Grid) UnmarshalJSON(data []byte) error {
	var cells [][]string
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	if len(cells) == 0 {
		*g = Grid{}
		return nil
	}
	grid, err := ParseGrid(cells)
	if err != nil {
		return err
	}
	*g = grid
	return nil
}

// Locate returns the first position, in row-major order, holding value
func Locate(g Grid, value Cell) (Position, bool) {
	for r, row := range g {
		for c, cell := range row {
			if cell == value {
				return Position{Row: r, Col: c}, true
			}
		}
	}
	return Position{}, false
}

// LocatePlayer returns the first position holding a player marker of any skin
func LocatePlayer(g Grid) (Position, bool) {
	for r, row := range g {
		for c, cell := range row {
			if cell.Category() == CategoryPlayer {
				return Position{Row: r, Col: c}, true
			}
		}
	}
	return Position{}, false
}

// Neighbor returns the cell one step from pos in direction d. ok is false when
// the step would leave the grid.
func Neighbor(g Grid, pos Position, d Direction) (Cell, Position, bool) {
	next := pos.Step(d)
	if !g.InBounds(next) || next == pos {
		return nil, next, false
	}
	return g[next.Row][next.Col], next, true
}

// CountCells counts the cells matching a predicate
func CountCells(g Grid, match func(Cell) bool) int {
	count := 0
	for _, row := range g {
		for _, cell := range row {
			if match(cell) {
				count++
			}
		}
	}
	return count
}

// SubstitutePlayer replaces the generic placeholder with the given skin. The
// original grid is returned unchanged when no placeholder is present.
func SubstitutePlayer(g Grid, skin string) (Grid, bool) {
	pos, ok := Locate(g, Player{})
	if !ok || skin == "" {
		return g, false
	}
	out := g.Clone()
	out[pos.Row][pos.Col] = Player{Skin: skin}
	return out, true
}

// Render draws the grid one character per cell
func Render(g Grid) string {
	var b strings.Builder
	for r, row := range g {
		for _, cell := range row {
			b.WriteRune(Symbol(cell))
		}
		if r < len(g)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Legend describes the characters used by Render
const Legend = "@ player, . floor, E exit, # wall, N npc, a-e keys 1-5, A-E doors 1-5"
