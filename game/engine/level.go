package engine

import (
	"errors"
	"fmt"
)

var ErrInvalidLevel = errors.New("invalid level")

// LevelDefinition is the level data supplied by the level source. The cells
// and npcText keys match the level API payload.
type LevelDefinition struct {
	ID          string     `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string     `json:"name,omitempty" yaml:"name,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Cells       [][]string `json:"cells" yaml:"cells"`
	NPCText     string     `json:"npcText" yaml:"npcText"`
}

// Grid parses the definition into a Grid. A definition with more than one
// player marker is rejected; one without any is accepted.
func (d *LevelDefinition) Grid() (Grid, error) {
	grid, err := ParseGrid(d.Cells)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	if n := CountCells(grid, isPlayer); n > 1 {
		return nil, fmt.Errorf("%w: %d player markers", ErrInvalidLevel, n)
	}
	return grid, nil
}

// ValidateLevel performs the strict authoring checks on a level definition
func ValidateLevel(d *LevelDefinition) error {
	grid, err := d.Grid()
	if err != nil {
		return err
	}

	if _, ok := Locate(grid, Player{}); !ok {
		return fmt.Errorf("%w: no %q placeholder", ErrInvalidLevel, PlayerPlaceholder)
	}
	if CountCells(grid, func(c Cell) bool { return c == FloorExit }) == 0 {
		return fmt.Errorf("%w: no exit tile", ErrInvalidLevel)
	}

	for r, row := range grid {
		for c, cell := range row {
			door, ok := cell.(Obstacle)
			if !ok || !door.IsDoor() {
				continue
			}
			key, _ := door.Key()
			if CountCells(grid, func(c Cell) bool { return c == key }) == 0 {
				return fmt.Errorf("%w: %s at (%d,%d) has no %s in the level", ErrInvalidLevel, door, r, c, key)
			}
		}
	}

	if CountCells(grid, func(c Cell) bool { return c == NPC }) > 0 && d.NPCText == "" {
		return fmt.Errorf("%w: npc present but npcText is empty", ErrInvalidLevel)
	}
	return nil
}

func isPlayer(c Cell) bool {
	return c.Category() == CategoryPlayer
}
