package engine

import "errors"

var (
	ErrNoSolution      = errors.New("no winning sequence")
	ErrSolverExhausted = errors.New("solver state budget exhausted")
	ErrTooManyItems    = errors.New("too many items for solver")
)

const maxSolverItems = 64

// solverState is a node of the breadth-first search. Walls, doors and the exit
// never change, so position, the set of collected item cells and key counts
// identify a grid completely.
type solverState struct {
	pos       Position
	collected uint64
	keys      [5]uint8
}

type solverNode struct {
	parent int
	dir    Direction
	state  solverState
}

// Solve finds a shortest input sequence that ends in a win, starting from the
// player marker in grid with the given inventory. The tile recorded under the
// player is part of the board: re-entering a door costs a key, and an exit
// under the player can be faced like any other.
func Solve(grid Grid, inv Inventory) ([]Direction, error) {
	start, ok := LocatePlayer(grid)
	if !ok {
		return nil, ErrNoSolution
	}

	grid = terrain(grid, start)

	itemIndex := make(map[Position]int)
	for r, row := range grid {
		for c, cell := range row {
			if cell.Category() == CategoryItem {
				if len(itemIndex) == maxSolverItems {
					return nil, ErrTooManyItems
				}
				itemIndex[Position{Row: r, Col: c}] = len(itemIndex)
			}
		}
	}

	var initial solverState
	initial.pos = start
	for _, it := range inv {
		initial.keys[it-Key1]++
	}

	nodes := []solverNode{{parent: -1, state: initial}}
	seen := map[solverState]bool{initial: true}

	for head := 0; head < len(nodes); head++ {
		current := nodes[head].state
		for _, d := range Directions {
			next, ok := solverStep(grid, itemIndex, current, d)
			if !ok {
				continue
			}
			// A win depends on the direction of arrival, which the state
			// does not record, so check before deduplicating.
			if IsWin(grid, next.pos, d) {
				nodes = append(nodes, solverNode{parent: head, dir: d, state: next})
				return solverPath(nodes, len(nodes)-1), nil
			}
			if seen[next] {
				continue
			}
			seen[next] = true
			nodes = append(nodes, solverNode{parent: head, dir: d, state: next})

			if len(nodes) >= MaxSolverStates {
				return nil, ErrSolverExhausted
			}
		}
	}
	return nil, ErrNoSolution
}

func solverStep(grid Grid, itemIndex map[Position]int, s solverState, d Direction) (solverState, bool) {
	target, pos, ok := Neighbor(grid, s.pos, d)
	if !ok {
		return s, false
	}

	next := s
	next.pos = pos

	switch t := target.(type) {
	case Obstacle:
		key, isDoor := t.Key()
		if !isDoor || next.keys[key-Key1] == 0 {
			return s, false
		}
		next.keys[key-Key1]--
	case Item:
		bit := uint64(1) << itemIndex[pos]
		if s.collected&bit == 0 {
			next.collected |= bit
			next.keys[t-Key1]++
		}
	}
	return next, true
}

// terrain returns grid with the player marker at pos replaced by the tile
// beneath it
func terrain(grid Grid, pos Position) Grid {
	p, ok := grid.At(pos).(Player)
	if !ok {
		return grid
	}
	out := grid.Clone()
	out[pos.Row][pos.Col] = p.Tile()
	return out
}

func solverPath(nodes []solverNode, idx int) []Direction {
	var path []Direction
	for idx > 0 {
		path = append(path, nodes[idx].dir)
		idx = nodes[idx].parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
