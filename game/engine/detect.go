package engine

// IsWin reports whether the cell one step from pos in direction d is the exit.
// Callers pass the player's position after the move, so a win means the exit
// lies directly ahead in the direction just travelled.
func IsWin(grid Grid, pos Position, d Direction) bool {
	cell, _, ok := Neighbor(grid, pos, d)
	return ok && cell == FloorExit
}

// IsNPCAdjacent reports whether any orthogonal neighbour of pos is an NPC
func IsNPCAdjacent(grid Grid, pos Position) bool {
	for _, d := range Directions {
		if cell, _, ok := Neighbor(grid, pos, d); ok && cell == NPC {
			return true
		}
	}
	return false
}
