package engine

import "fmt"

// BlockReason explains why a move was disallowed
type BlockReason string

const (
	BlockNone       BlockReason = ""
	BlockBoundary   BlockReason = "boundary"
	BlockWall       BlockReason = "wall"
	BlockNPC        BlockReason = "npc"
	BlockLockedDoor BlockReason = "locked_door"
	BlockDirection  BlockReason = "invalid_direction"
)

// MoveResult is the outcome of AttemptMove. When Allowed is false Grid and
// Inventory are the caller's originals.
type MoveResult struct {
	Allowed   bool
	Grid      Grid
	Inventory Inventory
	Direction Direction
	From      Position
	To        Position
	Target    Cell
	Reason    BlockReason

	// PickedUp is set when the player collected an item
	PickedUp Item
	// Unlocked is set when a key was spent on a door
	Unlocked Obstacle
}

// AttemptMove validates and applies a single orthogonal step. It never mutates
// its arguments. It panics when playerPos does not hold the player marker.
func AttemptMove(grid Grid, inv Inventory, playerPos Position, d Direction) MoveResult {
	player, ok := grid.At(playerPos).(Player)
	if !ok {
		panic(fmt.Sprintf("engine: no player marker at %s", playerPos))
	}

	result := MoveResult{
		Grid:      grid,
		Inventory: inv,
		Direction: d,
		From:      playerPos,
		To:        playerPos,
	}

	if _, valid := ParseDirection(string(d)); !valid {
		result.Reason = BlockDirection
		return result
	}

	target, targetPos, ok := Neighbor(grid, playerPos, d)
	if !ok {
		result.To = targetPos
		result.Reason = BlockBoundary
		return result
	}
	result.Target = target

	newInv := inv
	var under Cell

	switch t := target.(type) {
	case Obstacle:
		switch {
		case t == Wall:
			result.To = targetPos
			result.Reason = BlockWall
			return result
		case t == NPC:
			result.To = targetPos
			result.Reason = BlockNPC
			return result
		case t.IsDoor():
			key, _ := t.Key()
			var unlocked bool
			newInv, unlocked = inv.Consume(key)
			if !unlocked {
				result.To = targetPos
				result.Reason = BlockLockedDoor
				return result
			}
			result.Unlocked = t
			under = t
		default:
			result.To = targetPos
			result.Reason = BlockWall
			return result
		}
	case Item:
		newInv = append(inv.Clone(), t)
		result.PickedUp = t
	case Floor:
		if t == FloorExit {
			under = t
		}
	case Player:
		panic(fmt.Sprintf("engine: second player marker at %s", targetPos))
	}

	newGrid := grid.Clone()
	newGrid[playerPos.Row][playerPos.Col] = player.Tile()
	newGrid[targetPos.Row][targetPos.Col] = Player{Skin: player.Skin, Under: under}

	result.Allowed = true
	result.Grid = newGrid
	result.Inventory = newInv
	result.To = targetPos
	return result
}

// CanMove reports whether AttemptMove would allow the step
func CanMove(grid Grid, inv Inventory, playerPos Position, d Direction) bool {
	target, _, ok := Neighbor(grid, playerPos, d)
	if !ok {
		return false
	}
	if obstacle, isObstacle := target.(Obstacle); isObstacle {
		key, isDoor := obstacle.Key()
		return isDoor && inv.Contains(key)
	}
	return target.Category() != CategoryPlayer
}

// PossibleMoves lists the directions the player may currently take
func PossibleMoves(grid Grid, inv Inventory, playerPos Position) []Direction {
	var possible []Direction
	for _, d := range Directions {
		if CanMove(grid, inv, playerPos, d) {
			possible = append(possible, d)
		}
	}
	return possible
}
