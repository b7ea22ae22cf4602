// Package engine provides the core puzzle rules for Key Quest.
//
// The engine package implements the game mechanics including:
//   - A typed grid of Floor, Item, Obstacle and Player cells
//   - Single-step orthogonal movement with wall, NPC and door collision
//   - Keyed doors that consume one matching key per passage
//   - Win detection and NPC adjacency for dialogue
//   - Level definition parsing and validation
//   - A breadth-first solver used by the level tooling
//
// Core Types:
//
// Cell is a closed sum type implemented by Floor, Item, Obstacle and Player.
// Grid is a rectangular [][]Cell that marshals to rows of tile identifiers.
// AttemptMove, IsWin and IsNPCAdjacent are pure functions over a grid; they
// never keep state between calls.
//
// Usage:
//
//	grid, err := def.Grid()
//	if err != nil {
//		log.Fatal(err)
//	}
//	grid, _ = engine.SubstitutePlayer(grid, "player1")
//
//	pos, _ := engine.LocatePlayer(grid)
//	result := engine.AttemptMove(grid, nil, pos, engine.Right)
//	if result.Allowed && engine.IsWin(result.Grid, result.To, engine.Right) {
//		fmt.Println("level complete")
//	}
//
// Game Rules:
//
// The player moves one tile at a time. Walls and NPCs never open. DOORn opens
// for a single passage when the inventory holds KEYn, consuming that key; the
// door stays a door. Stepping onto a key collects it. The level is won when
// the exit lies directly ahead of the player in the direction just travelled.
package engine
