// Package levels provides level data for Key Quest.
//
// The levels package handles:
//   - Loading level definitions from JSON and YAML files
//   - Caching parsed levels behind a read/write lock
//   - Listing the catalogue with grid summaries
//   - Saving authored levels after validation
//   - Fetching levels from a remote level server over HTTP
//
// Level Format:
//
// A level file holds the tile identifiers of its grid under "cells" and the
// dialogue shown next to an NPC under "npcText":
//
//	{
//	  "name": "First Steps",
//	  "cells": [["wall","floor","floor"],["floor","player","key1"],["door1","floor","exit"]],
//	  "npcText": ""
//	}
//
// The file name without extension is the level id.
//
// Usage:
//
//	manager, err := levels.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	def, err := manager.LoadLevel("1")
//	infos, err := manager.ListLevels()
//
// Both Manager and HTTPSource implement FetchLevel(ctx, id) and can be handed
// to the session layer as its level source.
package levels
