// Package api provides the HTTP REST API for Key Quest.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"level_id": "1", "user_id": "alice"})
//   - GET /api/sessions - List sessions (sort=created|accessed, order, limit, level)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Close a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - GET /api/sessions/{id}/view - Text rendering of the grid
//   - POST /api/sessions/{id}/input - One input ({"direction": "up"})
//   - POST /api/sessions/{id}/bulk-input - Several inputs ({"directions": [...], "restart": false})
//   - POST /api/sessions/{id}/restart - Reload the level
//
// Levels:
//   - GET /api/levels - List the level catalog
//   - POST /api/levels - Save a level definition
//   - GET /api/levels/{id} - Get a level definition
//   - GET /level/{id} - Bare {cells, npcText} document for remote level sources
//
// Profiles:
//   - GET /api/profiles/{user} - Get a profile
//   - PUT /api/profiles/{user} - Choose a skin ({"skin": "player2"})
//
// Other:
//   - GET /health
//   - GET /ws?session={id} - Live updates, see package websocket
//
// Errors are returned as {"error": "..."}. Unknown sessions and levels map
// to 404, bad directions, levels, skins and ids to 400.
package api
