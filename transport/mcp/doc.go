// Package mcp exposes Key Quest to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API (package api), and the JSON reply is rendered as text for the
// agent. Hints are computed locally with the engine's solver from the
// session's current state.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state: grid, inventory, timer, dialogue and possible moves
//   - move / bulk_move: one or several inputs, with an intent note
//   - restart_level
//   - hint: next move of a shortest winning route
//   - describe_cell: what occupies a given row and column
//   - list_levels, set_skin, game_instructions
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST /mcp, handled by the main server via HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
