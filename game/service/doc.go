// Package service provides the business logic layer for Key Quest.
//
// The service package implements:
//   - Multi-session management on top of session.Manager
//   - Directional input, single and bulk, with per-step diagnostics
//   - Level catalog access (list, fetch, save)
//   - Player profile access (skin selection)
//
// Core Interfaces:
//
// GameService is the main service interface used by every transport.
// SessionManager stores live sessions. LevelCatalog serves the locally
// stored levels. Broadcaster receives every snapshot a session publishes,
// so websocket clients see inputs and timer ticks as they happen.
//
// Usage:
//
//	catalog, _ := levels.NewManager("levels")
//	gameService := service.NewGameService(session.NewManager(), catalog,
//		service.WithProfiles(profile.NewMemoryStore()),
//		service.WithBroadcaster(hub),
//	)
//
//	info, err := gameService.CreateSession(ctx, "", "alice")
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := gameService.Input(ctx, info.ID, "right")
//
// Sessions fetch their level through a session.LevelSource. By default that
// is the catalog itself; WithLevelSource swaps in a remote level server.
package service
