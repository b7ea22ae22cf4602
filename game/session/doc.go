// Package session runs Key Quest level sessions.
//
// The session package implements:
//   - A State record with pure transitions (Install, Step, Tick)
//   - Controller, which serializes inputs, owns the elapsed-time timer and
//     publishes snapshots to subscribers
//   - Manager, a thread-safe registry of live sessions keyed by uuid
//
// Lifecycle:
//
// A controller starts in the loading phase. Load fetches the level from its
// LevelSource, resolves the player's skin from the SkinSource and moves to
// idle. The first directional input starts the timer, and reaching the exit
// stops it. Restart repeats Load for the same level. Each load bumps a
// generation counter; a fetch that returns after a newer load began is
// discarded. A failed fetch leaves the session loading.
//
// Timer:
//
// The timer runs on an injected Scheduler. TickerScheduler backs it with a
// time.Ticker goroutine; tests supply a manual scheduler and fire ticks
// themselves. Closing a controller cancels the tick.
//
// Usage:
//
//	ctrl := session.NewController("1", levelManager, session.Options{
//		UserID: "alice",
//		Skins:  profiles,
//	})
//	if err := ctrl.Load(ctx, "1"); err != nil {
//		log.Fatal(err)
//	}
//	unsubscribe := ctrl.Subscribe(func(s session.Snapshot) { render(s) })
//	defer unsubscribe()
//
//	ctrl.HandleInput(engine.Right)
//
// Deleting a session from the Manager, or expiring it with
// CleanupExpiredSessions, closes its controller.
package session
