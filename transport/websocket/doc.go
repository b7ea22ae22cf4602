// Package websocket provides live session updates over WebSocket.
//
// A central Hub tracks the clients attached to each session. Every snapshot
// a session publishes (inputs, restarts, timer ticks) is pushed to its
// clients as a state_update message. Clients may also play through the
// socket.
//
// Message Protocol:
//   - Incoming: {"direction": "up"} or {"action": "restart"}
//   - Outgoing: {"session_id": "...", "event": "state_update", "state": {...}}
//   - Outgoing on a failed action: {"event": "error", "error": "..."}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.ServeWS(w, r, sessionID, func(msg websocket.ClientMessage) error {
//		_, err := gameService.Input(ctx, sessionID, msg.Direction)
//		return err
//	})
//
// The hub's map is only mutated from Run. BroadcastSnapshot never blocks
// the caller, so it is safe to call from a session's timer.
package websocket
