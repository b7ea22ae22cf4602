// Package profile stores the player's chosen skin.
//
// MemoryStore serves a single process; RedisStore keeps a hash per user under
// keyquest:profile:<user> so that several servers share the same profiles.
// Users without a stored profile play as engine.DefaultSkin.
package profile
