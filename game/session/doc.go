// Package session provides in-memory storage for Ludo rooms and the cookie
// sessions of the players seated in them.
//
// Core Types:
//
// Manager holds the open rooms keyed by game name. Each room owns its own
// engine.Game built on the board it was created with. Identities maps the
// opaque session id handed to a browser (a random UUID) to the game and
// player name it was issued for.
//
// Concurrency:
//
// Both stores are safe for concurrent use. They guard only their maps; the
// games inside rooms are serialized by the service layer.
//
// Usage:
//
//	rooms := session.NewManager()
//	identities := session.NewIdentities()
//
//	room, err := rooms.Create("friday", board)
//	if err != nil {
//		log.Fatal(err)
//	}
//	room.Game.AddPlayer("ann")
//	id, _ := identities.Issue(room.Name, "ann")
//
// Cleanup:
//
// Rooms that are not touched for a while can be evicted with
// CleanupIdleRooms; the caller then revokes the evicted rooms' sessions with
// RevokeGame.
package session
