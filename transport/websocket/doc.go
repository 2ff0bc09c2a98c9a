// Package websocket pushes live Ludo table updates to browsers.
//
// Architecture:
//
// A central Hub owns every connection, grouped by game name. Each client has
// a read pump that keeps the connection alive and a write pump that delivers
// queued frames and pings.
//
// Message Protocol:
//
// Every frame is one JSON object:
//
//	{"game_name": "friday", "event": "dice_rolled", "game_status": {...}}
//
// Events are snapshot (sent once on connect), player_joined, player_left,
// dice_rolled and coin_moved. Incoming frames are ignored.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	hub.ServeWS(w, r, gameName, status)
//	hub.BroadcastStatus(gameName, websocket.EventCoinMoved, status)
package websocket
