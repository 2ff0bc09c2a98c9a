// Package mcp exposes a Ludo seat as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call becomes a request to the HTTP
// API. It keeps a cookie jar, so a single Client plays as a single seated
// player, exactly as a browser would.
//
// Tools:
//   - list_games, list_boards: lobby discovery
//   - create_game, join_game, leave_game: seat management
//   - waiting_status, game_status, game_logs: table views
//   - roll_dice, move_coin: play
//   - game_rules: rules text
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// Tool failures (not your turn, an illegal coin, no seat) are returned as
// tool error results rather than protocol errors.
package mcp
