// Package service provides the room-level business logic for Ludo.
//
// The service package implements:
//   - Creating, joining and leaving named rooms
//   - Cookie session resolution for seated players
//   - Dice rolls and coin moves routed to the right room's engine
//   - Waiting room and table snapshots
//   - Board discovery and idle room eviction
//
// Core Interfaces:
//
// GameService is the main service interface used by the HTTP, WebSocket and
// MCP transports. RoomManager stores rooms by game name, IdentityStore maps
// session ids to seats and ConfigManager loads board configurations.
//
// Architecture:
//
// The service layer sits between the transports and the rules engine. Each
// room owns an independent engine.Game; a single service-wide lock serializes
// every call into the engines so a roll and a move from two browsers never
// interleave.
//
// Usage:
//
//	rooms := session.NewManager()
//	identities := session.NewIdentities()
//	configs, _ := config.NewManager("configs")
//	gameService := service.NewGameService(rooms, identities, configs)
//
//	join, err := gameService.CreateGame(ctx, "friday", "ann", "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	roll, err := gameService.RollDice(ctx, join.GameName, join.PlayerName)
//
// Errors:
//
// Lookup failures are reported with the sentinels in this package
// (ErrGameNotFound, ErrGameNameTaken, ErrJoinRejected, ErrSessionNotFound).
// Rule violations are passed through from the engine and can be matched with
// errors.Is against the engine sentinels.
package service
