// Package engine provides the rules engine for a four-seat Ludo room.
//
// The engine package implements the game mechanics including:
//   - Seat color assignment and turn order
//   - Dice resolution and the six-to-enter rule
//   - Coin movement along a shared ring and private home lanes
//   - Captures, safe cells and blocks
//   - Win detection and an append-only activity log
//
// Core Types:
//
// Game owns the roster of Players, the Turn, and the activity log. Each
// Player owns four Coins and a Track describing its color's path on the
// board. BoardConfig holds the geometry and is loaded from JSON files.
//
// Usage:
//
//	game, err := engine.NewGame("room", engine.DefaultBoardConfig(), engine.NewColorPool(), engine.NewRandomDice(0))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, name := range []string{"ann", "bob", "cy", "dee"} {
//		game.AddPlayer(name) // the fourth join starts the game
//	}
//
//	roll, err := game.RollDice("ann")
//	if err == nil && len(roll.Coins) > 0 {
//		result, _ := game.MoveCoin("ann", roll.Coins[0])
//		fmt.Println(result.Message)
//	}
//
// Game Rules:
//
// A coin leaves base only on a roll of six and then travels clockwise from
// its color's start cell. Rolls that would overshoot the destination are not
// playable. Landing alone on an unsafe cell holding a single opposing coin
// sends that coin back to base. The turn always passes after a move, including
// after a six. A player wins when all four coins reach the destination.
//
// Concurrency:
//
// A Game has no internal locking. The service layer serializes calls.
package engine
