// Package config loads Ludo board configurations from a directory of JSON
// files.
//
// A board file names the ring size, home lane length, entry roll, the start
// cell of each seat color and the safe cells:
//
//	{
//	  "name": "classic",
//	  "ring_size": 52,
//	  "lane_length": 6,
//	  "entry_roll": 6,
//	  "start_cells": {"red": 0, "green": 13, "blue": 26, "yellow": 39},
//	  "safe_cells": [0, 8, 13, 21, 26, 34, 39, 47]
//	}
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	board, err := manager.LoadConfig("quick")
//	boards, err := manager.ListConfigs()
//
// The default board is classic.json when present, otherwise the first valid
// file, otherwise the built-in classic board.
package config
