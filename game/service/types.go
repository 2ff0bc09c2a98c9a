package service

import (
	"time"

	"github.com/wricardo/mcp-training/ludo/game/engine"
)

// Identity ties a cookie session to a seat in a game
type Identity struct {
	SessionID  string    `json:"session_id"`
	GameName   string    `json:"game_name"`
	PlayerName string    `json:"player_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// JoinInfo is returned when a player creates or joins a game
type JoinInfo struct {
	GameName   string       `json:"game_name"`
	PlayerName string       `json:"player_name"`
	SessionID  string       `json:"session_id"`
	Color      engine.Color `json:"color"`
	Remain     int          `json:"remain"`
}

// WaitingPlayer is one entry of the waiting room roster
type WaitingPlayer struct {
	Name  string       `json:"name"`
	Color engine.Color `json:"color"`
}

// WaitingStatus is the waiting room view polled before the game starts
type WaitingStatus struct {
	GameName string          `json:"game_name"`
	Status   engine.Status   `json:"status"`
	Players    []WaitingPlayer `json:"players"`
	Remain     int             `json:"remain"`
	OpenColors []engine.Color  `json:"open_colors"`
}

// BoardInfo provides information about a board configuration
type BoardInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for game creation
	Name        string `json:"name"`
	Description string `json:"description"`
	RingSize    int    `json:"ring_size"`
	LaneLength  int    `json:"lane_length"`
	EntryRoll   int    `json:"entry_roll"`
}
