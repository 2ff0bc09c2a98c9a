package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mcp-training/ludo/game/engine"
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameNameTaken   = errors.New("game name already taken")
	ErrInvalidGameName = errors.New("invalid game name")
	ErrJoinRejected    = errors.New("cannot join game")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidRequest  = errors.New("invalid request")
)

// GameService defines all room-level operations
type GameService interface {
	// Rooms
	CreateGame(ctx context.Context, gameName, playerName, boardID string) (*JoinInfo, error)
	JoinGame(ctx context.Context, gameName, playerName string) (*JoinInfo, error)
	LeaveGame(ctx context.Context, sessionID string) (*Identity, error)
	ListGames(ctx context.Context) ([]*engine.GameDetails, error)
	GameExists(ctx context.Context, gameName string) bool
	EvictIdleGames(ctx context.Context, maxAge time.Duration) int

	// Identity
	ResolvePlayer(ctx context.Context, sessionID string) (*Identity, error)
	IsPlayerInGame(ctx context.Context, gameName, playerName string) (bool, error)

	// Play
	StartGame(ctx context.Context, gameName string) error
	RollDice(ctx context.Context, gameName, playerName string) (*engine.RollResult, error)
	MoveCoin(ctx context.Context, gameName, playerName string, coinID int) (*engine.MoveResult, error)

	// Queries
	GetWaitingStatus(ctx context.Context, gameName string) (*WaitingStatus, error)
	GetGameStatus(ctx context.Context, gameName string) (*engine.GameStatus, error)
	GetLogs(ctx context.Context, gameName string) ([]string, error)

	// Boards
	ListBoards(ctx context.Context) ([]*BoardInfo, error)
	SaveBoard(ctx context.Context, configID string, board *engine.BoardConfig) (*BoardInfo, error)
}

// RoomManager defines room storage operations, keyed by game name
type RoomManager interface {
	Create(name string, board *engine.BoardConfig) (*Room, error)
	Get(name string) (*Room, error)
	List() []*Room
	Delete(name string) error
	UpdateLastAccessed(name string) error
	CleanupIdleRooms(maxAge time.Duration) []string
}

// IdentityStore maps cookie session ids to seated players
type IdentityStore interface {
	Issue(gameName, playerName string) (*Identity, error)
	Lookup(sessionID string) (*Identity, error)
	Revoke(sessionID string) error
	RevokeGame(gameName string) int
}

// ConfigManager handles board configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.BoardConfig, error)
	ListConfigs() ([]*BoardInfo, error)
	GetDefault() *engine.BoardConfig
	SaveConfig(name string, config *engine.BoardConfig) error
}

// Room is a named table with its own rules engine
type Room struct {
	Name           string
	Game           *engine.Game
	Board          *engine.BoardConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
