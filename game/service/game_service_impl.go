package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/ludo/game/engine"
)

// gameServiceImpl implements the GameService interface. A single lock
// serializes every call into the rules engines.
type gameServiceImpl struct {
	rooms      RoomManager
	identities IdentityStore
	configs    ConfigManager
	mu         sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(rooms RoomManager, identities IdentityStore, configs ConfigManager) GameService {
	return &gameServiceImpl{
		rooms:      rooms,
		identities: identities,
		configs:    configs,
	}
}

// CreateGame opens a new room and seats its creator
func (s *gameServiceImpl) CreateGame(ctx context.Context, gameName, playerName, boardID string) (*JoinInfo, error) {
	gameName = strings.TrimSpace(gameName)
	playerName = strings.TrimSpace(playerName)
	if gameName == "" || playerName == "" {
		return nil, fmt.Errorf("%w: game and player names are required", ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.rooms.Get(gameName); err == nil {
		return nil, ErrGameNameTaken
	}

	board := s.configs.GetDefault()
	if boardID != "" {
		var err error
		board, err = s.configs.LoadConfig(boardID)
		if err != nil {
			return nil, fmt.Errorf("failed to load board %s: %w", boardID, err)
		}
	}

	room, err := s.rooms.Create(gameName, board)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	join, err := s.seat(room, playerName)
	if err != nil {
		s.rooms.Delete(gameName)
		return nil, err
	}

	log.Printf("Game %s created by %s (board: %s)", gameName, playerName, board.Name)
	return join, nil
}

// JoinGame seats a player in an existing room
func (s *gameServiceImpl) JoinGame(ctx context.Context, gameName, playerName string) (*JoinInfo, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.rooms.Get(gameName)
	if err != nil {
		return nil, err
	}

	join, err := s.seat(room, playerName)
	if err != nil {
		return nil, err
	}
	s.rooms.UpdateLastAccessed(gameName)

	log.Printf("Player %s joined game %s (%d/%d)", playerName, gameName, room.Game.NoOfPlayers(), engine.MaxPlayers)
	if room.Game.Status() == engine.StatusInProgress {
		log.Printf("Game %s started with order %v", gameName, room.Game.Turn().Order())
	}
	return join, nil
}

// seat issues a session and then adds the player to room. The session comes
// first because the fourth seat starts the game and cannot be undone.
func (s *gameServiceImpl) seat(room *Room, playerName string) (*JoinInfo, error) {
	identity, err := s.identities.Issue(room.Name, playerName)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	if !room.Game.AddPlayer(playerName) {
		s.identities.Revoke(identity.SessionID)
		return nil, fmt.Errorf("%w: %s cannot join %s", ErrJoinRejected, playerName, room.Name)
	}

	player := room.Game.GetPlayer(playerName)
	return &JoinInfo{
		GameName:   room.Name,
		PlayerName: playerName,
		SessionID:  identity.SessionID,
		Color:      player.Color,
		Remain:     room.Game.NeededPlayers(),
	}, nil
}

// LeaveGame unseats the session's player and evicts the room once empty
func (s *gameServiceImpl) LeaveGame(ctx context.Context, sessionID string) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, err := s.identities.Lookup(sessionID)
	if err != nil {
		return nil, err
	}
	s.identities.Revoke(sessionID)

	room, err := s.rooms.Get(identity.GameName)
	if err != nil {
		// The room is already gone; the session was stale.
		return identity, nil
	}

	room.Game.RemovePlayer(identity.PlayerName)
	log.Printf("Player %s left game %s", identity.PlayerName, identity.GameName)

	if room.Game.NoOfPlayers() == 0 {
		if err := s.rooms.Delete(room.Name); err == nil {
			log.Printf("Game %s evicted (no players left)", room.Name)
		}
	}

	return identity, nil
}

// ListGames returns every room's details sorted by name
func (s *gameServiceImpl) ListGames(ctx context.Context) ([]*engine.GameDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := s.rooms.List()
	result := make([]*engine.GameDetails, 0, len(rooms))
	for _, room := range rooms {
		details := room.Game.Details()
		result = append(result, &details)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// GameExists reports whether a room with this name is open
func (s *gameServiceImpl) GameExists(ctx context.Context, gameName string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := s.rooms.Get(gameName)
	return err == nil
}

// EvictIdleGames removes rooms untouched for maxAge and revokes their sessions
func (s *gameServiceImpl) EvictIdleGames(ctx context.Context, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.rooms.CleanupIdleRooms(maxAge)
	for _, name := range removed {
		revoked := s.identities.RevokeGame(name)
		log.Printf("Game %s evicted after %s idle (%d sessions revoked)", name, maxAge, revoked)
	}
	return len(removed)
}

// ResolvePlayer maps a cookie session to its seat
func (s *gameServiceImpl) ResolvePlayer(ctx context.Context, sessionID string) (*Identity, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	return s.identities.Lookup(sessionID)
}

// IsPlayerInGame reports whether playerName is seated in gameName
func (s *gameServiceImpl) IsPlayerInGame(ctx context.Context, gameName, playerName string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, err := s.rooms.Get(gameName)
	if err != nil {
		return false, err
	}
	return room.Game.DoesPlayerExist(playerName), nil
}

// StartGame starts a full room explicitly
func (s *gameServiceImpl) StartGame(ctx context.Context, gameName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.rooms.Get(gameName)
	if err != nil {
		return err
	}
	s.rooms.UpdateLastAccessed(gameName)

	return room.Game.Start()
}

// RollDice rolls for playerName in gameName
func (s *gameServiceImpl) RollDice(ctx context.Context, gameName, playerName string) (*engine.RollResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.rooms.Get(gameName)
	if err != nil {
		return nil, err
	}
	s.rooms.UpdateLastAccessed(gameName)

	return room.Game.RollDice(playerName)
}

// MoveCoin moves one of playerName's coins in gameName. The result is non-nil
// whenever the room exists.
func (s *gameServiceImpl) MoveCoin(ctx context.Context, gameName, playerName string, coinID int) (*engine.MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.rooms.Get(gameName)
	if err != nil {
		return nil, err
	}
	s.rooms.UpdateLastAccessed(gameName)

	return room.Game.MoveCoin(playerName, coinID)
}

// GetWaitingStatus returns the roster as seen from the waiting room
func (s *gameServiceImpl) GetWaitingStatus(ctx context.Context, gameName string) (*WaitingStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, err := s.rooms.Get(gameName)
	if err != nil {
		return nil, err
	}

	status := &WaitingStatus{
		GameName: room.Name,
		Status:   room.Game.Status(),
		Players:    []WaitingPlayer{},
		Remain:     room.Game.NeededPlayers(),
		OpenColors: room.Game.OpenColors(),
	}
	for _, name := range room.Game.PlayerNames() {
		status.Players = append(status.Players, WaitingPlayer{
			Name:  name,
			Color: room.Game.GetPlayer(name).Color,
		})
	}
	return status, nil
}

// GetGameStatus returns the table snapshot
func (s *gameServiceImpl) GetGameStatus(ctx context.Context, gameName string) (*engine.GameStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, err := s.rooms.Get(gameName)
	if err != nil {
		return nil, err
	}
	return room.Game.GetGameStatus(), nil
}

// GetLogs returns the room's activity log
func (s *gameServiceImpl) GetLogs(ctx context.Context, gameName string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, err := s.rooms.Get(gameName)
	if err != nil {
		return nil, err
	}
	return room.Game.GetLogs(), nil
}

// ListBoards returns the available board configurations
func (s *gameServiceImpl) ListBoards(ctx context.Context) ([]*BoardInfo, error) {
	return s.configs.ListConfigs()
}

// SaveBoard validates board and stores it as configID, replacing any board
// with the same id
func (s *gameServiceImpl) SaveBoard(ctx context.Context, configID string, board *engine.BoardConfig) (*BoardInfo, error) {
	configID = strings.TrimSuffix(strings.TrimSpace(configID), ".json")
	if configID == "" || strings.ContainsAny(configID, `/\.`) {
		return nil, fmt.Errorf("%w: invalid board id %q", ErrInvalidRequest, configID)
	}
	if err := engine.ValidateBoardConfig(board); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if err := s.configs.SaveConfig(configID, board); err != nil {
		return nil, fmt.Errorf("failed to save board %s: %w", configID, err)
	}
	log.Printf("Board %s saved (%s, ring %d)", configID, board.Name, board.RingSize)

	return &BoardInfo{
		Filename:    configID + ".json",
		ConfigID:    configID,
		Name:        board.Name,
		Description: board.Description,
		RingSize:    board.RingSize,
		LaneLength:  board.LaneLength,
		EntryRoll:   board.EntryRoll,
	}, nil
}
