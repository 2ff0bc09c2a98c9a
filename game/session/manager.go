package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/ludo/game/engine"
	"github.com/wricardo/mcp-training/ludo/game/service"
)

var (
	ErrRoomNotFound      = service.ErrGameNotFound
	ErrRoomAlreadyExists = service.ErrGameNameTaken
	ErrInvalidRoomName   = service.ErrInvalidGameName
)

// DiceFactory builds the dice for a new room
type DiceFactory func() engine.Dice

// Manager holds the open rooms, keyed by game name
type Manager struct {
	rooms   map[string]*service.Room
	newDice DiceFactory
	now     func() time.Time
	mu      sync.RWMutex
}

// NewManager creates a room manager whose rooms roll random dice
func NewManager() *Manager {
	return NewManagerWithDice(func() engine.Dice { return engine.NewRandomDice(0) })
}

// NewManagerWithDice creates a room manager using newDice for every room
func NewManagerWithDice(newDice DiceFactory) *Manager {
	return &Manager{
		rooms:   make(map[string]*service.Room),
		newDice: newDice,
		now:     time.Now,
	}
}

// Create opens a room with a fresh engine on the given board
func (m *Manager) Create(name string, board *engine.BoardConfig) (*service.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidRoomName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rooms[name]; exists {
		return nil, ErrRoomAlreadyExists
	}

	game, err := engine.NewGame(name, board, engine.NewColorPool(), m.newDice())
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := m.now()
	room := &service.Room{
		Name:           name,
		Game:           game,
		Board:          game.Board(),
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.rooms[name] = room

	return room, nil
}

// Get retrieves a room by its exact name
func (m *Manager) Get(name string) (*service.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, exists := m.rooms[name]
	if !exists {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// List returns all open rooms
func (m *Manager) List() []*service.Room {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		result = append(result, room)
	}
	return result
}

// Delete removes a room
func (m *Manager) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rooms[name]; !exists {
		return ErrRoomNotFound
	}
	delete(m.rooms, name)
	return nil
}

// UpdateLastAccessed marks a room as active now
func (m *Manager) UpdateLastAccessed(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, exists := m.rooms[name]
	if !exists {
		return ErrRoomNotFound
	}
	room.LastAccessedAt = m.now()
	return nil
}

// CleanupIdleRooms removes rooms that haven't been accessed within maxAge and
// returns their names
func (m *Manager) CleanupIdleRooms(maxAge time.Duration) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	var removed []string

	for name, room := range m.rooms {
		if room.LastAccessedAt.Before(cutoff) {
			delete(m.rooms, name)
			removed = append(removed, name)
		}
	}

	return removed
}

// Count returns the number of open rooms
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
