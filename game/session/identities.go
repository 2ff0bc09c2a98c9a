package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/ludo/game/service"
)

var ErrSessionNotFound = service.ErrSessionNotFound

// Identities maps cookie session ids to the seat they were issued for
type Identities struct {
	sessions map[string]*service.Identity
	now      func() time.Time
	mu       sync.RWMutex
}

// NewIdentities creates an empty identity store
func NewIdentities() *Identities {
	return &Identities{
		sessions: make(map[string]*service.Identity),
		now:      time.Now,
	}
}

// Issue creates a new session id for playerName in gameName
func (s *Identities) Issue(gameName, playerName string) (*service.Identity, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	identity := &service.Identity{
		SessionID:  id.String(),
		GameName:   gameName,
		PlayerName: playerName,
		CreatedAt:  s.now(),
	}

	s.mu.Lock()
	s.sessions[identity.SessionID] = identity
	s.mu.Unlock()

	return identity, nil
}

// Lookup returns the identity behind a session id
func (s *Identities) Lookup(sessionID string) (*service.Identity, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, ErrSessionNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return identity, nil
}

// Revoke forgets a session id
func (s *Identities) Revoke(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sessionID]; !exists {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// RevokeGame forgets every session seated in gameName and returns how many
// were removed
func (s *Identities) RevokeGame(gameName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, identity := range s.sessions {
		if identity.GameName == gameName {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of live sessions
func (s *Identities) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
