package engine

// Coin is one of a player's four pieces
type Coin struct {
	ID       int      `json:"id"`
	Position Position `json:"position"`
}

// Player is a seated participant. Players are owned by their Game.
type Player struct {
	Name  string
	Color Color
	coins [CoinsPerPlayer]*Coin
	track *Track
}

// NewPlayer creates a player with all coins at base
func NewPlayer(name string, color Color, board *BoardConfig) *Player {
	p := &Player{
		Name:  name,
		Color: color,
		track: NewTrack(board, color),
	}
	for i := range p.coins {
		p.coins[i] = &Coin{ID: i + 1, Position: Base}
	}
	return p
}

// Track returns the player's path
func (p *Player) Track() *Track {
	return p.track
}

// Coin returns the coin with the given id, or nil
func (p *Player) Coin(id int) *Coin {
	if id < 1 || id > CoinsPerPlayer {
		return nil
	}
	return p.coins[id-1]
}

// Coins returns the player's coins in id order
func (p *Player) Coins() []*Coin {
	return p.coins[:]
}

// MovableCoins returns the ids of coins that have a legal move for roll, ascending
func (p *Player) MovableCoins(roll int) []int {
	var ids []int
	for _, c := range p.coins {
		if _, ok := p.track.NextPosition(c.Position, roll); ok {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// HasWon reports whether every coin reached the destination
func (p *Player) HasWon() bool {
	dest := p.track.Destination()
	for _, c := range p.coins {
		if c.Position != dest {
			return false
		}
	}
	return true
}

// Status returns a snapshot of the player
func (p *Player) Status() PlayerStatus {
	status := PlayerStatus{
		Name:  p.Name,
		Color: p.Color,
		Won:   p.HasWon(),
		Coins: make([]CoinStatus, 0, CoinsPerPlayer),
	}
	for _, c := range p.coins {
		cs := CoinStatus{
			ID:            c.ID,
			Position:      c.Position,
			AtBase:        c.Position == Base,
			InHomeLane:    p.track.InHomeLane(c.Position),
			AtDestination: c.Position == p.track.Destination(),
		}
		if cell, ok := p.track.Cell(c.Position); ok {
			cs.Cell = &cell
		}
		status.Coins = append(status.Coins, cs)
	}
	return status
}
