package engine

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// Game is a single room's rules engine. It is not safe for concurrent use;
// callers serialize access.
type Game struct {
	name      string
	createdBy string
	board     *BoardConfig
	colors    ColorAssigner
	dice      Dice

	players   []*Player
	status    Status
	turn      *Turn
	rollValue int
	movable   []int
	logs      []string
}

// NewGame creates an empty game waiting for players
func NewGame(name string, board *BoardConfig, colors ColorAssigner, dice Dice) (*Game, error) {
	if name == "" {
		return nil, errors.New("game name is required")
	}
	if board == nil {
		board = DefaultBoardConfig()
	}
	if err := ValidateBoardConfig(board); err != nil {
		return nil, err
	}
	if colors == nil {
		colors = NewColorPool()
	}
	if dice == nil {
		dice = NewRandomDice(0)
	}

	return &Game{
		name:   name,
		board:  board,
		colors: colors,
		dice:   dice,
		status: StatusWaiting,
		logs:   []string{},
	}, nil
}

// NewGameWithDefaults creates a game on the classic board with the canonical
// color pool. It returns nil for an empty name.
func NewGameWithDefaults(name string, dice Dice) *Game {
	g, _ := NewGame(name, nil, nil, dice)
	return g
}

// Name returns the room name
func (g *Game) Name() string {
	return g.name
}

// Board returns the board configuration
func (g *Game) Board() *BoardConfig {
	return g.board
}

// Status returns the lifecycle state
func (g *Game) Status() Status {
	return g.status
}

// Turn returns the turn tracker, or nil before the game starts
func (g *Game) Turn() *Turn {
	return g.turn
}

// AddPlayer seats a new player. It returns false for an empty or duplicate
// name, a full table, or a game already in progress. The fourth player starts
// the game.
func (g *Game) AddPlayer(name string) bool {
	if name == "" || g.DoesPlayerExist(name) {
		return false
	}
	if len(g.players) >= MaxPlayers || g.status == StatusInProgress {
		return false
	}

	color, ok := g.colors.Take()
	if !ok {
		return false
	}

	g.players = append(g.players, NewPlayer(name, color, g.board))
	if g.createdBy == "" {
		g.createdBy = name
	}

	if g.HasEnoughPlayers() {
		g.Start()
	}
	return true
}

// RemovePlayer unseats a player and returns their color to the pool. A game in
// progress stays in progress.
func (g *Game) RemovePlayer(name string) {
	idx := slices.IndexFunc(g.players, func(p *Player) bool { return p.Name == name })
	if idx < 0 {
		return
	}

	g.colors.Return(g.players[idx].Color)
	g.players = slices.Delete(g.players, idx, idx+1)

	if g.turn != nil {
		if g.turn.Current() == name {
			g.clearRoll()
		}
		g.turn.Remove(name)
	}
}

// OpenColors returns the colors a new player could still receive, in hand-out order
func (g *Game) OpenColors() []Color {
	return g.colors.Available()
}

// DoesPlayerExist reports whether name is seated
func (g *Game) DoesPlayerExist(name string) bool {
	return g.GetPlayer(name) != nil
}

// GetPlayer returns the seated player with the given name, or nil
func (g *Game) GetPlayer(name string) *Player {
	for _, p := range g.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// NoOfPlayers returns the number of seated players
func (g *Game) NoOfPlayers() int {
	return len(g.players)
}

// HasEnoughPlayers reports whether every seat is taken
func (g *Game) HasEnoughPlayers() bool {
	return len(g.players) == MaxPlayers
}

// NeededPlayers returns how many seats are still open
func (g *Game) NeededPlayers() int {
	return MaxPlayers - len(g.players)
}

// Details summarizes the room for lobby listings
func (g *Game) Details() GameDetails {
	return GameDetails{
		Name:      g.name,
		CreatedBy: g.createdBy,
		Remain:    g.NeededPlayers(),
	}
}

// PlayerNames returns seated player names in roster order
func (g *Game) PlayerNames() []string {
	names := make([]string, 0, len(g.players))
	for _, p := range g.players {
		names = append(names, p.Name)
	}
	return names
}

// ArrangePlayers reorders the roster by seat color (red, green, blue, yellow)
// and returns the resulting names. Ties keep join order.
func (g *Game) ArrangePlayers() []string {
	sort.SliceStable(g.players, func(i, j int) bool {
		return SeatIndex(g.players[i].Color) < SeatIndex(g.players[j].Color)
	})
	return g.PlayerNames()
}

// Start arranges the seating and hands the first turn out. It is a no-op once
// the game is running.
func (g *Game) Start() error {
	if g.turn != nil {
		return nil
	}
	if !g.HasEnoughPlayers() {
		return fmt.Errorf("%w: have %d, need %d", ErrNotEnoughPlayers, len(g.players), MaxPlayers)
	}

	g.turn = NewTurn(g.ArrangePlayers())
	g.status = StatusInProgress
	g.logf("Game started, %s to roll", g.turn.Current())
	return nil
}

// CurrentPlayerName returns the player on move, or "" before the game starts
func (g *Game) CurrentPlayerName() string {
	if g.turn == nil {
		return ""
	}
	return g.turn.Current()
}

// CurrentPlayer returns the player on move, or nil
func (g *Game) CurrentPlayer() *Player {
	return g.GetPlayer(g.CurrentPlayerName())
}

// checkTurn validates that playerName may act now
func (g *Game) checkTurn(playerName string) (*Player, error) {
	if g.turn == nil {
		return nil, ErrGameNotStarted
	}
	p := g.GetPlayer(playerName)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerName)
	}
	if g.turn.Current() != playerName {
		return nil, fmt.Errorf("%w: %s is on move", ErrNotYourTurn, g.turn.Current())
	}
	return p, nil
}

// RollDice rolls for the player on move. When no coin can use the roll the
// turn passes immediately; otherwise the roll is held until MoveCoin.
func (g *Game) RollDice(playerName string) (*RollResult, error) {
	p, err := g.checkTurn(playerName)
	if err != nil {
		return nil, err
	}
	if g.rollValue != 0 {
		return nil, fmt.Errorf("%w: pending roll of %d", ErrMoveExpected, g.rollValue)
	}

	roll := g.dice.Roll()
	if roll < DiceMin || roll > DiceMax {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRoll, roll)
	}

	movable := p.MovableCoins(roll)
	g.logf("%s rolled %s %d", p.Name, dieFace(roll), roll)

	if len(movable) == 0 {
		next := g.turn.Advance()
		g.logf("%s has no move, %s to roll", p.Name, next)
		return &RollResult{Move: roll, CurrentPlayer: next}, nil
	}

	g.rollValue = roll
	g.movable = movable
	return &RollResult{
		Move:          roll,
		Coins:         slices.Clone(movable),
		CurrentPlayer: p.Name,
	}, nil
}

// MoveCoin moves one of the current player's coins by the held roll. It always
// returns a result; on rejection Status is false and the error wraps the rule
// that was broken.
func (g *Game) MoveCoin(playerName string, coinID int) (*MoveResult, error) {
	reject := func(err error, message string) (*MoveResult, error) {
		return &MoveResult{Status: false, Message: message, CoinID: coinID}, err
	}

	p, err := g.checkTurn(playerName)
	switch {
	case errors.Is(err, ErrGameNotStarted):
		return reject(err, "Game has not started")
	case errors.Is(err, ErrUnknownPlayer):
		return reject(err, "Unknown player")
	case errors.Is(err, ErrNotYourTurn):
		return reject(err, "Not your turn")
	case err != nil:
		return reject(err, err.Error())
	}

	if g.rollValue == 0 {
		return reject(ErrRollExpected, "Roll the dice first")
	}
	if !slices.Contains(g.movable, coinID) {
		return reject(fmt.Errorf("%w: coin %d with roll %d", ErrCoinNotMovable, coinID, g.rollValue),
			fmt.Sprintf("Coin %d cannot be moved", coinID))
	}

	coin := p.Coin(coinID)
	from := coin.Position
	to, _ := p.track.NextPosition(from, g.rollValue)
	coin.Position = to

	result := &MoveResult{
		Status: true,
		CoinID: coinID,
		From:   from,
		To:     to,
	}

	if from == Base {
		g.logf("%s brought coin %d into play", p.Name, coinID)
	} else {
		g.logf("%s moved coin %d by %d", p.Name, coinID, g.rollValue)
	}

	if captured := g.capture(p, to); captured != nil {
		result.Captured = captured
		g.logf("%s captured %s's coin %d", p.Name, captured.Player, captured.CoinID)
	}

	if to == p.track.Destination() {
		result.Finished = true
		g.logf("%s's coin %d reached home", p.Name, coinID)
		if p.HasWon() {
			g.logf("%s has won", p.Name)
		}
	}

	g.clearRoll()
	g.turn.Advance()

	result.Message = fmt.Sprintf("Coin %d moved", coinID)
	result.Players = g.playerStatuses()
	return result, nil
}

// WouldCapture reports whether mover landing on to would send an opposing coin
// back to base. It does not change the game.
func (g *Game) WouldCapture(mover *Player, to Position) bool {
	_, coin, _ := g.loneOpponentAt(mover, to)
	return coin != nil
}

// loneOpponentAt finds the single opposing coin on mover's landing cell. Safe
// cells, home lanes and blocks of two or more coins yield nothing.
func (g *Game) loneOpponentAt(mover *Player, to Position) (*Player, *Coin, int) {
	cell, onRing := mover.track.Cell(to)
	if !onRing || mover.track.IsSafeCell(to) {
		return nil, nil, 0
	}

	var owner *Player
	var coin *Coin
	hits := 0
	for _, other := range g.players {
		if other == mover {
			continue
		}
		for _, c := range other.coins {
			if oc, ok := other.track.Cell(c.Position); ok && oc == cell {
				owner, coin = other, c
				hits++
			}
		}
	}

	if hits != 1 {
		return nil, nil, 0
	}
	return owner, coin, cell
}

// capture sends back the lone opposing coin sharing mover's landing cell
func (g *Game) capture(mover *Player, to Position) *Capture {
	owner, coin, cell := g.loneOpponentAt(mover, to)
	if coin == nil {
		return nil
	}
	coin.Position = Base
	return &Capture{Player: owner.Name, CoinID: coin.ID, Cell: cell}
}

func (g *Game) clearRoll() {
	g.rollValue = 0
	g.movable = nil
}

func (g *Game) playerStatuses() []PlayerStatus {
	out := make([]PlayerStatus, 0, len(g.players))
	for _, p := range g.players {
		out = append(out, p.Status())
	}
	return out
}

// GetGameStatus returns a snapshot of the table. Won reports whether the
// player on move has finished all coins.
func (g *Game) GetGameStatus() *GameStatus {
	status := &GameStatus{
		Name:    g.name,
		Status:  g.status,
		Players: g.playerStatuses(),
	}
	if cur := g.CurrentPlayer(); cur != nil {
		status.CurrentPlayerName = cur.Name
		status.Won = cur.HasWon()
		status.RollValue = g.rollValue
		status.MovableCoins = slices.Clone(g.movable)
	}
	return status
}

// GetLogs returns the activity log, oldest first
func (g *Game) GetLogs() []string {
	return slices.Clone(g.logs)
}

func (g *Game) logf(format string, args ...any) {
	g.logs = append(g.logs, fmt.Sprintf(format, args...))
}
