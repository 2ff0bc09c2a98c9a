package engine

// Color identifies a player's seat and coin color
type Color string

const (
	Red    Color = "red"
	Green  Color = "green"
	Blue   Color = "blue"
	Yellow Color = "yellow"

	// Table constants
	MaxPlayers      = 4
	CoinsPerPlayer  = 4
	DiceMin         = 1
	DiceMax         = 6
	DefaultRingSize = 52
	DefaultLaneSize = 6
)

// SeatOrder is the canonical clockwise seating of the four colors.
// Arranged turn order follows it.
var SeatOrder = []Color{Red, Green, Blue, Yellow}

// SeatIndex returns the color's position in SeatOrder, or -1 if unknown
func SeatIndex(c Color) int {
	for i, seat := range SeatOrder {
		if seat == c {
			return i
		}
	}
	return -1
}

// Status represents the lifecycle state of a game
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
)

// Position is a coin's progress along its owner's track.
// Base is off the board; 0 is the color's start cell on the shared ring.
type Position int

// Base is the position of a coin that has not entered play
const Base Position = -1

// BoardConfig describes track geometry and the few rule constants that vary
// between boards. It is loaded from JSON by the config manager.
type BoardConfig struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	RingSize    int           `json:"ring_size"`
	LaneLength  int           `json:"lane_length"`
	EntryRoll   int           `json:"entry_roll"`
	StartCells  map[Color]int `json:"start_cells"`
	SafeCells   []int         `json:"safe_cells"`
}

// CoinStatus is a read-only view of a coin
type CoinStatus struct {
	ID            int      `json:"id"`
	Position      Position `json:"position"`
	Cell          *int     `json:"cell,omitempty"` // absolute ring cell, nil off the ring
	AtBase        bool     `json:"at_base"`
	InHomeLane    bool     `json:"in_home_lane"`
	AtDestination bool     `json:"at_destination"`
}

// PlayerStatus is a read-only view of a player
type PlayerStatus struct {
	Name  string       `json:"name"`
	Color Color        `json:"color"`
	Won   bool         `json:"won"`
	Coins []CoinStatus `json:"coins"`
}

// GameStatus is the snapshot returned to pollers and pushed over websockets
type GameStatus struct {
	Name              string         `json:"name"`
	Status            Status         `json:"status"`
	CurrentPlayerName string         `json:"currentPlayerName"`
	Players           []PlayerStatus `json:"players"`
	Won               bool           `json:"won"`
	RollValue         int            `json:"rollValue,omitempty"`
	MovableCoins      []int          `json:"movableCoins,omitempty"`
}

// GameDetails summarizes a room for the lobby listing
type GameDetails struct {
	Name      string `json:"name"`
	CreatedBy string `json:"createdBy"`
	Remain    int    `json:"remain"`
}

// RollResult is the outcome of a dice roll
type RollResult struct {
	Move          int    `json:"move"`
	Coins         []int  `json:"coins,omitempty"`
	CurrentPlayer string `json:"currentPlayer"`
}

// Capture records a coin sent back to base
type Capture struct {
	Player string `json:"player"`
	CoinID int    `json:"coinId"`
	Cell   int    `json:"cell"`
}

// MoveResult is the outcome of a coin move. Status is false when the move was
// rejected; Message then says why.
type MoveResult struct {
	Status   bool           `json:"status"`
	Message  string         `json:"message,omitempty"`
	CoinID   int            `json:"coinId,omitempty"`
	From     Position       `json:"from"`
	To       Position       `json:"to"`
	Captured *Capture       `json:"captured,omitempty"`
	Finished bool           `json:"finished,omitempty"`
	Players  []PlayerStatus `json:"players,omitempty"`
}
