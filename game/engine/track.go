package engine

// Track is one color's path: from its start cell once around the shared ring,
// then up its private home lane to the destination. It is read-only.
type Track struct {
	color      Color
	start      int
	ringSize   int
	laneLength int
	entryRoll  int
	safe       map[int]bool
}

// NewTrack builds the path for color on the given board
func NewTrack(board *BoardConfig, color Color) *Track {
	if board == nil {
		board = DefaultBoardConfig()
	}
	safe := make(map[int]bool, len(board.SafeCells))
	for _, cell := range board.SafeCells {
		safe[cell] = true
	}
	return &Track{
		color:      color,
		start:      board.StartCells[color],
		ringSize:   board.RingSize,
		laneLength: board.LaneLength,
		entryRoll:  board.EntryRoll,
		safe:       safe,
	}
}

// Color returns the color this track belongs to
func (t *Track) Color() Color {
	return t.color
}

// Start returns the absolute ring cell where coins enter play
func (t *Track) Start() int {
	return t.start
}

// lastRing is the final progress value still on the shared ring. A coin
// covers every ring cell but the one just behind its start.
func (t *Track) lastRing() Position {
	return Position(t.ringSize - 2)
}

// Destination returns the final position of the home lane
func (t *Track) Destination() Position {
	return t.lastRing() + Position(t.laneLength)
}

// CanLeaveBase reports whether roll lets a coin enter play
func (t *Track) CanLeaveBase(roll int) bool {
	return roll == t.entryRoll
}

// NextPosition returns where a coin at pos lands after roll. The bool is false
// when the move is illegal: leaving base without the entry roll, overshooting
// the destination, or moving a coin that already finished.
func (t *Track) NextPosition(pos Position, roll int) (Position, bool) {
	if roll < DiceMin || roll > DiceMax {
		return pos, false
	}
	if pos == Base {
		if t.CanLeaveBase(roll) {
			return 0, true
		}
		return Base, false
	}
	dest := t.Destination()
	if pos < 0 || pos >= dest {
		return pos, false
	}
	next := pos + Position(roll)
	if next > dest {
		return pos, false
	}
	return next, true
}

// Cell maps a position to its absolute ring cell. It returns false for base,
// home lane and destination positions.
func (t *Track) Cell(pos Position) (int, bool) {
	if pos < 0 || pos > t.lastRing() {
		return 0, false
	}
	return (t.start + int(pos)) % t.ringSize, true
}

// InHomeLane reports whether pos is on the private lane but not finished
func (t *Track) InHomeLane(pos Position) bool {
	return pos > t.lastRing() && pos < t.Destination()
}

// IsSafeCell reports whether a coin at pos is immune to capture. Home lane
// cells are private and always safe.
func (t *Track) IsSafeCell(pos Position) bool {
	if pos == Base {
		return false
	}
	cell, onRing := t.Cell(pos)
	if !onRing {
		return true
	}
	return t.safe[cell]
}
