package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultBoardConfig returns the classic 52-cell board. Start cells are 13
// apart in seat order; each start cell and the cell eight steps past it are safe.
func DefaultBoardConfig() *BoardConfig {
	return &BoardConfig{
		Name:        "classic",
		Description: "Classic 52-cell ring with six-cell home lanes",
		RingSize:    DefaultRingSize,
		LaneLength:  DefaultLaneSize,
		EntryRoll:   6,
		StartCells: map[Color]int{
			Red:    0,
			Green:  13,
			Blue:   26,
			Yellow: 39,
		},
		SafeCells: []int{0, 8, 13, 21, 26, 34, 39, 47},
	}
}

// ValidateBoardConfig checks that a board is playable by four seats
func ValidateBoardConfig(config *BoardConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidBoard)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidBoard)
	}
	if config.RingSize < MaxPlayers*2 {
		return fmt.Errorf("%w: ring_size must be at least %d, got %d", ErrInvalidBoard, MaxPlayers*2, config.RingSize)
	}
	if config.LaneLength < 1 {
		return fmt.Errorf("%w: lane_length must be positive, got %d", ErrInvalidBoard, config.LaneLength)
	}
	if config.EntryRoll < DiceMin || config.EntryRoll > DiceMax {
		return fmt.Errorf("%w: entry_roll must be between %d and %d, got %d", ErrInvalidBoard, DiceMin, DiceMax, config.EntryRoll)
	}

	seen := make(map[int]Color, len(SeatOrder))
	for _, color := range SeatOrder {
		cell, ok := config.StartCells[color]
		if !ok {
			return fmt.Errorf("%w: start_cells is missing %s", ErrInvalidBoard, color)
		}
		if cell < 0 || cell >= config.RingSize {
			return fmt.Errorf("%w: start cell %d for %s is outside the ring", ErrInvalidBoard, cell, color)
		}
		if other, dup := seen[cell]; dup {
			return fmt.Errorf("%w: %s and %s share start cell %d", ErrInvalidBoard, other, color, cell)
		}
		seen[cell] = color
	}
	if len(config.StartCells) != len(SeatOrder) {
		return fmt.Errorf("%w: start_cells must name exactly the four seat colors", ErrInvalidBoard)
	}

	for _, cell := range config.SafeCells {
		if cell < 0 || cell >= config.RingSize {
			return fmt.Errorf("%w: safe cell %d is outside the ring", ErrInvalidBoard, cell)
		}
	}

	return nil
}

// LoadBoardConfig reads and validates a board configuration file
func LoadBoardConfig(path string) (*BoardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config BoardConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse board config '%s': %w", path, err)
	}

	if err := ValidateBoardConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
