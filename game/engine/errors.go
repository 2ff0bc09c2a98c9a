package engine

import "errors"

// Rule violations reported by Game. None of them leave the game unusable.
var (
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrGameNotStarted   = errors.New("game has not started")
	ErrUnknownPlayer    = errors.New("player is not in this game")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrMoveExpected     = errors.New("a coin must be moved before rolling again")
	ErrRollExpected     = errors.New("roll the dice first")
	ErrCoinNotMovable   = errors.New("coin cannot be moved")
	ErrInvalidRoll      = errors.New("dice produced an invalid value")
	ErrInvalidBoard     = errors.New("invalid board configuration")
)
