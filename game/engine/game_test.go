package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, dice Dice, players ...string) *Game {
	t.Helper()
	game, err := NewGame("newGame", DefaultBoardConfig(), NewColorPool(Red, Green, Blue, Yellow), dice)
	require.NoError(t, err)
	for _, name := range players {
		require.True(t, game.AddPlayer(name), "adding %s", name)
	}
	return game
}

func TestNewGame(t *testing.T) {
	t.Run("empty name rejected", func(t *testing.T) {
		_, err := NewGame("", nil, nil, nil)
		assert.Error(t, err)
	})

	t.Run("invalid board rejected", func(t *testing.T) {
		board := DefaultBoardConfig()
		board.RingSize = 3
		_, err := NewGame("g", board, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidBoard)
	})

	t.Run("defaults", func(t *testing.T) {
		game := NewGameWithDefaults("g", FixedDice(4))
		require.NotNil(t, game)
		assert.Equal(t, StatusWaiting, game.Status())
		assert.Nil(t, game.Turn())
		assert.Equal(t, "classic", game.Board().Name)
		assert.Empty(t, game.GetLogs())
	})
}

func TestGame_AddPlayer(t *testing.T) {
	t.Run("adds a new player", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4))
		assert.True(t, game.AddPlayer("manish"))
		assert.True(t, game.DoesPlayerExist("manish"))
	})

	t.Run("rejects duplicate without changing state", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4), "manish")
		assert.False(t, game.AddPlayer("manish"))
		assert.Equal(t, 1, game.NoOfPlayers())
		assert.Equal(t, Red, game.GetPlayer("manish").Color)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4))
		assert.False(t, game.AddPlayer(""))
	})

	t.Run("rejects fifth player", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4), "a", "b", "c", "d")
		assert.False(t, game.AddPlayer("e"))
		assert.False(t, game.DoesPlayerExist("e"))
	})

	t.Run("only the fourth join creates the turn", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4))
		for i, name := range []string{"lala", "manish", "kaka"} {
			require.True(t, game.AddPlayer(name))
			assert.Nil(t, game.Turn(), "turn after %d players", i+1)
		}
		require.True(t, game.AddPlayer("ram"))
		assert.NotNil(t, game.Turn())
		assert.Equal(t, StatusInProgress, game.Status())
	})

	t.Run("player gets color and four coins at base", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4), "lala")
		player := game.GetPlayer("lala")
		require.NotNil(t, player)
		assert.Equal(t, "lala", player.Name)
		assert.Equal(t, Red, player.Color)
		require.Len(t, player.Coins(), CoinsPerPlayer)
		for i, c := range player.Coins() {
			assert.Equal(t, i+1, c.ID)
			assert.Equal(t, Base, c.Position)
		}
	})
}

func TestGame_RemovePlayer(t *testing.T) {
	t.Run("removes and frees the color", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4), "manish")
		game.RemovePlayer("manish")
		assert.False(t, game.DoesPlayerExist("manish"))

		require.True(t, game.AddPlayer("joy"))
		// red went to the back of the pool
		assert.Equal(t, Green, game.GetPlayer("joy").Color)
	})

	t.Run("unknown player is a no-op", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4), "manish")
		game.RemovePlayer("nobody")
		assert.Equal(t, 1, game.NoOfPlayers())
	})

	t.Run("in progress keeps a valid turn", func(t *testing.T) {
		game := newTestGame(t, FixedDice(6), "salman", "lala", "lali", "lalu")
		_, err := game.RollDice("salman")
		require.NoError(t, err)

		game.RemovePlayer("salman")
		assert.Equal(t, StatusInProgress, game.Status())
		assert.Equal(t, "lala", game.CurrentPlayerName())
		assert.Zero(t, game.GetGameStatus().RollValue)

		roll, err := game.RollDice("lala")
		require.NoError(t, err)
		assert.Equal(t, 6, roll.Move)
	})

	t.Run("in progress rejects new joins", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4), "salman", "lala", "lali", "lalu")
		game.RemovePlayer("lalu")
		assert.False(t, game.AddPlayer("late"))
	})
}

func TestGame_NeededPlayers(t *testing.T) {
	game := newTestGame(t, FixedDice(4))
	assert.Equal(t, 4, game.NeededPlayers())
	assert.False(t, game.HasEnoughPlayers())

	for i, name := range []string{"ram", "lala", "shyam", "kaka"} {
		require.True(t, game.AddPlayer(name))
		assert.Equal(t, 4-(i+1), game.NeededPlayers())
	}
	assert.True(t, game.HasEnoughPlayers())
}

func TestGame_Details(t *testing.T) {
	game := newTestGame(t, FixedDice(4), "ram")
	assert.Equal(t, GameDetails{Name: "newGame", CreatedBy: "ram", Remain: 3}, game.Details())

	game.AddPlayer("ashish")
	assert.Equal(t, 2, game.NoOfPlayers())
	assert.Equal(t, "ram", game.Details().CreatedBy)
}

func TestGame_ArrangePlayers(t *testing.T) {
	t.Run("canonical color order keeps join order", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4), "lala", "kaka", "ram", "shyam")
		assert.Equal(t, []string{"lala", "kaka", "ram", "shyam"}, game.ArrangePlayers())
		assert.Equal(t, []string{"lala", "kaka", "ram", "shyam"}, game.Turn().Order())
	})

	t.Run("seating follows colors, not join order", func(t *testing.T) {
		game, err := NewGame("newGame", nil, NewColorPool(Red, Green, Yellow, Blue), FixedDice(4))
		require.NoError(t, err)
		for _, name := range []string{"lala", "kaka", "ram", "shyam"} {
			require.True(t, game.AddPlayer(name))
		}
		assert.Equal(t, []string{"lala", "kaka", "shyam", "ram"}, game.ArrangePlayers())
		assert.Equal(t, []string{"lala", "kaka", "shyam", "ram"}, game.Turn().Order())
	})
}

func TestGame_Start(t *testing.T) {
	t.Run("not enough players", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4), "lala")
		assert.ErrorIs(t, game.Start(), ErrNotEnoughPlayers)
		assert.Nil(t, game.Turn())
		assert.Equal(t, "", game.CurrentPlayerName())
	})

	t.Run("first seat rolls first", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4), "lala", "kaka", "ram", "shyam")
		require.NoError(t, game.Start())
		assert.Equal(t, "lala", game.CurrentPlayerName())
	})

	t.Run("start is idempotent", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4), "lala", "kaka", "ram", "shyam")
		turn := game.Turn()
		require.NoError(t, game.Start())
		assert.Same(t, turn, game.Turn())
	})
}

func TestGame_RollDice(t *testing.T) {
	t.Run("no movable coin passes the turn", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4), "salman", "lala", "lali", "lalu")
		require.NoError(t, game.Start())

		roll, err := game.RollDice("salman")
		require.NoError(t, err)
		assert.Equal(t, 4, roll.Move)
		assert.Nil(t, roll.Coins)
		assert.Equal(t, "lala", roll.CurrentPlayer)
		assert.Equal(t, "lala", game.CurrentPlayerName())
	})

	t.Run("six offers every base coin", func(t *testing.T) {
		game := newTestGame(t, FixedDice(6), "salman", "lala", "lali", "lalu")
		require.NoError(t, game.Start())

		roll, err := game.RollDice("salman")
		require.NoError(t, err)
		assert.Equal(t, 6, roll.Move)
		assert.Equal(t, []int{1, 2, 3, 4}, roll.Coins)
		assert.Equal(t, "salman", game.CurrentPlayerName())

		status := game.GetGameStatus()
		assert.Equal(t, 6, status.RollValue)
		assert.Equal(t, []int{1, 2, 3, 4}, status.MovableCoins)
	})

	t.Run("before start", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4), "salman")
		_, err := game.RollDice("salman")
		assert.ErrorIs(t, err, ErrGameNotStarted)
	})

	t.Run("wrong player", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4), "lala", "kaka", "ram", "shyam")
		_, err := game.RollDice("kaka")
		assert.ErrorIs(t, err, ErrNotYourTurn)
		assert.Equal(t, "lala", game.CurrentPlayerName())
	})

	t.Run("unknown player", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4), "lala", "kaka", "ram", "shyam")
		_, err := game.RollDice("ghost")
		assert.ErrorIs(t, err, ErrUnknownPlayer)
	})

	t.Run("second roll without a move", func(t *testing.T) {
		game := newTestGame(t, FixedDice(6), "lala", "kaka", "ram", "shyam")
		_, err := game.RollDice("lala")
		require.NoError(t, err)

		_, err = game.RollDice("lala")
		assert.ErrorIs(t, err, ErrMoveExpected)

		// still usable
		result, err := game.MoveCoin("lala", 1)
		require.NoError(t, err)
		assert.True(t, result.Status)
	})

	t.Run("invalid dice value", func(t *testing.T) {
		game := newTestGame(t, FixedDice(9), "lala", "kaka", "ram", "shyam")
		_, err := game.RollDice("lala")
		assert.ErrorIs(t, err, ErrInvalidRoll)
		assert.Equal(t, "lala", game.CurrentPlayerName())
	})

	t.Run("roll is logged with a die face", func(t *testing.T) {
		game := newTestGame(t, FixedDice(4), "lala", "kaka", "ram", "shyam")
		_, err := game.RollDice("lala")
		require.NoError(t, err)
		logs := game.GetLogs()
		assert.Contains(t, logs, "lala rolled ⚃ 4")
	})
}

func TestGame_MoveCoin(t *testing.T) {
	t.Run("enters a coin and passes the turn", func(t *testing.T) {
		game := newTestGame(t, FixedDice(6), "lala", "kaka", "ram", "shyam")
		_, err := game.RollDice("lala")
		require.NoError(t, err)

		result, err := game.MoveCoin("lala", 1)
		require.NoError(t, err)
		assert.True(t, result.Status)
		assert.Equal(t, Base, result.From)
		assert.Equal(t, Position(0), result.To)
		assert.Len(t, result.Players, 4)
		assert.Equal(t, "kaka", game.CurrentPlayerName())

		status := game.GetGameStatus()
		coin := status.Players[0].Coins[0]
		assert.Equal(t, Position(0), coin.Position)
		require.NotNil(t, coin.Cell)
		assert.Equal(t, 0, *coin.Cell)
		assert.Zero(t, status.RollValue)
	})

	t.Run("reported position matches the track", func(t *testing.T) {
		game := newTestGame(t, NewSequenceDice(6, 5), "lala", "kaka", "ram", "shyam")
		lala := game.GetPlayer("lala")
		lala.Coin(2).Position = 10
		lala.Coin(1).Position = 3

		_, err := game.RollDice("lala")
		require.NoError(t, err)
		_, err = game.MoveCoin("lala", 2)
		require.NoError(t, err)

		want, ok := lala.Track().NextPosition(10, 6)
		require.True(t, ok)
		assert.Equal(t, want, game.GetGameStatus().Players[0].Coins[1].Position)
	})

	t.Run("not your turn", func(t *testing.T) {
		game := newTestGame(t, FixedDice(6), "lala", "kaka", "ram", "shyam")
		_, err := game.RollDice("lala")
		require.NoError(t, err)

		result, err := game.MoveCoin("kaka", 6)
		assert.ErrorIs(t, err, ErrNotYourTurn)
		assert.False(t, result.Status)
		assert.Equal(t, "Not your turn", result.Message)
	})

	t.Run("coin not movable under held roll", func(t *testing.T) {
		game := newTestGame(t, NewSequenceDice(6, 4), "lala", "kaka", "ram", "shyam")
		_, err := game.RollDice("lala")
		require.NoError(t, err)
		_, err = game.MoveCoin("lala", 1)
		require.NoError(t, err)

		for _, name := range []string{"kaka", "ram", "shyam"} {
			roll, err := game.RollDice(name)
			require.NoError(t, err)
			assert.Nil(t, roll.Coins)
		}

		roll, err := game.RollDice("lala")
		require.NoError(t, err)
		assert.Equal(t, []int{1}, roll.Coins)

		result, err := game.MoveCoin("lala", 2)
		assert.ErrorIs(t, err, ErrCoinNotMovable)
		assert.False(t, result.Status)
		assert.Equal(t, "Coin 2 cannot be moved", result.Message)
		assert.Equal(t, "lala", game.CurrentPlayerName())
	})

	t.Run("move without a roll", func(t *testing.T) {
		game := newTestGame(t, FixedDice(6), "lala", "kaka", "ram", "shyam")
		result, err := game.MoveCoin("lala", 1)
		assert.ErrorIs(t, err, ErrRollExpected)
		assert.False(t, result.Status)
	})

	t.Run("before start", func(t *testing.T) {
		game := newTestGame(t, FixedDice(6), "lala")
		result, err := game.MoveCoin("lala", 1)
		assert.ErrorIs(t, err, ErrGameNotStarted)
		assert.False(t, result.Status)
	})

	t.Run("six does not grant another turn", func(t *testing.T) {
		game := newTestGame(t, FixedDice(6), "lala", "kaka", "ram", "shyam")
		_, err := game.RollDice("lala")
		require.NoError(t, err)
		_, err = game.MoveCoin("lala", 1)
		require.NoError(t, err)

		_, err = game.RollDice("lala")
		assert.ErrorIs(t, err, ErrNotYourTurn)
	})
}

func TestGame_Capture(t *testing.T) {
	setup := func(t *testing.T) (*Game, *Player, *Player) {
		game := newTestGame(t, FixedDice(6), "lala", "kaka", "ram", "shyam")
		return game, game.GetPlayer("lala"), game.GetPlayer("kaka")
	}

	t.Run("lone coin on an unsafe cell is captured", func(t *testing.T) {
		game, lala, kaka := setup(t)
		lala.Coin(1).Position = 12 // red cell 12
		kaka.Coin(1).Position = 5  // green cell 18

		_, err := game.RollDice("lala")
		require.NoError(t, err)
		result, err := game.MoveCoin("lala", 1)
		require.NoError(t, err)

		require.NotNil(t, result.Captured)
		assert.Equal(t, Capture{Player: "kaka", CoinID: 1, Cell: 18}, *result.Captured)
		assert.Equal(t, Base, kaka.Coin(1).Position)
		assert.Equal(t, Position(18), lala.Coin(1).Position)
		assert.Contains(t, game.GetLogs(), "lala captured kaka's coin 1")
	})

	t.Run("safe cell protects", func(t *testing.T) {
		game, lala, kaka := setup(t)
		lala.Coin(1).Position = 15 // red cell 15
		kaka.Coin(1).Position = 8  // green cell 21, safe

		_, err := game.RollDice("lala")
		require.NoError(t, err)
		result, err := game.MoveCoin("lala", 1)
		require.NoError(t, err)

		assert.Nil(t, result.Captured)
		assert.Equal(t, Position(8), kaka.Coin(1).Position)
		assert.Equal(t, Position(21), lala.Coin(1).Position)
	})

	t.Run("two opposing coins form a block", func(t *testing.T) {
		game, lala, kaka := setup(t)
		lala.Coin(1).Position = 12
		kaka.Coin(1).Position = 5
		kaka.Coin(2).Position = 5

		_, err := game.RollDice("lala")
		require.NoError(t, err)
		result, err := game.MoveCoin("lala", 1)
		require.NoError(t, err)

		assert.Nil(t, result.Captured)
		assert.Equal(t, Position(5), kaka.Coin(1).Position)
		assert.Equal(t, Position(5), kaka.Coin(2).Position)
	})

	t.Run("own coins are never captured", func(t *testing.T) {
		game, lala, _ := setup(t)
		lala.Coin(1).Position = 12
		lala.Coin(2).Position = 18

		_, err := game.RollDice("lala")
		require.NoError(t, err)
		result, err := game.MoveCoin("lala", 1)
		require.NoError(t, err)

		assert.Nil(t, result.Captured)
		assert.Equal(t, Position(18), lala.Coin(2).Position)
	})
}

func TestGame_WouldCapture(t *testing.T) {
	game := newTestGame(t, FixedDice(6), "lala", "kaka", "ram", "shyam")
	lala, kaka := game.GetPlayer("lala"), game.GetPlayer("kaka")
	kaka.Coin(1).Position = 5 // green cell 18
	kaka.Coin(2).Position = 8 // green cell 21, safe

	assert.True(t, game.WouldCapture(lala, 18))
	assert.False(t, game.WouldCapture(lala, 21), "safe cell")
	assert.False(t, game.WouldCapture(lala, 17), "empty cell")
	assert.False(t, game.WouldCapture(lala, 52), "home lane")
	assert.Equal(t, Position(5), kaka.Coin(1).Position, "query must not move coins")

	kaka.Coin(3).Position = 5
	assert.False(t, game.WouldCapture(lala, 18), "block")

	// the query agrees with what a move does
	kaka.Coin(3).Position = Base
	lala.Coin(1).Position = 12
	predicted := game.WouldCapture(lala, 18)
	_, err := game.RollDice("lala")
	require.NoError(t, err)
	result, err := game.MoveCoin("lala", 1)
	require.NoError(t, err)
	assert.Equal(t, predicted, result.Captured != nil)
}

func TestGame_Win(t *testing.T) {
	game := newTestGame(t, FixedDice(6), "lala", "kaka", "ram", "shyam")
	lala := game.GetPlayer("lala")
	dest := lala.Track().Destination()
	for _, id := range []int{1, 2, 3} {
		lala.Coin(id).Position = dest
	}
	lala.Coin(4).Position = dest - 6

	assert.False(t, game.GetGameStatus().Won)

	roll, err := game.RollDice("lala")
	require.NoError(t, err)
	assert.Equal(t, []int{4}, roll.Coins)

	result, err := game.MoveCoin("lala", 4)
	require.NoError(t, err)
	assert.True(t, result.Finished)
	assert.True(t, lala.HasWon())
	assert.Contains(t, game.GetLogs(), "lala has won")

	// the turn moved on, so the current player has not won
	status := game.GetGameStatus()
	assert.Equal(t, "kaka", status.CurrentPlayerName)
	assert.False(t, status.Won)
	assert.True(t, status.Players[0].Won)

	// play continues; a finished player has nothing to move
	for _, name := range []string{"kaka", "ram", "shyam"} {
		_, err := game.RollDice(name)
		require.NoError(t, err)
		_, err = game.MoveCoin(name, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, "lala", game.CurrentPlayerName())
	assert.True(t, game.GetGameStatus().Won)

	roll, err = game.RollDice("lala")
	require.NoError(t, err)
	assert.Nil(t, roll.Coins)
	assert.Equal(t, "kaka", game.CurrentPlayerName())
}

func TestGame_QueriesAreIdempotent(t *testing.T) {
	game := newTestGame(t, FixedDice(6), "lala", "kaka", "ram", "shyam")
	_, err := game.RollDice("lala")
	require.NoError(t, err)

	assert.Equal(t, game.GetGameStatus(), game.GetGameStatus())
	assert.Equal(t, game.GetLogs(), game.GetLogs())

	logs := game.GetLogs()
	logs[0] = "tampered"
	assert.NotEqual(t, "tampered", game.GetLogs()[0])
}

func TestGame_StatusBeforeStart(t *testing.T) {
	game := newTestGame(t, FixedDice(6), "lala", "kaka")
	status := game.GetGameStatus()
	assert.Equal(t, StatusWaiting, status.Status)
	assert.Equal(t, "", status.CurrentPlayerName)
	assert.False(t, status.Won)
	assert.Len(t, status.Players, 2)
}
