package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/ludo/game/config"
	"github.com/wricardo/mcp-training/ludo/game/engine"
)

// Bot strategies understood by the simulate command
const (
	StrategyFirst  = "first"
	StrategyRandom = "random"
	StrategyGreedy = "greedy"
)

var botNames = []string{"ann", "ben", "cy", "dee"}

// SimulationResult summarizes one headless game
type SimulationResult struct {
	Game     int
	Seed     uint64
	Winner   string
	Color    engine.Color
	Turns    int
	Captures int
	Finished bool
}

// coinChooser picks one of the movable coins for the player on move
type coinChooser func(g *engine.Game, p *engine.Player, roll int, movable []int) int

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Play seeded bot games and report winners",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "games",
				Value: 10,
				Usage: "Number of games to play",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Value: 1,
				Usage: "Seed for the first game; game i uses seed+i",
			},
			&cli.StringFlag{
				Name:  "board",
				Value: "classic",
				Usage: "Board configuration ID from the config directory",
			},
			&cli.StringFlag{
				Name:  "strategy",
				Value: StrategyGreedy,
				Usage: "Bot strategy: first, random or greedy",
			},
			&cli.IntFlag{
				Name:  "max-turns",
				Value: 5000,
				Usage: "Abandon a game after this many rolls",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Print every game's activity log",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			configManager, err := config.NewManager(cmd.String("config-dir"))
			if err != nil {
				return fmt.Errorf("failed to create config manager: %w", err)
			}
			board, err := configManager.LoadConfig(cmd.String("board"))
			if err != nil {
				return err
			}

			results, err := runSimulations(cmd.Root().Writer, board, simulationOptions{
				games:    int(cmd.Int("games")),
				seed:     cmd.Uint64("seed"),
				strategy: cmd.String("strategy"),
				maxTurns: int(cmd.Int("max-turns")),
				verbose:  cmd.Bool("verbose"),
			})
			if err != nil {
				return err
			}
			printSimulationSummary(cmd.Root().Writer, results)
			return nil
		},
	}
}

type simulationOptions struct {
	games    int
	seed     uint64
	strategy string
	maxTurns int
	verbose  bool
}

func chooserFor(strategy string, seed uint64) (coinChooser, error) {
	switch strategy {
	case StrategyFirst:
		return func(_ *engine.Game, _ *engine.Player, _ int, movable []int) int {
			return movable[0]
		}, nil
	case StrategyRandom:
		rng := rand.New(rand.NewPCG(seed, seed+1))
		return func(_ *engine.Game, _ *engine.Player, _ int, movable []int) int {
			return movable[rng.IntN(len(movable))]
		}, nil
	case StrategyGreedy:
		return greedyChoice, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want first, random or greedy)", strategy)
	}
}

// greedyChoice prefers finishing a coin, then a capture, then leaving base,
// then the most advanced coin
func greedyChoice(g *engine.Game, p *engine.Player, roll int, movable []int) int {
	best, bestScore := movable[0], -1
	for _, id := range movable {
		from := p.Coin(id).Position
		to, _ := p.Track().NextPosition(from, roll)

		score := int(to)
		switch {
		case to == p.Track().Destination():
			score += 3000
		case g.WouldCapture(p, to):
			score += 2000
		case from == engine.Base:
			score += 1000
		}
		if score > bestScore {
			best, bestScore = id, score
		}
	}
	return best
}

// simulateGame plays one four-bot game to its first winner or maxTurns rolls
func simulateGame(board *engine.BoardConfig, seed uint64, choose coinChooser, maxTurns int) (*SimulationResult, *engine.Game, error) {
	game, err := engine.NewGame(fmt.Sprintf("sim-%d", seed), board, nil, engine.NewRandomDice(seed))
	if err != nil {
		return nil, nil, err
	}
	for _, name := range botNames {
		game.AddPlayer(name)
	}
	if err := game.Start(); err != nil {
		return nil, game, err
	}

	result := &SimulationResult{Seed: seed}
	for result.Turns < maxTurns {
		name := game.CurrentPlayerName()
		roll, err := game.RollDice(name)
		if err != nil {
			return nil, game, fmt.Errorf("turn %d: %w", result.Turns, err)
		}
		result.Turns++

		if len(roll.Coins) == 0 {
			continue
		}

		player := game.GetPlayer(name)
		moved, err := game.MoveCoin(name, choose(game, player, roll.Move, roll.Coins))
		if err != nil {
			return nil, game, fmt.Errorf("turn %d: %w", result.Turns, err)
		}
		if moved.Captured != nil {
			result.Captures++
		}
		if player.HasWon() {
			result.Winner = player.Name
			result.Color = player.Color
			result.Finished = true
			return result, game, nil
		}
	}
	return result, game, nil
}

func runSimulations(out io.Writer, board *engine.BoardConfig, opts simulationOptions) ([]*SimulationResult, error) {
	if opts.games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", opts.games)
	}
	if opts.maxTurns <= 0 {
		return nil, fmt.Errorf("max-turns must be positive, got %d", opts.maxTurns)
	}

	fmt.Fprintf(out, "🎲 Simulating %d games on %s (%s bots)\n", opts.games, board.Name, opts.strategy)
	fmt.Fprintln(out, strings.Repeat("-", 50))

	results := make([]*SimulationResult, 0, opts.games)
	for i := 0; i < opts.games; i++ {
		seed := opts.seed + uint64(i)
		choose, err := chooserFor(opts.strategy, seed)
		if err != nil {
			return nil, err
		}

		result, game, err := simulateGame(board, seed, choose, opts.maxTurns)
		if err != nil {
			return nil, fmt.Errorf("game %d (seed %d): %w", i+1, seed, err)
		}
		result.Game = i + 1
		results = append(results, result)

		if result.Finished {
			fmt.Fprintf(out, "Game %3d (seed %d): %s (%s) won after %d rolls, %d captures\n",
				result.Game, seed, result.Winner, result.Color, result.Turns, result.Captures)
		} else {
			fmt.Fprintf(out, "Game %3d (seed %d): no winner after %d rolls\n", result.Game, seed, result.Turns)
		}
		if opts.verbose {
			for _, line := range game.GetLogs() {
				fmt.Fprintf(out, "    %s\n", line)
			}
		}
	}
	return results, nil
}

func printSimulationSummary(out io.Writer, results []*SimulationResult) {
	wins := make(map[engine.Color]int)
	totalTurns, finished := 0, 0
	for _, r := range results {
		if !r.Finished {
			continue
		}
		finished++
		wins[r.Color]++
		totalTurns += r.Turns
	}

	fmt.Fprintln(out, strings.Repeat("-", 50))
	fmt.Fprintf(out, "📊 Summary: %d/%d games finished\n", finished, len(results))
	for _, color := range engine.SeatOrder {
		fmt.Fprintf(out, "  %-7s %d wins\n", color, wins[color])
	}
	if finished > 0 {
		fmt.Fprintf(out, "  Average game length: %.1f rolls\n", float64(totalTurns)/float64(finished))
	}
}
