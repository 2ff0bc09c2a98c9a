package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/ludo/game/engine"
)

// ValidationResult holds the outcome of checking one board file
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate board configurations",
		ArgsUsage: "[file.json ...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = boardFiles(cmd.String("config-dir"))
				if err != nil {
					return err
				}
			}

			results := make([]ValidationResult, 0, len(files))
			for _, file := range files {
				results = append(results, validateBoardFile(file))
			}
			return printValidationResults(cmd.Root().Writer, results)
		},
	}
}

// boardFiles lists the JSON files in dir, sorted
func boardFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("error finding board files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no board files found in %s", dir)
	}
	slices.Sort(files)
	return files, nil
}

// validateBoardFile loads a board and checks it for playability. Warnings flag
// boards that load but play oddly.
func validateBoardFile(filename string) ValidationResult {
	result := ValidationResult{File: filename, Valid: true}

	if _, err := os.Stat(filename); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read file: %v", err))
		return result
	}

	board, err := engine.LoadBoardConfig(filename)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	for _, color := range engine.SeatOrder {
		if !slices.Contains(board.SafeCells, board.StartCells[color]) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("start cell %d for %s is not a safe cell", board.StartCells[color], color))
		}
	}

	seen := make(map[int]bool, len(board.SafeCells))
	for _, cell := range board.SafeCells {
		if seen[cell] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("safe cell %d listed twice", cell))
		}
		seen[cell] = true
	}

	if board.RingSize%engine.MaxPlayers != 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("ring_size %d does not split evenly between %d seats", board.RingSize, engine.MaxPlayers))
	}

	return result
}

// printValidationResults prints one block per file and a summary. It returns
// an error when any file is invalid.
func printValidationResults(out io.Writer, results []ValidationResult) error {
	invalid := 0
	for _, result := range results {
		if result.Valid {
			fmt.Fprintf(out, "✅ %s: VALID\n", result.File)
		} else {
			invalid++
			fmt.Fprintf(out, "❌ %s: INVALID\n", result.File)
		}
		for _, e := range result.Errors {
			fmt.Fprintf(out, "   - %s\n", e)
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "   ⚠️  %s\n", w)
		}
	}

	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintf(out, "Summary: %d valid, %d invalid out of %d files\n", len(results)-invalid, invalid, len(results))

	if invalid > 0 {
		return fmt.Errorf("%d invalid board files", invalid)
	}
	return nil
}
