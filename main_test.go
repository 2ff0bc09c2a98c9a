package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/ludo/game/engine"
	"github.com/wricardo/mcp-training/ludo/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Ludo Server" {
		t.Errorf("Expected app name Ludo Server, got %s", AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	svc, err := initializeServices("configs", "")
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if svc.game == nil || svc.rooms == nil {
		t.Fatal("Expected services to be initialized")
	}

	boards, err := svc.game.ListBoards(context.Background())
	if err != nil {
		t.Fatalf("ListBoards failed: %v", err)
	}
	if len(boards) < 2 {
		t.Errorf("Expected at least 2 boards, got %d", len(boards))
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	if _, err := initializeServices("/non/existent/path", ""); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestInitializeServices_DefaultBoard(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	svc, err := initializeServices("configs", "quick")
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if got := svc.configs.GetDefault().Name; got != "quick" {
		t.Errorf("Expected quick as default board, got %s", got)
	}

	if _, err := initializeServices("configs", "missing"); err == nil {
		t.Error("Expected error for unknown default board")
	}
}

func TestCleanupInterval(t *testing.T) {
	if got := cleanupInterval(2 * time.Hour); got != 30*time.Minute {
		t.Errorf("Expected 30m, got %v", got)
	}
	if got := cleanupInterval(time.Minute); got != time.Minute {
		t.Errorf("Expected interval to floor at 1m, got %v", got)
	}
}

func TestSimulateGameProducesWinner(t *testing.T) {
	for _, strategy := range []string{StrategyFirst, StrategyRandom, StrategyGreedy} {
		t.Run(strategy, func(t *testing.T) {
			choose, err := chooserFor(strategy, 7)
			if err != nil {
				t.Fatalf("chooserFor failed: %v", err)
			}

			result, game, err := simulateGame(engine.DefaultBoardConfig(), 7, choose, 20000)
			if err != nil {
				t.Fatalf("simulateGame failed: %v", err)
			}
			if !result.Finished {
				t.Fatalf("Expected a winner, game stopped after %d rolls", result.Turns)
			}
			winner := game.GetPlayer(result.Winner)
			if winner == nil || !winner.HasWon() {
				t.Errorf("Reported winner %q has not finished all coins", result.Winner)
			}
			if winner.Color != result.Color {
				t.Errorf("Expected color %s, got %s", winner.Color, result.Color)
			}
		})
	}
}

func TestSimulateGameIsReproducible(t *testing.T) {
	first, _, err := simulateGame(engine.DefaultBoardConfig(), 42, greedyChoice, 20000)
	if err != nil {
		t.Fatalf("simulateGame failed: %v", err)
	}
	second, _, err := simulateGame(engine.DefaultBoardConfig(), 42, greedyChoice, 20000)
	if err != nil {
		t.Fatalf("simulateGame failed: %v", err)
	}

	if first.Winner != second.Winner || first.Turns != second.Turns || first.Captures != second.Captures {
		t.Errorf("Same seed gave different games: %+v vs %+v", first, second)
	}
}

func TestSimulateGameStopsAtMaxTurns(t *testing.T) {
	result, _, err := simulateGame(engine.DefaultBoardConfig(), 3, greedyChoice, 5)
	if err != nil {
		t.Fatalf("simulateGame failed: %v", err)
	}
	if result.Finished || result.Turns != 5 {
		t.Errorf("Expected unfinished game after 5 rolls, got %+v", result)
	}
}

func TestChooserForUnknownStrategy(t *testing.T) {
	if _, err := chooserFor("cautious", 1); err == nil {
		t.Error("Expected error for unknown strategy")
	}
}

func TestRunSimulations(t *testing.T) {
	var out bytes.Buffer
	results, err := runSimulations(&out, engine.DefaultBoardConfig(), simulationOptions{
		games:    3,
		seed:     10,
		strategy: StrategyGreedy,
		maxTurns: 20000,
	})
	if err != nil {
		t.Fatalf("runSimulations failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Game != i+1 || r.Seed != uint64(10+i) {
			t.Errorf("Unexpected numbering for result %d: %+v", i, r)
		}
	}

	printSimulationSummary(&out, results)
	if !strings.Contains(out.String(), "Summary: 3/3 games finished") {
		t.Errorf("Unexpected summary:\n%s", out.String())
	}

	if _, err := runSimulations(&out, engine.DefaultBoardConfig(), simulationOptions{games: 0, maxTurns: 1}); err == nil {
		t.Error("Expected error for zero games")
	}
}

func TestValidateRepositoryBoards(t *testing.T) {
	files, err := boardFiles("configs")
	if err != nil {
		t.Fatalf("boardFiles failed: %v", err)
	}

	for _, file := range files {
		result := validateBoardFile(file)
		if !result.Valid {
			t.Errorf("Board %s should be valid: %v", file, result.Errors)
		}
		if len(result.Warnings) > 0 {
			t.Errorf("Board %s has warnings: %v", file, result.Warnings)
		}
	}
}

func TestValidateBoardFileInvalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"name":"bad","ring_size":4}`), 0644); err != nil {
		t.Fatal(err)
	}

	result := validateBoardFile(bad)
	if result.Valid || len(result.Errors) == 0 {
		t.Errorf("Expected invalid result, got %+v", result)
	}

	missing := validateBoardFile(filepath.Join(dir, "missing.json"))
	if missing.Valid {
		t.Error("Expected missing file to be invalid")
	}

	var out bytes.Buffer
	if err := printValidationResults(&out, []ValidationResult{result, missing}); err == nil {
		t.Error("Expected error when files are invalid")
	}
	if !strings.Contains(out.String(), "❌") {
		t.Errorf("Expected invalid marker in output:\n%s", out.String())
	}
}

func TestValidateBoardFileWarnings(t *testing.T) {
	board := engine.DefaultBoardConfig()
	board.SafeCells = []int{8, 8}
	board.RingSize = 54

	data, err := json.Marshal(board)
	if err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(t.TempDir(), "odd.json")
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatal(err)
	}

	result := validateBoardFile(file)
	if !result.Valid {
		t.Fatalf("Expected valid board, got errors %v", result.Errors)
	}
	// four unsafe start cells, one duplicate and the uneven ring
	if len(result.Warnings) != 6 {
		t.Errorf("Expected 6 warnings, got %d: %v", len(result.Warnings), result.Warnings)
	}
}

func TestValidateCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.Writer = &out

	if err := cmd.Run(context.Background(), []string{"ludo", "--config-dir", "configs", "validate"}); err != nil {
		t.Fatalf("validate command failed: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "0 invalid") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}
}

func TestSimulateCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.Writer = &out

	args := []string{"ludo", "--config-dir", "configs", "simulate", "--games", "2", "--board", "quick", "--max-turns", "20000"}
	if err := cmd.Run(context.Background(), args); err != nil {
		t.Fatalf("simulate command failed: %v", err)
	}
	if !strings.Contains(out.String(), "Summary: 2/2 games finished") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}
}

func TestMCPHandler(t *testing.T) {
	handler := newMCPHandler(mcp.NewClient("http://127.0.0.1:0"))

	initialize := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`
	newRequest := func(body, sessionID string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json, text/event-stream")
		if sessionID != "" {
			req.Header.Set("Mcp-Session-Id", sessionID)
		}
		return req
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequest(initialize, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	first := rec.Header().Get("Mcp-Session-Id")
	if first == "" {
		t.Fatal("Expected a session id on initialize")
	}

	var response map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if response["jsonrpc"] != "2.0" || response["result"] == nil {
		t.Errorf("Unexpected response: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequest(initialize, ""))
	if second := rec.Header().Get("Mcp-Session-Id"); second == "" || second == first {
		t.Errorf("Expected a fresh session per initialize, got %q and %q", first, second)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequest(`{"jsonrpc":"2.0","id":2,"method":"ping"}`, first))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for ping in session, got %d", rec.Code)
	}
}
