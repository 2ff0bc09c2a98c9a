package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/ludo/game/engine"
	"github.com/wricardo/mcp-training/ludo/game/service"
)

// ErrNotSeated is returned when a gated endpoint redirects to the lobby
var ErrNotSeated = errors.New("not seated in a game; use create_game or join_game first")

// seatIdleTimeout drops the cookies of MCP sessions that stopped calling
const seatIdleTimeout = 6 * time.Hour

// seat is the cookie jar of one MCP session, i.e. one seated player
type seat struct {
	httpClient *http.Client
	lastUsed   time.Time
}

// Client is a thin MCP client that proxies to the HTTP API. Every MCP session
// gets its own cookie jar, so each connected agent plays its own seat.
type Client struct {
	baseURL   string
	mcpServer *server.MCPServer

	mu    sync.Mutex
	seats map[string]*seat
}

// NewClient creates a new MCP client that calls the HTTP API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		seats:   make(map[string]*seat),
	}

	c.initMCPServer()
	return c
}

func newSeatHTTPClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Timeout: 10 * time.Second,
		Jar:     jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// sessionID names the MCP session behind ctx. Calls made outside any
// session share the empty id.
func sessionID(ctx context.Context) string {
	if session := server.ClientSessionFromContext(ctx); session != nil {
		return session.SessionID()
	}
	return ""
}

// httpClientFor returns the HTTP client holding the cookies of ctx's session
func (c *Client) httpClientFor(ctx context.Context) *http.Client {
	id := sessionID(ctx)
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, s := range c.seats {
		if key != id && now.Sub(s.lastUsed) > seatIdleTimeout {
			delete(c.seats, key)
		}
	}

	s, ok := c.seats[id]
	if !ok {
		s = &seat{httpClient: newSeatHTTPClient()}
		c.seats[id] = s
	}
	s.lastUsed = now
	return s.httpClient
}

func (c *Client) forgetSession(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.seats, id)
}

// SeatCount returns the number of sessions currently holding cookies
func (c *Client) SeatCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seats)
}

func (c *Client) initMCPServer() {
	hooks := &server.Hooks{}
	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		c.forgetSession(session.SessionID())
	})

	c.mcpServer = server.NewMCPServer(
		"Ludo",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithHooks(hooks),
		server.WithInstructions(`Ludo - MCP Interface

This is a thin client that proxies all requests to the Ludo HTTP server. You
play as one seat: create or join a room first, then wait for four players.

GAME OBJECTIVE:
Bring all four of your coins from base, around the shared ring and up your
home lane to the destination before the other three players.

AVAILABLE TOOLS:
- list_games: Rooms that still have open seats
- list_boards: Available board layouts
- create_game: Open a room and take the first seat
- join_game: Take a seat in an existing room
- waiting_status: Who is seated while the room fills up
- game_status: Full table snapshot (whose turn, coin positions)
- roll_dice: Roll when it is your turn
- move_coin: Move one of the coins the roll allowed
- game_logs: Recent table activity
- leave_game: Give up your seat
- game_rules: The rules of the game`),
	)

	c.registerTools()
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func (c *Client) registerTools() {
	// Lobby
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List rooms that still have open seats",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"all": map[string]interface{}{
					"type":        "boolean",
					"description": "Include full and running rooms",
				},
			},
		},
	}, c.handleListGames)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_boards",
		Description: "List available board configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListBoards)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_game",
		Description: "Create a new room and take the first seat",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_name":   stringProp("Unique room name"),
				"player_name": stringProp("Your player name"),
				"board":       stringProp("Board config id from list_boards (optional)"),
			},
			Required: []string{"game_name", "player_name"},
		},
	}, c.handleCreateGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_game",
		Description: "Join an existing room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_name":   stringProp("Room to join"),
				"player_name": stringProp("Your player name, unique in the room"),
			},
			Required: []string{"game_name", "player_name"},
		},
	}, c.handleJoinGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "waiting_status",
		Description: "Show who is seated while the room fills up",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleWaitingStatus)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "leave_game",
		Description: "Give up your seat in the current room",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleLeaveGame)

	// Play
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_status",
		Description: "Get the table: whose turn it is and where every coin is",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameStatus)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "roll_dice",
		Description: "Roll the die. Only the player on move may roll.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleRollDice)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_coin",
		Description: "Move one of your coins by the value you rolled",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"coin_id": map[string]interface{}{
					"type":        "integer",
					"minimum":     1,
					"maximum":     engine.CoinsPerPlayer,
					"description": "Coin to move (1-4), one of the ids returned by roll_dice",
				},
			},
			Required: []string{"coin_id"},
		},
	}, c.handleMoveCoin)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_logs",
		Description: "Show recent table activity",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Number of most recent entries (default 20)",
				},
			},
		},
	}, c.handleGameLogs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the rules of the game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// HTTPHandler serves the tools over streamable HTTP. The handler issues an
// Mcp-Session-Id on initialize, and that id selects the caller's seat.
func (c *Client) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(c.mcpServer)
}

// apiCall sends body as JSON and decodes a JSON response into result. Error
// responses carry either an "error" or a "message" field.
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClientFor(ctx).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusFound {
		return ErrNotSeated
	}

	if resp.StatusCode >= 400 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		for _, key := range []string{"error", "message"} {
			if msg, ok := errResp[key].(string); ok && msg != "" {
				return fmt.Errorf("%s", msg)
			}
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// Tool handlers

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/games"
	if all, _ := arguments(request)["all"].(bool); all {
		path += "?all=true"
	}

	var games []engine.GameDetails
	if err := c.apiCall(ctx, "GET", path, nil, &games); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(games) == 0 {
		return mcp.NewToolResultText("No rooms with open seats. Use create_game to open one."), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Rooms (%d):\n\n", len(games))
	for _, g := range games {
		fmt.Fprintf(&result, "- %s (created by %s, %d seats open)\n", g.Name, g.CreatedBy, g.Remain)
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleListBoards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var boards []service.BoardInfo
	if err := c.apiCall(ctx, "GET", "/api/boards", nil, &boards); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Boards (%d):\n\n", len(boards))
	for _, b := range boards {
		fmt.Fprintf(&result, "- %s: ring %d, home lane %d, enter on %d", b.ConfigID, b.RingSize, b.LaneLength, b.EntryRoll)
		if b.Description != "" {
			fmt.Fprintf(&result, " (%s)", b.Description)
		}
		result.WriteString("\n")
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleCreateGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameName, _ := args["game_name"].(string)
	playerName, _ := args["player_name"].(string)
	board, _ := args["board"].(string)

	body := map[string]string{
		"gameName":   gameName,
		"playerName": playerName,
	}
	if board != "" {
		body["board"] = board
	}

	var response struct {
		GameCreated bool         `json:"gameCreated"`
		Message     string       `json:"message"`
		Color       engine.Color `json:"color"`
	}
	if err := c.apiCall(ctx, "POST", "/game/create", body, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !response.GameCreated {
		return mcp.NewToolResultError(response.Message), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Created room %s. You are %s playing %s. The game starts when four players have joined.",
		gameName, playerName, response.Color)), nil
}

func (c *Client) handleJoinGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameName, _ := args["game_name"].(string)
	playerName, _ := args["player_name"].(string)

	var response struct {
		Status  bool         `json:"status"`
		Message string       `json:"message"`
		Color   engine.Color `json:"color"`
		Remain  int          `json:"remain"`
	}
	err := c.apiCall(ctx, "POST", "/game/join", map[string]string{
		"gameName":   gameName,
		"playerName": playerName,
	}, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !response.Status {
		return mcp.NewToolResultError(fmt.Sprintf("Could not join %s: %s", gameName, response.Message)), nil
	}

	text := fmt.Sprintf("Joined %s as %s playing %s.", gameName, playerName, response.Color)
	if response.Remain > 0 {
		text += fmt.Sprintf(" Waiting for %d more player(s).", response.Remain)
	} else {
		text += " The table is full and the game has started."
	}
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleWaitingStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var status service.WaitingStatus
	if err := c.apiCall(ctx, "GET", "/getStatus", nil, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatWaitingStatus(&status)), nil
}

func (c *Client) handleLeaveGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Status bool `json:"status"`
	}
	if err := c.apiCall(ctx, "DELETE", "/player", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !response.Status {
		return mcp.NewToolResultError("You were not seated in a game"), nil
	}
	return mcp.NewToolResultText("You left the game."), nil
}

func (c *Client) handleGameStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var status engine.GameStatus
	if err := c.apiCall(ctx, "GET", "/game/gameStatus", nil, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameStatus(&status)), nil
}

func (c *Client) handleRollDice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var roll engine.RollResult
	if err := c.apiCall(ctx, "GET", "/game/rollDice", nil, &roll); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatRollResult(&roll)), nil
}

func (c *Client) handleMoveCoin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	coinID, ok := arguments(request)["coin_id"].(float64)
	if !ok {
		return mcp.NewToolResultError("coin_id is required"), nil
	}

	var result engine.MoveResult
	if err := c.apiCall(ctx, "POST", "/game/moveCoin", map[string]int{"coinId": int(coinID)}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !result.Status {
		return mcp.NewToolResultError(result.Message), nil
	}
	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleGameLogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 20
	if l, ok := arguments(request)["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	var logs []string
	if err := c.apiCall(ctx, "GET", "/game/logs", nil, &logs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(logs) == 0 {
		return mcp.NewToolResultText("No activity yet."), nil
	}
	if len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	return mcp.NewToolResultText(strings.Join(logs, "\n")), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameRules), nil
}

const gameRules = `# Ludo Rules

## Setup
- Four players, one per color: red, green, blue, yellow.
- The game starts automatically when the fourth player joins.
- Turn order follows the seat colors clockwise: red, green, blue, yellow.
- Every player has four coins (ids 1-4) that start at base.

## A Turn
1. The player on move calls roll_dice.
2. If no coin can use the roll, the turn passes immediately.
3. Otherwise roll_dice lists the movable coins; call move_coin with one of them.
4. After the move the turn passes to the next player. There are no bonus turns.

## Movement
- A coin leaves base only on the board's entry roll (6 on the standard boards)
  and lands on its color's start cell.
- Coins travel clockwise around the shared ring, then turn into their own home
  lane just before reaching their start cell again.
- The destination must be reached exactly; rolls that overshoot are not playable.

## Captures
- Landing on a ring cell holding exactly one opposing coin sends it back to base.
- Safe cells (start cells and the cell eight past each) never allow captures.
- Two or more opposing coins on one cell form a block and cannot be captured.
- Home lanes are private and always safe.

## Winning
- The first player with all four coins at the destination wins.

## Positions
Coin positions count steps from the coin's own start cell: -1 is base,
0 is the start cell, the ring ends one cell before the start, then the home
lane follows and the last lane cell is the destination.`

// Formatting helpers

func formatWaitingStatus(status *service.WaitingStatus) string {
	var result strings.Builder
	fmt.Fprintf(&result, "Room %s (%s)\n", status.GameName, status.Status)
	for _, p := range status.Players {
		fmt.Fprintf(&result, "- %s (%s)\n", p.Name, p.Color)
	}
	if len(status.OpenColors) > 0 {
		fmt.Fprintf(&result, "Open colors: %v\n", status.OpenColors)
	}
	if status.Remain > 0 {
		fmt.Fprintf(&result, "Waiting for %d more player(s)", status.Remain)
	} else {
		result.WriteString("Table is full")
	}
	return result.String()
}

func formatCoin(coin engine.CoinStatus) string {
	switch {
	case coin.AtBase:
		return fmt.Sprintf("#%d base", coin.ID)
	case coin.AtDestination:
		return fmt.Sprintf("#%d home", coin.ID)
	case coin.InHomeLane:
		return fmt.Sprintf("#%d lane(%d)", coin.ID, coin.Position)
	case coin.Cell != nil:
		return fmt.Sprintf("#%d cell %d (%d)", coin.ID, *coin.Cell, coin.Position)
	default:
		return fmt.Sprintf("#%d %d", coin.ID, coin.Position)
	}
}

func formatGameStatus(status *engine.GameStatus) string {
	if status == nil {
		return "No game status available"
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Room %s | %s", status.Name, status.Status)
	if status.CurrentPlayerName != "" {
		fmt.Fprintf(&result, " | To move: %s", status.CurrentPlayerName)
	}
	result.WriteString("\n")

	if status.RollValue > 0 {
		fmt.Fprintf(&result, "Pending roll: %d, movable coins: %v\n", status.RollValue, status.MovableCoins)
	}
	result.WriteString("\n")

	for _, p := range status.Players {
		coins := make([]string, 0, len(p.Coins))
		for _, coin := range p.Coins {
			coins = append(coins, formatCoin(coin))
		}
		marker := ""
		if p.Name == status.CurrentPlayerName {
			marker = " <"
		}
		if p.Won {
			marker += " WON"
		}
		fmt.Fprintf(&result, "%-7s %-12s %s%s\n", p.Color, p.Name, strings.Join(coins, ", "), marker)
	}

	return result.String()
}

func formatRollResult(roll *engine.RollResult) string {
	if len(roll.Coins) == 0 {
		return fmt.Sprintf("Rolled %d. No coin can move; %s is on move.", roll.Move, roll.CurrentPlayer)
	}
	ids := make([]string, 0, len(roll.Coins))
	for _, id := range roll.Coins {
		ids = append(ids, fmt.Sprint(id))
	}
	return fmt.Sprintf("Rolled %d. Movable coins: %s. Call move_coin with one of them.", roll.Move, strings.Join(ids, ", "))
}

func formatMoveResult(result *engine.MoveResult) string {
	var out strings.Builder
	out.WriteString(result.Message)
	if result.From == engine.Base {
		out.WriteString(" out of base")
	} else {
		fmt.Fprintf(&out, " from %d", result.From)
	}
	fmt.Fprintf(&out, " to %d.", result.To)

	if result.Captured != nil {
		fmt.Fprintf(&out, " Captured %s's coin %d on cell %d!", result.Captured.Player, result.Captured.CoinID, result.Captured.Cell)
	}
	if result.Finished {
		out.WriteString(" The coin reached home.")
	}
	for _, p := range result.Players {
		if p.Won {
			fmt.Fprintf(&out, " %s has won!", p.Name)
		}
	}
	return out.String()
}
