package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"

	"github.com/wricardo/mcp-training/ludo/game/engine"
	"github.com/wricardo/mcp-training/ludo/game/service"
	"github.com/wricardo/mcp-training/ludo/transport/websocket"
)

const (
	gameNameCookie  = "gameName"
	sessionIDCookie = "sessionId"
)

type contextKey string

const identityKey contextKey = "identity"

// Server represents the HTTP API server
type Server struct {
	service   service.GameService
	hub       *websocket.Hub
	router    *mux.Router
	staticDir string
}

// NewServer creates a new API server serving pages from staticDir
func NewServer(gameService service.GameService, hub *websocket.Hub, staticDir string) *Server {
	if staticDir == "" {
		staticDir = "./static/"
	}

	s := &Server{
		service:   gameService,
		hub:       hub,
		router:    mux.NewRouter(),
		staticDir: staticDir,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Lobby (must be before the gated /game prefix)
	s.router.HandleFunc("/game/create", s.handleCreateGame).Methods("POST")
	s.router.HandleFunc("/game/join", s.handleJoinGame).Methods("POST")
	s.router.HandleFunc("/player", s.handleLeaveGame).Methods("DELETE")
	s.router.HandleFunc("/gameName", s.handleGameName).Methods("GET")
	s.router.HandleFunc("/userName", s.handleUserName).Methods("GET")
	s.router.HandleFunc("/getStatus", s.handleWaitingStatus).Methods("GET")

	// Seated players only
	game := s.router.PathPrefix("/game").Subrouter()
	game.Use(s.requirePlayer)
	game.HandleFunc("/gameStatus", s.handleGameStatus).Methods("GET")
	game.HandleFunc("/start", s.handleStartGame).Methods("POST")
	game.HandleFunc("/rollDice", s.handleRollDice).Methods("GET", "POST")
	game.HandleFunc("/moveCoin", s.handleMoveCoin).Methods("POST")
	game.HandleFunc("/logs", s.handleLogs).Methods("GET")
	game.HandleFunc("/board.html", s.handleBoardPage).Methods("GET")
	game.HandleFunc("/qr", s.handleQRCode).Methods("GET")

	// Listings
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/boards", s.handleListBoards).Methods("GET")
	api.HandleFunc("/boards", s.handleSaveBoard).Methods("POST")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprint(w, text)
}

// readFields returns the request's fields from a JSON object body or a form
func readFields(r *http.Request) (map[string]string, error) {
	fields := map[string]string{}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		for k, v := range body {
			switch v := v.(type) {
			case string:
				fields[k] = v
			case float64:
				fields[k] = strconv.FormatFloat(v, 'f', -1, 64)
			case nil:
			default:
				fields[k] = fmt.Sprint(v)
			}
		}
		return fields, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	for k := range r.Form {
		fields[k] = r.Form.Get(k)
	}
	return fields, nil
}

// Cookie helpers

func setPlayerCookies(w http.ResponseWriter, join *service.JoinInfo) {
	http.SetCookie(w, &http.Cookie{
		Name:     gameNameCookie,
		Value:    url.QueryEscape(join.GameName),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     sessionIDCookie,
		Value:    join.SessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearPlayerCookies(w http.ResponseWriter) {
	for _, name := range []string{gameNameCookie, sessionIDCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:   name,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}
}

func cookieGameName(r *http.Request) string {
	c, err := r.Cookie(gameNameCookie)
	if err != nil {
		return ""
	}
	name, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return name
}

func cookieSessionID(r *http.Request) string {
	c, err := r.Cookie(sessionIDCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// requirePlayer redirects visitors without a live room to the lobby and
// rejects sessions that are not seated in the cookie's room
func (s *Server) requirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gameName := cookieGameName(r)
		if gameName == "" || !s.service.GameExists(r.Context(), gameName) {
			http.Redirect(w, r, "/index.html", http.StatusFound)
			return
		}

		identity, err := s.service.ResolvePlayer(r.Context(), cookieSessionID(r))
		if err != nil || identity.GameName != gameName {
			respondError(w, http.StatusBadRequest, "player is not in this game")
			return
		}
		if seated, err := s.service.IsPlayerInGame(r.Context(), gameName, identity.PlayerName); err != nil || !seated {
			respondError(w, http.StatusBadRequest, "player is not in this game")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFrom(r *http.Request) *service.Identity {
	identity, _ := r.Context().Value(identityKey).(*service.Identity)
	return identity
}

// broadcast pushes the room's current status to its sockets
func (s *Server) broadcast(ctx context.Context, gameName, event string) {
	if s.hub == nil {
		return
	}
	status, err := s.service.GetGameStatus(ctx, gameName)
	if err != nil {
		return
	}
	s.hub.BroadcastStatus(gameName, event, status)
}

// Lobby Handlers

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	gameName := strings.TrimSpace(fields["gameName"])
	playerName := strings.TrimSpace(fields["playerName"])
	if gameName == "" || playerName == "" {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"gameCreated": false,
			"message":     "gameName and playerName are required",
		})
		return
	}

	join, err := s.service.CreateGame(r.Context(), gameName, playerName, fields["board"])
	switch {
	case errors.Is(err, service.ErrGameNameTaken):
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"gameCreated": false,
			"message":     "game name already taken",
		})
		return
	case err != nil:
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"gameCreated": false,
			"message":     err.Error(),
		})
		return
	}

	setPlayerCookies(w, join)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"gameCreated": true,
		"color":       join.Color,
	})
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	gameName := strings.TrimSpace(fields["gameName"])
	playerName := strings.TrimSpace(fields["playerName"])
	if gameName == "" || playerName == "" {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"status":  false,
			"message": "gameName and playerName are required",
		})
		return
	}

	join, err := s.service.JoinGame(r.Context(), gameName, playerName)
	if err != nil {
		message := err.Error()
		if errors.Is(err, service.ErrGameNotFound) {
			message = "game not found"
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":  false,
			"message": message,
		})
		return
	}

	setPlayerCookies(w, join)
	s.broadcast(r.Context(), join.GameName, websocket.EventPlayerJoined)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": true,
		"color":  join.Color,
		"remain": join.Remain,
	})
}

func (s *Server) handleLeaveGame(w http.ResponseWriter, r *http.Request) {
	clearPlayerCookies(w)

	identity, err := s.service.LeaveGame(r.Context(), cookieSessionID(r))
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"status": false})
		return
	}

	s.broadcast(r.Context(), identity.GameName, websocket.EventPlayerLeft)
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": true})
}

func (s *Server) handleGameName(w http.ResponseWriter, r *http.Request) {
	gameName := cookieGameName(r)
	if gameName == "" {
		respondError(w, http.StatusBadRequest, "no game selected")
		return
	}
	respondText(w, http.StatusOK, gameName)
}

func (s *Server) handleUserName(w http.ResponseWriter, r *http.Request) {
	identity, err := s.service.ResolvePlayer(r.Context(), cookieSessionID(r))
	if err != nil {
		respondError(w, http.StatusBadRequest, "no player session")
		return
	}
	respondText(w, http.StatusOK, identity.PlayerName)
}

func (s *Server) handleWaitingStatus(w http.ResponseWriter, r *http.Request) {
	gameName := cookieGameName(r)
	if gameName == "" {
		respondError(w, http.StatusBadRequest, "no game selected")
		return
	}

	status, err := s.service.GetWaitingStatus(r.Context(), gameName)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// Game Handlers

func (s *Server) handleGameStatus(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	status, err := s.service.GetGameStatus(r.Context(), identity.GameName)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	if err := s.service.StartGame(r.Context(), identity.GameName); err != nil {
		status := http.StatusConflict
		if errors.Is(err, service.ErrGameNotFound) {
			status = http.StatusNotFound
		}
		respondJSON(w, status, map[string]interface{}{
			"status":  false,
			"message": err.Error(),
		})
		return
	}

	s.broadcast(r.Context(), identity.GameName, websocket.EventGameStarted)

	status, err := s.service.GetGameStatus(r.Context(), identity.GameName)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleRollDice(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	roll, err := s.service.RollDice(r.Context(), identity.GameName, identity.PlayerName)
	if err != nil {
		status := http.StatusConflict
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			status = http.StatusNotFound
		case errors.Is(err, engine.ErrNotYourTurn), errors.Is(err, engine.ErrUnknownPlayer):
			status = http.StatusBadRequest
		}
		respondJSON(w, status, map[string]interface{}{
			"status":  false,
			"message": err.Error(),
		})
		return
	}

	log.Printf("[ROLL] game=%s player=%s value=%d movable=%v next=%s",
		identity.GameName, identity.PlayerName, roll.Move, roll.Coins, roll.CurrentPlayer)

	s.broadcast(r.Context(), identity.GameName, websocket.EventDiceRolled)
	respondJSON(w, http.StatusOK, roll)
}

func (s *Server) handleMoveCoin(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	fields, err := readFields(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	coinID, err := strconv.Atoi(strings.TrimSpace(fields["coinId"]))
	if err != nil {
		respondError(w, http.StatusBadRequest, "coinId must be a number")
		return
	}

	result, err := s.service.MoveCoin(r.Context(), identity.GameName, identity.PlayerName, coinID)
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		respondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, engine.ErrNotYourTurn), errors.Is(err, engine.ErrUnknownPlayer):
		respondJSON(w, http.StatusBadRequest, result)
		return
	case errors.Is(err, engine.ErrGameNotStarted):
		respondJSON(w, http.StatusConflict, result)
		return
	case err != nil:
		// Illegal coin or no roll yet: the move is refused, not the request
		respondJSON(w, http.StatusOK, result)
		return
	}

	log.Printf("[MOVE] game=%s player=%s coin=%d from=%d to=%d captured=%t finished=%t",
		identity.GameName, identity.PlayerName, coinID, result.From, result.To, result.Captured != nil, result.Finished)

	s.broadcast(r.Context(), identity.GameName, websocket.EventCoinMoved)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	logs, err := s.service.GetLogs(r.Context(), identity.GameName)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

func (s *Server) handleBoardPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.staticDir, "board.html"))
}

// joinURL is the lobby address with the room preselected
func joinURL(r *http.Request, gameName string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s/index.html?game=%s", scheme, r.Host, url.QueryEscape(gameName))
}

func (s *Server) handleQRCode(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	png, err := qrcode.Encode(joinURL(r, identity.GameName), qrcode.Medium, 256)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode QR code: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// Listing Handlers

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.service.ListGames(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if r.URL.Query().Get("all") == "true" {
		respondJSON(w, http.StatusOK, games)
		return
	}

	joinable := make([]*engine.GameDetails, 0, len(games))
	for _, game := range games {
		if game.Remain == 0 {
			continue
		}
		waiting, err := s.service.GetWaitingStatus(r.Context(), game.Name)
		if err != nil || waiting.Status != engine.StatusWaiting {
			continue
		}
		joinable = append(joinable, game)
	}
	respondJSON(w, http.StatusOK, joinable)
}

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := s.service.ListBoards(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, boards)
}

// saveBoardRequest is the body of POST /api/boards
type saveBoardRequest struct {
	ConfigID string              `json:"config_id"`
	Board    *engine.BoardConfig `json:"board"`
}

func (s *Server) handleSaveBoard(w http.ResponseWriter, r *http.Request) {
	var req saveBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return
	}

	info, err := s.service.SaveBoard(r.Context(), req.ConfigID, req.Board)
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("[BOARD] saved %s (%s)", info.ConfigID, info.Name)
	respondJSON(w, http.StatusCreated, info)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket not available", http.StatusServiceUnavailable)
		return
	}

	gameName := r.URL.Query().Get("game")
	if gameName == "" {
		gameName = cookieGameName(r)
	}
	if gameName == "" {
		http.Error(w, "game parameter required", http.StatusBadRequest)
		return
	}

	status, err := s.service.GetGameStatus(r.Context(), gameName)
	if err != nil {
		http.Error(w, "Invalid game", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, gameName, status)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
