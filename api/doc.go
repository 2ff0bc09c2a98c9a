// Package api provides the HTTP surface for Ludo rooms.
//
// Players are identified by two cookies set when they create or join a room:
// gameName holds the room and sessionId an opaque session id that the service
// resolves to a seat.
//
// Endpoints:
//
// Lobby:
//   - POST /game/create - Create a room and take the first seat
//   - POST /game/join - Join an existing room
//   - DELETE /player - Leave the room and clear cookies
//   - GET /gameName, GET /userName - Plain text identity lookups
//   - GET /getStatus - Waiting room roster
//
// Game (cookie gated):
//   - GET /game/gameStatus - Table snapshot
//   - POST /game/start - Start a full table (no-op once running)
//   - GET /game/rollDice - Roll for the current player
//   - POST /game/moveCoin - Move a coin by the held roll (coinId)
//   - GET /game/logs - Activity log
//   - GET /game/board.html - Board page
//   - GET /game/qr - PNG QR code with the room's join link
//
// Listings:
//   - GET /api/games - Joinable rooms (?all=true for every room)
//   - GET /api/boards - Available board configurations
//   - POST /api/boards - Save a board: {"config_id": ..., "board": {...}}
//
// Other:
//   - GET /ws - WebSocket updates for the cookie's room (or ?game=)
//   - GET /health - Health check
//
// Gate:
//
// Requests to /game/* without a gameName cookie, or naming a room that no
// longer exists, are redirected to /index.html. A session that is not seated
// in the cookie's room gets 400.
//
// Request/Response Format:
//
// Bodies may be JSON objects or form encoded. Responses are JSON except the
// plain text identity endpoints, the board page and the QR image. Rule
// violations on roll and move answer with {"status": false, "message": ...}:
// acting out of turn is 400, an illegal coin or a move before rolling is 200.
package api
