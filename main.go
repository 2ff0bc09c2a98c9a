// Command ludo starts the Ludo room server.
//
// Subcommands:
//  1. "serve" (default) - runs the HTTP server exposing the game API, WebSocket
//     updates and an /mcp HTTP endpoint
//  2. "mcp" - runs an MCP stdio server and spins up an internal HTTP API if none
//     is available
//  3. "simulate" - plays seeded bot games headlessly and prints the outcome
//  4. "validate" - checks every board configuration in the config directory
//
// Flags can also be set through the environment or a .env file.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/ludo/api"
	"github.com/wricardo/mcp-training/ludo/game/config"
	"github.com/wricardo/mcp-training/ludo/game/service"
	"github.com/wricardo/mcp-training/ludo/game/session"
	"github.com/wricardo/mcp-training/ludo/transport/mcp"
	"github.com/wricardo/mcp-training/ludo/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Ludo Server"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newRootCommand builds the CLI. Root flags are inherited by subcommands.
func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "ludo",
		Usage:   "Four-player Ludo rooms over HTTP, WebSocket and MCP",
		Version: Version,
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing board configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "default-board",
				Usage:   "Board used when a room is created without one (defaults to classic)",
				Sources: cli.EnvVars("DEFAULT_BOARD"),
			},
			&cli.StringFlag{
				Name:    "static-dir",
				Value:   "./static/",
				Usage:   "Directory with the browser pages",
				Sources: cli.EnvVars("STATIC_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.DurationFlag{
				Name:    "room-idle-timeout",
				Value:   2 * time.Hour,
				Usage:   "Evict rooms that have seen no activity for this long",
				Sources: cli.EnvVars("ROOM_IDLE_TIMEOUT"),
			},
		}, ngrokFlags()...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server with API, WebSocket and MCP endpoint (default)",
				Action: runServe,
			},
			{
				Name:  "mcp",
				Usage: "Run an MCP stdio server, with an internal HTTP server if none is reachable",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Value:   "http://localhost:8080",
						Usage:   "Existing HTTP server to proxy to",
						Sources: cli.EnvVars("LUDO_API_URL"),
					},
				},
				Action: runStdioMCP,
			},
			simulateCommand(),
			validateCommand(),
		},
	}
}

func ngrokFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "ngrok",
			Usage:   "Enable ngrok tunnel",
			Sources: cli.EnvVars("NGROK_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "ngrok-auth",
			Usage:   "Ngrok auth token",
			Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "ngrok-domain",
			Usage:   "Custom ngrok domain (optional)",
			Sources: cli.EnvVars("NGROK_DOMAIN"),
		},
	}
}

// services bundles what the transports need
type services struct {
	game    service.GameService
	rooms   *session.Manager
	configs *config.Manager
}

// initializeServices wires the room, identity and config stores into the game
// service. A non-empty defaultBoard replaces the classic default.
func initializeServices(configDir, defaultBoard string) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if defaultBoard != "" {
		if err := configManager.SetDefault(defaultBoard); err != nil {
			return nil, fmt.Errorf("failed to set default board %s: %w", defaultBoard, err)
		}
		log.Printf("Default board: %s", defaultBoard)
	}

	rooms := session.NewManager()
	identities := session.NewIdentities()

	return &services{
		game:    service.NewGameService(rooms, identities, configManager),
		rooms:   rooms,
		configs: configManager,
	}, nil
}

// roomCleanupRoutine periodically evicts rooms nobody has touched within
// maxIdle, until ctx is done
func roomCleanupRoutine(ctx context.Context, gameService service.GameService, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := gameService.EvictIdleGames(ctx, maxIdle); removed > 0 {
				log.Printf("Cleaned up %d idle rooms", removed)
			}
		}
	}
}

// cleanupInterval checks a few times per idle window, at most every minute
func cleanupInterval(maxIdle time.Duration) time.Duration {
	interval := maxIdle / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}

// newMCPHandler serves the streamable HTTP transport. Each MCP session gets
// its own seat on the game API.
func newMCPHandler(mcpClient *mcp.Client) http.Handler {
	return mcpClient.HTTPHandler()
}

// newMainRouter mounts the API at the root and the MCP endpoint at /mcp
func newMainRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.Handle("/mcp", newMCPHandler(mcpClient))
	return mainRouter
}

// runServe starts the HTTP server and, when enabled, an ngrok tunnel
func runServe(ctx context.Context, cmd *cli.Command) error {
	log.Printf("Starting %s v%s", AppName, Version)

	svc, err := initializeServices(cmd.String("config-dir"), cmd.String("default-board"))
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	maxIdle := cmd.Duration("room-idle-timeout")
	go roomCleanupRoutine(ctx, svc.game, cleanupInterval(maxIdle), maxIdle)

	hub := websocket.NewHub()
	go hub.Run()

	apiServer := api.NewServer(svc.game, hub, cmd.String("static-dir"))

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := newMainRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("Lobby: http://%s/", addr)
		log.Printf("WebSocket: ws://%s/ws?game=<game_name>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), mainRouter)
		}()
	}

	select {
	case sig := <-stop:
		log.Printf("Received signal: %v. Shutting down...", sig)
	case err := <-serverErr:
		cancel()
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Printf("Server stopped (%d rooms discarded)", svc.rooms.Count())
	return nil
}

// runNgrokTunnel serves handler through a public ngrok endpoint until ctx is done
func runNgrokTunnel(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  Lobby (ngrok): %s/", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?game=<game_name>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// apiReachable reports whether a Ludo HTTP server answers at baseURL
func apiReachable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses the API at --api-url when
// reachable, otherwise it starts an internal HTTP API on a random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	baseURL := cmd.String("api-url")
	log.Printf("Checking for external API server at %s...", baseURL)

	if apiReachable(baseURL) {
		log.Printf("External API server found at %s, using it for MCP", baseURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		svc, err := initializeServices(cmd.String("config-dir"), cmd.String("default-board"))
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run()

		httpServer := &http.Server{
			Handler: api.NewServer(svc.game, hub, cmd.String("static-dir")),
		}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		maxIdle := cmd.Duration("room-idle-timeout")
		cleanupCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go roomCleanupRoutine(cleanupCtx, svc.game, cleanupInterval(maxIdle), maxIdle)

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		log.Printf("Internal HTTP server on %s for MCP stdio", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Println("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
