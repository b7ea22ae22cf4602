// Command keyquest starts the Key Quest server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from the environment (see package config); flags override them.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/keyquest/api"
	"github.com/wricardo/keyquest/config"
	"github.com/wricardo/keyquest/game/levels"
	"github.com/wricardo/keyquest/game/profile"
	"github.com/wricardo/keyquest/game/service"
	"github.com/wricardo/keyquest/game/session"
	"github.com/wricardo/keyquest/transport/mcp"
	"github.com/wricardo/keyquest/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Key Quest Server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := newApp(cfg).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the command tree; flags override the loaded configuration.
func newApp(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "keyquest",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: cfg.Host, Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Value: cfg.Port, Usage: "HTTP server port"},
			&cli.StringFlag{Name: "levels-dir", Value: cfg.LevelsDir, Usage: "Directory containing level files"},
			&cli.StringFlag{Name: "level-source", Value: cfg.LevelSourceURL, Usage: "Remote level server base URL"},
			&cli.StringFlag{Name: "redis-addr", Value: cfg.RedisAddr, Usage: "Redis address for user profiles (in-memory when empty)"},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Value: cfg.Ngrok.Enabled, Usage: "Enable ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-auth", Value: cfg.Ngrok.AuthToken, Usage: "Ngrok auth token"},
			&cli.StringFlag{Name: "ngrok-domain", Value: cfg.Ngrok.Domain, Usage: "Custom ngrok domain (optional)"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			applyFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return ctx, err
			}
			return ctx, config.SetupLogging(cfg.LogLevel, cfg.LogFormat, nil)
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runHTTPServer(ctx, cfg)
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runHTTPServer(ctx, cfg)
				},
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runStdioMCPWithInternalServer(ctx, cfg)
				},
			},
		},
	}
}

func applyFlags(cmd *cli.Command, cfg *config.Config) {
	cfg.Host = cmd.String("host")
	cfg.Port = cmd.Int("port")
	cfg.LevelsDir = cmd.String("levels-dir")
	cfg.LevelSourceURL = cmd.String("level-source")
	cfg.RedisAddr = cmd.String("redis-addr")
	cfg.Ngrok.Enabled = cmd.Bool("ngrok")
	cfg.Ngrok.AuthToken = cmd.String("ngrok-auth")
	cfg.Ngrok.Domain = cmd.String("ngrok-domain")
	if cmd.Bool("debug") {
		cfg.LogLevel = "debug"
	}
}

// services is everything the transports need plus what shutdown must close
type services struct {
	game     service.GameService
	sessions *session.Manager
	hub      *websocket.Hub
	profiles profile.Store
}

func (s *services) Close() {
	s.hub.Stop()
	s.sessions.CloseAll()
	if rs, ok := s.profiles.(*profile.RedisStore); ok {
		if err := rs.Close(); err != nil {
			log.Warnf("Failed to close profile store: %v", err)
		}
	}
}

// initializeServices wires the level catalogue, profile store, session
// manager, websocket hub and the game service.
func initializeServices(ctx context.Context, cfg *config.Config) (*services, error) {
	levelManager, err := levels.NewManager(cfg.LevelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create level manager: %w", err)
	}

	var profiles profile.Store = profile.NewMemoryStore()
	if cfg.RedisAddr != "" {
		store, err := profile.NewRedisStore(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to create profile store: %w", err)
		}
		profiles = store
	}

	hub := websocket.NewHub()
	go hub.Run()

	opts := []service.Option{
		service.WithProfiles(profiles),
		service.WithBroadcaster(hub),
		service.WithTickInterval(cfg.TickInterval),
	}
	if cfg.LevelSourceURL != "" {
		log.WithField("url", cfg.LevelSourceURL).Info("Fetching levels from remote level server")
		opts = append(opts, service.WithLevelSource(levels.NewHTTPSource(cfg.LevelSourceURL, 10*time.Second)))
	}

	sessionManager := session.NewManager()
	gameService := service.NewGameService(sessionManager, levelManager, opts...)

	return &services{
		game:     gameService,
		sessions: sessionManager,
		hub:      hub,
		profiles: profiles,
	}, nil
}

// newRouter mounts the REST API at the root and the MCP JSON-RPC endpoint at /mcp.
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cfg *config.Config) error {
	log.Infof("Starting %s v%s (mode: server)", AppName, Version)

	svc, err := initializeServices(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close()

	addr := cfg.Addr()
	apiServer := api.NewServer(svc.game, svc.hub)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := newRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, svc.sessions, cfg.CleanupInterval, cfg.SessionTTL)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Infof("HTTP server listening on %s", addr)
		log.Infof("REST API: http://%s/api", addr)
		log.Infof("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if cfg.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cfg.Ngrok, mainRouter)
		}()
	}

	var runErr error
	select {
	case sig := <-stop:
		log.Infof("Received signal: %v. Shutting down...", sig)
	case runErr = <-serverErr:
		log.Error(runErr)
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Info("Server stopped")
	return runErr
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx is done.
func runNgrokTunnel(ctx context.Context, cfg config.NgrokConfig, handler http.Handler) {
	if cfg.AuthToken == "" {
		log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
		log.Infof("Using custom ngrok domain: %s", cfg.Domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		log.Errorf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warnf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Infof("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Infof("  REST API (ngrok): %s/api", ngrokURL)
	log.Infof("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Infof("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Debugf("Ngrok server stopped: %v", err)
	}
	log.Info("Ngrok tunnel closed")
}

// sessionCleanupRoutine periodically closes sessions that have not been
// accessed within ttl.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Infof("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// externalAPIAvailable reports whether a Key Quest server already answers at baseURL.
func externalAPIAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an external API at the configured address when one answers;
// otherwise it starts an internal HTTP API on a random loopback port.
func runStdioMCPWithInternalServer(ctx context.Context, cfg *config.Config) error {
	externalURL := fmt.Sprintf("http://%s", cfg.Addr())
	log.Infof("Checking for external API server at %s...", externalURL)

	baseURL := externalURL
	if externalAPIAvailable(ctx, externalURL) {
		log.Infof("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Info("No external API server found, starting internal HTTP server")

		svc, err := initializeServices(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer svc.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		httpServer := &http.Server{Handler: api.NewServer(svc.game, svc.hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Errorf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		log.Infof("Internal HTTP server on %s for MCP stdio", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
