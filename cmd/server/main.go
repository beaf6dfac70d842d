package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"hextrade/handlers"
	"hextrade/internal/database"
	"hextrade/internal/network"
	"hextrade/models"
	"hextrade/pkg/config"
	"hextrade/pkg/logger"
)

var (
	addr       = flag.String("addr", "", "http service address (overrides config)")
	configFile = flag.String("config", "config.yml", "path to config file")
	logLevel   = flag.String("log-level", "", "log level: debug, info, warn, error")
	showCaller = flag.Bool("show-caller", false, "show caller information in logs")
)

// homeHandler reports basic server info
func homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"name": "Hextrade Game Server", "version": "0.1.0", "status": "running"}`)
}

// healthHandler is the liveness probe
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy"}`)
}

// corsMiddleware restricts browsers to the configured frontend origin
func corsMiddleware(frontendURL string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := frontendURL
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	flag.Parse()

	serverLogger := logger.ServerLogger

	// Load configuration, falling back to defaults when no file exists.
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		serverLogger.Warn("Could not load config file %s: %v", *configFile, err)
		serverLogger.Info("Using default configuration")
		cfg = config.Default()
		cfg.ApplyEnvironmentOverrides()
	}

	level := logger.ParseLevel(cfg.Logging.Level)
	if *logLevel != "" {
		level = logger.ParseLevel(*logLevel)
	}
	logger.InitLoggers(level, *showCaller || cfg.Logging.ShowCaller)

	// Finished-game store: SQLite when configured, otherwise a no-op.
	var store database.GameStore = database.NopStore{}
	if cfg.Database.Path != "" {
		sqliteStore, err := database.NewSQLiteStore(cfg.Database.Path)
		if err != nil {
			serverLogger.Fatal("Failed to open game store: %v", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}

	// Wire the managers together.
	sessions := network.NewSessionManager()
	lobbies := models.NewLobbyManager()
	games := network.NewGameManager(sessions, store, cfg.Game)
	gateway := handlers.NewGateway(sessions, lobbies, games, cfg)

	router := mux.NewRouter()
	router.HandleFunc("/", homeHandler).Methods(http.MethodGet)
	router.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	router.HandleFunc("/ws", gateway.HandleWebSocket)

	listenAddr := cfg.GetAddr()
	if *addr != "" {
		listenAddr = *addr
	}

	server := &http.Server{
		Addr:    listenAddr,
		Handler: corsMiddleware(cfg.Security.FrontendURL, router),
	}

	go func() {
		serverLogger.Info("Listening on %s", listenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverLogger.Fatal("Server failed: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	serverLogger.Info("Shutting down (%d games live)", games.GameCount())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		serverLogger.Error("Shutdown error: %v", err)
	}
	serverLogger.Info("Server stopped")
}
