package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/aliabbas6622/LockItIn-Hackathon/cliparse"
	"github.com/aliabbas6622/LockItIn-Hackathon/db"
	"github.com/aliabbas6622/LockItIn-Hackathon/room"
	"github.com/aliabbas6622/LockItIn-Hackathon/router"
	"github.com/aliabbas6622/LockItIn-Hackathon/session"
	"github.com/aliabbas6622/LockItIn-Hackathon/store"
	"github.com/aliabbas6622/LockItIn-Hackathon/synthesis"
)

func main() {
	var err error

	// Optional .env file for local development
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database (SQLite by default, Postgres when configured)
	driver := "sqlite"
	if cfg.DatabaseType == "postgres" {
		driver = "postgres"
	}
	dbConn, err := sql.Open(driver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "driver", driver)

	// Wire the coordination state: store, synthesis gateway, room
	// broadcaster, session engine
	engine := session.NewEngine(
		store.NewSQLStore(dbConn),
		synthesis.NewClient(cfg),
		room.NewBroadcaster(),
	)
	defer engine.Close()

	// Create router
	mux := router.NewRouter(engine)

	// Create server
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		engine.Close()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
