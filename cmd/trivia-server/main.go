package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/jaredblack/trivia-wizard-2/trivia"
	"github.com/jaredblack/trivia-wizard-2/trivia/auth"
	"github.com/jaredblack/trivia-wizard-2/trivia/game"
	"github.com/jaredblack/trivia-wizard-2/trivia/mock"
	"github.com/jaredblack/trivia-wizard-2/trivia/postgres"
	"github.com/jaredblack/trivia-wizard-2/trivia/postgres/migrations"
	"github.com/jaredblack/trivia-wizard-2/wlog"
)

const defaultIdleShutdownMins = 30

var logLevelFlag = flag.String("level", "info", "Sets the minimum log level. Should be one of 'debug', 'info', 'warning', 'error'.")

func setLogLevelFromFlag() {
	flg := strings.ToLower(*logLevelFlag)
	switch flg {
	case "debug":
		wlog.SetMinLevel(wlog.LogLevelDebug)
	case "info":
		wlog.SetMinLevel(wlog.LogLevelInfo)
	case "warning", "warn":
		wlog.SetMinLevel(wlog.LogLevelWarning)
	case "error":
		wlog.SetMinLevel(wlog.LogLevelError)
	default:
		wlog.SetMinLevel(wlog.LogLevelInfo)
	}
}

func withLogging(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		handler.ServeHTTP(w, r)
		dur := time.Since(start)
		wlog.NewPrefixLogger("http").Debug("%s %s (%s)", strings.ToUpper(r.Method), r.RequestURI, dur.String())
	})
}

func main() {
	flag.Parse()

	fileLogHandler, err := wlog.NewFileHandler("trivia-log.log")
	if err != nil {
		log.Fatal("Failed to create file log handler for path: ", "trivia-log.log")
	}
	wlog.SetHandler(wlog.MergeHandlers(
		wlog.NewStdoutHandler(),
		fileLogHandler,
	))
	setLogLevelFromFlag()

	go wlog.Start()

	logger := wlog.NewPrefixLogger("app")
	logger.Info("starting trivia wizard server...")
	config := loadConfig()

	// ## persistence
	var store trivia.GameStore
	if _, ok := getStringValue(config.DB.Name); ok {
		connStr := createSQLConnectionString(config)
		db, err := sql.Open("postgres", connStr)
		if err != nil {
			logger.Error("error occurred while opening db connection: %s", err)
			shutdownLoggerAndExit(1)
			return
		}

		if !migrations.RunMigrations(db) {
			logger.Error("migrations failed, exiting")
			shutdownLoggerAndExit(1)
			return
		}
		store = postgres.NewGameStore(db)
	} else {
		logger.Info("no database configured, game snapshots are in-memory only")
		store = mock.NewStore()
	}

	// ## auth
	var validator trivia.TokenValidator
	if secret, ok := getStringValue(config.Auth.Secret256); ok {
		issuer := requireStringValue(config.Auth.Issuer, "", "auth.issuer cannot be empty when auth.secret256 is set")
		clientID := requireStringValue(config.Auth.ClientID, "", "auth.clientId cannot be empty when auth.secret256 is set")
		validator = auth.NewHS256Validator([]byte(secret), issuer, clientID)
	} else {
		logger.Warn("no auth secret configured, accepting the local dev host token only")
		validator = mock.NewStaticValidator(map[string]trivia.AuthResult{
			"local-host-token": {UserID: "local-host", IsHost: true},
		})
	}

	// ## game server
	idleShutdownMins := config.Game.IdleShutdownMins
	if idleShutdownMins <= 0 {
		idleShutdownMins = defaultIdleShutdownMins
	}
	shutdownChan := make(chan struct{}, 1)
	idle := game.NewIdleTimer(shutdownChan, time.Duration(idleShutdownMins)*time.Minute)
	set := game.NewGameSet(store, idle)
	gameHandler := game.NewHandler(set, validator)

	server := &http.Server{
		Addr:        requireStringValue(config.Server.Addr, "0.0.0.0:9002", "server.addr cannot be empty"),
		IdleTimeout: time.Second * 30,
		Handler:     withLogging(gameHandler),
	}

	shutdownTimeout, err := strconv.Atoi(requireStringValue(config.Server.ShutdownTimeout, "15000", "server.shutdownTimeout cannot be empty."))
	if err != nil {
		log.Fatal("server.shutdownTimeout must be a valid number.")
	}

	go func() {
		logger.Info("listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error: %s", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	// Block until interrupted or the idle supervisor fires.
	select {
	case <-sigChan:
		logger.Info("interrupt received, shutting down...")
	case <-shutdownChan:
		logger.Info("idle shutdown signal received, shutting down...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeout)*time.Millisecond)
	defer cancel()

	server.Shutdown(ctx)
	shutdownLoggerAndExit(0)
}

func shutdownLoggerAndExit(code int) {
	wlog.Stop()
	wlog.WaitForStop()
	os.Exit(code)
}
