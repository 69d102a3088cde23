package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scitech"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

func main() {
	var (
		port    = flag.String("port", "", "Port to listen on (default: PORT or 8180)")
		dbPath  = flag.String("db", "", "Database path (default: DB_PATH or ./scitech.db)")
		verbose = flag.Bool("verbose", false, "Enable verbose debugging output")
	)
	flag.Parse()

	cfg := scitech.LoadConfig()
	if *port != "" {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	log, err := scitech.NewLogger(cfg.LogMode, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.AIAPIKey == "" {
		log.Warnw("no AI API key configured (AI_API_KEY, GEMINI_API_KEY or OPENAI_API_KEY); serving fallback topics only")
	}

	db, err := scitech.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalw("failed to open database", "path", cfg.DBPath, "error", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalw("failed to create tables", "error", err)
	}

	var cache scitech.Cache = db
	if cfg.RedisURL != "" {
		redisCache, err := scitech.NewRedisCache(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Warnw("redis unavailable, caching in sqlite", "error", err)
		} else {
			defer redisCache.Close()
			cache = redisCache
			log.Infow("caching generated content in redis")
		}
	}

	library := scitech.NewLibrary(scitech.LibraryConfig{
		Client:    scitech.NewChatClient(cfg),
		Model:     cfg.AIModel,
		Cache:     cache,
		Results:   db,
		CacheTTL:  cfg.CacheTTL,
		LLMLogDir: cfg.LLMLogDir,
	}, log)

	sessionKey := []byte(cfg.SessionKey)
	if len(sessionKey) == 0 {
		log.Warnw("SESSION_KEY not set; sessions will not survive a restart")
		sessionKey = securecookie.GenerateRandomKey(32)
	}
	store := sessions.NewCookieStore(sessionKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	server, err := NewServer(library, db, store, log)
	if err != nil {
		log.Fatalw("failed to load templates", "error", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infow("starting server", "port", cfg.Port, "model", cfg.AIModel)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warnw("shutdown failed", "error", err)
	}
}
