package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"podium/agent/internal/analysis"
	"podium/agent/internal/api"
	"podium/agent/internal/config"
	"podium/agent/internal/notes"
	"podium/agent/internal/session"
	"podium/agent/internal/transport"
)

func main() {
	// Load .env file if present (ignored if missing)
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.Transport.TokenSecret == "" {
		log.Fatal("TRANSPORT_TOKEN_SECRET is required")
	}

	reg := transport.NewRegistry()
	mgr := session.NewManager(func(sessionID string) transport.Transport {
		return reg.ForSession(sessionID)
	}, session.Options{
		Debounce:        time.Duration(cfg.Debate.DebounceMs) * time.Millisecond,
		IdleTimeout:     time.Duration(cfg.Debate.IdleTimeoutSecs) * time.Second,
		MinPartialChars: cfg.Debate.MinPartialChars,
	})

	var an analysis.Client
	if cfg.Analysis.PrivateKey != "" && cfg.Analysis.OrgID != "" {
		an = analysis.NewClient(cfg.Analysis.BaseURL, cfg.Analysis.OrgID, cfg.Analysis.PrivateKey)
	}

	h := api.NewHandlers(cfg, mgr, an, notes.New())
	mux := http.NewServeMux()
	mux.Handle("/", api.NewRouter(h))
	mux.Handle("/metrics", promhttp.Handler())

	wss := &transport.Server{
		TokenSecret:   cfg.Transport.TokenSecret,
		TokenSkewSecs: cfg.Transport.TokenSkewSecs,
		Reg:           reg,
		OnEvent:       mgr.HandleEvent,
		KnownSession:  mgr.Known,
		OnDetach:      mgr.HandleDetach,
	}
	mux.HandleFunc("/ws/transport", wss.HandleTransportWS)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           logMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		log.Printf("shutdown signal received; stopping server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mgr.StopAll(ctx)
		_ = srv.Shutdown(ctx)
	}()

	log.Printf("server starting on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Println("server error:", err)
		os.Exit(1)
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
