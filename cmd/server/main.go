package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/chaintab/chaintab/internal/auth"
	"github.com/chaintab/chaintab/internal/authority"
	"github.com/chaintab/chaintab/internal/config"
	"github.com/chaintab/chaintab/internal/events"
	"github.com/chaintab/chaintab/internal/ledger"
	"github.com/chaintab/chaintab/internal/relay"
	"github.com/chaintab/chaintab/internal/server"
	"github.com/chaintab/chaintab/internal/storage/sqlite"
	"github.com/chaintab/chaintab/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = os.Getenv("JWT_SECRET")
	}
	if jwtSecret == "" {
		slog.Error("No JWT secret configured; set auth.jwt_secret or JWT_SECRET")
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	tokenURL, err := cfg.TokenURL()
	if err != nil {
		slog.Error("Failed to resolve token binding", "network", cfg.Network, "error", err)
		os.Exit(1)
	}
	token := authority.NewHTTPToken(tokenURL, cfg.AuthorityTimeout())
	transmitter := authority.NewHTTPAuthority(cfg.Authority.URL, cfg.AuthorityTimeout())
	slog.Info("External services bound",
		"network", cfg.Network,
		"token", tokenURL,
		"authority", cfg.Authority.URL,
	)

	sink := events.Multi{
		events.LogSink{},
		events.StoreSink{Appender: store},
	}
	led := ledger.New(store, token, cfg.Treasury, sink)

	var hooks relay.HookDispatcher
	if cfg.Hooks.Enabled {
		hooks = relay.NewHTTPHookDispatcher(cfg.Hooks.Endpoint, cfg.AuthorityTimeout())
		slog.Info("Hook dispatch enabled", "endpoint", cfg.Hooks.Endpoint)
	}
	pipeline := relay.New(led, transmitter, hooks)

	authenticator := auth.NewPasswordAuthenticator(store)
	jwtManager := auth.NewJWTManager(jwtSecret, cfg.TokenDuration())

	engine := server.New(server.Deps{
		Ledger:        led,
		Relay:         pipeline,
		Authenticator: authenticator,
		JWT:           jwtManager,
		AllowOrigins:  cfg.Server.AllowOrigins,
	})

	// h2c keeps HTTP/2 available without TLS for clients behind a
	// terminating proxy.
	handler := h2c.NewHandler(engine, &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
