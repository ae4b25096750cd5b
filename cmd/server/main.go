package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kharcha/kharcha/internal/auth"
	"github.com/kharcha/kharcha/internal/config"
	"github.com/kharcha/kharcha/internal/handlers"
	"github.com/kharcha/kharcha/internal/middleware"
	"github.com/kharcha/kharcha/internal/notify"
	"github.com/kharcha/kharcha/internal/service"
	"github.com/kharcha/kharcha/internal/storage/sqlite"
	"github.com/kharcha/kharcha/pkg/logging"
)

func main() {
	logging.Setup()
	cfg := config.Load()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	hub := notify.NewHub()
	engine := notify.NewEngine(store, hub)

	groups := service.NewGroupService(store)
	expenses := service.NewExpenseService(store, engine, groups)
	settlements := service.NewSettlementService(store, engine, groups)
	ledger := service.NewLedgerService(store)

	handler := handlers.New(authenticator, jwtManager, groups, expenses, settlements, ledger, hub)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)

	r.Mount("/", handler.Routes())
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := ":" + cfg.Port
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
