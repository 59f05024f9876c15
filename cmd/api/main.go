package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/courtside/racketops/internal/advice"
	"github.com/courtside/racketops/internal/config"
	"github.com/courtside/racketops/internal/database"
	"github.com/courtside/racketops/internal/export"
	racketopsHttp "github.com/courtside/racketops/internal/http"
	opsHandler "github.com/courtside/racketops/internal/http/operations"
	"github.com/courtside/racketops/internal/metrics"
	"github.com/courtside/racketops/internal/operations"
	"github.com/courtside/racketops/internal/operations/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	db, err := database.New(ctx, cfg.Mongo.URL, cfg.Mongo.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			slog.Error("failed to disconnect from database", "error", err)
		}
	}()

	var (
		adviceService     = advice.NewService()
		operationsService = operations.NewService(
			store.NewOrders(db),
			store.NewRentals(db),
			store.NewApplications(db),
			store.NewUsers(db),
			adviceService.Next,
		)
		exportService = export.NewService(operationsService)
		registry      = metrics.NewRegistry()
	)

	operationsService.SetFetchLimit(int64(cfg.Ops.FetchLimit))

	operationsH := opsHandler.NewHandler(operationsService, exportService, registry)

	router := racketopsHttp.New(operationsH, racketopsHttp.Options{
		JWTSecret: cfg.Auth.JWTSecret,
		Throttle:  cfg.Ops.Throttle,
		Metrics:   registry,
	})

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
