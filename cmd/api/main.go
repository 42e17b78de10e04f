package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/WOOWTECH/ha-finance/internal/bootstrap"
	"github.com/WOOWTECH/ha-finance/internal/clock"
	"github.com/WOOWTECH/ha-finance/internal/config"
	"github.com/WOOWTECH/ha-finance/internal/event"
	financeHttp "github.com/WOOWTECH/ha-finance/internal/http"
	accountHandler "github.com/WOOWTECH/ha-finance/internal/http/account"
	eventsHandler "github.com/WOOWTECH/ha-finance/internal/http/events"
	importHandler "github.com/WOOWTECH/ha-finance/internal/http/importcsv"
	planHandler "github.com/WOOWTECH/ha-finance/internal/http/plan"
	txHandler "github.com/WOOWTECH/ha-finance/internal/http/transaction"
	"github.com/WOOWTECH/ha-finance/internal/importer"
	"github.com/WOOWTECH/ha-finance/internal/recurring"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gateway, closeStore, err := bootstrap.OpenGateway(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	defer func() {
		if err := closeStore(); err != nil {
			slog.Error("failed to close storage", "error", err)
		}
	}()

	if err := gateway.Load(ctx); err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	bus := event.NewBus()
	bus.Subscribe(event.LogHandler)

	realClock := clock.Real()

	financeService, err := bootstrap.NewService(cfg, gateway, bus, realClock)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	scheduler := recurring.NewScheduler(realClock, loc, func(ctx context.Context, now time.Time) {
		if _, err := financeService.Sweep(ctx, now); err != nil {
			slog.Error("failed to sweep recurring plans", "error", err)
		}
	})

	if _, err := bootstrap.EnsureDefaultAccount(ctx, cfg, financeService); err != nil {
		return err
	}

	if _, ran, err := financeService.SweepMissed(ctx, realClock.Now()); err != nil {
		slog.Error("failed to sweep recurring plans", "error", err)
	} else if ran {
		slog.Info("ran the sweep missed while the server was down")
	}

	scheduler.Start(ctx)
	slog.Info("scheduler started", "next_run", scheduler.NextRun(realClock.Now()))

	router := financeHttp.New(financeHttp.Handlers{
		Accounts:     accountHandler.NewHandler(financeService),
		Transactions: txHandler.NewHandler(financeService),
		Plans:        planHandler.NewHandler(financeService),
		Import:       importHandler.NewHandler(importer.NewParser(), financeService),
		Events:       eventsHandler.NewHandler(bus),
	}, financeHttp.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AuthSecret:     cfg.Server.AuthSecret,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	serveErr := make(chan error, 1)

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "port", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}

	scheduler.Wait()

	return nil
}
