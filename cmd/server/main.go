package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/scubahq/tradevault/internal/api"
	"github.com/scubahq/tradevault/internal/auth"
	"github.com/scubahq/tradevault/internal/config"
	"github.com/scubahq/tradevault/internal/db"
	"github.com/scubahq/tradevault/internal/listing"
	"github.com/scubahq/tradevault/internal/notify"
	"github.com/scubahq/tradevault/internal/presenter"
	"github.com/scubahq/tradevault/internal/store"
	"github.com/scubahq/tradevault/internal/sweeper"
	"github.com/scubahq/tradevault/internal/ticket"
	"github.com/scubahq/tradevault/internal/trade"
	"github.com/scubahq/tradevault/internal/vouch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db.Init(cfg.DatabaseURL)
	defer db.Close()

	st := store.New(db.Conn)

	// The Log presenter stands in until the Discord gateway adapter is
	// plugged in over the presenter interface.
	pres := presenter.NewLog(logger)

	queue := notify.New(cfg.RedisAddr, pres, logger)
	defer queue.Close()

	listings := listing.NewManager(st, pres, queue, logger, listing.Config{
		Quota:         cfg.ListingQuota,
		PendingTTL:    cfg.PendingTTL,
		MaxListingAge: cfg.MaxListingAge,
	})
	vouches := vouch.NewCollector(st, pres, queue, logger)
	trades := trade.NewManager(st, pres, vouches, queue, logger, cfg.OverseerRoleID, cfg.TeardownGrace)
	tickets := ticket.NewManager(st, pres, logger)
	login := auth.NewHandler(cfg.AdminUsername, cfg.AdminPasswordHash, cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweeper.New(listings, cfg.SweepInterval, logger).Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())

	e.GET("/ready", func(c echo.Context) error {
		if err := db.Conn.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})

	srv := api.New(st, listings, trades, vouches, tickets, login, logger)
	srv.Register(e, cfg.JWTSecret)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	logger.Info("tradevault started", "port", cfg.Port)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "err", err)
	}
}
