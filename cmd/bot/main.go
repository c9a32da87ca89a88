package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"confess-bot/internal/audit"
	"confess-bot/internal/bot"
	"confess-bot/internal/config"
	"confess-bot/internal/cooldown"
	"confess-bot/internal/database"
	"confess-bot/internal/models"
	"confess-bot/internal/moderation"
	"confess-bot/internal/scheduler"
	"confess-bot/internal/store"
	"confess-bot/internal/window"
	"confess-bot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrEmptyBotToken) {
			fmt.Fprintln(os.Stderr, "Error: BOT_TOKEN environment variable is required")
		} else if errors.Is(err, config.ErrEmptyChannelID) {
			fmt.Fprintln(os.Stderr, "Error: BOT_CHANNEL_ID environment variable is required")
		} else if errors.Is(err, config.ErrEmptyDBPassword) {
			fmt.Fprintln(os.Stderr, "Error: DB_PASSWORD environment variable is required")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		}
		os.Exit(1)
	}

	logger.Init(cfg.App.LogLevel, nil)
	logger.Info("Starting confess-bot",
		logger.String("app", cfg.App.Name),
		logger.String("environment", cfg.App.Environment),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		var dbErr *database.ConnectionError
		if errors.As(err, &dbErr) {
			logger.Error("Failed to connect to database",
				logger.Err(dbErr),
				logger.String("host", cfg.Database.Host),
				logger.Int("port", cfg.Database.Port),
			)
		} else {
			logger.Error("Failed to connect to database",
				logger.Err(err),
			)
		}
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("Connected to database")

	sink, err := audit.New(cfg.NATS)
	if err != nil {
		logger.Error("Failed to connect to NATS", logger.Err(err))
		os.Exit(1)
	}
	defer sink.Close()
	logger.Info("Connected to NATS", logger.String("url", cfg.NATS.URL))

	moderationRepo := database.NewModerationRepository(db)
	auditRepo := database.NewAuditRepository(db)

	st := store.New(moderationRepo)
	if err := seedStore(ctx, st, moderationRepo); err != nil {
		logger.Error("Failed to load moderation state", logger.Err(err))
		os.Exit(1)
	}
	logger.Info("Moderation state loaded")

	linkCooldowns := cooldown.NewTracker(cfg.Limits.LinkCooldown)
	deleteCooldowns := cooldown.NewTracker(cfg.Limits.DeleteCooldown)

	gate := moderation.NewGate(st, linkCooldowns)
	windows := window.New(cfg.Window, cfg.Bot.OwnerID)
	sched := scheduler.New(cfg.Limits.PostDelay, scheduler.TimerDeferrer{})

	telegramBot, err := bot.New(cfg.Bot, st, gate, windows, sched, deleteCooldowns, sink, auditRepo)
	if err != nil {
		logger.Error("Failed to create bot", logger.Err(err))
		os.Exit(1)
	}

	tbot, err := telegramBot.Start()
	if err != nil {
		logger.Error("Failed to start bot", logger.Err(err))
		os.Exit(1)
	}
	logger.Info("Telegram bot started")

	go func() {
		logger.Info("Starting audit consumer...")
		if err := sink.Consume(ctx, func(rec *models.AuditRecord) error {
			if err := auditRepo.Insert(ctx, rec); err != nil {
				logger.Error("Failed to save audit record",
					logger.Err(err),
					logger.Int64("user_id", rec.UserID),
				)
				return err
			}
			if err := telegramBot.SendAuditLog(rec); err != nil {
				logger.Error("Failed to send audit log message",
					logger.Err(err),
					logger.Int64("user_id", rec.UserID),
				)
			}
			return nil
		}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Audit consumer error", logger.Err(err))
		}
	}()

	healthMux := http.NewServeMux()
	healthMux.HandleFunc(cfg.Health.Endpoint, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: healthMux,
	}

	go func() {
		logger.Info("Health server starting",
			logger.Int("port", cfg.Health.Port),
		)
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health server error", logger.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	tbot.Stop()

	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down health server", logger.Err(err))
	}

	logger.Info("Bot stopped gracefully")
}

func seedStore(ctx context.Context, st *store.Store, repo *database.ModerationRepository) error {
	bans, err := repo.ListBans(ctx)
	if err != nil {
		return fmt.Errorf("failed to load bans: %w", err)
	}

	words, err := repo.ListWords(ctx)
	if err != nil {
		return fmt.Errorf("failed to load banned words: %w", err)
	}

	timeouts, err := repo.ListTimeouts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load timeouts: %w", err)
	}

	toggles, err := repo.ListToggles(ctx)
	if err != nil {
		return fmt.Errorf("failed to load feature toggles: %w", err)
	}

	st.Seed(bans, words, timeouts, toggles)
	return nil
}
