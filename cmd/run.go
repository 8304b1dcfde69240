package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"prizedraw/api"
	"prizedraw/bot"
	"prizedraw/config"
	"prizedraw/database"
	"prizedraw/draw"
	"prizedraw/events"
	"prizedraw/repository"
	"prizedraw/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	setupLogging(cfg)

	log.WithField("environment", cfg.Environment).Info("Starting prize draw service...")

	// An invalid prize table is fatal
	table, err := config.LoadPrizeTable(cfg.PrizeTablePath)
	if err != nil {
		return fmt.Errorf("failed to load prize table: %w", err)
	}
	log.WithFields(log.Fields{
		"prizes":      table.Len(),
		"totalWeight": table.Total(),
	}).Info("Prize table loaded")

	log.Info("Running database migrations...")
	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	engine := draw.NewEngine(table, draw.CryptoSource())
	userService := service.NewUserService(uowFactory, cfg)
	spinService := service.NewSpinService(uowFactory, userService, engine, cfg)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(api.NewHandler(spinService), cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var discordBot *bot.Bot
	if cfg.BotEnabled() {
		log.Info("Initializing Discord bot...")
		discordBot, err = bot.New(bot.Config{
			Token:             cfg.DiscordToken,
			GuildID:           cfg.DiscordGuildID,
			AnnounceChannelID: cfg.AnnounceChannelID,
			AdminIDs:          cfg.AdminDiscordIDs,
			RevealDelay:       cfg.RevealDelay,
		}, userService, spinService, eventBus)
		if err != nil {
			shutdownServer(server)
			return fmt.Errorf("failed to initialize Discord bot: %w", err)
		}
		log.Info("Discord bot initialized successfully")
	} else {
		log.Warn("DISCORD_TOKEN not set, running HTTP API only")
		go runSessionCleanup(ctx, spinService)
	}

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	log.Info("Shutting down...")

	if discordBot != nil {
		if err := discordBot.Close(); err != nil {
			log.Errorf("Error closing Discord bot: %v", err)
		}
	}

	shutdownServer(server)

	// Let in-flight event handlers finish before the pool closes
	eventBus.Wait()

	log.Info("Shutdown completed")
	return nil
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Invalid LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func shutdownServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Error shutting down HTTP server: %v", err)
	}
}

// runSessionCleanup drops idle sessions when no bot is running its own janitor
func runSessionCleanup(ctx context.Context, spinService service.SpinService) {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			spinService.CleanupInactiveSessions()
		case <-ctx.Done():
			return
		}
	}
}
