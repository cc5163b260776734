package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mycoin-network/claviger/internal/backend"
	"github.com/mycoin-network/claviger/internal/claviger"
	"github.com/mycoin-network/claviger/internal/config"
	"github.com/mycoin-network/claviger/internal/http_api"
	"github.com/mycoin-network/claviger/internal/notificator"
	"github.com/mycoin-network/claviger/internal/repository"
	"github.com/mycoin-network/claviger/internal/search"
	"github.com/mycoin-network/claviger/internal/staking"
	"github.com/mycoin-network/claviger/internal/watcher"
	"github.com/mycoin-network/claviger/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "claviger",
		Usage: "Claviger is a local wallet session and transfer confirmation daemon for MyCoin",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "api-port", Aliases: []string{"p"}, Usage: "Local API port"},
			&cli.StringFlag{Name: "backend-url", Aliases: []string{"b"}, Usage: "MyCoin backend base URL"},
			&cli.StringFlag{Name: "data-dir", Aliases: []string{"d"}, Usage: "Data directory"},
			&cli.DurationFlag{Name: "poll-interval", Aliases: []string{"i"}, Usage: "Notification poll interval"},
			&cli.StringFlag{Name: "telegram-bot-token", Aliases: []string{"t"}, Usage: "Telegram bot token for pending transfer alerts"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("api-port") {
		cfg.APIPort = c.Int("api-port")
	}
	if c.IsSet("backend-url") {
		cfg.BackendURL = c.String("backend-url")
	}
	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	if c.IsSet("poll-interval") {
		cfg.PollInterval = c.Duration("poll-interval")
	}
	if c.IsSet("telegram-bot-token") {
		cfg.TelegramBotToken = c.String("telegram-bot-token")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}

	// Initialize local database
	db, err := repository.NewSqliteDB(cfg.DataDir, log)
	if err != nil {
		return fmt.Errorf("failed to open local database: %v", err)
	}
	defer db.Close()

	// Initialize backend client
	mycoin := backend.NewMyCoin(cfg.BackendURL, cfg.RequestTimeout, cfg.RateLimitRPS, log)

	// Initialize session service
	clavigerApp, err := claviger.NewClaviger(db, mycoin, log, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize session service: %v", err)
	}

	// Initialize notification channels; both are optional.
	var telegramChannel *notificator.TelegramNotificator
	if cfg.TelegramBotToken != "" {
		telegramChannel, err = notificator.NewTelegramNotificator(log, cfg.TelegramBotToken, db)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram channel: %v", err)
		}
	}
	var emailChannel *notificator.EmailNotificator
	if cfg.NotifyEmail != "" {
		emailChannel = notificator.NewEmailNotificator(log, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender, cfg.NotifyEmail)
	}
	channels := notificator.NewNotificator(log, db, telegramChannel, emailChannel)

	// Initialize the inbox watcher
	inboxWatcher := watcher.NewWatcher(clavigerApp, channels, cfg.PollInterval, log)
	inboxWatcher.Start()
	defer inboxWatcher.Stop()

	// Initialize API server
	apiServer := http_api.NewHTTPServer(
		clavigerApp,
		staking.NewStaking(db, log),
		search.NewSearcher(mycoin, cfg.SearchDebounce, log),
		inboxWatcher,
		cfg.APIPort,
		log,
	)
	go apiServer.Start()

	// Wait for a termination signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Received signal ", sig.String(), ", shutting down")

	if err := apiServer.Shutdown(); err != nil {
		log.Error("Failed to shut down API server: ", err)
	}
	// Give in-flight notification fan-outs a moment to finish.
	time.Sleep(100 * time.Millisecond)

	return nil
}
