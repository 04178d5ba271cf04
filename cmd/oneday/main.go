package main

import (
	"context"
	"os/signal"
	"syscall"

	"oneday/internal/app"
	domainTelegram "oneday/internal/domain/telegram"
	"oneday/internal/infra/config"
	idb "oneday/internal/infra/database"
	"oneday/internal/infra/httpapi"
	"oneday/internal/infra/logger"
	"oneday/internal/infra/scheduler"
	"oneday/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")

	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"driver":      cfg.DatabaseDriver,
		"week_start":  cfg.WeekStart.String(),
		"timezone":    cfg.Location.String(),
		"bot_enabled": cfg.BotEnabled(),
		"http_listen": cfg.HTTPListen,
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Database Connection
	db, err := idb.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	mainLogger.Info("Database connection established and schema applied")

	// Initialize Repositories
	categoryRepo := idb.NewSQLCategoryRepository(db)
	taskRepo := idb.NewSQLTaskRepository(db)
	reminderRepo := idb.NewSQLReminderRepository(db)

	// Initialize Telegram Bot
	var bot *telebot.Bot
	var client domainTelegram.Client
	if cfg.BotEnabled() {
		botLogger := logger.Component("telebot")
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: cfg.TelegramPollTime},
			OnError: func(err error, c telebot.Context) { // Global error handler
				entry := botLogger.WithError(err)
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
				}
				entry.Error("Telegram handler failed")
			},
		})
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}
		client = telegram.NewTelebotAdapter(bot)
	} else {
		mainLogger.Warn("TELEGRAM_TOKEN is not set; alerts will only be logged")
	}

	// Initialize Scheduler and Services
	alertScheduler := scheduler.NewAlertScheduler(client, cfg.OwnerTelegramID, cfg.Location, logger.Component("scheduler"))
	reminderService := app.NewReminderService(reminderRepo, taskRepo, alertScheduler, logger.Component("reminders"))
	plannerService := app.NewPlannerService(categoryRepo, taskRepo, reminderService, cfg.WeekStart, cfg.Location, logger.Component("planner"))

	if err := alertScheduler.AddJob("reminder_sweep", cfg.CronSpecSweep, func(ctx context.Context) error {
		_, err := reminderService.Sweep(ctx)
		return err
	}); err != nil {
		mainLogger.WithError(err).Fatal("Could not register sweep job")
	}
	if err := reminderService.ArmAll(ctx); err != nil {
		mainLogger.WithError(err).Fatal("Could not arm stored reminders")
	}
	alertScheduler.Start()

	if bot != nil {
		telegram.Register(ctx, bot, cfg, plannerService, reminderService, logger.Component("telegram"))
		go bot.Start()
		mainLogger.Info("Telegram bot started")
	}

	var server *httpapi.Server
	if cfg.HTTPListen != "" {
		router := httpapi.NewRouter(plannerService, reminderService, logger.Component("http"))
		server = httpapi.NewServer(cfg.HTTPListen, router, logger.Component("http"))
		server.Start()
	}

	mainLogger.Info("Application setup complete")
	<-ctx.Done() // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		if err := server.Shutdown(shutdownCtx); err != nil {
			mainLogger.WithError(err).Warn("HTTP server did not shut down cleanly")
		}
		cancel()
	}
	if bot != nil {
		bot.Stop()
	}
	alertScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
}
