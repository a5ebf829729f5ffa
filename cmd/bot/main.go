package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/central-university-dev/go-vacation-bot/internal/bot/clients"
	"github.com/central-university-dev/go-vacation-bot/internal/bot/domain"
	"github.com/central-university-dev/go-vacation-bot/internal/bot/repository"
	botservice "github.com/central-university-dev/go-vacation-bot/internal/bot/service"
	"github.com/central-university-dev/go-vacation-bot/internal/bot/telegram"
	"github.com/central-university-dev/go-vacation-bot/internal/common/metrics"
	"github.com/central-university-dev/go-vacation-bot/internal/config"
	"github.com/central-university-dev/go-vacation-bot/internal/database"
	"github.com/central-university-dev/go-vacation-bot/internal/reminder"
	"github.com/central-university-dev/go-vacation-bot/internal/reminder/notify"
	"github.com/central-university-dev/go-vacation-bot/internal/storage"
	"github.com/central-university-dev/go-vacation-bot/pkg"
)

func setupTelegramCommands(telegramClient domain.TelegramClientAPI, appLogger *slog.Logger) {
	botCommands := []domain.BotCommand{
		{Command: "start", Description: "Начать работу с ботом"},
		{Command: "help", Description: "Получить справку"},
		{Command: "status", Description: "Статус и настройки"},
		{Command: "schedule", Description: "Ближайшие уведомления"},
		{Command: "notify", Description: "Изменить срок оповещения"},
		{Command: "set_channel", Description: "Установить этот чат для уведомлений"},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := telegramClient.SetMyCommands(ctx, botCommands); err != nil {
		appLogger.Error("Ошибка при регистрации команд бота",
			"error", err,
		)
	} else {
		appLogger.Info("Команды бота успешно зарегистрированы")
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка запуска сервиса: %v\n", err)
		os.Exit(1)
	}
}

//nolint:funlen // Длина функции обусловлена необходимостью последовательной инициализации всех компонентов.
func run() (err error) {
	cfg := config.LoadConfig()
	appLogger := pkg.NewLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer

	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i].Close())
		}
	}()

	var db *database.PostgresDB

	if cfg.StorageBackend == config.PostgresStorage {
		db, err = database.NewPostgresDB(ctx, cfg, appLogger)
		if err != nil {
			return fmt.Errorf("ошибка подключения к базе данных: %w", err)
		}

		defer db.Close()

		if err = database.Migrate(cfg.MigrationsPath, cfg.DatabaseURL, appLogger); err != nil {
			return fmt.Errorf("ошибка применения миграций: %w", err)
		}
	}

	backend, err := storage.NewBackend(cfg, db, appLogger)
	if err != nil {
		return fmt.Errorf("ошибка создания хранилища: %w", err)
	}

	store := storage.NewVacationStore(backend, appLogger)

	telegramClient, err := clients.NewTelegramClient(cfg.TelegramBotToken, cfg.SendRateLimit, appLogger)
	if err != nil {
		return err
	}

	setupTelegramCommands(telegramClient, appLogger)

	notifier, notifierCloser := notify.New(cfg, telegramClient, appLogger)
	closers = append(closers, notifierCloser)

	reminderService := reminder.NewService(store, notifier, appLogger)

	scheduler := reminder.NewScheduler(reminderService, cfg.NotifyTime, cfg.Location(), appLogger)
	if err = scheduler.Start(); err != nil {
		return fmt.Errorf("ошибка запуска планировщика: %w", err)
	}

	defer scheduler.Stop()

	chatStateRepo, stateCloser, err := repository.NewChatStateRepository(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("ошибка создания репозитория состояний чата: %w", err)
	}

	closers = append(closers, stateCloser)

	botService := botservice.NewBotService(
		chatStateRepo,
		store,
		telegramClient,
		clients.NewDownloader(cfg, appLogger),
		cfg,
		appLogger,
	)

	poller := telegram.NewPoller(telegramClient, botService, appLogger)
	if err = poller.Start(); err != nil {
		return err
	}

	defer poller.Stop()

	metricsServer := metrics.NewServer(cfg.MetricsPort, appLogger)

	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			appLogger.Error("Ошибка сервера метрик", "error", err)
		}
	}()

	appLogger.Info("Бот запущен",
		"storage", cfg.StorageBackend,
		"notify_time", cfg.NotifyTime,
		"timezone", cfg.Location().String(),
	)

	<-ctx.Done()
	appLogger.Info("Получен сигнал завершения")

	return nil
}
