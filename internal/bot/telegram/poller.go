package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/central-university-dev/go-vacation-bot/internal/bot/domain"
	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
)

// eventTimeout bounds one event including a file download with retries.
const eventTimeout = 2 * time.Minute

type EventHandler interface {
	HandleEvent(ctx context.Context, event models.Event) error

	ReportFailure(ctx context.Context, chatID string, cause error)
}

// Poller receives updates on one goroutine and handles each event on its own.
type Poller struct {
	telegramClient domain.TelegramClientAPI
	handler        EventHandler
	logger         *slog.Logger
	stopChan       chan struct{}
	stopOnce       sync.Once
	wg             sync.WaitGroup
}

func NewPoller(telegramClient domain.TelegramClientAPI, handler EventHandler, logger *slog.Logger) *Poller {
	return &Poller{
		telegramClient: telegramClient,
		handler:        handler,
		logger:         logger,
		stopChan:       make(chan struct{}),
	}
}

func (p *Poller) Start() error {
	p.logger.Info("Запуск Telegram поллера")

	bot := p.telegramClient.GetBot()
	if bot == nil {
		return fmt.Errorf("не удалось получить доступ к API бота")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-p.stopChan:
				p.logger.Info("Получен сигнал остановки поллера")
				bot.StopReceivingUpdates()

				return
			case update, ok := <-updates:
				if !ok {
					return
				}

				p.HandleUpdate(update)
			}
		}
	}()

	return nil
}

// Stop ends polling and waits for in-flight events.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Остановка Telegram поллера")
		close(p.stopChan)
	})

	p.wg.Wait()
}

func (p *Poller) HandleUpdate(update tgbotapi.Update) {
	event, ok := ToEvent(update)
	if !ok {
		return
	}

	p.wg.Add(1)

	go func() {
		defer p.wg.Done()

		p.process(event)
	}()
}

func (p *Poller) process(event models.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Паника при обработке события",
				"panic", r,
				"chat_id", event.ChatID,
			)
			p.handler.ReportFailure(ctx, event.ChatID, fmt.Errorf("%v", r))
		}
	}()

	p.logger.Info("Получено событие",
		"chat_id", event.ChatID,
		"text", event.Text,
		"file_name", event.FileName,
		"callback_data", event.CallbackData,
	)

	if event.Type == models.EventButtonClick && event.QueryID != "" {
		if err := p.telegramClient.AnswerCallback(ctx, event.QueryID); err != nil {
			p.logger.Warn("Не удалось ответить на callback",
				"error", err,
				"query_id", event.QueryID,
			)
		}
	}

	if err := p.handler.HandleEvent(ctx, event); err != nil {
		p.logger.Error("Ошибка при обработке события",
			"error", err,
			"chat_id", event.ChatID,
		)
		p.handler.ReportFailure(ctx, event.ChatID, err)
	}
}

// ToEvent maps a Telegram update to a transport-neutral event. Other update kinds are ignored.
func ToEvent(update tgbotapi.Update) (models.Event, bool) {
	switch {
	case update.Message != nil:
		msg := update.Message
		event := models.Event{
			Type:   models.EventNewMessage,
			ChatID: strconv.FormatInt(msg.Chat.ID, 10),
			Text:   msg.Text,
		}

		if msg.Document != nil {
			event.FileID = msg.Document.FileID
			event.FileName = msg.Document.FileName
			event.Text = msg.Caption
		}

		return event, true
	case update.CallbackQuery != nil:
		query := update.CallbackQuery

		var chatID int64
		if query.Message != nil && query.Message.Chat != nil {
			chatID = query.Message.Chat.ID
		} else if query.From != nil {
			chatID = query.From.ID
		}

		return models.Event{
			Type:         models.EventButtonClick,
			ChatID:       strconv.FormatInt(chatID, 10),
			CallbackData: query.Data,
			QueryID:      query.ID,
		}, true
	default:
		return models.Event{}, false
	}
}
