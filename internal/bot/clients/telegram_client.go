package clients

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/central-university-dev/go-vacation-bot/internal/bot/domain"
	customerrors "github.com/central-university-dev/go-vacation-bot/internal/domain/errors"
	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
)

// TelegramClient paces outgoing messages at SEND_RATE_LIMIT per second.
type TelegramClient struct {
	bot     *tgbotapi.BotAPI
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewTelegramClient(token string, sendRate float64, logger *slog.Logger) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании Telegram клиента: %w", err)
	}

	return NewTelegramClientWithBot(bot, sendRate, logger), nil
}

func NewTelegramClientWithBot(bot *tgbotapi.BotAPI, sendRate float64, logger *slog.Logger) *TelegramClient {
	limit := rate.Inf
	if sendRate > 0 {
		limit = rate.Limit(sendRate)
	}

	return &TelegramClient{
		bot:     bot,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

func (c *TelegramClient) SendMessage(ctx context.Context, chatID, text string, keyboard models.Keyboard) error {
	if c.bot == nil {
		return fmt.Errorf("telegram клиент не инициализирован")
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return &customerrors.ErrInvalidChatID{ChatID: chatID}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("ожидание лимита отправки: %w", err)
	}

	msg := tgbotapi.NewMessage(id, text)
	if len(keyboard) > 0 {
		msg.ReplyMarkup = InlineKeyboard(keyboard)
	}

	if _, err := c.bot.Send(msg); err != nil {
		c.logger.Error("Ошибка при отправке сообщения",
			"error", err,
			"chat_id", chatID,
		)

		return fmt.Errorf("ошибка при отправке сообщения: %w", err)
	}

	return nil
}

func (c *TelegramClient) FileURL(_ context.Context, fileID string) (string, error) {
	if c.bot == nil {
		return "", fmt.Errorf("telegram клиент не инициализирован")
	}

	url, err := c.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", &customerrors.ErrFileNotResolved{FileID: fileID, Cause: err}
	}

	return url, nil
}

func (c *TelegramClient) AnswerCallback(_ context.Context, queryID string) error {
	if c.bot == nil {
		return fmt.Errorf("telegram клиент не инициализирован")
	}

	if _, err := c.bot.Request(tgbotapi.NewCallback(queryID, "")); err != nil {
		return fmt.Errorf("ошибка при ответе на callback: %w", err)
	}

	return nil
}

func (c *TelegramClient) SetMyCommands(_ context.Context, commands []domain.BotCommand) error {
	if c.bot == nil {
		return fmt.Errorf("telegram клиент не инициализирован")
	}

	botAPICommands := make([]tgbotapi.BotCommand, 0, len(commands))
	for _, cmd := range commands {
		botAPICommands = append(botAPICommands, tgbotapi.BotCommand{
			Command:     cmd.Command,
			Description: cmd.Description,
		})
	}

	if _, err := c.bot.Request(tgbotapi.NewSetMyCommands(botAPICommands...)); err != nil {
		return fmt.Errorf("ошибка при установке команд бота: %w", err)
	}

	return nil
}

func (c *TelegramClient) GetBot() *tgbotapi.BotAPI {
	return c.bot
}

func InlineKeyboard(keyboard models.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))

	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.CallbackData))
		}

		rows = append(rows, buttons)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
