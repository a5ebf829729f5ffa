package domain

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
)

type BotCommand struct {
	Command     string
	Description string
}

type TelegramClientAPI interface {
	SendMessage(ctx context.Context, chatID string, text string, keyboard models.Keyboard) error

	// FileURL resolves a document file id into a direct download link.
	FileURL(ctx context.Context, fileID string) (string, error)

	AnswerCallback(ctx context.Context, queryID string) error

	SetMyCommands(ctx context.Context, commands []BotCommand) error

	GetBot() *tgbotapi.BotAPI
}
