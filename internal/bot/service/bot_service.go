package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/central-university-dev/go-vacation-bot/internal/common/metrics"
	"github.com/central-university-dev/go-vacation-bot/internal/config"
	domainerrors "github.com/central-university-dev/go-vacation-bot/internal/domain/errors"
	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
	"github.com/central-university-dev/go-vacation-bot/internal/reminder"
	"github.com/central-university-dev/go-vacation-bot/internal/roster"
	"github.com/central-university-dev/go-vacation-bot/internal/storage"
)

type ChatStateRepository interface {
	GetState(ctx context.Context, chatID string) (models.ChatState, error)

	SetState(ctx context.Context, chatID string, state models.ChatState) error
}

type VacationStore interface {
	Load(ctx context.Context) *models.Document

	ReplaceVacations(ctx context.Context, chatID string, records []models.VacationRecord) error

	SetLeadDays(ctx context.Context, chatID string, days int) error

	SetBroadcastChat(ctx context.Context, chatID string) error
}

type Messenger interface {
	SendMessage(ctx context.Context, chatID string, text string, keyboard models.Keyboard) error

	FileURL(ctx context.Context, fileID string) (string, error)
}

type FileDownloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

type BotService struct {
	chatStateRepo ChatStateRepository
	store         VacationStore
	messenger     Messenger
	downloader    FileDownloader
	filePath      string
	notifyTime    string
	location      *time.Location
	now           func() time.Time
	logger        *slog.Logger
}

func NewBotService(
	chatStateRepo ChatStateRepository,
	store VacationStore,
	messenger Messenger,
	downloader FileDownloader,
	cfg *config.Config,
	logger *slog.Logger,
) *BotService {
	return &BotService{
		chatStateRepo: chatStateRepo,
		store:         store,
		messenger:     messenger,
		downloader:    downloader,
		filePath:      cfg.FilePath,
		notifyTime:    cfg.NotifyTime,
		location:      cfg.Location(),
		now:           time.Now,
		logger:        logger,
	}
}

// SetClock replaces the wall clock used for "today" in schedule replies.
func (s *BotService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *BotService) HandleEvent(ctx context.Context, event models.Event) error {
	switch event.Type {
	case models.EventButtonClick:
		metrics.RecordUserMessage("callback")
		return s.handleButton(ctx, event)
	case models.EventNewMessage:
		return s.handleMessage(ctx, event)
	default:
		return fmt.Errorf("неизвестный тип события: %d", event.Type)
	}
}

func (s *BotService) handleMessage(ctx context.Context, event models.Event) error {
	chatID := event.ChatID
	text := strings.TrimSpace(event.Text)

	if event.FileID != "" {
		metrics.RecordUserMessage("file")
		return s.processFileByID(ctx, chatID, event.FileID)
	}

	if link, ok := fileLink(text); ok {
		metrics.RecordUserMessage("file")
		return s.processFileByURL(ctx, chatID, link)
	}

	if strings.HasPrefix(text, "/") {
		metrics.RecordUserMessage("command")
		return s.handleCommand(ctx, chatID, text)
	}

	metrics.RecordUserMessage("text")

	state, err := s.chatStateRepo.GetState(ctx, chatID)
	if err != nil {
		return err
	}

	if state == models.StateAwaitingLeadDays {
		return s.handleLeadDaysInput(ctx, chatID, text)
	}

	return s.reply(ctx, chatID, textHint, menuKeyboard())
}

func (s *BotService) handleCommand(ctx context.Context, chatID, text string) error {
	name := strings.ToLower(strings.Fields(text)[0])

	// В группах команда приходит в виде /status@bot_name.
	if i := strings.Index(name, "@"); i > 0 {
		name = name[:i]
	}

	//nolint:exhaustive // CommandUnknown обрабатывается в блоке default
	switch models.ParseCommandType(name) {
	case models.CommandStart:
		return s.reply(ctx, chatID, textStart, menuKeyboard())
	case models.CommandHelp:
		return s.sendHelp(ctx, chatID)
	case models.CommandStatus:
		return s.sendStatus(ctx, chatID)
	case models.CommandSchedule:
		return s.sendSchedule(ctx, chatID)
	case models.CommandNotify:
		return s.askLeadDays(ctx, chatID)
	case models.CommandSetChannel:
		return s.setChannel(ctx, chatID)
	default:
		s.logger.Debug("Неизвестная команда",
			"error", &domainerrors.ErrUnknownCommand{Command: name},
			"chat_id", chatID,
		)

		return s.reply(ctx, chatID, textHint, menuKeyboard())
	}
}

func (s *BotService) handleButton(ctx context.Context, event models.Event) error {
	switch event.CallbackData {
	case models.CallbackStatus:
		return s.sendStatus(ctx, event.ChatID)
	case models.CallbackHelp:
		return s.sendHelp(ctx, event.ChatID)
	case models.CallbackSchedule:
		return s.sendSchedule(ctx, event.ChatID)
	case models.CallbackNotifications:
		return s.askLeadDays(ctx, event.ChatID)
	case models.CallbackSetChannel:
		return s.setChannel(ctx, event.ChatID)
	default:
		s.logger.Warn("Неизвестная кнопка",
			"callback_data", event.CallbackData,
			"chat_id", event.ChatID,
		)

		return nil
	}
}

func (s *BotService) handleLeadDaysInput(ctx context.Context, chatID, text string) error {
	days, err := parseLeadDays(text)
	if err != nil {
		s.logger.Debug("Некорректный ввод срока оповещения",
			"error", err,
			"chat_id", chatID,
		)

		return s.reply(ctx, chatID, textInvalidDays, nil)
	}

	if err := s.store.SetLeadDays(ctx, chatID, days); err != nil {
		return fmt.Errorf("ошибка при сохранении срока оповещения: %w", err)
	}

	if err := s.chatStateRepo.SetState(ctx, chatID, models.StateIdle); err != nil {
		return err
	}

	count := len(s.store.Load(ctx).Vacations[chatID])

	s.logger.Info("Срок оповещения сохранён",
		"chat_id", chatID,
		"notify_days", days,
	)

	return s.reply(ctx, chatID, leadDaysSavedText(count, days, s.notifyTime), menuKeyboard())
}

func (s *BotService) askLeadDays(ctx context.Context, chatID string) error {
	if err := s.chatStateRepo.SetState(ctx, chatID, models.StateAwaitingLeadDays); err != nil {
		return err
	}

	return s.reply(ctx, chatID, textAskLeadDays, nil)
}

func (s *BotService) setChannel(ctx context.Context, chatID string) error {
	if err := s.store.SetBroadcastChat(ctx, chatID); err != nil {
		return fmt.Errorf("ошибка при установке чата для уведомлений: %w", err)
	}

	s.logger.Info("Установлен чат для уведомлений", "chat_id", chatID)

	return s.reply(ctx, chatID, textChannelSet, nil)
}

func (s *BotService) sendHelp(ctx context.Context, chatID string) error {
	return s.reply(ctx, chatID, helpText(s.notifyTime), nil)
}

func (s *BotService) sendStatus(ctx context.Context, chatID string) error {
	doc := s.store.Load(ctx)

	return s.reply(ctx, chatID, statusText(len(doc.Vacations[chatID]), doc.Settings[chatID]), menuKeyboard())
}

func (s *BotService) sendSchedule(ctx context.Context, chatID string) error {
	doc := s.store.Load(ctx)

	records := doc.Vacations[chatID]
	if len(records) == 0 {
		return s.reply(ctx, chatID, textScheduleNoData, menuKeyboard())
	}

	settings := doc.Settings[chatID]
	if !settings.Configured() {
		return s.reply(ctx, chatID, textScheduleNoLead, menuKeyboard())
	}

	today := models.DateOf(s.now().In(s.location))

	upcoming := reminder.Upcoming(records, settings.NotifyDays, today, reminder.DefaultUpcomingLimit)
	if len(upcoming) == 0 {
		return s.reply(ctx, chatID, textScheduleNothing, menuKeyboard())
	}

	return s.reply(ctx, chatID, scheduleText(settings.NotifyDays, upcoming), menuKeyboard())
}

func (s *BotService) processFileByID(ctx context.Context, chatID, fileID string) error {
	if err := s.reply(ctx, chatID, textFileReceived, nil); err != nil {
		return err
	}

	link, err := s.messenger.FileURL(ctx, fileID)
	if err != nil {
		s.logger.Error("Ошибка при получении ссылки на файл",
			"error", err,
			"chat_id", chatID,
			"file_id", fileID,
		)
		metrics.RecordUpload("file_error", 0, 0)

		return s.reply(ctx, chatID, textFileNotFetched, nil)
	}

	return s.downloadAndParse(ctx, chatID, link)
}

func (s *BotService) processFileByURL(ctx context.Context, chatID, link string) error {
	if err := s.reply(ctx, chatID, textFileReceived, nil); err != nil {
		return err
	}

	return s.downloadAndParse(ctx, chatID, link)
}

func (s *BotService) downloadAndParse(ctx context.Context, chatID, link string) error {
	content, err := s.downloader.Download(ctx, link)
	if err != nil {
		s.logger.Error("Ошибка скачивания файла",
			"error", err,
			"chat_id", chatID,
		)
		metrics.RecordUpload("download_error", 0, 0)

		return s.reply(ctx, chatID, fmt.Sprintf(textDownloadErrorFmt, err), nil)
	}

	if s.filePath != "" {
		if err := storage.WriteFileAtomic(s.filePath, content); err != nil {
			s.logger.Warn("Не удалось сохранить копию файла",
				"error", err,
				"path", s.filePath,
			)
		}
	}

	grid, err := roster.ReadXLSX(bytes.NewReader(content))
	if err != nil {
		s.logger.Error("Ошибка чтения Excel",
			"error", err,
			"chat_id", chatID,
		)
		metrics.RecordUpload("read_error", 0, 0)

		return s.reply(ctx, chatID, fmt.Sprintf(textReadErrorFmt, err), nil)
	}

	result, layout, err := roster.Parse(grid)
	if err != nil && !errors.Is(err, roster.ErrLayoutNotDetected) {
		metrics.RecordUpload("read_error", 0, 0)
		return s.reply(ctx, chatID, fmt.Sprintf(textReadErrorFmt, err), nil)
	}

	if err != nil || len(result.Records) == 0 {
		s.logger.Info("В файле не найдено записей об отпусках",
			"chat_id", chatID,
			"row_errors", len(result.Errors),
		)
		metrics.RecordUpload("no_data", 0, len(result.Errors))

		return s.reply(ctx, chatID, textNoData, nil)
	}

	for _, rowErr := range result.Errors {
		s.logger.Debug("Строка пропущена",
			"chat_id", chatID,
			"row", rowErr.Row,
			"fio", rowErr.Name,
			"reason", rowErr.Reason,
		)
	}

	if err := s.store.ReplaceVacations(ctx, chatID, result.Records); err != nil {
		s.logger.Error("Ошибка при сохранении записей",
			"error", err,
			"chat_id", chatID,
		)
		metrics.RecordUpload("store_error", 0, 0)

		return s.reply(ctx, chatID, fmt.Sprintf(textSaveErrorFmt, err), nil)
	}

	if err := s.chatStateRepo.SetState(ctx, chatID, models.StateAwaitingLeadDays); err != nil {
		return err
	}

	metrics.RecordUpload("success", len(result.Records), len(result.Errors))

	s.logger.Info("График отпусков загружен",
		"chat_id", chatID,
		"records", len(result.Records),
		"row_errors", len(result.Errors),
		"layout", layout,
	)

	return s.reply(ctx, chatID, uploadedText(result.Records, len(result.Errors)), nil)
}

// ReportFailure tells the user that handling their event failed unexpectedly.
func (s *BotService) ReportFailure(ctx context.Context, chatID string, cause error) {
	if err := s.reply(ctx, chatID, fmt.Sprintf(textUnexpectedFmt, cause), nil); err != nil {
		s.logger.Error("Не удалось сообщить об ошибке", "error", err, "chat_id", chatID)
	}
}

func (s *BotService) reply(ctx context.Context, chatID, text string, keyboard models.Keyboard) error {
	if err := s.messenger.SendMessage(ctx, chatID, text, keyboard); err != nil {
		return fmt.Errorf("ошибка при отправке ответа: %w", err)
	}

	return nil
}

func parseLeadDays(text string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || days <= 0 {
		return 0, &domainerrors.ErrInvalidLeadDays{Value: text}
	}

	return days, nil
}

// fileLink recognizes a message that consists of a single http(s) link.
func fileLink(text string) (string, bool) {
	if text == "" || strings.ContainsAny(text, " \n\t") {
		return "", false
	}

	u, err := url.Parse(text)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}

	return text, true
}
