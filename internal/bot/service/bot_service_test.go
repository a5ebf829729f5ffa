package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/central-university-dev/go-vacation-bot/internal/bot/repository"
	"github.com/central-university-dev/go-vacation-bot/internal/bot/service"
	"github.com/central-university-dev/go-vacation-bot/internal/bot/service/mocks"
	"github.com/central-university-dev/go-vacation-bot/internal/config"
	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
	"github.com/central-university-dev/go-vacation-bot/internal/storage"
)

const (
	testChatID  = "123456"
	testFileURL = "https://files.example.com/roster.xlsx"
)

type sentMessage struct {
	Text     string
	Keyboard models.Keyboard
}

type fixture struct {
	service    *service.BotService
	messenger  *mocks.Messenger
	downloader *mocks.FileDownloader
	states     *repository.MemoryChatStateRepository
	store      *storage.VacationStore
	filePath   string

	mu   sync.Mutex
	sent []sentMessage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		messenger:  mocks.NewMessenger(t),
		downloader: mocks.NewFileDownloader(t),
		states:     repository.NewMemoryChatStateRepository(),
		store:      storage.NewVacationStore(storage.NewFileBackend(filepath.Join(dir, "vacation_data.json")), logger),
		filePath:   filepath.Join(dir, "files", "vacations.xlsx"),
	}

	cfg := &config.Config{
		FilePath:   f.filePath,
		NotifyTime: "09:00",
		Timezone:   "UTC",
	}

	f.service = service.NewBotService(f.states, f.store, f.messenger, f.downloader, cfg, logger)

	f.messenger.On("SendMessage", mock.Anything, testChatID, mock.Anything, mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			f.mu.Lock()
			defer f.mu.Unlock()

			keyboard, _ := args.Get(3).(models.Keyboard)
			f.sent = append(f.sent, sentMessage{Text: args.String(2), Keyboard: keyboard})
		}).
		Maybe()

	return f
}

func (f *fixture) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]sentMessage(nil), f.sent...)
}

func (f *fixture) last(t *testing.T) sentMessage {
	t.Helper()

	msgs := f.messages()
	require.NotEmpty(t, msgs)

	return msgs[len(msgs)-1]
}

func (f *fixture) text(t *testing.T, text string) {
	t.Helper()

	require.NoError(t, f.service.HandleEvent(context.Background(), models.Event{
		Type:   models.EventNewMessage,
		ChatID: testChatID,
		Text:   text,
	}))
}

func (f *fixture) click(t *testing.T, data string) {
	t.Helper()

	require.NoError(t, f.service.HandleEvent(context.Background(), models.Event{
		Type:         models.EventButtonClick,
		ChatID:       testChatID,
		CallbackData: data,
		QueryID:      "q-1",
	}))
}

func (f *fixture) state(t *testing.T) models.ChatState {
	t.Helper()

	state, err := f.states.GetState(context.Background(), testChatID)
	require.NoError(t, err)

	return state
}

func rosterFile(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)

		values := r
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	return buf.Bytes()
}

func validRoster(t *testing.T) []byte {
	t.Helper()

	return rosterFile(t, [][]any{
		{"График отпусков 2025"},
		{"ФИО", "Организация", "Количество дней", "Дата начала"},
		{"Иванов Иван", "ООО Ромашка", 14, "01.07.2025"},
		{"Петрова Анна", "ООО Лютик", 7, "15.07.2025"},
		{"Сидоров Пётр", "", 10, "не дата"},
	})
}

func TestBotService_Start(t *testing.T) {
	f := newFixture(t)

	f.text(t, "/start")

	msg := f.last(t)
	assert.Contains(t, msg.Text, "👋 Привет! Я бот для управления графиком отпусков.")
	assert.Len(t, msg.Keyboard, 3)
	assert.Equal(t, models.CallbackSetChannel, msg.Keyboard[2][0].CallbackData)
}

func TestBotService_PlainTextShowsHint(t *testing.T) {
	f := newFixture(t)

	f.text(t, "привет")

	msg := f.last(t)
	assert.Equal(t, "Отправьте Excel-файл (.xlsx) с графиком отпусков,\nили воспользуйтесь меню:", msg.Text)
	assert.NotEmpty(t, msg.Keyboard)
}

func TestBotService_UnknownCommandShowsHint(t *testing.T) {
	f := newFixture(t)

	f.text(t, "/track")

	assert.Contains(t, f.last(t).Text, "Отправьте Excel-файл")
}

func TestBotService_HelpMentionsNotifyTime(t *testing.T) {
	f := newFixture(t)

	f.text(t, "/help@vacation_bot")

	msg := f.last(t)
	assert.Contains(t, msg.Text, "ℹ️ Справка")
	assert.Contains(t, msg.Text, "ежедневно в 09:00.")
}

func TestBotService_UploadThenConfigureLeadDays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	content := validRoster(t)

	f.messenger.On("FileURL", mock.Anything, "file-1").Return(testFileURL, nil).Once()
	f.downloader.On("Download", mock.Anything, testFileURL).Return(content, nil).Once()

	require.NoError(t, f.service.HandleEvent(ctx, models.Event{
		Type:     models.EventNewMessage,
		ChatID:   testChatID,
		FileID:   "file-1",
		FileName: "roster.xlsx",
	}))

	msgs := f.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "📂 Файл получен, обрабатываю...", msgs[0].Text)
	assert.Equal(t,
		"✅ Загружено 2 записей\n⚠️ Пропущено: 1 строк\n\n"+
			"Пример:\n• Иванов Иван — 2025-07-01 (14 дн.)\n• Петрова Анна — 2025-07-15 (7 дн.)\n\n"+
			"⏰ За сколько дней до начала отпуска присылать уведомление?\nВведите число (например: 7)",
		msgs[1].Text,
	)
	assert.Equal(t, models.StateAwaitingLeadDays, f.state(t))

	doc := f.store.Load(ctx)
	require.Len(t, doc.Vacations[testChatID], 2)
	assert.Equal(t, models.NewDate(2025, time.July, 15), doc.Vacations[testChatID][0].EndDate)

	saved, err := os.ReadFile(f.filePath)
	require.NoError(t, err)
	assert.Equal(t, content, saved)

	f.text(t, "неделя")
	assert.Equal(t, "❌ Введите целое положительное число (например: 7)", f.last(t).Text)
	assert.Equal(t, models.StateAwaitingLeadDays, f.state(t))

	f.text(t, "-3")
	assert.Equal(t, models.StateAwaitingLeadDays, f.state(t))

	f.text(t, " 7 ")

	msg := f.last(t)
	assert.Contains(t, msg.Text, "✅ Настройка сохранена!")
	assert.Contains(t, msg.Text, "📅 Загружено записей: 2")
	assert.Contains(t, msg.Text, "за 7 дн. до начала отпуска")
	assert.Equal(t, models.StateIdle, f.state(t))
	assert.Equal(t, 7, f.store.Load(ctx).Settings[testChatID].NotifyDays)
}

func TestBotService_UploadSampleIsTruncated(t *testing.T) {
	f := newFixture(t)

	content := rosterFile(t, [][]any{
		{"ФИО", "Дата начала", "Кол-во дней"},
		{"Орлов Олег", "01.08.2025", 1},
		{"Белова Вера", "02.08.2025", 2},
		{"Зайцев Игорь", "03.08.2025", 3},
		{"Козлова Мария", "04.08.2025", 4},
		{"Лебедев Антон", "05.08.2025", 5},
	})

	f.downloader.On("Download", mock.Anything, testFileURL).Return(content, nil).Once()

	f.text(t, testFileURL)

	msg := f.last(t)
	assert.Contains(t, msg.Text, "✅ Загружено 5 записей\n\n")
	assert.Contains(t, msg.Text, "\n  ...и ещё 2")
	assert.NotContains(t, msg.Text, "Пропущено")
}

func TestBotService_UploadWithoutRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.ReplaceVacations(ctx, testChatID, []models.VacationRecord{
		models.NewVacationRecord("Старый", "", 3, models.NewDate(2025, time.June, 1)),
	}))

	f.downloader.On("Download", mock.Anything, testFileURL).
		Return(rosterFile(t, [][]any{{"просто"}, {"какой-то", "текст"}}), nil).Once()

	f.text(t, testFileURL)

	msg := f.last(t)
	assert.Contains(t, msg.Text, "⚠️ Не удалось найти данные в файле.")
	assert.Contains(t, msg.Text, "ФИО, Организация, Кол-во дней, Дата начала")
	assert.Equal(t, models.StateIdle, f.state(t))
	assert.Len(t, f.store.Load(ctx).Vacations[testChatID], 1)
}

func TestBotService_UploadDownloadError(t *testing.T) {
	f := newFixture(t)

	f.downloader.On("Download", mock.Anything, testFileURL).Return(nil, errors.New("timeout")).Once()

	f.text(t, testFileURL)

	assert.Equal(t, "❌ Ошибка скачивания файла: timeout", f.last(t).Text)
	assert.Equal(t, models.StateIdle, f.state(t))
}

func TestBotService_UploadReadError(t *testing.T) {
	f := newFixture(t)

	f.downloader.On("Download", mock.Anything, testFileURL).Return([]byte("not a workbook"), nil).Once()

	f.text(t, testFileURL)

	assert.Contains(t, f.last(t).Text, "❌ Ошибка чтения Excel:")
}

func TestBotService_FileURLError(t *testing.T) {
	f := newFixture(t)

	f.messenger.On("FileURL", mock.Anything, "file-1").Return("", errors.New("not found")).Once()

	require.NoError(t, f.service.HandleEvent(context.Background(), models.Event{
		Type:   models.EventNewMessage,
		ChatID: testChatID,
		FileID: "file-1",
	}))

	assert.Equal(t, "❌ Ошибка получения файла от сервера.", f.last(t).Text)
}

func TestBotService_CommandsBypassAwaitingState(t *testing.T) {
	f := newFixture(t)

	f.click(t, models.CallbackNotifications)
	assert.Equal(t, "🔔 Измените срок оповещения об отпуске (в днях):\n\nВведите число (например: 7)", f.last(t).Text)
	assert.Equal(t, models.StateAwaitingLeadDays, f.state(t))

	f.text(t, "/status")

	assert.Contains(t, f.last(t).Text, "📊 Статус бота")
	assert.Equal(t, models.StateAwaitingLeadDays, f.state(t))

	f.text(t, "5")
	assert.Contains(t, f.last(t).Text, "за 5 дн.")
}

func TestBotService_NotifyCommandEntersAwaitingState(t *testing.T) {
	f := newFixture(t)

	f.text(t, "/notify")

	assert.Equal(t, models.StateAwaitingLeadDays, f.state(t))
}

func TestBotService_Status(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.click(t, models.CallbackStatus)
	assert.Equal(t, "📊 Статус бота\n\n📅 Записей об отпусках: 0\n⏰ Уведомлять за: не задано дн.\n", f.last(t).Text)

	require.NoError(t, f.store.ReplaceVacations(ctx, testChatID, []models.VacationRecord{
		models.NewVacationRecord("Иванов Иван", "", 14, models.NewDate(2025, time.July, 1)),
	}))
	require.NoError(t, f.store.SetLeadDays(ctx, testChatID, 3))

	f.text(t, "/status")
	assert.Equal(t, "📊 Статус бота\n\n📅 Записей об отпусках: 1\n⏰ Уведомлять за: 3 дн.\n", f.last(t).Text)
	assert.NotEmpty(t, f.last(t).Keyboard)
}

func TestBotService_Schedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.service.SetClock(func() time.Time {
		return time.Date(2025, time.June, 25, 12, 0, 0, 0, time.UTC)
	})

	f.click(t, models.CallbackSchedule)
	assert.Equal(t, "📅 Расписание\n\nДанные об отпусках не загружены.", f.last(t).Text)

	require.NoError(t, f.store.ReplaceVacations(ctx, testChatID, []models.VacationRecord{
		models.NewVacationRecord("Петрова Анна", "", 7, models.NewDate(2025, time.July, 12)),
		models.NewVacationRecord("Иванов Иван", "", 14, models.NewDate(2025, time.July, 1)),
		models.NewVacationRecord("Уже в отпуске", "", 14, models.NewDate(2025, time.June, 20)),
	}))

	f.click(t, models.CallbackSchedule)
	assert.Equal(t, "📅 Расписание\n\nПорог уведомлений не настроен. Загрузите Excel-файл.", f.last(t).Text)

	require.NoError(t, f.store.SetLeadDays(ctx, testChatID, 5))

	f.text(t, "/schedule")
	assert.Equal(t,
		"📅 Расписание уведомлений (за 5 дн.)\n\n"+
			"• 26.06.2025 — Иванов Иван (отпуск с 01.07.2025)\n"+
			"• 07.07.2025 — Петрова Анна (отпуск с 12.07.2025)",
		f.last(t).Text,
	)

	f.service.SetClock(func() time.Time {
		return time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)
	})

	f.text(t, "/schedule")
	assert.Contains(t, f.last(t).Text, "Ближайших уведомлений нет.")
}

func TestBotService_SetChannel(t *testing.T) {
	f := newFixture(t)

	f.click(t, models.CallbackSetChannel)

	assert.Equal(t, "✅ Этот чат установлен для уведомлений об отпусках.", f.last(t).Text)
	assert.Equal(t, testChatID, f.store.Load(context.Background()).BroadcastChatID)
}

func TestBotService_SendFailureIsReturned(t *testing.T) {
	messenger := mocks.NewMessenger(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewVacationStore(storage.NewFileBackend(filepath.Join(t.TempDir(), "data.json")), logger)

	svc := service.NewBotService(repository.NewMemoryChatStateRepository(), store, messenger, mocks.NewFileDownloader(t),
		&config.Config{NotifyTime: "09:00"}, logger)

	messenger.On("SendMessage", mock.Anything, "1", mock.Anything, mock.Anything).Return(errors.New("flood")).Once()

	err := svc.HandleEvent(context.Background(), models.Event{Type: models.EventNewMessage, ChatID: "1", Text: "/start"})
	assert.Error(t, err)
}
