package service

import (
	"fmt"
	"strings"

	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
	"github.com/central-university-dev/go-vacation-bot/internal/reminder"
)

const (
	sampleSize = 3

	textFileReceived   = "📂 Файл получен, обрабатываю..."
	textFileNotFetched = "❌ Ошибка получения файла от сервера."
	textInvalidDays    = "❌ Введите целое положительное число (например: 7)"
	textAskLeadDays    = "🔔 Измените срок оповещения об отпуске (в днях):\n\nВведите число (например: 7)"
	textChannelSet     = "✅ Этот чат установлен для уведомлений об отпусках."
	textHint           = "Отправьте Excel-файл (.xlsx) с графиком отпусков,\nили воспользуйтесь меню:"

	textStart = "👋 Привет! Я бот для управления графиком отпусков.\n\n" +
		"Что я умею:\n" +
		"📎 Принимать Excel-файл с графиком отпусков\n" +
		"⏰ Напоминать о предстоящих отпусках за нужное кол-во дней\n" +
		"📢 Отправлять уведомления в указанный чат\n\n" +
		"👇 Отправьте Excel-файл чтобы начать, или выберите действие:"

	textNoData = "⚠️ Не удалось найти данные в файле.\n\n" +
		"Убедитесь, что таблица содержит столбцы:\n" +
		"ФИО, Организация, Кол-во дней, Дата начала"

	textScheduleNoData   = "📅 Расписание\n\nДанные об отпусках не загружены."
	textScheduleNoLead   = "📅 Расписание\n\nПорог уведомлений не настроен. Загрузите Excel-файл."
	textScheduleNothing  = "📅 Расписание\n\nБлижайших уведомлений нет.\nВсе отпуска уже начались или уведомления были отправлены."
	textLeadDaysNotSet   = "не задано"
	displayDateLayout    = "02.01.2006"
	textDownloadErrorFmt = "❌ Ошибка скачивания файла: %v"
	textReadErrorFmt     = "❌ Ошибка чтения Excel: %v"
	textSaveErrorFmt     = "❌ Ошибка сохранения данных: %v"
	textUnexpectedFmt    = "❌ Ошибка: %v"
)

func menuKeyboard() models.Keyboard {
	return models.Keyboard{
		{
			{Text: "📊 Статус", CallbackData: models.CallbackStatus},
			{Text: "ℹ️ Помощь", CallbackData: models.CallbackHelp},
		},
		{
			{Text: "📅 Расписание", CallbackData: models.CallbackSchedule},
			{Text: "🔔 Уведомления", CallbackData: models.CallbackNotifications},
		},
		{
			{Text: "📢 Установить этот чат", CallbackData: models.CallbackSetChannel},
		},
	}
}

func helpText(notifyTime string) string {
	return "ℹ️ Справка\n\n" +
		"1. Отправьте Excel-файл (.xlsx) с графиком отпусков.\n" +
		"   Бот найдёт столбцы: ФИО, Организация, Кол-во дней, Дата.\n\n" +
		"2. После загрузки бот спросит за сколько дней\n" +
		"   до отпуска присылать уведомление.\n\n" +
		"3. Команды:\n" +
		"   /start — начало работы\n" +
		"   /status — статус и настройки\n" +
		"   /schedule — ближайшие уведомления\n" +
		"   /notify — изменить срок оповещения\n" +
		"   /set_channel — установить этот чат для уведомлений\n\n" +
		"4. Уведомления приходят ежедневно в " + notifyTime + "."
}

func statusText(count int, settings models.ChatSettings) string {
	lead := textLeadDaysNotSet
	if settings.Configured() {
		lead = fmt.Sprint(settings.NotifyDays)
	}

	return fmt.Sprintf("📊 Статус бота\n\n📅 Записей об отпусках: %d\n⏰ Уведомлять за: %s дн.\n", count, lead)
}

func leadDaysSavedText(count, days int, notifyTime string) string {
	return fmt.Sprintf(
		"✅ Настройка сохранена!\n\n"+
			"📅 Загружено записей: %d\n"+
			"⏰ Уведомления: за %d дн. до начала отпуска\n\n"+
			"Бот будет присылать напоминания каждый день в %s.",
		count, days, notifyTime,
	)
}

func scheduleText(leadDays int, upcoming []reminder.UpcomingReminder) string {
	lines := []string{fmt.Sprintf("📅 Расписание уведомлений (за %d дн.)\n", leadDays)}

	for _, u := range upcoming {
		lines = append(lines, fmt.Sprintf("• %s — %s (отпуск с %s)",
			u.NotifyDate.Format(displayDateLayout),
			u.Record.FullName,
			u.Record.StartDate.Format(displayDateLayout),
		))
	}

	return strings.Join(lines, "\n")
}

func uploadedText(records []models.VacationRecord, skipped int) string {
	sample := make([]string, 0, sampleSize)

	for i, r := range records {
		if i == sampleSize {
			break
		}

		sample = append(sample, fmt.Sprintf("• %s — %s (%d дн.)", r.FullName, r.StartDate, r.DurationDays))
	}

	sampleText := strings.Join(sample, "\n")
	if len(records) > sampleSize {
		sampleText += fmt.Sprintf("\n  ...и ещё %d", len(records)-sampleSize)
	}

	msg := fmt.Sprintf("✅ Загружено %d записей", len(records))
	if skipped > 0 {
		msg += fmt.Sprintf("\n⚠️ Пропущено: %d строк", skipped)
	}

	return msg + "\n\nПример:\n" + sampleText +
		"\n\n⏰ За сколько дней до начала отпуска присылать уведомление?\nВведите число (например: 7)"
}
