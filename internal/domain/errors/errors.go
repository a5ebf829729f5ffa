package errors

import (
	"fmt"
)

type ErrUnknownCommand struct {
	Command string
}

func (e *ErrUnknownCommand) Error() string {
	return "неизвестная команда: " + e.Command
}

type ErrInvalidLeadDays struct {
	Value string
}

func (e *ErrInvalidLeadDays) Error() string {
	return fmt.Sprintf("некорректное количество дней: '%s'", e.Value)
}

func (e *ErrInvalidLeadDays) Is(target error) bool {
	_, ok := target.(*ErrInvalidLeadDays)
	return ok
}

type ErrDownloadFailed struct {
	URL   string
	Cause error
}

func (e *ErrDownloadFailed) Error() string {
	return fmt.Sprintf("ошибка скачивания файла %s: %v", e.URL, e.Cause)
}

func (e *ErrDownloadFailed) Unwrap() error {
	return e.Cause
}

type ErrFileNotResolved struct {
	FileID string
	Cause  error
}

func (e *ErrFileNotResolved) Error() string {
	return fmt.Sprintf("не удалось получить URL файла %s: %v", e.FileID, e.Cause)
}

func (e *ErrFileNotResolved) Unwrap() error {
	return e.Cause
}

type ErrUnknownStorageBackend struct {
	Backend string
}

func (e *ErrUnknownStorageBackend) Error() string {
	return fmt.Sprintf("неизвестный тип хранилища: %s", e.Backend)
}

type ErrInvalidChatID struct {
	ChatID string
}

func (e *ErrInvalidChatID) Error() string {
	return fmt.Sprintf("некорректный идентификатор чата: %s", e.ChatID)
}

type ErrBuildSQLQuery struct {
	Operation string
	Cause     error
}

func (e *ErrBuildSQLQuery) Error() string {
	return fmt.Sprintf("ошибка при построении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrBuildSQLQuery) Unwrap() error {
	return e.Cause
}

type ErrSQLExecution struct {
	Operation string
	Cause     error
}

func (e *ErrSQLExecution) Error() string {
	return fmt.Sprintf("ошибка при выполнении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrSQLExecution) Unwrap() error {
	return e.Cause
}

type ErrChatStateNotFound struct {
	ChatID string
}

func (e *ErrChatStateNotFound) Error() string {
	return fmt.Sprintf("состояние чата не найдено: %s", e.ChatID)
}

func (e *ErrChatStateNotFound) Is(target error) bool {
	_, ok := target.(*ErrChatStateNotFound)
	return ok
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}
