// Package storage persists the vacation document as a whole.
package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/go-faster/errors"

	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
)

var ErrDocumentNotFound = errors.New("документ не найден")

// Backend stores the serialized document. Read returns ErrDocumentNotFound when nothing was saved yet.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// Atomic is implemented by backends that can run a read-modify-write cycle in one transaction.
type Atomic interface {
	Atomically(ctx context.Context, fn func(ctx context.Context) error) error
}

// VacationStore serializes every load→mutate→save cycle behind one mutex.
type VacationStore struct {
	backend Backend
	logger  *slog.Logger
	mu      sync.Mutex
}

func NewVacationStore(backend Backend, logger *slog.Logger) *VacationStore {
	return &VacationStore{
		backend: backend,
		logger:  logger,
	}
}

// Load never fails: a missing or unreadable document yields an empty one.
func (s *VacationStore) Load(ctx context.Context) *models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

func (s *VacationStore) Save(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx, doc)
}

// Update loads the document, applies fn and saves the result if fn reports a change.
// Returning an error from fn discards the mutation.
func (s *VacationStore) Update(ctx context.Context, fn func(doc *models.Document) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cycle := func(ctx context.Context) error {
		doc := s.load(ctx)

		changed, err := fn(doc)
		if err != nil {
			return err
		}

		if !changed {
			return nil
		}

		return s.save(ctx, doc)
	}

	if atomic, ok := s.backend.(Atomic); ok {
		return atomic.Atomically(ctx, cycle)
	}

	return cycle(ctx)
}

// ReplaceVacations stores a fresh upload for the chat and resets its notification log.
func (s *VacationStore) ReplaceVacations(ctx context.Context, chatID string, records []models.VacationRecord) error {
	return s.Update(ctx, func(doc *models.Document) (bool, error) {
		doc.ReplaceVacations(chatID, records)
		return true, nil
	})
}

func (s *VacationStore) SetLeadDays(ctx context.Context, chatID string, days int) error {
	return s.Update(ctx, func(doc *models.Document) (bool, error) {
		doc.SetLeadDays(chatID, days)
		return true, nil
	})
}

func (s *VacationStore) SetBroadcastChat(ctx context.Context, chatID string) error {
	return s.Update(ctx, func(doc *models.Document) (bool, error) {
		doc.SetBroadcastChat(chatID)
		return true, nil
	})
}

func (s *VacationStore) load(ctx context.Context) *models.Document {
	data, err := s.backend.Read(ctx)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			s.logger.Info("Документ с данными не найден, начинаем с пустого")
		} else {
			s.logger.Warn("Не удалось прочитать документ с данными", "error", err)
		}

		return models.NewDocument()
	}

	doc := models.NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		s.logger.Warn("Документ с данными повреждён, начинаем с пустого", "error", err)
		return models.NewDocument()
	}

	return doc
}

func (s *VacationStore) save(ctx context.Context, doc *models.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal document")
	}

	if err := s.backend.Write(ctx, data); err != nil {
		return errors.Wrap(err, "write document")
	}

	return nil
}
