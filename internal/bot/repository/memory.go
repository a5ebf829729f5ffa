// Package repository keeps per-chat dialog state.
package repository

import (
	"context"
	"sync"

	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
)

// MemoryChatStateRepository loses all states on restart.
type MemoryChatStateRepository struct {
	states map[string]models.ChatState
	mu     sync.RWMutex
}

func NewMemoryChatStateRepository() *MemoryChatStateRepository {
	return &MemoryChatStateRepository{
		states: make(map[string]models.ChatState),
	}
}

func (r *MemoryChatStateRepository) GetState(_ context.Context, chatID string) (models.ChatState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, exists := r.states[chatID]
	if !exists {
		return models.StateIdle, nil
	}

	return state, nil
}

func (r *MemoryChatStateRepository) SetState(_ context.Context, chatID string, state models.ChatState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state == models.StateIdle {
		delete(r.states, chatID)
		return nil
	}

	r.states[chatID] = state

	return nil
}
