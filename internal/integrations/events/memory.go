package events

import (
	"context"
	"sync"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// Noop отбрасывает все события
type Noop struct{}

// Publish ничего не делает
func (Noop) Publish(context.Context, domain.Event) {}

// Memory хранит опубликованные события в памяти.
// Используется в локальном режиме и в тестах.
type Memory struct {
	mu     sync.Mutex
	events []domain.Event
}

// NewMemory создает пустой in-memory publisher
func NewMemory() *Memory {
	return &Memory{}
}

// Publish сохраняет событие
func (m *Memory) Publish(_ context.Context, event domain.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Events возвращает копию сохраненных событий
func (m *Memory) Events() []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Event, len(m.events))
	copy(out, m.events)
	return out
}

// Types возвращает типы сохраненных событий в порядке публикации
func (m *Memory) Types() []domain.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EventType, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}

// Reset удаляет сохраненные события
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
