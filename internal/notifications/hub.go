package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Типы событий, которые публикует бэкенд.
const (
	EventLedgerImported  = "ledger.imported"
	EventSnapshotCreated = "snapshot.created"
)

const subscriberBuffer = 16

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type subscriber struct {
	userID uuid.UUID
	ch     chan Event
}

// Hub раздает доменные события SSE-подписчикам. Для каждого пользователя
// хранится последнее событие каждого типа: переподключившийся клиент
// получает актуальное состояние без ожидания следующей публикации.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	lastEvents  map[uuid.UUID]map[string]Event
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*subscriber]struct{}),
		lastEvents:  make(map[uuid.UUID]map[string]Event),
	}
}

// Subscribe подписывает пользователя на события и возвращает канал и
// функцию отписки. Последние события пользователя доставляются сразу.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	sub := &subscriber{
		userID: userID,
		ch:     make(chan Event, subscriberBuffer),
	}

	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	for _, event := range h.lastEvents[userID] {
		sub.ch <- event
	}
	h.mu.Unlock()

	return sub.ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if _, ok := h.subscribers[sub]; !ok {
			return
		}
		delete(h.subscribers, sub)
		close(sub.ch)
	}
}

// Publish отправляет событие всем подписчикам пользователя. Медленный
// подписчик с полным буфером событие теряет, публикация не блокируется.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.Lock()
	defer h.mu.Unlock()

	byType, ok := h.lastEvents[userID]
	if !ok {
		byType = make(map[string]Event)
		h.lastEvents[userID] = byType
	}
	byType[event.Type] = event

	for sub := range h.subscribers {
		if sub.userID != userID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
}
