// Package presenter содержит реализацию порта уведомлений: рассылку событий
// подписчикам и журнал последних уведомлений для опроса.
package presenter

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"notepad/internal/notepad/domain/entities"
	"notepad/internal/notepad/ports/presenter"
	"notepad/pkg/logger"
)

// DefaultRecentSize - размер журнала последних уведомлений.
const DefaultRecentSize = 50

// Виды событий.
const (
	EventNotes        = "notes"
	EventFolders      = "folders"
	EventNotification = "notification"
)

// Константы для логирования.
const (
	LogNotification = "notification"
	LogEventDropped = "subscriber is slow, event dropped"
	LogSubscribed   = "presenter subscriber added"
	LogUnsubscribed = "presenter subscriber removed"
	LogHubClosed    = "presenter hub closed"
)

// Notification - уведомление для пользователя.
type Notification struct {
	Seq      int64              `json:"seq"`
	Message  string             `json:"message"`
	Severity presenter.Severity `json:"severity"`
	At       time.Time          `json:"at"`
}

// Event - событие для подписчика. Заполнено одно из полей по Kind.
type Event struct {
	Kind         string            `json:"kind"`
	Notes        []entities.Note   `json:"notes,omitempty"`
	Folders      []entities.Folder `json:"folders,omitempty"`
	Notification *Notification     `json:"notification,omitempty"`
}

// Hub рассылает события подписчикам без блокировки: если буфер подписчика полон,
// событие для него отбрасывается.
type Hub struct {
	mu          sync.Mutex
	subscribers map[int]chan Event
	nextID      int
	dropped     int
	closed      bool

	recent     []Notification
	recentSize int
	seq        int64
	now        func() time.Time
}

var _ presenter.Presenter = (*Hub)(nil)

// NewHub создает Hub с журналом на recentSize уведомлений.
func NewHub(recentSize int) *Hub {
	if recentSize <= 0 {
		recentSize = DefaultRecentSize
	}
	return &Hub{
		subscribers: make(map[int]chan Event),
		recentSize:  recentSize,
		now:         time.Now,
	}
}

// Subscribe регистрирует подписчика с буфером buffer. Возвращаемая функция отменяет
// подписку и закрывает канал. После Close возвращается уже закрытый канал.
func (h *Hub) Subscribe(ctx context.Context, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subscribers[id] = ch
	h.mu.Unlock()

	logger.Log(ctx).Debug(ctx, LogSubscribed, zap.Int("subscriber", id))

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subscribers[id]; !ok {
			return
		}
		delete(h.subscribers, id)
		close(ch)
		logger.Log(ctx).Debug(ctx, LogUnsubscribed, zap.Int("subscriber", id))
	}
}

// Close закрывает каналы всех подписчиков. Уведомления продолжают попадать в журнал.
func (h *Hub) Close(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subscribers {
		delete(h.subscribers, id)
		close(ch)
	}
	logger.Log(ctx).Info(ctx, LogHubClosed)
}

// Subscribers возвращает число активных подписчиков.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// OnNotesChanged рассылает снимок заметок.
func (h *Hub) OnNotesChanged(ctx context.Context, notes []entities.Note) {
	h.publish(ctx, Event{Kind: EventNotes, Notes: notes})
}

// OnFoldersChanged рассылает снимок папок.
func (h *Hub) OnFoldersChanged(ctx context.Context, folders []entities.Folder) {
	h.publish(ctx, Event{Kind: EventFolders, Folders: folders})
}

// Notify пишет уведомление в лог и журнал и рассылает его.
func (h *Hub) Notify(ctx context.Context, message string, severity presenter.Severity) {
	log := logger.Log(ctx).With(zap.String("severity", string(severity)), zap.String("message", message))
	if severity == presenter.SeverityError {
		log.Warn(ctx, LogNotification)
	} else {
		log.Info(ctx, LogNotification)
	}

	h.mu.Lock()
	h.seq++
	n := Notification{Seq: h.seq, Message: message, Severity: severity, At: h.now()}
	h.recent = append(h.recent, n)
	if len(h.recent) > h.recentSize {
		h.recent = h.recent[len(h.recent)-h.recentSize:]
	}
	h.mu.Unlock()

	h.publish(ctx, Event{Kind: EventNotification, Notification: &n})
}

// Recent возвращает уведомления с номером больше after, от старых к новым.
func (h *Hub) Recent(after int64) []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Notification, 0, len(h.recent))
	for _, n := range h.recent {
		if n.Seq > after {
			out = append(out, n)
		}
	}
	return out
}

// Dropped возвращает число событий, отброшенных из-за полных буферов.
func (h *Hub) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// RegisterMetrics публикует число подписчиков и отброшенных событий.
func (h *Hub) RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "notepad_event_subscribers",
			Help: "Number of connected event stream subscribers.",
		}, func() float64 { return float64(h.Subscribers()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "notepad_events_dropped_total",
			Help: "Events dropped because a subscriber buffer was full.",
		}, func() float64 { return float64(h.Dropped()) }),
	)
}

func (h *Hub) publish(ctx context.Context, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			h.dropped++
			logger.Log(ctx).Debug(ctx, LogEventDropped, zap.Int("subscriber", id), zap.String("kind", ev.Kind))
		}
	}
}
