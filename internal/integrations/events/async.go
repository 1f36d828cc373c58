package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

const (
	defaultBufferSize     = 256
	defaultPublishTimeout = 5 * time.Second
)

// sink отправляет сериализованное событие во внешнюю систему
type sink interface {
	send(ctx context.Context, routingKey string, body []byte) error
	close() error
}

// AsyncPublisher публикует события из фоновой горутины.
// Publish никогда не блокирует вызывающего: при переполнении очереди событие отбрасывается.
type AsyncPublisher struct {
	sink    sink
	queue   chan domain.Event
	timeout time.Duration
	logger  Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func newAsyncPublisher(s sink, bufferSize int, logger Logger) *AsyncPublisher {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	p := &AsyncPublisher{
		sink:    s,
		queue:   make(chan domain.Event, bufferSize),
		timeout: defaultPublishTimeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish ставит событие в очередь на отправку
func (p *AsyncPublisher) Publish(_ context.Context, event domain.Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.logger.Warn("Publish: publisher is closed, dropping event %s for booking id=%d", event.Type, event.BookingID)
		return
	}

	select {
	case p.queue <- event:
	default:
		p.logger.Warn("Publish: queue is full, dropping event %s for booking id=%d", event.Type, event.BookingID)
	}
}

func (p *AsyncPublisher) run() {
	defer close(p.done)

	for event := range p.queue {
		body, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("run: failed to marshal event %s: %v", event.Type, err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.sink.send(ctx, string(event.Type), body); err != nil {
			p.logger.Error("run: failed to publish event %s for booking id=%d: %v", event.Type, event.BookingID, err)
		}
		cancel()
	}
}

// Close дожидается отправки уже принятых событий и закрывает соединение
func (p *AsyncPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.sink.close()
}
