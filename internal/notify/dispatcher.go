package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/puntodeagua/internal/model"
)

const (
	defaultQueueSize   = 64
	defaultSendTimeout = 10 * time.Second
)

// Sink принимает готовое сообщение для доставки.
type Sink interface {
	Send(ctx context.Context, text string) error
}

// Event описывает событие оформления заказа, ожидающее доставки.
type Event struct {
	ID    uuid.UUID
	Order model.Order
}

// Options задаёт параметры Dispatcher. Нулевые значения заменяются значениями по умолчанию.
type Options struct {
	QueueSize   int
	SendTimeout time.Duration
	Location    *time.Location
}

// Dispatcher передаёт события о заказах в Sink в отдельной горутине.
// Постановка в очередь никогда не блокирует вызывающего, ошибки доставки только журналируются.
type Dispatcher struct {
	sink        Sink
	logger      *zap.Logger
	queue       chan Event
	sendTimeout time.Duration
	location    *time.Location
}

// NewDispatcher создаёт диспетчер уведомлений поверх sink.
func NewDispatcher(sink Sink, logger *zap.Logger, opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	return &Dispatcher{
		sink:        sink,
		logger:      logger,
		queue:       make(chan Event, opts.QueueSize),
		sendTimeout: opts.SendTimeout,
		location:    opts.Location,
	}
}

// OrderPlaced ставит уведомление о заказе в очередь. Возвращает false, если очередь заполнена.
func (d *Dispatcher) OrderPlaced(order model.Order) bool {
	ev := Event{ID: uuid.New(), Order: order}

	select {
	case d.queue <- ev:
		return true
	default:
		d.logger.Warn("notification queue is full, event dropped",
			zap.String("eventID", ev.ID.String()),
			zap.Int64("orderID", order.ID),
		)
		return false
	}
}

// Run доставляет события до отмены контекста.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if n := len(d.queue); n > 0 {
				d.logger.Warn("notification dispatcher stopped with pending events", zap.Int("pending", n))
			}
			return
		case ev := <-d.queue:
			d.deliver(ctx, ev)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev Event) {
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	text := FormatOrderMessage(ev.Order, d.location)
	if err := d.sink.Send(sendCtx, text); err != nil {
		d.logger.Error("order notification failed",
			zap.Error(fmt.Errorf("%w: %w", model.ErrNotification, err)),
			zap.String("eventID", ev.ID.String()),
			zap.Int64("orderID", ev.Order.ID),
		)
		return
	}

	d.logger.Info("order notification sent",
		zap.String("eventID", ev.ID.String()),
		zap.Int64("orderID", ev.Order.ID),
	)
}
