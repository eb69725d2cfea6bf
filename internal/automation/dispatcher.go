package automation

import (
	"context"
	"sync"
	"time"

	"github.com/salonflow/scheduling-service/internal/domain"
)

// DefaultHandlerTimeout таймаут на выполнение одного обработчика
const DefaultHandlerTimeout = 10 * time.Second

// Event событие автоматизации: триггер плюс снимок записи на момент
// диспетчеризации. Обработчики получают копию и не могут повлиять
// на состояние записи.
type Event struct {
	Trigger     domain.Trigger
	Appointment domain.Appointment
	OccurredAt  time.Time
}

// Dispatcher реестр обработчиков автоматизации.
// Dispatch работает по принципу fire-and-forget: вызывается после коммита
// транзакции, ошибки обработчиков логируются и не влияют на результат
// операции с записью.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[domain.Trigger][]Handler

	timeout time.Duration
	logger  Logger
	metrics Metrics

	wg sync.WaitGroup
}

// NewDispatcher создает диспетчер с таймаутом обработчика по умолчанию
func NewDispatcher(logger Logger, metrics Metrics) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[domain.Trigger][]Handler),
		timeout:  DefaultHandlerTimeout,
		logger:   logger,
		metrics:  metrics,
	}
}

// Register подписывает обработчик на триггер
func (d *Dispatcher) Register(trigger domain.Trigger, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[trigger] = append(d.handlers[trigger], handler)
}

// Dispatch асинхронно доставляет событие всем подписчикам триггера.
// Каждый обработчик выполняется в отдельной горутине со своим таймаутом;
// паника обработчика не роняет процесс.
func (d *Dispatcher) Dispatch(event Event) {
	d.mu.RLock()
	handlers := append([]Handler(nil), d.handlers[event.Trigger]...)
	d.mu.RUnlock()

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if len(handlers) == 0 {
		if d.metrics != nil {
			d.metrics.IncAutomationDispatch(string(event.Trigger), "no_handlers")
		}
		return
	}

	for _, handler := range handlers {
		d.wg.Add(1)
		go d.runHandler(handler, event)
	}
}

// Wait блокируется до завершения всех запущенных обработчиков.
// Используется при graceful shutdown и в тестах.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) runHandler(handler Handler, event Event) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("automation: handler %s panicked on trigger %s: %v", handler.Name(), event.Trigger, r)
			if d.metrics != nil {
				d.metrics.IncAutomationDispatch(string(event.Trigger), "panic")
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := handler.Handle(ctx, event); err != nil {
		d.logger.Error("automation: handler %s failed on trigger %s for appointment %d: %v",
			handler.Name(), event.Trigger, event.Appointment.ID, err)
		if d.metrics != nil {
			d.metrics.IncAutomationDispatch(string(event.Trigger), "error")
		}
		return
	}

	if d.metrics != nil {
		d.metrics.IncAutomationDispatch(string(event.Trigger), "ok")
	}
}
