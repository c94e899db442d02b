package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anonto42/travelsocial/backend/internal/metrics"
)

// Handler reacts to a published event.
type Handler func(ctx context.Context, env Envelope) error

type subscription struct {
	name    string
	kinds   map[Kind]struct{}
	handler Handler
}

func (s subscription) accepts(kind Kind) bool {
	if len(s.kinds) == 0 {
		return true
	}
	_, ok := s.kinds[kind]
	return ok
}

// Dispatcher is the in-process event bus. Subscribers run synchronously on
// the publishing goroutine in registration order.
type Dispatcher struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{logger: logger.With("component", "events.Dispatcher")}
}

// Subscribe registers handler for kinds, or for every kind when none are given.
func (d *Dispatcher) Subscribe(name string, handler Handler, kinds ...Kind) {
	set := make(map[Kind]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, subscription{name: name, kinds: set, handler: handler})
}

// Publish delivers env to its subscribers. Subscriber failures are logged
// and counted; they never reach the publisher.
func (d *Dispatcher) Publish(ctx context.Context, env Envelope) {
	d.mu.RLock()
	subs := make([]subscription, 0, len(d.subs))
	for _, s := range d.subs {
		if s.accepts(env.Kind) {
			subs = append(subs, s)
		}
	}
	d.mu.RUnlock()

	metrics.EventsPublished.WithLabelValues(string(env.Kind)).Inc()

	for _, s := range subs {
		d.deliver(ctx, s, env)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, s subscription, env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			metrics.SubscriberFailures.WithLabelValues(s.name, string(env.Kind), "panic").Inc()
			d.logger.Error("Subscriber panicked",
				"subscriber", s.name,
				"event_id", env.ID,
				"kind", env.Kind,
				"panic", fmt.Sprint(r),
			)
		}
	}()

	if err := s.handler(ctx, env); err != nil {
		metrics.SubscriberFailures.WithLabelValues(s.name, string(env.Kind), "error").Inc()
		d.logger.Error("Subscriber failed",
			"subscriber", s.name,
			"event_id", env.ID,
			"kind", env.Kind,
			"actor_id", env.ActorID,
			"error", err,
		)
	}
}
