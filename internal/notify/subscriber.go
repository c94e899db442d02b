package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anonto42/travelsocial/backend/internal/events"
	"github.com/anonto42/travelsocial/backend/internal/metrics"
)

// SubscriberName labels the notification subscriber in logs and metrics.
const SubscriberName = "notifications"

// Subscriber connects the saga to the event bus.
type Subscriber struct {
	translator *Translator
	fanout     *FanoutResolver
	handler    *CommandHandler
	async      bool
	wg         sync.WaitGroup
	logger     *slog.Logger
}

type SubscriberOption func(*Subscriber)

// WithAsyncFanout moves broadcast events off the publishing goroutine.
func WithAsyncFanout(enabled bool) SubscriberOption {
	return func(s *Subscriber) { s.async = enabled }
}

func NewSubscriber(translator *Translator, fanout *FanoutResolver, handler *CommandHandler, logger *slog.Logger, opts ...SubscriberOption) *Subscriber {
	s := &Subscriber{
		translator: translator,
		fanout:     fanout,
		handler:    handler,
		logger:     logger.With("component", "notify.Subscriber"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register subscribes to every event kind that produces notifications.
func (s *Subscriber) Register(d *events.Dispatcher) {
	d.Subscribe(SubscriberName, s.Handle,
		events.PostLiked,
		events.PostCommented,
		events.PostShared,
		events.CommentLiked,
		events.CommentReplied,
		events.NewFollower,
		events.NewPostFromFollowing,
		events.GroupInvitation,
	)
}

// Handle processes one event. With async fan-out enabled, broadcast events
// return immediately and complete in the background.
func (s *Subscriber) Handle(ctx context.Context, env events.Envelope) error {
	if !env.Broadcast() || !s.async {
		return s.process(ctx, env)
	}

	s.wg.Add(1)
	go func(ctx context.Context) {
		defer s.wg.Done()
		if err := s.process(ctx, env); err != nil {
			metrics.SubscriberFailures.WithLabelValues(SubscriberName, string(env.Kind), "error").Inc()
			s.logger.Error("Background fan-out failed",
				"event_id", env.ID,
				"kind", env.Kind,
				"actor_id", env.ActorID,
				"error", err,
			)
		}
	}(context.WithoutCancel(ctx))
	return nil
}

func (s *Subscriber) process(ctx context.Context, env events.Envelope) error {
	if env.Broadcast() {
		ids, err := s.fanout.Resolve(ctx, env.ActorID)
		if err != nil {
			return err
		}
		env = env.WithRecipients(ids)
	}

	cmds, err := s.translator.Translate(ctx, env)
	if err != nil {
		return fmt.Errorf("translate %s: %w", env.Kind, err)
	}
	return s.handler.Handle(ctx, cmds...)
}

// Close waits for background fan-outs to finish.
func (s *Subscriber) Close() {
	s.wg.Wait()
}
