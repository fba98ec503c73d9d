package launcher

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/egoavara/astra-launcher/internal/logger"
)

// Subscriber forwards the backend's progress stream to the machine
type Subscriber struct {
	backend Backend
	sink    func(DownloadProgress)
	log     *zerolog.Logger

	mu      sync.Mutex
	sub     Subscription
	started bool
	closed  bool
}

// NewSubscriber creates a subscriber that forwards every sample to sink
func NewSubscriber(backend Backend, sink func(DownloadProgress), log *zerolog.Logger) *Subscriber {
	if log == nil {
		log = logger.Nop()
	}
	return &Subscriber{
		backend: backend,
		sink:    sink,
		log:     log,
	}
}

// Start subscribes to the progress stream. It may only be called once.
func (s *Subscriber) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.closed {
		return ErrAlreadySubscribed
	}
	s.started = true

	sub, err := s.backend.SubscribeProgress(ctx, s.sink)
	if err != nil {
		return err
	}
	s.sub = sub
	s.log.Debug().Str("event", ProgressEvent).Msg("Subscribed to progress stream")
	return nil
}

// Close releases the subscription. It is idempotent and safe to call before
// Start or before any event arrived.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.sub == nil {
		return nil
	}
	err := s.sub.Close()
	s.sub = nil
	s.log.Debug().Str("event", ProgressEvent).Msg("Unsubscribed from progress stream")
	return err
}
