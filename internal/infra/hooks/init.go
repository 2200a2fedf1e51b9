package hooks

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"wpmcp/internal/domain"
)

// InitFunc registers a tool family into the registry.
type InitFunc func(reg domain.Registry) error

type subscriber struct {
	name string
	fn   InitFunc
}

// Init is the one-shot initialization signal. Subscribers run in
// subscription order on the first Fire; every later Fire is a no-op.
type Init struct {
	mu          sync.Mutex
	subscribers []subscriber
	fired       bool
	logger      *zap.Logger
}

func NewInit(logger *zap.Logger) *Init {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Init{logger: logger.Named("hooks")}
}

// OnInit subscribes fn under name. Subscribing after the signal fired
// returns domain.ErrInitAlreadyHandled.
func (h *Init) OnInit(name string, fn InitFunc) error {
	if fn == nil {
		return fmt.Errorf("init subscriber %q: nil func", name)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fired {
		return fmt.Errorf("init subscriber %q: %w", name, domain.ErrInitAlreadyHandled)
	}
	h.subscribers = append(h.subscribers, subscriber{name: name, fn: fn})
	return nil
}

// Fire runs every subscriber against reg once. A failing subscriber does not
// stop the others; their errors are joined.
func (h *Init) Fire(reg domain.Registry) error {
	if reg == nil {
		return domain.ErrRegistryNotReady
	}

	h.mu.Lock()
	if h.fired {
		h.mu.Unlock()
		h.logger.Debug("init signal already fired")
		return nil
	}
	h.fired = true
	subscribers := h.subscribers
	h.subscribers = nil
	h.mu.Unlock()

	var errs []error
	for _, sub := range subscribers {
		if err := sub.fn(reg); err != nil {
			h.logger.Error("init subscriber failed", zap.String("subscriber", sub.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", sub.name, err))
			continue
		}
		h.logger.Debug("init subscriber done", zap.String("subscriber", sub.name))
	}
	return errors.Join(errs...)
}

// Fired reports whether the signal has fired.
func (h *Init) Fired() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fired
}
