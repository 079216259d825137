// Package shutdown runs prioritized cleanup hooks when the server is asked
// to stop.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/gabrielmiguelok/tabkit/pkg/logging"
)

// Shutdown errors.
var (
	ErrShutdownTimeout = errors.New("shutdown timed out")
	ErrAlreadyClosed   = errors.New("shutdown handler already closed")
)

// Hook priorities. Lower values run first.
const (
	PriorityHTTP  = 100
	PriorityStore = 300
)

// Hook is a named cleanup step.
type Hook struct {
	Name     string
	Priority int
	Fn       func(ctx context.Context) error
}

// Config configures the shutdown handler.
type Config struct {
	// Timeout bounds the whole shutdown sequence.
	Timeout time.Duration

	// Signals trigger shutdown in Wait.
	Signals []os.Signal
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
		Signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
}

// Handler manages graceful shutdown.
type Handler struct {
	config Config
	logger logging.Logger

	mu     sync.Mutex
	hooks  []Hook
	closed bool
	done   chan struct{}
}

// NewHandler creates a shutdown handler.
func NewHandler(config Config, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Handler{
		config: config,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Register adds a hook.
func (h *Handler) Register(name string, priority int, fn func(ctx context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, Hook{Name: name, Priority: priority, Fn: fn})
}

// RegisterCloser adds a hook calling c.Close.
func (h *Handler) RegisterCloser(name string, priority int, c interface{ Close() error }) {
	h.Register(name, priority, func(context.Context) error { return c.Close() })
}

// Wait blocks until a signal arrives or ctx is done, then shuts down.
// It returns nil without running hooks if Shutdown was already called.
func (h *Handler) Wait(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, h.config.Signals...)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		h.logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	case <-ctx.Done():
	case <-h.done:
		return nil
	}
	return h.Shutdown()
}

// Shutdown runs every hook in priority order, stopping early when the
// timeout expires. Hook errors are joined.
func (h *Handler) Shutdown() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrAlreadyClosed
	}
	h.closed = true
	close(h.done)
	hooks := make([]Hook, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	sort.SliceStable(hooks, func(i, j int) bool {
		return hooks[i].Priority < hooks[j].Priority
	})

	ctx := context.Background()
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	var errs []error
	for _, hook := range hooks {
		start := time.Now()
		err := hook.Fn(ctx)
		fields := []logging.Field{logging.String("hook", hook.Name), logging.Duration("duration", time.Since(start))}
		if err != nil {
			errs = append(errs, err)
			h.logger.Warn("shutdown hook failed", append(fields, logging.Err(err))...)
		} else {
			h.logger.Debug("shutdown hook done", fields...)
		}

		if ctx.Err() != nil {
			return errors.Join(append(errs, ErrShutdownTimeout)...)
		}
	}
	return errors.Join(errs...)
}

// Done is closed once shutdown starts.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
