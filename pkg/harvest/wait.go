package harvest

import (
	"context"
	"time"

	"github.com/entrhq/docshelper/pkg/logging"
	"github.com/entrhq/docshelper/pkg/notebook"
)

// DefaultTimeout bounds how long WaitForText waits for usable output.
const DefaultTimeout = 30 * time.Second

// WaitForText returns the first non-blank text extracted from outputs. If
// the collection already holds usable text it returns immediately without
// subscribing. Otherwise it re-extracts on every change notification until
// text appears, the timeout elapses, or ctx is done; the last two yield "".
//
// The subscription is removed on every return path, and notifications that
// arrive after the result is decided have no effect.
func WaitForText(ctx context.Context, outputs *notebook.Outputs, timeout time.Duration) string {
	if outputs == nil {
		return ""
	}
	if text := ExtractFrom(outputs); text != "" {
		return text
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// Buffered so a notification never blocks the producer; extra signals
	// collapse into the one already pending.
	changed := make(chan struct{}, 1)
	unsubscribe := outputs.Subscribe(func(*notebook.Outputs) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	// Records appended between the fast path and Subscribe produced no signal.
	if text := ExtractFrom(outputs); text != "" {
		return text
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ""

		case <-timer.C:
			return ""

		case <-changed:
			if text := ExtractFrom(outputs); text != "" {
				return text
			}
		}
	}
}

// Harvester wraps WaitForText with a configured timeout and logging.
type Harvester struct {
	timeout time.Duration
	logger  *logging.Logger
}

// Option configures a Harvester.
type Option func(*Harvester)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(h *Harvester) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

// WithLogger sets the logger used to report harvest outcomes.
func WithLogger(logger *logging.Logger) Option {
	return func(h *Harvester) {
		h.logger = logger
	}
}

// New creates a Harvester.
func New(opts ...Option) *Harvester {
	h := &Harvester{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Timeout returns the configured wait bound.
func (h *Harvester) Timeout() time.Duration {
	return h.timeout
}

// Harvest waits for text on outputs. It reports whether text was found.
func (h *Harvester) Harvest(ctx context.Context, outputs *notebook.Outputs) (string, bool) {
	start := time.Now()
	text := WaitForText(ctx, outputs, h.timeout)
	if text == "" {
		h.logger.Warnf("no usable output after %s", time.Since(start).Round(time.Millisecond))
		return "", false
	}
	h.logger.Debugf("harvested %d bytes after %s", len(text), time.Since(start).Round(time.Millisecond))
	return text, true
}
