// Package navigation provides a Navigator for hosts without a routing framework.
package navigation

import (
	"context"
	"log/slog"
	"sync"

	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
)

var _ ports.Navigator = (*Recorder)(nil)

// Recorder remembers the current view, logs every transition and notifies an optional callback.
type Recorder struct {
	mu       sync.RWMutex
	current  domainsession.View
	onChange func(domainsession.View)
	logger   *slog.Logger
}

// NewRecorder creates a Recorder starting at the given view. onChange may be nil.
func NewRecorder(start domainsession.View, onChange func(domainsession.View), logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		current:  start,
		onChange: onChange,
		logger:   logger.With("component", "navigator"),
	}
}

func (r *Recorder) Navigate(ctx context.Context, view domainsession.View) {
	r.mu.Lock()
	from := r.current
	r.current = view
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "navigate", "from", from, "to", view)
	if r.onChange != nil {
		r.onChange(view)
	}
}

// Current returns the last view navigated to.
func (r *Recorder) Current() domainsession.View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}
