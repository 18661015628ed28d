package notify

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/interfaces"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/utils/async"
	"github.com/secmon-lab/vatracker/pkg/utils/errutil"
	"github.com/secmon-lab/vatracker/pkg/utils/logging"
)

// TagNotification marks failures of post-commit notification hooks
var TagNotification = goerr.NewTag("notification")

// HookFunc handles one event. A returned error is logged and reported only.
type HookFunc func(ctx context.Context, event model.Event) error

// Hook is a named post-commit side effect
type Hook struct {
	Name   string
	Handle HookFunc
}

// Dispatcher fans events out to hooks after the primary write committed
type Dispatcher struct {
	hooks []Hook
	sync  bool
}

var _ interfaces.Publisher = &Dispatcher{}

type Option func(*Dispatcher)

// WithHook appends a hook; hooks are started in registration order
func WithHook(name string, fn HookFunc) Option {
	return func(d *Dispatcher) {
		d.hooks = append(d.hooks, Hook{Name: name, Handle: fn})
	}
}

// WithSync runs hooks inline instead of in background goroutines
func WithSync() Option {
	return func(d *Dispatcher) {
		d.sync = true
	}
}

func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Publish never fails the caller; hook errors are wrapped with
// TagNotification and handed to errutil.
func (d *Dispatcher) Publish(ctx context.Context, event model.Event) {
	for _, h := range d.hooks {
		task := "notify." + h.Name
		run := func(ctx context.Context) error {
			if err := h.Handle(ctx, event); err != nil {
				return goerr.Wrap(err, "notification hook failed",
					goerr.T(TagNotification),
					goerr.V("hook", h.Name),
					goerr.V("event", string(event.Type)))
			}
			logging.From(ctx).Debug("notification delivered",
				slog.String("hook", h.Name), slog.String("event", string(event.Type)))
			return nil
		}

		if d.sync {
			if err := safeRun(ctx, task, run); err != nil {
				errutil.Handle(ctx, err, "notification failed")
			}
			continue
		}
		async.Dispatch(ctx, task, run)
	}
}

func safeRun(ctx context.Context, task string, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = goerr.New("panic in notification hook", goerr.V("panic", r), goerr.V("task", task))
		}
	}()
	return fn(ctx)
}
