package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/utils/logging"
)

// DefaultInterval is the dashboard refresh period
const DefaultInterval = 10 * time.Second

// Snapshot is one delivery of the team dashboard
type Snapshot struct {
	Summary *model.TeamSummary
	// Initial is true only for the first load; later refreshes are silent
	Initial bool
	Err     error
}

// FetchFunc loads the current team summary
type FetchFunc func(ctx context.Context) (*model.TeamSummary, error)

// TeamPoller periodically reloads a boss's team dashboard while the team has
// at least one VA.
//
// Architecture assumptions:
// - One poller per open view; the view owns Start and Stop
// - onSnapshot is called from the polling goroutine, never concurrently
type TeamPoller struct {
	fetch      FetchFunc
	onSnapshot func(Snapshot)
	interval   time.Duration

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	started  bool
	mu       sync.Mutex
}

type Option func(*TeamPoller)

func WithInterval(d time.Duration) Option {
	return func(p *TeamPoller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// New creates a poller. Nothing runs until Start.
func New(fetch FetchFunc, onSnapshot func(Snapshot), opts ...Option) *TeamPoller {
	p := &TeamPoller{
		fetch:      fetch,
		onSnapshot: onSnapshot,
		interval:   DefaultInterval,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start performs the initial load synchronously and delivers it. If the team
// is non-empty, a background goroutine then refreshes every interval. An
// initial load failure is delivered and returned, and no polling starts.
func (p *TeamPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return goerr.New("team poller already started")
	}
	p.started = true
	p.mu.Unlock()

	summary, err := p.fetch(ctx)
	if err != nil {
		close(p.doneCh)
		err = goerr.Wrap(err, "initial team load failed")
		p.onSnapshot(Snapshot{Initial: true, Err: err})
		return err
	}
	p.onSnapshot(Snapshot{Summary: summary, Initial: true})

	if len(summary.Members) == 0 {
		logging.From(ctx).Debug("team is empty, polling not started")
		close(p.doneCh)
		return nil
	}

	go p.run(ctx)
	return nil
}

// Stop signals the poller to stop and waits for the polling goroutine to exit.
// It is safe to call more than once and before Start.
func (p *TeamPoller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})

	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if started {
		<-p.doneCh
	}
}

// Done is closed once no further snapshots will be delivered
func (p *TeamPoller) Done() <-chan struct{} {
	return p.doneCh
}

// run is the polling loop (runs in goroutine)
func (p *TeamPoller) run(ctx context.Context) {
	defer close(p.doneCh)
	logger := logging.From(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// a tick racing with Stop must not deliver
			select {
			case <-p.stopCh:
				return
			default:
			}

			summary, err := p.fetch(ctx)
			if err != nil {
				logger.Warn("team refresh failed (will retry next interval)", slog.String("error", err.Error()))
				p.onSnapshot(Snapshot{Err: goerr.Wrap(err, "team refresh failed")})
				continue
			}
			p.onSnapshot(Snapshot{Summary: summary})

			if len(summary.Members) == 0 {
				logger.Info("team became empty, polling stopped")
				return
			}

		case <-p.stopCh:
			return

		case <-ctx.Done():
			return
		}
	}
}
