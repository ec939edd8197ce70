package presence

import (
	"context"
	"sync"
	"time"

	"spaces-client/models"

	"github.com/rs/zerolog"
)

// API is what the presence loops call.
type API interface {
	Heartbeat(ctx context.Context) error
	OnlineUsers(ctx context.Context, spaceID models.ID) ([]models.UserStatus, error)
	SetStatus(ctx context.Context, status models.Status) error
}

// Runner keeps the viewer marked online and refreshes member statuses for
// the open space while the chat view is mounted.
type Runner struct {
	api       API
	heartbeat time.Duration
	refresh   time.Duration
	timeout   time.Duration
	log       zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRunner(api API, heartbeat, refresh time.Duration, log zerolog.Logger) *Runner {
	return &Runner{
		api:       api,
		heartbeat: heartbeat,
		refresh:   refresh,
		timeout:   10 * time.Second,
		log:       log,
	}
}

// Start launches both loops. activeSpace reports the open space (0 when
// none); onStatuses receives each refreshed snapshot. Starting a running
// Runner is a no-op.
func (r *Runner) Start(ctx context.Context, activeSpace func() models.ID, onStatuses func([]models.UserStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(2)
	go r.loop(ctx, r.heartbeat, func(ctx context.Context) {
		if err := r.api.Heartbeat(ctx); err != nil {
			r.log.Debug().Err(err).Msg("[presence] heartbeat failed")
		}
	})
	go r.loop(ctx, r.refresh, func(ctx context.Context) {
		spaceID := activeSpace()
		if spaceID == 0 {
			return
		}
		statuses, err := r.api.OnlineUsers(ctx, spaceID)
		if err != nil {
			r.log.Debug().Err(err).Msg("[presence] status refresh failed")
			return
		}
		onStatuses(statuses)
	})
	r.log.Debug().Dur("heartbeat", r.heartbeat).Dur("refresh", r.refresh).Msg("[presence] started")
}

func (r *Runner) loop(ctx context.Context, every time.Duration, tick func(context.Context)) {
	defer r.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			callCtx, cancel := context.WithTimeout(ctx, r.timeout)
			tick(callCtx)
			cancel()
		}
	}
}

// Stop cancels both loops and waits for them to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	r.wg.Wait()
}

// GoOffline marks the viewer offline on the way out. Failures are logged
// and otherwise ignored.
func GoOffline(ctx context.Context, api API, timeout time.Duration, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := api.SetStatus(ctx, models.StatusOffline); err != nil {
		log.Debug().Err(err).Msg("[presence] failed to go offline")
	}
}
