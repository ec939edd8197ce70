package presence

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"spaces-client/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeAPI struct {
	heartbeats atomic.Int32
	refreshes  atomic.Int32
	mu         sync.Mutex
	spaces     []models.ID
	statuses   []models.Status
	fail       bool
}

func (f *fakeAPI) Heartbeat(ctx context.Context) error {
	f.heartbeats.Add(1)
	return nil
}

func (f *fakeAPI) OnlineUsers(ctx context.Context, spaceID models.ID) ([]models.UserStatus, error) {
	f.refreshes.Add(1)
	f.mu.Lock()
	f.spaces = append(f.spaces, spaceID)
	f.mu.Unlock()
	return []models.UserStatus{{UserID: 1, Status: models.StatusOnline}}, nil
}

func (f *fakeAPI) SetStatus(ctx context.Context, status models.Status) error {
	f.mu.Lock()
	f.statuses = append(f.statuses, status)
	f.mu.Unlock()
	if f.fail {
		return errors.New("offline")
	}
	return nil
}

func TestRunnerTicksUntilStopped(t *testing.T) {
	api := &fakeAPI{}
	r := NewRunner(api, 10*time.Millisecond, 10*time.Millisecond, zerolog.Nop())

	var got atomic.Int32
	r.Start(context.Background(), func() models.ID { return 4 }, func(list []models.UserStatus) {
		got.Add(int32(len(list)))
	})
	r.Start(context.Background(), func() models.ID { return 99 }, nil)

	assert.Eventually(t, func() bool {
		return api.heartbeats.Load() >= 2 && got.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	r.Stop()
	hb := api.heartbeats.Load()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, hb, api.heartbeats.Load(), "no ticks after Stop")

	api.mu.Lock()
	for _, id := range api.spaces {
		assert.Equal(t, models.ID(4), id)
	}
	api.mu.Unlock()

	r.Stop()
}

func TestRefreshSkippedWithoutOpenSpace(t *testing.T) {
	api := &fakeAPI{}
	r := NewRunner(api, 10*time.Millisecond, 10*time.Millisecond, zerolog.Nop())
	r.Start(context.Background(), func() models.ID { return 0 }, func([]models.UserStatus) {
		t.Error("no snapshot expected")
	})
	assert.Eventually(t, func() bool { return api.heartbeats.Load() >= 2 }, time.Second, 5*time.Millisecond)
	r.Stop()
	assert.Equal(t, int32(0), api.refreshes.Load())
}

func TestRunnerStopsWithParentContext(t *testing.T) {
	api := &fakeAPI{}
	r := NewRunner(api, 5*time.Millisecond, time.Hour, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx, func() models.ID { return 0 }, nil)
	cancel()

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after context cancel")
	}
}

func TestGoOfflineIgnoresErrors(t *testing.T) {
	api := &fakeAPI{fail: true}
	GoOffline(context.Background(), api, time.Second, zerolog.Nop())
	assert.Equal(t, []models.Status{models.StatusOffline}, api.statuses)
}
