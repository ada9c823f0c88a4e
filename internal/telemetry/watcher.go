package telemetry

import (
	"sync"
	"time"

	"github.com/tronix365/sensorbridge/internal/api"
	"github.com/tronix365/sensorbridge/internal/store"
	"go.uber.org/zap"
)

// Watcher owns the single active polling subscription. Switching to a new
// device always stops the previous loop first, two device cycles must
// never run concurrently under one view.
type Watcher struct {
	client   *api.Client
	store    *store.Store
	logger   *zap.Logger
	interval time.Duration
	limit    int

	mu      sync.Mutex
	current *Poller
}

func NewWatcher(client *api.Client, st *store.Store, interval time.Duration, limit int, logger *zap.Logger) *Watcher {
	return &Watcher{
		client:   client,
		store:    st,
		logger:   logger,
		interval: interval,
		limit:    limit,
	}
}

// Watch subscribes to a device. Re-watching the current device is a no-op.
func (w *Watcher) Watch(deviceID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current != nil {
		if w.current.deviceID == deviceID {
			return nil
		}
		w.stopLocked()
	}

	w.store.Activate(deviceID)

	p := NewPoller(deviceID, w.interval, w.limit, w.client, w.store, w.logger)
	if err := p.Start(); err != nil {
		w.store.Deactivate(deviceID)
		return err
	}
	w.current = p
	return nil
}

// Unwatch tears the active subscription down. Must be called on view
// teardown so cycles do not accumulate across navigations.
func (w *Watcher) Unwatch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

// Current returns the watched device id, empty if none.
func (w *Watcher) Current() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return ""
	}
	return w.current.deviceID
}

func (w *Watcher) stopLocked() {
	if w.current == nil {
		return
	}
	deviceID := w.current.deviceID
	w.current.Stop()
	w.store.Deactivate(deviceID)
	w.current = nil
}
