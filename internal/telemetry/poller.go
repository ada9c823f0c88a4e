package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/tronix365/sensorbridge/internal/api"
	"github.com/tronix365/sensorbridge/internal/store"
	"go.uber.org/zap"
)

// Poller drives the recurring fetch cycle for one device view. Each tick
// issues the three upstream requests concurrently; a slow or failed slice
// never blocks the other two from landing. A Poller is single-use, the
// Watcher creates a fresh one per subscription.
type Poller struct {
	deviceID string
	interval time.Duration
	limit    int
	client   *api.Client
	store    *store.Store
	logger   *zap.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

func NewPoller(deviceID string, interval time.Duration, limit int, client *api.Client, st *store.Store, logger *zap.Logger) *Poller {
	return &Poller{
		deviceID: deviceID,
		interval: interval,
		limit:    limit,
		client:   client,
		store:    st,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start startet das zyklische Polling
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}

	p.running = true
	p.wg.Add(1)

	go p.pollLoop()

	p.logger.Info("Poller started",
		zap.String("device", p.deviceID),
		zap.Duration("interval", p.interval))

	return nil
}

// Stop stoppt das Polling. Blocks until the loop has exited; afterwards no
// further store writes happen from this poller.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	close(p.stopChan)
	p.wg.Wait()

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	p.logger.Info("Poller stopped", zap.String("device", p.deviceID))
}

func (p *Poller) pollLoop() {
	defer p.wg.Done()

	// First cycle fires immediately, the view should not stay empty for a
	// full interval after mount.
	p.pollOnce()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.pollOnce()
		}
	}
}

// pollOnce runs one tick. Every failure is caught here; one bad tick must
// not kill the loop.
func (p *Poller) pollOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()

	// Tick-issue time capture: the device id is fixed per poller, and the
	// store drops writes once the view is gone.
	deviceID := p.deviceID

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		series, err := p.client.GasReadings(ctx, deviceID, p.limit)
		if err != nil {
			p.logger.Warn("Gas readings fetch failed",
				zap.String("device", deviceID), zap.Error(err))
			p.store.SetSliceError(deviceID, store.SliceGas, err.Error())
			return
		}
		p.store.SetGasSeries(deviceID, series)
	}()

	go func() {
		defer wg.Done()
		series, err := p.client.LightReadings(ctx, deviceID, p.limit)
		if err != nil {
			p.logger.Warn("Light readings fetch failed",
				zap.String("device", deviceID), zap.Error(err))
			p.store.SetSliceError(deviceID, store.SliceLight, err.Error())
			return
		}
		p.store.SetLightSeries(deviceID, series)
	}()

	go func() {
		defer wg.Done()
		outputs, err := p.client.ListOutputs(ctx, deviceID)
		if err != nil {
			p.logger.Warn("Outputs fetch failed",
				zap.String("device", deviceID), zap.Error(err))
			p.store.SetSliceError(deviceID, store.SliceOutputs, err.Error())
			return
		}
		p.store.SetOutputs(deviceID, outputs)
	}()

	wg.Wait()

	// Recompute the merged series from whatever the view currently holds,
	// so a partial failure still refreshes the pairing with the slice that
	// did update.
	if snap, ok := p.store.Snapshot(deviceID); ok {
		p.store.SetMerged(deviceID, Merge(snap.GasSeries, snap.LightSeries))
	}

	p.store.MarkLive(deviceID)
}

// IsRunning gibt an ob Poller läuft
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
