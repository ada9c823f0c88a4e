package store

import (
	"sync"
	"time"

	"github.com/tronix365/sensorbridge/internal/types"
	"go.uber.org/zap"
)

// Store holds the per-device view models. Writers are the poller and the
// output mutator only; everything else reads copied snapshots. Writes for
// a device without an active view are dropped, that is the staleness guard
// for responses that finish after a view was torn down.
type Store struct {
	mu        sync.RWMutex
	views     map[string]*DeviceView
	analogMax int
	logger    *zap.Logger
	onUpdate  []func(DeviceView)
}

func New(analogMax int, logger *zap.Logger) *Store {
	if analogMax <= 0 {
		analogMax = 4095
	}
	return &Store{
		views:     make(map[string]*DeviceView),
		analogMax: analogMax,
		logger:    logger,
	}
}

// OnUpdate registers a callback invoked with a snapshot after every write.
// Callbacks run outside the store lock.
func (s *Store) OnUpdate(fn func(DeviceView)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = append(s.onUpdate, fn)
}

// Activate creates a fresh view in loading state.
func (s *Store) Activate(deviceID string) {
	s.mu.Lock()
	s.views[deviceID] = &DeviceView{
		DeviceID:  deviceID,
		State:     StateLoading,
		Errors:    make(map[Slice]string),
		UpdatedAt: time.Now(),
	}
	s.mu.Unlock()

	s.logger.Info("Device view activated", zap.String("device", deviceID))
	s.notify(deviceID)
}

// Deactivate drops the view. In-flight responses for this device will be
// discarded on arrival.
func (s *Store) Deactivate(deviceID string) {
	s.mu.Lock()
	delete(s.views, deviceID)
	s.mu.Unlock()

	s.logger.Info("Device view deactivated", zap.String("device", deviceID))
}

// Active reports whether a view exists for the device.
func (s *Store) Active(deviceID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.views[deviceID]
	return ok
}

// SetGasSeries replaces the gas slice of the view.
func (s *Store) SetGasSeries(deviceID string, series []types.GasReading) {
	s.write(deviceID, func(v *DeviceView) {
		v.GasSeries = series
		if len(series) > 0 {
			latest := series[len(series)-1]
			v.LatestGas = &latest
		}
		delete(v.Errors, SliceGas)
	})
}

// SetLightSeries replaces the light slice of the view.
func (s *Store) SetLightSeries(deviceID string, series []types.LightReading) {
	s.write(deviceID, func(v *DeviceView) {
		v.LightSeries = series
		if len(series) > 0 {
			latest := series[len(series)-1]
			v.LatestLight = &latest
			v.LightLevel = clamp01(float64(latest.AnalogValue) / float64(s.analogMax))
		}
		delete(v.Errors, SliceLight)
	})
}

// SetOutputs replaces the actuator slice of the view.
func (s *Store) SetOutputs(deviceID string, outputs []types.Output) {
	s.write(deviceID, func(v *DeviceView) {
		v.Outputs = outputs
		delete(v.Errors, SliceOutputs)
	})
}

// SetMerged replaces the derived merged series.
func (s *Store) SetMerged(deviceID string, merged []types.MergedSample) {
	s.write(deviceID, func(v *DeviceView) {
		v.Merged = merged
	})
}

// SetSliceError records a failed fetch for one slice. The previous data of
// the slice stays visible.
func (s *Store) SetSliceError(deviceID string, slice Slice, msg string) {
	s.write(deviceID, func(v *DeviceView) {
		v.Errors[slice] = msg
	})
}

// MarkLive ends the loading phase after the first completed cycle. Later
// calls are no-ops; the view never re-enters loading.
func (s *Store) MarkLive(deviceID string) {
	s.write(deviceID, func(v *DeviceView) {
		if v.State == StateLoading {
			v.State = StateLive
		}
	})
}

// ToggleOutput flips one actuator by id and returns the new desired value.
// Identity match only, toggles must never clobber neighbouring outputs.
func (s *Store) ToggleOutput(deviceID string, outputID int64) (desired bool, ok bool) {
	s.mu.Lock()
	v, exists := s.views[deviceID]
	if exists {
		for i := range v.Outputs {
			if v.Outputs[i].ID == outputID {
				v.Outputs[i].IsActive = !v.Outputs[i].IsActive
				desired = v.Outputs[i].IsActive
				ok = true
				v.UpdatedAt = time.Now()
				break
			}
		}
	}
	s.mu.Unlock()

	if ok {
		s.notify(deviceID)
	}
	return desired, ok
}

// Snapshot returns a deep copy of the view.
func (s *Store) Snapshot(deviceID string) (DeviceView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, exists := s.views[deviceID]
	if !exists {
		return DeviceView{}, false
	}
	return copyView(v), true
}

func (s *Store) write(deviceID string, mutate func(*DeviceView)) {
	s.mu.Lock()
	v, exists := s.views[deviceID]
	if !exists {
		s.mu.Unlock()
		s.logger.Debug("Dropping write for inactive device view",
			zap.String("device", deviceID))
		return
	}
	mutate(v)
	v.UpdatedAt = time.Now()
	s.mu.Unlock()

	s.notify(deviceID)
}

func (s *Store) notify(deviceID string) {
	s.mu.RLock()
	v, exists := s.views[deviceID]
	var snap DeviceView
	if exists {
		snap = copyView(v)
	}
	callbacks := make([]func(DeviceView), len(s.onUpdate))
	copy(callbacks, s.onUpdate)
	s.mu.RUnlock()

	if !exists {
		return
	}
	for _, fn := range callbacks {
		fn(snap)
	}
}

func copyView(v *DeviceView) DeviceView {
	out := *v

	out.GasSeries = append([]types.GasReading(nil), v.GasSeries...)
	out.LightSeries = append([]types.LightReading(nil), v.LightSeries...)
	out.Merged = append([]types.MergedSample(nil), v.Merged...)
	out.Outputs = append([]types.Output(nil), v.Outputs...)

	if v.LatestGas != nil {
		latest := *v.LatestGas
		out.LatestGas = &latest
	}
	if v.LatestLight != nil {
		latest := *v.LatestLight
		out.LatestLight = &latest
	}

	out.Errors = make(map[Slice]string, len(v.Errors))
	for k, val := range v.Errors {
		out.Errors[k] = val
	}

	return out
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
