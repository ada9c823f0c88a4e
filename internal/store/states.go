package store

import (
	"time"

	"github.com/tronix365/sensorbridge/internal/types"
)

type ViewState string

const (
	// StateIdle: no active subscription, nothing polled.
	StateIdle ViewState = "idle"
	// StateLoading: subscription started, first cycle not yet completed.
	StateLoading ViewState = "loading"
	// StateLive: at least one cycle completed. Later tick failures are
	// recorded per slice but never regress the state (no UI flicker).
	StateLive ViewState = "live"
)

// Slice names one independently fetched part of a device view.
type Slice string

const (
	SliceGas     Slice = "gas"
	SliceLight   Slice = "light"
	SliceOutputs Slice = "outputs"
)

// DeviceView is the published per-device view model. All series are
// chronological; Merged pairs gas and light positionally.
type DeviceView struct {
	DeviceID    string               `json:"device_id"`
	State       ViewState            `json:"state"`
	LatestGas   *types.GasReading    `json:"latest_gas"`
	LatestLight *types.LightReading  `json:"latest_light"`
	GasSeries   []types.GasReading   `json:"gas_series"`
	LightSeries []types.LightReading `json:"light_series"`
	Merged      []types.MergedSample `json:"merged"`
	Outputs     []types.Output       `json:"outputs"`
	// LightLevel is LatestLight.AnalogValue normalized against the
	// configured full-scale value, 0..1.
	LightLevel float64          `json:"light_level"`
	Errors     map[Slice]string `json:"errors,omitempty"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
