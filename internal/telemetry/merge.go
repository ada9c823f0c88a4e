package telemetry

import "github.com/tronix365/sensorbridge/internal/types"

// Merge pairs a gas series with a light series by position. Both inputs
// must already be chronological. The output length is the shorter of the
// two, and each sample borrows its timestamp from the gas side.
//
// The pairing is deliberately positional, not timestamp-bucketed: the two
// sources sample at uncoordinated rates, and the dashboard has always
// traded temporal precision for a stable joint plot. Do not "fix" this
// with interpolation, it changes the displayed correlations.
func Merge(gas []types.GasReading, light []types.LightReading) []types.MergedSample {
	n := len(gas)
	if len(light) < n {
		n = len(light)
	}
	if n == 0 {
		return nil
	}

	merged := make([]types.MergedSample, n)
	for i := 0; i < n; i++ {
		analog := light[i].AnalogValue
		merged[i] = types.MergedSample{
			Timestamp: gas[i].Timestamp,
			Gas:       gas[i].Gas,
			Light:     &analog,
		}
	}
	return merged
}
