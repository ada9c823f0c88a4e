package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tronix365/sensorbridge/internal/types"
)

// GasReadings returns the most recent gas samples in chronological order.
// The server delivers newest-first; the series is inverted here so every
// consumer sees time flowing forward.
func (c *Client) GasReadings(ctx context.Context, deviceID string, limit int) ([]types.GasReading, error) {
	path := fmt.Sprintf("/api/v1/devices/%s/readings?limit=%d", url.PathEscape(deviceID), limit)

	var readings []types.GasReading
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &readings); err != nil {
		return nil, err
	}

	reverse(readings)
	return readings, nil
}

// LightReadings returns the most recent LDR samples in chronological order.
// Same ordering contract as GasReadings.
func (c *Client) LightReadings(ctx context.Context, deviceID string, limit int) ([]types.LightReading, error) {
	path := fmt.Sprintf("/api/v1/ldr/%s/readings?limit=%d", url.PathEscape(deviceID), limit)

	var readings []types.LightReading
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &readings); err != nil {
		return nil, err
	}

	reverse(readings)
	return readings, nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
