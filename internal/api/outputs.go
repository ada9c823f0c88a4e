package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tronix365/sensorbridge/internal/types"
)

// ListOutputs returns the actuator registry of a device.
func (c *Client) ListOutputs(ctx context.Context, deviceID string) ([]types.Output, error) {
	path := "/api/v1/ldr/" + url.PathEscape(deviceID) + "/outputs"

	var outputs []types.Output
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &outputs); err != nil {
		return nil, err
	}
	return outputs, nil
}

// CreateOutput registers a new actuator. The server assigns the id and the
// canonical initial state; callers must refetch instead of synthesizing the
// record locally.
func (c *Client) CreateOutput(ctx context.Context, deviceID, name string, gpioPin int) (*types.Output, error) {
	payload := map[string]interface{}{
		"device_id":   deviceID,
		"output_name": name,
		"gpio_pin":    gpioPin,
		"is_active":   false,
	}

	path := "/api/v1/ldr/" + url.PathEscape(deviceID) + "/outputs"
	var output types.Output
	if err := c.doJSON(ctx, http.MethodPost, path, payload, &output); err != nil {
		return nil, err
	}
	return &output, nil
}

// SetOutputState writes the desired actuator state.
func (c *Client) SetOutputState(ctx context.Context, outputID int64, active bool) (*types.Output, error) {
	payload := map[string]bool{"is_active": active}

	path := fmt.Sprintf("/api/v1/ldr/outputs/%d", outputID)
	var output types.Output
	if err := c.doJSON(ctx, http.MethodPut, path, payload, &output); err != nil {
		return nil, err
	}
	return &output, nil
}
