package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tronix365/sensorbridge/internal/types"
)

// ListDevices returns the device roster of the authenticated user. The
// roster is the unit of truth; the bridge never caches it across calls.
func (c *Client) ListDevices(ctx context.Context) ([]types.Device, error) {
	var devices []types.Device
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/devices/", nil, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// GetDevice fetches one device including its firmware token.
func (c *Client) GetDevice(ctx context.Context, deviceID string) (*types.Device, error) {
	var device types.Device
	path := "/api/v1/devices/" + url.PathEscape(deviceID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// RegisterDevice creates a device under a user-chosen id. A taken id comes
// back as a validation error (see IsValidation).
func (c *Client) RegisterDevice(ctx context.Context, deviceID string) (*types.Device, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device id must not be empty")
	}

	payload := map[string]string{"device_id": deviceID}
	var device types.Device
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/devices/", payload, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// DeleteDevice removes a device and everything hanging off it.
func (c *Client) DeleteDevice(ctx context.Context, deviceID string) error {
	path := "/api/v1/devices/" + url.PathEscape(deviceID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}
