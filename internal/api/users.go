package api

import (
	"context"
	"net/http"

	"github.com/tronix365/sensorbridge/internal/types"
)

// Me fetches the profile bound to the current token.
func (c *Client) Me(ctx context.Context) (*types.UserProfile, error) {
	var profile types.UserProfile
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/users/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateMe writes the editable profile fields and returns the new profile.
func (c *Client) UpdateMe(ctx context.Context, fullName, phoneNumber string) (*types.UserProfile, error) {
	payload := map[string]string{
		"full_name":    fullName,
		"phone_number": phoneNumber,
	}

	var profile types.UserProfile
	if err := c.doJSON(ctx, http.MethodPut, "/api/v1/users/me", payload, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
