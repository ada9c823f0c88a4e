package gateway

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tronix365/sensorbridge/internal/api"
	"github.com/tronix365/sensorbridge/internal/types"
)

// GET /api/devices
func (s *Server) listDevices(c *gin.Context) {
	devices, err := s.client.ListDevices(c.Request.Context())
	if err != nil {
		s.upstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"devices": devices,
		"stats": gin.H{
			"total": len(devices),
			// The roster carries no liveness yet, every node counts as active
			"active": len(devices),
		},
	})
}

// GET /api/devices/:id
func (s *Server) getDevice(c *gin.Context) {
	device, err := s.client.GetDevice(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

// POST /api/devices
func (s *Server) registerDevice(c *gin.Context) {
	var req struct {
		DeviceID string `json:"device_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrCodeValidation, err.Error(), nil))
		return
	}

	device, err := s.client.RegisterDevice(c.Request.Context(), req.DeviceID)
	if err != nil {
		if api.IsValidation(err) {
			// Most likely a taken device id; no local state changed.
			c.JSON(http.StatusConflict, types.NewErrorResponse(types.ErrCodeValidation, err.Error(), nil))
			return
		}
		s.upstreamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, device)
}

// DELETE /api/devices/:id
func (s *Server) deleteDevice(c *gin.Context) {
	deviceID := c.Param("id")

	// Tear down the subscription first so no tick writes into a view of a
	// device that is about to disappear.
	if s.watcher.Current() == deviceID {
		s.watcher.Unwatch()
	}

	if err := s.client.DeleteDevice(c.Request.Context(), deviceID); err != nil {
		s.upstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "device deleted"})
}

// POST /api/devices/:id/watch
func (s *Server) watchDevice(c *gin.Context) {
	deviceID := c.Param("id")

	if err := s.watcher.Watch(deviceID); err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrCodeUpstream, err.Error(), nil))
		return
	}

	c.JSON(http.StatusOK, gin.H{"watching": deviceID})
}

// DELETE /api/devices/:id/watch
func (s *Server) unwatchDevice(c *gin.Context) {
	if s.watcher.Current() != c.Param("id") {
		c.JSON(http.StatusOK, gin.H{"watching": s.watcher.Current()})
		return
	}

	s.watcher.Unwatch()
	c.JSON(http.StatusOK, gin.H{"watching": ""})
}

// GET /api/devices/:id/view
func (s *Server) getDeviceView(c *gin.Context) {
	view, ok := s.store.Snapshot(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrCodeNotFound, "no active view for device", nil))
		return
	}

	c.JSON(http.StatusOK, view)
}

func (s *Server) upstreamError(c *gin.Context, err error) {
	if errors.Is(err, api.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, types.NewErrorResponse(types.ErrCodeAuthRequired, "session expired", nil))
		return
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrCodeNotFound, apiErr.Message, nil))
		return
	}

	c.JSON(http.StatusBadGateway, types.NewErrorResponse(types.ErrCodeUpstream, err.Error(), nil))
}
