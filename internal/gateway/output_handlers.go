package gateway

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tronix365/sensorbridge/internal/api"
	"github.com/tronix365/sensorbridge/internal/types"
)

// POST /api/devices/:id/outputs
func (s *Server) addOutput(c *gin.Context) {
	deviceID := c.Param("id")

	var req struct {
		OutputName string `json:"output_name" binding:"required"`
		GpioPin    int    `json:"gpio_pin" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrCodeValidation, err.Error(), nil))
		return
	}

	if err := s.control.AddOutput(c.Request.Context(), deviceID, req.OutputName, req.GpioPin); err != nil {
		if api.IsValidation(err) {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrCodeValidation, err.Error(), nil))
			return
		}
		s.upstreamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "output created"})
}

// POST /api/outputs/:id/toggle
func (s *Server) toggleOutput(c *gin.Context) {
	outputID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrCodeValidation, "invalid output id", nil))
		return
	}

	var req struct {
		DeviceID string `json:"device_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrCodeValidation, err.Error(), nil))
		return
	}

	if err := s.control.Toggle(c.Request.Context(), req.DeviceID, outputID); err != nil {
		// The optimistic flip has already been reconciled by a refetch;
		// report the failure so the shell can surface it.
		s.upstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "output toggled"})
}
