package gateway

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tronix365/sensorbridge/internal/api"
	"github.com/tronix365/sensorbridge/internal/types"
)

// GET /api/session
func (s *Server) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Snapshot())
}

// POST /api/session/login
func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrCodeValidation, err.Error(), nil))
		return
	}

	if err := s.session.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, api.ErrUnauthorized) || api.IsValidation(err) {
			c.JSON(http.StatusUnauthorized, types.NewErrorResponse(types.ErrCodeAuthRequired, "invalid credentials", nil))
			return
		}
		c.JSON(http.StatusBadGateway, types.NewErrorResponse(types.ErrCodeUpstream, err.Error(), nil))
		return
	}

	c.JSON(http.StatusOK, s.session.Snapshot())
}

// POST /api/session/logout
func (s *Server) logout(c *gin.Context) {
	// A signed-out bridge has nothing to poll.
	s.watcher.Unwatch()
	s.session.Logout()

	c.JSON(http.StatusOK, s.session.Snapshot())
}

// POST /api/session/register
func (s *Server) register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrCodeValidation, err.Error(), nil))
		return
	}

	if err := s.session.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		if api.IsValidation(err) {
			c.JSON(http.StatusConflict, types.NewErrorResponse(types.ErrCodeValidation, err.Error(), nil))
			return
		}
		c.JSON(http.StatusBadGateway, types.NewErrorResponse(types.ErrCodeUpstream, err.Error(), nil))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "account created"})
}

// PUT /api/session/profile
func (s *Server) updateProfile(c *gin.Context) {
	var req struct {
		FullName    string `json:"full_name" binding:"required"`
		PhoneNumber string `json:"phone_number"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrCodeValidation, err.Error(), nil))
		return
	}

	if err := s.session.UpdateProfile(c.Request.Context(), req.FullName, req.PhoneNumber); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, types.NewErrorResponse(types.ErrCodeAuthRequired, "session expired", nil))
			return
		}
		c.JSON(http.StatusBadGateway, types.NewErrorResponse(types.ErrCodeUpstream, err.Error(), nil))
		return
	}

	c.JSON(http.StatusOK, s.session.Snapshot())
}
