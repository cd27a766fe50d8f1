package server

import (
	"errors"
	"net/http"

	"github.com/example/tableside/pkg/models"
	"github.com/example/tableside/pkg/repository"
	"github.com/gin-gonic/gin"
)

func (s *Server) getSettings(c *gin.Context) {
	settings, err := s.deps.Settings.Get(c.Request.Context())
	if errors.Is(err, repository.ErrSettingsNotFound) {
		c.JSON(http.StatusOK, models.DefaultSettings())
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) updateSettings(c *gin.Context) {
	var settings models.RestaurantSettings
	if err := c.BindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.deps.Settings.Replace(c.Request.Context(), &settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}
