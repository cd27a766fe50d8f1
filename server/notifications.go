package server

import (
	"net/http"

	"github.com/example/tableside/pkg/models"
	"github.com/example/tableside/pkg/push"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) vapidKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"publicKey": s.config.Push.VAPIDPublicKey})
}

func (s *Server) subscribePush(c *gin.Context) {
	var sub models.PushSubscription
	if err := c.BindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint and keys are required"})
		return
	}

	if err := s.deps.Subs.Save(c.Request.Context(), &sub); err != nil {
		s.logger.Error("subscription save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save subscription"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

func (s *Server) unsubscribePush(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	removed, err := s.deps.Subs.DeleteByEndpoint(c.Request.Context(), req.Endpoint)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove subscription"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "removed": removed})
}

func (s *Server) sendPush(c *gin.Context) {
	var in push.Input
	if err := c.BindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	report, err := s.deps.Dispatcher.Send(c.Request.Context(), in)
	if err != nil {
		s.logger.Error("push dispatch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send notifications"})
		return
	}
	c.JSON(http.StatusOK, report)
}
