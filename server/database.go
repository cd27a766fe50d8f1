package server

import (
	"errors"
	"net/http"

	"github.com/example/tableside/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) databaseStats(c *gin.Context) {
	stats, err := s.deps.Admin.Stats(c.Request.Context())
	if err != nil {
		s.logger.Error("stats collection failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to collect stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) databaseBackup(c *gin.Context) {
	backup, err := s.deps.Admin.Backup(c.Request.Context())
	if err != nil {
		s.logger.Error("backup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create backup"})
		return
	}
	c.Header("Content-Disposition", "attachment; filename=tableside-backup.json")
	c.JSON(http.StatusOK, backup)
}

func (s *Server) databaseRestore(c *gin.Context) {
	var backup repository.Backup
	if err := c.BindJSON(&backup); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.deps.Admin.Restore(c.Request.Context(), &backup); err != nil {
		s.logger.Error("restore failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to restore backup"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) clearCollection(c *gin.Context) {
	name := c.Param("name")
	removed, err := s.deps.Admin.ClearCollection(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, repository.ErrCollectionNotClearable) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "collection cannot be cleared"})
			return
		}
		s.logger.Error("clear collection failed", zap.String("collection", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear collection"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "removed": removed})
}

func (s *Server) seedDatabase(c *gin.Context) {
	err := s.deps.Admin.Seed(c.Request.Context(), s.deps.Menu, s.deps.Categories, s.deps.Settings)
	if err != nil {
		s.logger.Error("seed failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to seed database"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
