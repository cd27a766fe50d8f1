package server

import (
	"errors"
	"net/http"

	"github.com/example/tableside/pkg/models"
	"github.com/example/tableside/pkg/repository"
	"github.com/gin-gonic/gin"
)

func (s *Server) listCategories(c *gin.Context) {
	cats, err := s.deps.Categories.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats, "total": len(cats)})
}

func (s *Server) createCategory(c *gin.Context) {
	var cat models.Category
	if err := c.BindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if cat.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category name is required"})
		return
	}

	if err := s.deps.Categories.Insert(c.Request.Context(), &cat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create category"})
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (s *Server) updateCategory(c *gin.Context) {
	var cat models.Category
	if err := c.BindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := s.deps.Categories.Update(c.Request.Context(), c.Param("id"), &cat)
	if errors.Is(err, repository.ErrCategoryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update category"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteCategory(c *gin.Context) {
	err := s.deps.Categories.Delete(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, repository.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
	case errors.Is(err, repository.ErrCategoryInUse):
		c.JSON(http.StatusConflict, gin.H{"error": "category still has menu items"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete category"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
