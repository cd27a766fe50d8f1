package server

import (
	"errors"
	"net/http"

	"github.com/example/tableside/pkg/models"
	"github.com/example/tableside/pkg/repository"
	"github.com/gin-gonic/gin"
)

// menuItemResponse adds the derived low-stock flag the admin dashboard
// renders next to each item.
type menuItemResponse struct {
	models.MenuItem
	LowStock bool `json:"lowStock"`
}

func menuResponse(item models.MenuItem) menuItemResponse {
	return menuItemResponse{MenuItem: item, LowStock: item.LowStock()}
}

func (s *Server) listMenu(c *gin.Context) {
	f := repository.MenuFilter{
		Category:           c.Query("category"),
		IncludeUnavailable: c.Query("includeUnavailable") == "true",
	}
	items, err := s.deps.Menu.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list menu"})
		return
	}

	out := make([]menuItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, menuResponse(item))
	}
	c.JSON(http.StatusOK, gin.H{"items": out, "total": len(out)})
}

func (s *Server) getMenuItem(c *gin.Context) {
	item, err := s.deps.Menu.FindByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrMenuItemNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load menu item"})
		return
	}
	c.JSON(http.StatusOK, menuResponse(*item))
}

func (s *Server) createMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.BindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if item.Name == "" || item.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required and price must be non-negative"})
		return
	}

	if err := s.deps.Menu.Insert(c.Request.Context(), &item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create menu item"})
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) updateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.BindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if err := s.deps.Menu.Update(c.Request.Context(), id, &item); err != nil {
		if errors.Is(err, repository.ErrMenuItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update menu item"})
		return
	}

	updated, err := s.deps.Menu.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load menu item"})
		return
	}
	c.JSON(http.StatusOK, menuResponse(*updated))
}

func (s *Server) deleteMenuItem(c *gin.Context) {
	err := s.deps.Menu.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrMenuItemNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete menu item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
