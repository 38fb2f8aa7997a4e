package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/services"
)

type CategoryHandler struct {
	Categories *services.CategoryService
	WS         *WSHandler
}

func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.Categories.ListVisible(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.Categories.Create(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(c.Param("id"), "category_created", userID(c))
	c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	err := h.Categories.Delete(c.Request.Context(), userID(c), c.Param("id"), c.Param("categoryId"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(c.Param("id"), "category_deleted", userID(c))
	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}
