package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/services"
)

type ExpenseHandler struct {
	Expenses *services.ExpenseService
	WS       *WSHandler
}

func (h *ExpenseHandler) Create(c *gin.Context) {
	var req models.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.Expenses.Create(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(c.Param("id"), "expense_created", userID(c))
	c.JSON(http.StatusCreated, resp)
}

func (h *ExpenseHandler) Get(c *gin.Context) {
	resp, err := h.Expenses.Get(c.Request.Context(), userID(c), c.Param("id"), c.Param("expenseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List supports ?page=&size=&start_date=&end_date=&category_id= query params.
func (h *ExpenseHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "0"))

	filter, err := parseFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.Expenses.List(c.Request.Context(), userID(c), c.Param("id"), filter, page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ExpenseHandler) Update(c *gin.Context) {
	var req models.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.Expenses.Update(c.Request.Context(), userID(c), c.Param("id"), c.Param("expenseId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(c.Param("id"), "expense_updated", userID(c))
	c.JSON(http.StatusOK, resp)
}

func (h *ExpenseHandler) Delete(c *gin.Context) {
	err := h.Expenses.Delete(c.Request.Context(), userID(c), c.Param("id"), c.Param("expenseId"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(c.Param("id"), "expense_deleted", userID(c))
	c.JSON(http.StatusOK, gin.H{"message": "expense deleted"})
}

func parseFilter(c *gin.Context) (models.ExpenseFilter, error) {
	var filter models.ExpenseFilter
	if s := c.Query("start_date"); s != "" {
		d, err := models.ParseExpenseDate(s)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &d
	}
	if s := c.Query("end_date"); s != "" {
		d, err := models.ParseExpenseDate(s)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &d
	}
	filter.CategoryID = c.Query("category_id")
	return filter, nil
}
