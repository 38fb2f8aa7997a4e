package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/services"
)

type LedgerHandler struct {
	Ledgers *services.LedgerService
	WS      *WSHandler
}

func (h *LedgerHandler) Create(c *gin.Context) {
	var req models.CreateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.Ledgers.Create(c.Request.Context(), userID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *LedgerHandler) List(c *gin.Context) {
	ledgers, err := h.Ledgers.ListForUser(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ledgers)
}

func (h *LedgerHandler) Get(c *gin.Context) {
	resp, err := h.Ledgers.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LedgerHandler) Update(c *gin.Context) {
	var req models.UpdateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.Ledgers.Update(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(c.Param("id"), "ledger_updated", userID(c))
	c.JSON(http.StatusOK, resp)
}

func (h *LedgerHandler) Delete(c *gin.Context) {
	if err := h.Ledgers.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(c.Param("id"), "ledger_deleted", userID(c))
	c.JSON(http.StatusOK, gin.H{"message": "ledger deleted"})
}
