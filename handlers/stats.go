package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/famoney/famoney-api/apperr"
	"github.com/famoney/famoney-api/services"
)

type StatsHandler struct {
	Stats *services.StatsService
}

// Summary answers ?month=YYYY-MM (default: current month) and
// ?months=N for the trend window.
func (h *StatsHandler) Summary(c *gin.Context) {
	month := time.Now()
	if s := c.Query("month"); s != "" {
		parsed, err := time.Parse("2006-01", s)
		if err != nil {
			respondError(c, apperr.Validation("month", "month must be a valid YYYY-MM value"))
			return
		}
		month = parsed
	}
	months, _ := strconv.Atoi(c.DefaultQuery("months", "6"))

	summary, err := h.Stats.Summary(c.Request.Context(), userID(c), c.Param("id"), month, months)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
