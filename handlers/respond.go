package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/famoney/famoney-api/apperr"
)

// respondError translates a service error into its HTTP status and the
// standard error body. Internal errors are logged, not leaked.
func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		message = "internal server error"
	}
	c.JSON(status, gin.H{"error": message})
}

func userID(c *gin.Context) string {
	return c.GetString("user_id")
}
