package api

import (
	"net/http" // HTTP status codes

	"networth/internal/middleware" // User context helper

	"github.com/gin-gonic/gin" // Gin web framework
)

// GetNetWorthHandler returns the authenticated user's net worth in the currency query parameter
func GetNetWorthHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c) // Set by UserFromPath
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Detail: "Unauthorized"})
			return
		}
		nw, err := svc.NetWorth(c.Request.Context(), user, c.Query("currency"))
		if err != nil {
			newErrorResponse(c, err) // Missing currency or provider failure
			return
		}
		c.JSON(http.StatusOK, nw)
	}
}
