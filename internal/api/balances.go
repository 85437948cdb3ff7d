package api

import (
	"fmt"      // Message formatting
	"net/http" // HTTP status codes
	"strings"  // Symbol normalisation

	"networth/internal/middleware" // API key and user context helpers

	"github.com/gin-gonic/gin" // Gin web framework
)

// UpdateBalanceHandler adds an amount to one of the caller's balances
func UpdateBalanceHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BalanceRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		user, err := svc.Authenticate(ctx, req.Name, c.GetString(middleware.ContextAPIKey))
		if err != nil {
			newErrorResponse(c, err)
			return
		}
		balance, err := svc.AddBalance(ctx, user, req.Symbol, *req.Amount)
		if err != nil {
			newErrorResponse(c, err) // Unknown symbol or store failure
			return
		}
		ticker := strings.ToUpper(strings.TrimSpace(req.Symbol))
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Updated %s's %s balance", user.Name, ticker),
			"balance": balance,
		})
	}
}

// GetBalancesHandler lists the authenticated user's balances
func GetBalancesHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c) // Set by UserFromPath
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Detail: "Unauthorized"})
			return
		}
		balances, err := svc.Balances(c.Request.Context(), user)
		if err != nil {
			newErrorResponse(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"balances": balances})
	}
}
