package api

import (
	"net/http" // HTTP status codes

	"networth/internal/middleware" // Request scoped logging
	"networth/internal/service"    // Service errors

	"github.com/gin-gonic/gin" // Gin web framework
	"github.com/pkg/errors"    // Error inspection
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail string `json:"detail"` // Human readable message
}

// errorMapping associates a service error with its status and public message
type errorMapping struct {
	err     error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{service.ErrMissingAPIKey, http.StatusUnauthorized, "API key is required"},
	{service.ErrMissingName, http.StatusBadRequest, "Username is required"},
	{service.ErrMissingSymbol, http.StatusBadRequest, "Symbol is required"},
	{service.ErrMissingCurrency, http.StatusBadRequest, "Currency is required"},
	{service.ErrInvalidCurrency, http.StatusBadRequest, "Invalid currency"},
	{service.ErrInvalidRequest, http.StatusBadRequest, "Invalid request"},
	{service.ErrUserExists, http.StatusBadRequest, "User already exists"},
	{service.ErrInvalidCredentials, http.StatusForbidden, "Invalid username or API key"},
	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrSymbolNotFound, http.StatusNotFound, "Symbol not found."},
	{service.ErrUpstream, http.StatusInternalServerError, "Failed to fetch prices from CoinGecko"},
}

// newErrorResponse aborts the request with the status and message matching err
func newErrorResponse(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			status, message = m.status, m.message
			break
		}
	}
	entry := middleware.Logger(c).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Info("Request rejected")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Detail: message})
}
