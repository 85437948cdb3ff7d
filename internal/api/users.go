package api

import (
	"net/http" // HTTP status codes

	"networth/internal/middleware" // API key and user context helpers

	"github.com/gin-gonic/gin" // Gin web framework
)

// CreateUserHandler registers a user and returns its API key
func CreateUserHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Invalid request"})
			return
		}
		_, apiKey, err := svc.CreateUser(c.Request.Context(), req.Name)
		if err != nil {
			newErrorResponse(c, err) // Duplicate or empty name
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User created", "api_key": apiKey})
	}
}

// RenameUserHandler changes the name of the user identified by old_name and the api-key header
func RenameUserHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RenameUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		user, err := svc.Authenticate(ctx, req.OldName, c.GetString(middleware.ContextAPIKey))
		if err != nil {
			newErrorResponse(c, err)
			return
		}
		if err := svc.RenameUser(ctx, user, req.NewName); err != nil {
			newErrorResponse(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User name updated successfully", "new_name": user.Name})
	}
}

// DeleteUserHandler deletes the authenticated user and its balances
func DeleteUserHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c) // Set by UserFromPath
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Detail: "Unauthorized"})
			return
		}
		if err := svc.DeleteUser(c.Request.Context(), user); err != nil {
			newErrorResponse(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
	}
}
