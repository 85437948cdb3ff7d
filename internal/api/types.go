package api

import (
	"context" // Context for service calls

	"networth/internal/domain" // Importing domain models
)

// Service is the set of operations the HTTP handlers need
type Service interface {
	Authenticate(ctx context.Context, name, apiKey string) (*domain.User, error)
	CreateUser(ctx context.Context, name string) (*domain.User, string, error)
	RenameUser(ctx context.Context, user *domain.User, newName string) error
	DeleteUser(ctx context.Context, user *domain.User) error
	AddBalance(ctx context.Context, user *domain.User, symbol string, amount float64) (float64, error)
	Balances(ctx context.Context, user *domain.User) (map[string]float64, error)
	NetWorth(ctx context.Context, user *domain.User, currency string) (*domain.NetWorth, error)
}

// CreateUserRequest is the body of POST /users/
type CreateUserRequest struct {
	Name string `json:"name" binding:"required"` // Name must be provided
}

// RenameUserRequest is the body of PUT /users/
type RenameUserRequest struct {
	OldName string `json:"old_name"` // Current name, used for authentication
	NewName string `json:"new_name"` // Name to switch to
}

// BalanceRequest is the body of POST /balances/
type BalanceRequest struct {
	Name   string   `json:"name"`                      // Owner of the balance
	Symbol string   `json:"symbol" binding:"required"` // Coin id, e.g. bitcoin
	Amount *float64 `json:"amount" binding:"required"` // Signed amount added to the balance
}
