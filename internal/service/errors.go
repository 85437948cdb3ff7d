package service

import "github.com/pkg/errors" // Error values

// Errors returned by the service. The API layer maps each of them to an HTTP status.
var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrMissingAPIKey      = errors.New("api key is required")
	ErrMissingName        = errors.New("username is required")
	ErrMissingSymbol      = errors.New("symbol is required")
	ErrMissingCurrency    = errors.New("currency is required")
	ErrInvalidCurrency    = errors.New("invalid currency")
	ErrInvalidCredentials = errors.New("invalid username or api key")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrSymbolNotFound     = errors.New("symbol not found")
	ErrUpstream           = errors.New("price provider request failed")
)
