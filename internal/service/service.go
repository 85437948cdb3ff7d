// Package service implements user management, balance updates and the cache-first net worth calculation.
package service

import (
	"context" // Request scoped cancellation

	"networth/internal/coingecko" // Symbol status and price types
	"networth/internal/domain"    // Models and responses
)

// Store persists users and balances
type Store interface {
	CreateUser(ctx context.Context, user *domain.User) error
	FindUser(ctx context.Context, name string) (*domain.User, error)
	RenameUser(ctx context.Context, id uint, newName string) error
	DeleteUser(ctx context.Context, id uint) error
	AddBalance(ctx context.Context, userID uint, symbol string, delta float64) (float64, error)
	ListBalances(ctx context.Context, userID uint) ([]domain.Balance, error)
}

// PriceProvider looks up coin ids and prices
type PriceProvider interface {
	IsSymbolSupported(ctx context.Context, symbol string) bool
	CheckSymbol(ctx context.Context, symbol string) (coingecko.SymbolStatus, error)
	GetPrices(ctx context.Context, ids []string, currency string) (coingecko.Prices, error)
}

// SymbolCache remembers symbols confirmed by the price provider
type SymbolCache interface {
	Has(ctx context.Context, symbol string) bool
	Put(ctx context.Context, symbol string) error
}

// NetWorthCache stores computed net worth per (user, currency).
// Put only writes while the user's invalidation counter still equals the version read before the calculation.
type NetWorthCache interface {
	Get(ctx context.Context, user, currency string) (*domain.NetWorth, bool)
	Version(ctx context.Context, user string) (int64, error)
	Put(ctx context.Context, user, currency string, nw *domain.NetWorth, version int64) (bool, error)
	InvalidateAll(ctx context.Context, user string) (int64, error)
}

// Options tune the service
type Options struct {
	BcryptCost        int  // Cost used to hash new API keys
	StrictSymbolCheck bool // Report provider failures during symbol checks as ErrUpstream
}

// Service ties the store, the price provider and the caches together
type Service struct {
	store    Store
	prices   PriceProvider
	symbols  SymbolCache
	networth NetWorthCache
	opts     Options
}

// New creates a service from its collaborators
func New(store Store, prices PriceProvider, symbols SymbolCache, networth NetWorthCache, opts Options) *Service {
	return &Service{
		store:    store,
		prices:   prices,
		symbols:  symbols,
		networth: networth,
		opts:     opts,
	}
}
