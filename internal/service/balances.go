package service

import (
	"context" // Request scoped cancellation
	"strings" // Symbol normalisation

	"networth/internal/coingecko" // Symbol status
	"networth/internal/domain"    // User model

	"github.com/pkg/errors"      // Error wrapping
	"github.com/sirupsen/logrus" // Logging
)

// AcceptSymbol checks symbol against the symbol cache, then the price provider, caching confirmed symbols
func (s *Service) AcceptSymbol(ctx context.Context, symbol string) error {
	if s.symbols.Has(ctx, symbol) {
		logrus.WithField("symbol", symbol).Debug("Symbol is present in cache")
		return nil
	}
	if s.opts.StrictSymbolCheck {
		status, err := s.prices.CheckSymbol(ctx, symbol)
		switch status {
		case coingecko.SymbolSupported:
		case coingecko.SymbolUnsupported:
			return ErrSymbolNotFound
		default:
			return errors.Wrap(ErrUpstream, errorText(err)) // Provider could not be asked
		}
	} else if !s.prices.IsSymbolSupported(ctx, symbol) {
		return ErrSymbolNotFound // Also when the provider is down
	}
	logrus.WithField("symbol", symbol).Info("Updating symbol in cache")
	if err := s.symbols.Put(ctx, symbol); err != nil {
		logrus.WithField("symbol", symbol).WithError(err).Warn("Failed to cache symbol")
	}
	return nil
}

// AddBalance adds amount to the user's balance of symbol and returns the new balance.
// Unknown symbols are rejected before anything is written.
func (s *Service) AddBalance(ctx context.Context, user *domain.User, symbol string, amount float64) (float64, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return 0, ErrMissingSymbol
	}
	if err := s.AcceptSymbol(ctx, symbol); err != nil {
		return 0, err // Nothing written
	}
	ticker := strings.ToUpper(symbol) // Balances are stored under the uppercase symbol
	balance, err := s.store.AddBalance(ctx, user.ID, ticker, amount)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"symbol":  ticker,
			"amount":  amount,
			"error":   err.Error(),
		}).Error("Balance update failed")
		return 0, err
	}
	s.invalidateNetWorth(ctx, user.Name) // Every currency is stale now
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"symbol":  ticker,
		"amount":  amount,
		"balance": balance,
	}).Info("Balance updated")
	return balance, nil
}

// Balances returns the user's balances keyed by uppercase symbol
func (s *Service) Balances(ctx context.Context, user *domain.User) (map[string]float64, error) {
	rows, err := s.store.ListBalances(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(rows))
	for _, b := range rows {
		out[b.Symbol] = b.Amount
	}
	return out, nil
}

// invalidateNetWorth drops every cached net worth of user. Failures are logged; entries then expire with the TTL.
func (s *Service) invalidateNetWorth(ctx context.Context, user string) {
	n, err := s.networth.InvalidateAll(ctx, user)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"name":  user,
			"error": err.Error(),
		}).Error("Failed to invalidate net worth cache")
		return // The mutation itself succeeded
	}
	logrus.WithFields(logrus.Fields{
		"name": user,
		"keys": n,
	}).Debug("Net worth cache invalidated")
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
