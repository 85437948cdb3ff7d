package service

import (
	"context" // Request scoped cancellation
	"regexp"  // Currency validation
	"sort"    // Stable provider query
	"strings" // Symbol and currency normalisation

	"networth/internal/domain" // Balances and net worth response

	"github.com/pkg/errors"      // Error wrapping
	"github.com/sirupsen/logrus" // Logging
)

// currencyPattern matches the provider's vs_currency codes (usd, eur, btc, sats...)
var currencyPattern = regexp.MustCompile(`^[a-z]{2,10}$`)

// NetWorth values every balance of user in currency. Results are served from and stored in the
// net worth cache; a user without balances gets a zero result that is not cached.
// Balances the provider returns no price for are left out of the total.
func (s *Service) NetWorth(ctx context.Context, user *domain.User, currency string) (*domain.NetWorth, error) {
	currency = strings.ToLower(strings.TrimSpace(currency)) // Provider answers with lowercase keys
	if currency == "" {
		return nil, ErrMissingCurrency
	}
	if !currencyPattern.MatchString(currency) {
		return nil, ErrInvalidCurrency // Keeps the cache key unambiguous
	}
	if nw, ok := s.networth.Get(ctx, user.Name, currency); ok {
		return nw, nil // Cache hit
	}

	// Read the invalidation counter before the balances it guards
	version, verr := s.networth.Version(ctx, user.Name)
	if verr != nil {
		logrus.WithFields(logrus.Fields{
			"name":  user.Name,
			"error": verr.Error(),
		}).Warn("Failed to read net worth cache version")
	}

	balances, err := s.store.ListBalances(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(balances) == 0 {
		return domain.EmptyNetWorth(currency), nil // Not cached
	}

	prices, err := s.prices.GetPrices(ctx, coinIDs(balances), currency) // One batched request
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"currency": currency,
			"error":    err.Error(),
		}).Error("Price lookup failed")
		return nil, errors.Wrap(ErrUpstream, err.Error())
	}

	nw := domain.EmptyNetWorth(currency)
	for _, b := range balances {
		price, ok := prices.Price(strings.ToLower(b.Symbol), currency)
		if !ok {
			logrus.WithFields(logrus.Fields{
				"symbol":   b.Symbol,
				"currency": currency,
			}).Warn("No price returned, balance skipped")
			continue
		}
		total := b.Amount * price
		nw.NetWorth += total
		nw.Details[b.Symbol] = domain.AssetValue{
			Amount:       b.Amount,
			PricePerUnit: price,
			TotalValue:   total,
		}
	}

	if verr != nil {
		return nw, nil // Cannot tell whether the balances are still current
	}
	stored, err := s.networth.Put(ctx, user.Name, currency, nw, version)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"name":     user.Name,
			"currency": currency,
			"error":    err.Error(),
		}).Warn("Failed to cache net worth")
	} else if !stored {
		logrus.WithFields(logrus.Fields{
			"name":     user.Name,
			"currency": currency,
		}).Debug("Balances changed during calculation, net worth not cached")
	}
	return nw, nil
}

// coinIDs returns the distinct lowercase ids of balances in sorted order
func coinIDs(balances []domain.Balance) []string {
	seen := make(map[string]struct{}, len(balances))
	ids := make([]string, 0, len(balances))
	for _, b := range balances {
		id := strings.ToLower(b.Symbol)
		if _, ok := seen[id]; ok {
			continue // Already queried
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
