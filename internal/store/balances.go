package store

import (
	"context" // Request scoped cancellation

	"networth/internal/domain" // Balance model

	"github.com/pkg/errors" // Error wrapping
	"gorm.io/gorm"          // ORM
)

// AddBalance adds delta to the (user, symbol) balance, creating it when missing, and returns the new amount.
// The increment runs in the database so concurrent updates of the same row are never lost.
func (s *Store) AddBalance(ctx context.Context, userID uint, symbol string, delta float64) (float64, error) {
	var balance domain.Balance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		increment := func() (int64, error) {
			res := tx.Model(&domain.Balance{}).
				Where("user_id = ? AND symbol = ?", userID, symbol).
				Update("amount", gorm.Expr("amount + ?", delta)) // Increment in the database
			return res.RowsAffected, res.Error
		}
		affected, err := increment()
		if err != nil {
			return err
		}
		if affected == 0 {
			// Either the row is missing or MySQL reported an unchanged row for a zero delta
			row := domain.Balance{UserID: userID, Symbol: symbol, Amount: delta}
			if err := translate(tx.Create(&row).Error); err != nil {
				if !errors.Is(err, ErrDuplicate) {
					return err
				}
				// Lost an insert race, the row exists now
				if _, err := increment(); err != nil {
					return err
				}
			}
		}
		return tx.Where("user_id = ? AND symbol = ?", userID, symbol).First(&balance).Error // Read back the new amount
	})
	if err != nil {
		return 0, errors.Wrap(err, "add balance")
	}
	return balance.Amount, nil
}

// ListBalances returns every balance of a user ordered by symbol
func (s *Store) ListBalances(ctx context.Context, userID uint) ([]domain.Balance, error) {
	var balances []domain.Balance // Query balances of the user
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("symbol").Find(&balances).Error; err != nil {
		return nil, errors.Wrap(err, "list balances")
	}
	return balances, nil
}
