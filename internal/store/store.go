// Package store persists users and their balances with GORM.
package store

import (
	"context" // Request scoped cancellation

	"github.com/pkg/errors" // Error wrapping
	"gorm.io/gorm"          // ORM
)

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint would be violated
	ErrDuplicate = errors.New("record already exists")
)

// Store is the relational store of users and balances
type Store struct {
	db *gorm.DB
}

// New wraps an open GORM connection. The connection should be opened with TranslateError enabled.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB() // Underlying connection pool
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate maps GORM errors onto store errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate // Requires TranslateError
	default:
		return err
	}
}
