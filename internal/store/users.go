package store

import (
	"context" // Request scoped cancellation

	"networth/internal/domain" // User and balance models

	"github.com/pkg/errors" // Error wrapping
	"gorm.io/gorm"          // ORM
)

// CreateUser inserts a new user. Returns ErrDuplicate if the name is taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&domain.User{}).Where("name = ?", user.Name).Count(&count).Error; err != nil {
		return errors.Wrap(err, "count users")
	}
	if count > 0 {
		return ErrDuplicate // Name already taken
	}
	if err := translate(db.Create(user).Error); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return ErrDuplicate // Lost a race on the unique index
		}
		return errors.Wrap(err, "create user")
	}
	return nil
}

// FindUser looks a user up by name
func (s *Store) FindUser(ctx context.Context, name string) (*domain.User, error) {
	var user domain.User // Query user by name
	if err := translate(s.db.WithContext(ctx).Where("name = ?", name).First(&user).Error); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find user")
	}
	return &user, nil
}

// RenameUser changes the name of a user. Returns ErrDuplicate if newName is taken.
func (s *Store) RenameUser(ctx context.Context, id uint, newName string) error {
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&domain.User{}).Where("name = ? AND id <> ?", newName, id).Count(&count).Error; err != nil {
		return errors.Wrap(err, "count users")
	}
	if count > 0 {
		return ErrDuplicate // Another user holds newName
	}
	res := db.Model(&domain.User{}).Where("id = ?", id).Update("name", newName)
	if err := translate(res.Error); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "rename user")
	}
	return nil
}

// DeleteUser removes a user together with all of its balances
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Delete balances first so the cascade holds even where foreign keys are not enforced
		if err := tx.Where("user_id = ?", id).Delete(&domain.Balance{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound // Rolls back the balance delete
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return errors.Wrap(err, "delete user")
}
