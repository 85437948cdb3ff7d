package service

import (
	"context"      // Request scoped cancellation
	"strings"      // Name normalisation
	"unicode/utf8" // Name length in characters

	"networth/internal/domain" // User model
	"networth/internal/store"  // Store errors
	"networth/internal/utils"  // API key helpers

	"github.com/pkg/errors"      // Error wrapping
	"github.com/sirupsen/logrus" // Logging
)

// Authenticate resolves the user called name if apiKey belongs to it
func (s *Service) Authenticate(ctx context.Context, name, apiKey string) (*domain.User, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if name == "" {
		return nil, ErrMissingName
	}
	user, err := s.store.FindUser(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials // Same answer as a wrong key
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckAPIKey(user.APIKeyHash, apiKey) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// validName trims name and checks it fits the name column
func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrMissingName
	}
	if utf8.RuneCountInString(name) > domain.MaxNameLength {
		return "", ErrInvalidRequest
	}
	return name, nil
}

// CreateUser registers a user and returns it with its API key. The key is only available here.
func (s *Service) CreateUser(ctx context.Context, name string) (*domain.User, string, error) {
	name, err := validName(name)
	if err != nil {
		return nil, "", err
	}
	apiKey, err := utils.GenerateAPIKey() // 64 hex characters
	if err != nil {
		return nil, "", errors.Wrap(err, "generate api key")
	}
	hash, err := utils.HashAPIKey(apiKey, s.opts.BcryptCost) // Only the hash is stored
	if err != nil {
		return nil, "", errors.Wrap(err, "hash api key")
	}
	user := &domain.User{Name: name, APIKeyHash: hash}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, "", ErrUserExists
		}
		return nil, "", err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"name":    user.Name,
	}).Info("User created")
	return user, apiKey, nil
}

// RenameUser gives an authenticated user a new name. The API key stays the same.
func (s *Service) RenameUser(ctx context.Context, user *domain.User, newName string) error {
	newName, err := validName(newName)
	if err != nil {
		return err
	}
	if newName == user.Name {
		return nil // Nothing to change
	}
	if err := s.store.RenameUser(ctx, user.ID, newName); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return ErrUserExists
		}
		return err
	}
	oldName := user.Name
	user.Name = newName
	// Entries under the old name must not leak to a future user of that name
	s.invalidateNetWorth(ctx, oldName)
	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"old_name": oldName,
		"new_name": newName,
	}).Info("User renamed")
	return nil
}

// DeleteUser removes an authenticated user and its balances
func (s *Service) DeleteUser(ctx context.Context, user *domain.User) error {
	if err := s.store.DeleteUser(ctx, user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound // Deleted by a concurrent request
		}
		return err
	}
	s.invalidateNetWorth(ctx, user.Name)
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"name":    user.Name,
	}).Info("User deleted")
	return nil
}
