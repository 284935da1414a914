// Package users is the persistence collaborator for registered principals.
// Implementations enforce username uniqueness themselves; callers treat
// common.ErrAlreadyExists from Create as the authoritative duplicate signal.
package users

import (
	"context"

	"github.com/dmitrijs2005/authgate/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills in ID and CreatedAt. A taken username
	// yields common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByLogin is a point lookup by exact, case-sensitive username.
	// An unknown username yields common.ErrorNotFound.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
