package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/authgate/internal/dbx"
	"github.com/dmitrijs2005/authgate/internal/server/repositories/users"
)

// MemoryRepositoryManager hands out one shared in-memory users repository
// regardless of the DBTX passed in. There is nothing to migrate.
type MemoryRepositoryManager struct {
	users *users.MemoryRepository
}

func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *MemoryRepositoryManager) Users(_ dbx.DBTX) users.Repository {
	return m.users
}

func NewMemoryRepositoryManager() RepositoryManager {
	return &MemoryRepositoryManager{users: users.NewMemoryRepository()}
}
