package unitofwork

import (
	"context"

	"idea-contract-be/internal/repository/contract"
)

// UnitOfWork groups catalog writes. Without Begin every call runs on its own.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ContractRepository() contract.ContractRepository
}

// RepositoryFactory hands out units of work; services hold the factory, never a *gorm.DB.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
