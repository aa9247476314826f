package contract

import (
	"context"

	"idea-contract-be/internal/entity"
	"idea-contract-be/internal/repository/specification"
)

type ContractRepository interface {
	Create(ctx context.Context, contract *entity.Contract) error
	Update(ctx context.Context, contract *entity.Contract) error
	DeleteBySessionID(ctx context.Context, sessionID string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Contract, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Contract, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
