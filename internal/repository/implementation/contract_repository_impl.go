package implementation

import (
	"context"
	"errors"

	"idea-contract-be/internal/entity"
	"idea-contract-be/internal/mapper"
	"idea-contract-be/internal/model"
	"idea-contract-be/internal/repository/contract"
	"idea-contract-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ContractRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContractMapper
}

func NewContractRepository(db *gorm.DB) contract.ContractRepository {
	return &ContractRepositoryImpl{
		db:     db,
		mapper: mapper.NewContractMapper(),
	}
}

func (r *ContractRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ContractRepositoryImpl) Create(ctx context.Context, c *entity.Contract) error {
	m := r.mapper.ToModel(c)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*c = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContractRepositoryImpl) Update(ctx context.Context, c *entity.Contract) error {
	m := r.mapper.ToModel(c)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*c = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContractRepositoryImpl) DeleteBySessionID(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&model.Contract{}).Error
}

func (r *ContractRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Contract, error) {
	var m model.Contract
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ContractRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Contract, error) {
	var models []*model.Contract
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ContractRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Contract{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
