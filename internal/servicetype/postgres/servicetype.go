package postgres

import (
	"context"
	"errors"

	servicetypeDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/servicetype"
	"github.com/Beamwelly/CRM-Application-sub001/internal/servicetype"
	"gorm.io/gorm"
)

type ServiceTypeRepository struct {
	db *gorm.DB
}

func NewServiceTypeRepository(db *gorm.DB) servicetype.RepositoryAPI {
	return &ServiceTypeRepository{db: db}
}

func (r *ServiceTypeRepository) GetAll(ctx context.Context) ([]*servicetypeDatamodel.ServiceType, error) {
	var types []*servicetypeDatamodel.ServiceType
	err := r.db.WithContext(ctx).Order("id ASC").Find(&types).Error
	return types, err
}

// GetByCode returns nil, nil when the code is unknown.
func (r *ServiceTypeRepository) GetByCode(ctx context.Context, code string) (*servicetypeDatamodel.ServiceType, error) {
	var st servicetypeDatamodel.ServiceType
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&st).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

func (r *ServiceTypeRepository) Create(ctx context.Context, st *servicetypeDatamodel.ServiceType) error {
	return r.db.WithContext(ctx).Create(st).Error
}
