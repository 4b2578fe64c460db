package postgres

import (
	"context"
	"errors"

	"github.com/Beamwelly/CRM-Application-sub001/internal/communication"
	communicationDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/communication"
	"gorm.io/gorm"
)

// CommunicationRepository implements communication.Repository using GORM
type CommunicationRepository struct {
	db *gorm.DB
}

func NewCommunicationRepository(db *gorm.DB) *CommunicationRepository {
	return &CommunicationRepository{db: db}
}

// List returns entries newest first.
func (r *CommunicationRepository) List(ctx context.Context, q communication.ListQuery) ([]*communication.Communication, error) {
	var rows []*communicationDatamodel.Communication
	query := r.db.WithContext(ctx).Order("occurred_at DESC, id ASC")
	if q.ParentID != "" {
		query = query.Where("parent_type = ? AND parent_id = ?", q.ParentType, q.ParentID)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*communication.Communication, len(rows))
	for i, row := range rows {
		out[i] = communication.FromDataModel(row)
	}
	return out, nil
}

func (r *CommunicationRepository) GetByID(ctx context.Context, id string) (*communication.Communication, error) {
	var row communicationDatamodel.Communication
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, communication.ErrNotFound
		}
		return nil, err
	}
	return communication.FromDataModel(&row), nil
}

func (r *CommunicationRepository) Create(ctx context.Context, c *communication.Communication) error {
	row := communication.ToDataModel(c)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	c.CreatedAt = row.CreatedAt
	return nil
}
