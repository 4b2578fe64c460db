package postgres

import (
	"context"
	"errors"
	"time"

	leadDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/lead"
	"github.com/Beamwelly/CRM-Application-sub001/internal/lead"
	"gorm.io/gorm"
)

// LeadRepository implements lead.Repository using GORM
type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// List returns every lead matching q, oldest first. Service type matching
// happens in memory so the query stays portable across JSON column types.
func (r *LeadRepository) List(ctx context.Context, q lead.ListQuery) ([]*lead.Lead, error) {
	var rows []*leadDatamodel.Lead
	query := r.db.WithContext(ctx).Order("created_at ASC, id ASC")
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	leads := lead.FromDataModelSlice(rows)
	if q.ServiceType == "" {
		return leads, nil
	}
	out := leads[:0]
	for _, l := range leads {
		for _, t := range l.ServiceTypes {
			if string(t) == q.ServiceType {
				out = append(out, l)
				break
			}
		}
	}
	return out, nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id string) (*lead.Lead, error) {
	var row leadDatamodel.Lead
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lead.ErrNotFound
		}
		return nil, err
	}
	return lead.FromDataModel(&row), nil
}

func (r *LeadRepository) Create(ctx context.Context, l *lead.Lead) error {
	row := lead.ToDataModel(l)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	l.CreatedAt, l.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

// Update writes the editable fields of l. The write only lands while the
// stored assignee and conversion still match l; otherwise it fails with
// lead.ErrChanged.
func (r *LeadRepository) Update(ctx context.Context, l *lead.Lead) error {
	row := lead.ToDataModel(l)
	row.UpdatedAt = time.Now()
	result := r.guarded(ctx, l.ID, l.AssignedTo, l.ConvertedCustomerID).
		Select("name", "email", "phone", "source", "status", "notes", "service_types", "updated_at").
		Updates(row)
	if err := r.checkWrite(ctx, l.ID, result); err != nil {
		return err
	}
	l.UpdatedAt = row.UpdatedAt
	return nil
}

// Assign moves l from the assignee the caller saw to l.AssignedTo.
func (r *LeadRepository) Assign(ctx context.Context, l *lead.Lead, from string) error {
	now := time.Now()
	var assignee interface{}
	if l.AssignedTo != "" {
		assignee = l.AssignedTo
	}
	result := r.guarded(ctx, l.ID, from, l.ConvertedCustomerID).
		Updates(map[string]interface{}{
			"assigned_to": assignee,
			"updated_at":  now,
		})
	if err := r.checkWrite(ctx, l.ID, result); err != nil {
		return err
	}
	l.UpdatedAt = now
	return nil
}

func (r *LeadRepository) guarded(ctx context.Context, id, assignedTo, convertedCustomerID string) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&leadDatamodel.Lead{}).Where("id = ?", id)
	query = whereNullable(query, "assigned_to", assignedTo)
	return whereNullable(query, "converted_customer_id", convertedCustomerID)
}

// checkWrite tells a missing lead apart from one whose guard no longer holds.
func (r *LeadRepository) checkWrite(ctx context.Context, id string, result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&leadDatamodel.Lead{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return lead.ErrNotFound
	}
	return lead.ErrChanged
}

func whereNullable(query *gorm.DB, column, value string) *gorm.DB {
	if value == "" {
		return query.Where(column + " IS NULL")
	}
	return query.Where(column+" = ?", value)
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&leadDatamodel.Lead{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return lead.ErrNotFound
	}
	return nil
}
