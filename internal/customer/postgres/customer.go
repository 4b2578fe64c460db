package postgres

import (
	"context"
	"errors"
	"time"

	customerDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/customer"
	leadDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/lead"
	"github.com/Beamwelly/CRM-Application-sub001/internal/customer"
	"github.com/Beamwelly/CRM-Application-sub001/internal/lead"
	"gorm.io/gorm"
)

// CustomerRepository implements customer.Repository using GORM
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) List(ctx context.Context, q customer.ListQuery) ([]*customer.Customer, error) {
	var rows []*customerDatamodel.Customer
	query := r.db.WithContext(ctx).Order("created_at ASC, id ASC")
	if q.Segment != "" {
		query = query.Where("segment = ?", q.Segment)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	customers := customer.FromDataModelSlice(rows)
	if q.ServiceType == "" {
		return customers, nil
	}
	out := customers[:0]
	for _, c := range customers {
		for _, t := range c.ServiceTypes {
			if string(t) == q.ServiceType {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*customer.Customer, error) {
	var row customerDatamodel.Customer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customer.ErrNotFound
		}
		return nil, err
	}
	return customer.FromDataModel(&row), nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	row := customer.ToDataModel(c)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	c.CreatedAt, c.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

// CreateFromLead only marks leads that are still unconverted, so two
// concurrent conversions cannot both succeed.
func (r *CustomerRepository) CreateFromLead(ctx context.Context, c *customer.Customer) error {
	row := customer.ToDataModel(c)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		result := tx.Model(&leadDatamodel.Lead{}).
			Where("id = ? AND converted_customer_id IS NULL", c.LeadID).
			Updates(map[string]interface{}{
				"converted_customer_id": row.ID,
				"status":                lead.StatusConverted,
				"updated_at":            time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return customer.ErrLeadConverted
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.CreatedAt, c.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

// Update writes the editable fields of c while the stored assignee still
// matches c.AssignedTo.
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	row := customer.ToDataModel(c)
	row.UpdatedAt = time.Now()
	result := r.guarded(ctx, c.ID, c.AssignedTo).
		Select("name", "email", "phone", "segment", "notes", "service_types", "updated_at").
		Updates(row)
	if err := r.checkWrite(ctx, c.ID, result); err != nil {
		return err
	}
	c.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *CustomerRepository) Assign(ctx context.Context, c *customer.Customer, from string) error {
	now := time.Now()
	var assignee interface{}
	if c.AssignedTo != "" {
		assignee = c.AssignedTo
	}
	result := r.guarded(ctx, c.ID, from).
		Updates(map[string]interface{}{
			"assigned_to": assignee,
			"updated_at":  now,
		})
	if err := r.checkWrite(ctx, c.ID, result); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

func (r *CustomerRepository) guarded(ctx context.Context, id, assignedTo string) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&customerDatamodel.Customer{}).Where("id = ?", id)
	if assignedTo == "" {
		return query.Where("assigned_to IS NULL")
	}
	return query.Where("assigned_to = ?", assignedTo)
}

func (r *CustomerRepository) checkWrite(ctx context.Context, id string, result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&customerDatamodel.Customer{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return customer.ErrNotFound
	}
	return customer.ErrChanged
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&customerDatamodel.Customer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return customer.ErrNotFound
	}
	return nil
}
