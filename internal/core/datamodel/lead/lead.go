package lead

import (
	"time"

	"gorm.io/datatypes"
)

type Lead struct {
	ID                  string                       `gorm:"primaryKey;type:varchar(36)"`
	Name                string                       `gorm:"column:name;not null"`
	Email               string                       `gorm:"column:email"`
	Phone               string                       `gorm:"column:phone"`
	Source              string                       `gorm:"column:source"`
	Status              string                       `gorm:"column:status;not null"`
	Notes               string                       `gorm:"column:notes"`
	CreatedBy           string                       `gorm:"column:created_by;not null;index"`
	AssignedTo          *string                      `gorm:"column:assigned_to;index"`
	ServiceTypes        datatypes.JSONType[[]string] `gorm:"column:service_types"`
	ConvertedCustomerID *string                      `gorm:"column:converted_customer_id"`
	CreatedAt           time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}

func (Lead) TableName() string {
	return "leads"
}
