package customer

import (
	"time"

	"gorm.io/datatypes"
)

type Customer struct {
	ID           string                       `gorm:"primaryKey;type:varchar(36)"`
	Name         string                       `gorm:"column:name;not null"`
	Email        string                       `gorm:"column:email"`
	Phone        string                       `gorm:"column:phone"`
	Segment      string                       `gorm:"column:segment;not null"`
	Notes        string                       `gorm:"column:notes"`
	CreatedBy    string                       `gorm:"column:created_by;not null;index"`
	AssignedTo   *string                      `gorm:"column:assigned_to;index"`
	ServiceTypes datatypes.JSONType[[]string] `gorm:"column:service_types"`
	LeadID       *string                      `gorm:"column:lead_id"`
	CreatedAt    time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}

func (Customer) TableName() string {
	return "customers"
}
