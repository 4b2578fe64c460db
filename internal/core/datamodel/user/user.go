package user

import (
	"time"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"gorm.io/datatypes"
)

type User struct {
	ID               string                                      `gorm:"primaryKey;type:varchar(36)"`
	Email            string                                      `gorm:"column:email;uniqueIndex;not null"`
	Name             string                                      `gorm:"column:name;not null"`
	PasswordHash     string                                      `gorm:"column:password_hash;not null"`
	Role             string                                      `gorm:"column:role;not null;index"`
	Position         string                                      `gorm:"column:position"`
	CreatedByAdminID *string                                     `gorm:"column:created_by_admin_id;index"`
	Permissions      datatypes.JSONType[access.UserPermissions] `gorm:"column:permissions"`
	IsActive         bool                                        `gorm:"column:is_active;not null"`
	CreatedAt        time.Time                                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
