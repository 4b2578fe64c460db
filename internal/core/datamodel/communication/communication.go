package communication

import (
	"time"

	"gorm.io/datatypes"
)

type Communication struct {
	ID           string                       `gorm:"primaryKey;type:varchar(36)"`
	ParentType   string                       `gorm:"column:parent_type;not null;index:idx_communications_parent"`
	ParentID     string                       `gorm:"column:parent_id;not null;index:idx_communications_parent"`
	Kind         string                       `gorm:"column:kind;not null"`
	Summary      string                       `gorm:"column:summary"`
	RecordingURL *string                      `gorm:"column:recording_url"`
	CreatedBy    string                       `gorm:"column:created_by;not null;index"`
	ServiceTypes datatypes.JSONType[[]string] `gorm:"column:service_types"`
	OccurredAt   time.Time                    `gorm:"column:occurred_at"`
	CreatedAt    time.Time                    `gorm:"column:created_at;autoCreateTime"`
}

func (Communication) TableName() string {
	return "communications"
}
