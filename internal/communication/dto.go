package communication

import "time"

type AddCommunicationDTO struct {
	ParentType   string     `json:"parent_type" validate:"required,oneof=lead customer"`
	ParentID     string     `json:"parent_id" validate:"required"`
	Kind         string     `json:"kind" validate:"required,oneof=call email meeting note"`
	Summary      string     `json:"summary,omitempty" validate:"omitempty,max=4000"`
	RecordingURL string     `json:"recording_url,omitempty" validate:"omitempty,url,max=2048"`
	OccurredAt   *time.Time `json:"occurred_at,omitempty"`
}

// ListQuery restricts a listing to one parent record when ParentID is set.
type ListQuery struct {
	ParentType string
	ParentID   string
}
