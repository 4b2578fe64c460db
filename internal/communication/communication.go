package communication

import (
	"time"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	communicationDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/communication"
	"gorm.io/datatypes"
)

const (
	ParentLead     = "lead"
	ParentCustomer = "customer"

	KindCall    = "call"
	KindEmail   = "email"
	KindMeeting = "meeting"
	KindNote    = "note"
)

// Communication is a history entry logged against a lead or a customer.
type Communication struct {
	ID           string              `json:"id"`
	ParentType   string              `json:"parent_type"`
	ParentID     string              `json:"parent_id"`
	Kind         string              `json:"kind"`
	Summary      string              `json:"summary,omitempty"`
	RecordingURL string              `json:"recording_url,omitempty"`
	CreatedBy    string              `json:"created_by"`
	ServiceTypes access.ServiceTypes `json:"service_types"`
	OccurredAt   time.Time           `json:"occurred_at"`
	CreatedAt    time.Time           `json:"created_at"`
}

func (c *Communication) Ownership() access.Ownership {
	return access.Ownership{
		Resource:     access.ResourceCommunication,
		CreatedBy:    c.CreatedBy,
		ServiceTypes: c.ServiceTypes,
	}
}

func (c *Communication) HasRecording() bool {
	return c.RecordingURL != ""
}

// Recording is what the play and download endpoints hand out.
type Recording struct {
	CommunicationID string `json:"communication_id"`
	URL             string `json:"url"`
	Disposition     string `json:"disposition"`
}

func ToDataModel(c *Communication) *communicationDatamodel.Communication {
	row := &communicationDatamodel.Communication{
		ID:           c.ID,
		ParentType:   c.ParentType,
		ParentID:     c.ParentID,
		Kind:         c.Kind,
		Summary:      c.Summary,
		CreatedBy:    c.CreatedBy,
		ServiceTypes: datatypes.NewJSONType(c.ServiceTypes.Strings()),
		OccurredAt:   c.OccurredAt,
		CreatedAt:    c.CreatedAt,
	}
	if c.RecordingURL != "" {
		url := c.RecordingURL
		row.RecordingURL = &url
	}
	return row
}

func FromDataModel(row *communicationDatamodel.Communication) *Communication {
	c := &Communication{
		ID:           row.ID,
		ParentType:   row.ParentType,
		ParentID:     row.ParentID,
		Kind:         row.Kind,
		Summary:      row.Summary,
		CreatedBy:    row.CreatedBy,
		ServiceTypes: access.ServiceTypesFromStrings(row.ServiceTypes.Data()),
		OccurredAt:   row.OccurredAt,
		CreatedAt:    row.CreatedAt,
	}
	if row.RecordingURL != nil {
		c.RecordingURL = *row.RecordingURL
	}
	return c
}
