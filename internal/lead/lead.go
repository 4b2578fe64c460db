package lead

import (
	"time"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	leadDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/lead"
	"gorm.io/datatypes"
)

type Lead struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	Email               string              `json:"email,omitempty"`
	Phone               string              `json:"phone,omitempty"`
	Source              string              `json:"source,omitempty"`
	Status              string              `json:"status"`
	Notes               string              `json:"notes,omitempty"`
	CreatedBy           string              `json:"created_by"`
	AssignedTo          string              `json:"assigned_to,omitempty"`
	ServiceTypes        access.ServiceTypes `json:"service_types"`
	ConvertedCustomerID string              `json:"converted_customer_id,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusConverted = "converted"
	StatusLost      = "lost"
)

var Statuses = []string{StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost}

func (l *Lead) Ownership() access.Ownership {
	return access.Ownership{
		Resource:     access.ResourceLead,
		CreatedBy:    l.CreatedBy,
		AssignedTo:   l.AssignedTo,
		ServiceTypes: l.ServiceTypes,
	}
}

func (l *Lead) IsConverted() bool {
	return l.ConvertedCustomerID != ""
}

func ToDataModel(l *Lead) *leadDatamodel.Lead {
	return &leadDatamodel.Lead{
		ID:                  l.ID,
		Name:                l.Name,
		Email:               l.Email,
		Phone:               l.Phone,
		Source:              l.Source,
		Status:              l.Status,
		Notes:               l.Notes,
		CreatedBy:           l.CreatedBy,
		AssignedTo:          optional(l.AssignedTo),
		ServiceTypes:        datatypes.NewJSONType(l.ServiceTypes.Strings()),
		ConvertedCustomerID: optional(l.ConvertedCustomerID),
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}

func FromDataModel(l *leadDatamodel.Lead) *Lead {
	return &Lead{
		ID:                  l.ID,
		Name:                l.Name,
		Email:               l.Email,
		Phone:               l.Phone,
		Source:              l.Source,
		Status:              l.Status,
		Notes:               l.Notes,
		CreatedBy:           l.CreatedBy,
		AssignedTo:          deref(l.AssignedTo),
		ServiceTypes:        access.ServiceTypesFromStrings(l.ServiceTypes.Data()),
		ConvertedCustomerID: deref(l.ConvertedCustomerID),
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}

func FromDataModelSlice(leads []*leadDatamodel.Lead) []*Lead {
	result := make([]*Lead, len(leads))
	for i, l := range leads {
		result[i] = FromDataModel(l)
	}
	return result
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
