package customer

import (
	"time"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	customerDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/customer"
	"gorm.io/datatypes"
)

type Customer struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Email        string              `json:"email,omitempty"`
	Phone        string              `json:"phone,omitempty"`
	Segment      string              `json:"segment"`
	Notes        string              `json:"notes,omitempty"`
	CreatedBy    string              `json:"created_by"`
	AssignedTo   string              `json:"assigned_to,omitempty"`
	ServiceTypes access.ServiceTypes `json:"service_types"`
	LeadID       string              `json:"lead_id,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

const (
	SegmentRetail = "retail"
	SegmentHNI    = "hni"
)

var Segments = []string{SegmentRetail, SegmentHNI}

func (c *Customer) Ownership() access.Ownership {
	return access.Ownership{
		Resource:     access.ResourceCustomer,
		CreatedBy:    c.CreatedBy,
		AssignedTo:   c.AssignedTo,
		ServiceTypes: c.ServiceTypes,
	}
}

func ToDataModel(c *Customer) *customerDatamodel.Customer {
	row := &customerDatamodel.Customer{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Segment:      c.Segment,
		Notes:        c.Notes,
		CreatedBy:    c.CreatedBy,
		ServiceTypes: datatypes.NewJSONType(c.ServiceTypes.Strings()),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if c.AssignedTo != "" {
		assigned := c.AssignedTo
		row.AssignedTo = &assigned
	}
	if c.LeadID != "" {
		leadID := c.LeadID
		row.LeadID = &leadID
	}
	return row
}

func FromDataModel(row *customerDatamodel.Customer) *Customer {
	c := &Customer{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		Phone:        row.Phone,
		Segment:      row.Segment,
		Notes:        row.Notes,
		CreatedBy:    row.CreatedBy,
		ServiceTypes: access.ServiceTypesFromStrings(row.ServiceTypes.Data()),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.AssignedTo != nil {
		c.AssignedTo = *row.AssignedTo
	}
	if row.LeadID != nil {
		c.LeadID = *row.LeadID
	}
	return c
}

func FromDataModelSlice(rows []*customerDatamodel.Customer) []*Customer {
	result := make([]*Customer, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}
