package servicetype

import (
	"time"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	servicetypeDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/servicetype"
)

// ServiceType is a line-of-business tag. Leads, customers and permission sets
// may only carry codes of active catalog entries.
type ServiceType struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *ServiceType) ToResponse() ServiceTypeResponse {
	return ServiceTypeResponse{
		Code:        s.Code,
		Name:        s.Name,
		Description: s.Description,
	}
}

// Builtins is the catalog a fresh installation starts with.
func Builtins() []*ServiceType {
	names := map[access.ServiceType][2]string{
		access.ServiceTraining:    {"Training", "Trading and investing courses"},
		access.ServiceWealth:      {"Wealth", "Wealth management advisory"},
		access.ServiceEquity:      {"Equity", "Equity broking"},
		access.ServiceInsurance:   {"Insurance", "Life and general insurance"},
		access.ServiceMutualFunds: {"Mutual funds", "Mutual fund distribution"},
	}
	out := make([]*ServiceType, 0, len(names))
	for _, code := range access.AllServiceTypes() {
		n := names[code]
		out = append(out, &ServiceType{Code: string(code), Name: n[0], Description: n[1], IsActive: true})
	}
	return out
}

func ToDataModel(s *ServiceType) *servicetypeDatamodel.ServiceType {
	return &servicetypeDatamodel.ServiceType{
		ID:          s.ID,
		Code:        s.Code,
		Name:        s.Name,
		Description: s.Description,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func FromDataModel(s *servicetypeDatamodel.ServiceType) *ServiceType {
	return &ServiceType{
		ID:          s.ID,
		Code:        s.Code,
		Name:        s.Name,
		Description: s.Description,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
