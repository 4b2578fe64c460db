package customer

type CreateCustomerDTO struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Email        string   `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone        string   `json:"phone,omitempty" validate:"omitempty,max=32"`
	Segment      string   `json:"segment,omitempty" validate:"omitempty,oneof=retail hni"`
	Notes        string   `json:"notes,omitempty" validate:"omitempty,max=4000"`
	AssignedTo   string   `json:"assigned_to,omitempty"`
	ServiceTypes []string `json:"service_types,omitempty"`
}

type UpdateCustomerDTO struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email        *string  `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone        *string  `json:"phone,omitempty" validate:"omitempty,max=32"`
	Segment      *string  `json:"segment,omitempty" validate:"omitempty,oneof=retail hni"`
	Notes        *string  `json:"notes,omitempty" validate:"omitempty,max=4000"`
	ServiceTypes []string `json:"service_types,omitempty"`
}

type AssignCustomerDTO struct {
	AssignedTo string `json:"assigned_to"`
}

// ConvertLeadDTO turns a lead into a customer. Contact details, assignee and
// service types are taken from the lead.
type ConvertLeadDTO struct {
	Segment string `json:"segment,omitempty" validate:"omitempty,oneof=retail hni"`
	Notes   string `json:"notes,omitempty" validate:"omitempty,max=4000"`
}

type ListQuery struct {
	Segment     string
	ServiceType string
}
