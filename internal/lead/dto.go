package lead

type CreateLeadDTO struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Email        string   `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone        string   `json:"phone,omitempty" validate:"omitempty,max=32"`
	Source       string   `json:"source,omitempty" validate:"omitempty,max=64"`
	Status       string   `json:"status,omitempty"`
	Notes        string   `json:"notes,omitempty" validate:"omitempty,max=4000"`
	AssignedTo   string   `json:"assigned_to,omitempty"`
	ServiceTypes []string `json:"service_types,omitempty"`
}

// UpdateLeadDTO carries a partial update; nil fields are left alone.
type UpdateLeadDTO struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email        *string  `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone        *string  `json:"phone,omitempty" validate:"omitempty,max=32"`
	Source       *string  `json:"source,omitempty" validate:"omitempty,max=64"`
	Status       *string  `json:"status,omitempty"`
	Notes        *string  `json:"notes,omitempty" validate:"omitempty,max=4000"`
	ServiceTypes []string `json:"service_types,omitempty"`
}

type AssignLeadDTO struct {
	AssignedTo string `json:"assigned_to"`
}

// ListQuery narrows a listing before visibility is applied.
type ListQuery struct {
	Status      string
	ServiceType string
}
