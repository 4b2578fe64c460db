package user

import (
	"errors"
	"time"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	userDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/user"
	"gorm.io/datatypes"
)

type User struct {
	ID               string                 `json:"id"`
	Email            string                 `json:"email"`
	Name             string                 `json:"name"`
	PasswordHash     string                 `json:"-"`
	Role             access.Role            `json:"role"`
	Position         access.Position        `json:"position,omitempty"`
	CreatedByAdminID string                 `json:"created_by_admin_id,omitempty"`
	Permissions      access.UserPermissions `json:"permissions"`
	IsActive         bool                   `json:"is_active"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

var ErrNotFound = errors.New("user not found")

func (u *User) Ownership() access.Ownership {
	return access.Ownership{
		Resource:  access.ResourceUser,
		Self:      u.ID,
		CreatedBy: u.CreatedByAdminID,
	}
}

func (u *User) Member() access.Member {
	return access.Member{
		ID:               u.ID,
		Role:             u.Role,
		CreatedByAdminID: u.CreatedByAdminID,
		Active:           u.IsActive,
	}
}

func (u *User) Principal() *access.Principal {
	return &access.Principal{
		ID:          u.ID,
		Role:        u.Role,
		Permissions: u.Permissions.Clone(),
	}
}

func Members(users []*User) []access.Member {
	out := make([]access.Member, len(users))
	for i, u := range users {
		out[i] = u.Member()
	}
	return out
}

func ToDataModel(u *User) *userDatamodel.User {
	var createdBy *string
	if u.CreatedByAdminID != "" {
		id := u.CreatedByAdminID
		createdBy = &id
	}
	return &userDatamodel.User{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		PasswordHash:     u.PasswordHash,
		Role:             string(u.Role),
		Position:         string(u.Position),
		CreatedByAdminID: createdBy,
		Permissions:      datatypes.NewJSONType(u.Permissions),
		IsActive:         u.IsActive,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

// FromDataModel keeps unknown role strings as they are; the evaluator only
// recognises the three valid roles, so such accounts get no extra reach.
func FromDataModel(u *userDatamodel.User) *User {
	out := &User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         access.Role(u.Role),
		Position:     access.Position(u.Position),
		Permissions:  u.Permissions.Data(),
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.CreatedByAdminID != nil {
		out.CreatedByAdminID = *u.CreatedByAdminID
	}
	return out
}

func FromDataModelSlice(users []*userDatamodel.User) []*User {
	result := make([]*User, len(users))
	for i, u := range users {
		result[i] = FromDataModel(u)
	}
	return result
}
