package user

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	errors "github.com/Beamwelly/CRM-Application-sub001/internal"
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/core/common/validation"
	"github.com/Beamwelly/CRM-Application-sub001/internal/core/events"
	"github.com/Beamwelly/CRM-Application-sub001/internal/observability"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, u *User) error
	UpdatePermissions(ctx context.Context, id string, p access.UserPermissions) error
	Delete(ctx context.Context, id string) error
}

// ServiceTypeCatalog lists the service type codes users may be granted.
type ServiceTypeCatalog interface {
	ActiveCodes(ctx context.Context) ([]string, error)
}

type Service struct {
	repo         Repository
	serviceTypes ServiceTypeCatalog
	evaluator    *access.Evaluator
	events       events.Publisher
	metrics      *observability.Metrics
	bcryptCost   int
	logger       *slog.Logger
}

func NewService(repo Repository, catalog ServiceTypeCatalog, ev *access.Evaluator, pub events.Publisher, m *observability.Metrics, bcryptCost int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:         repo,
		serviceTypes: catalog,
		evaluator:    ev,
		events:       pub,
		metrics:      m,
		bcryptCost:   bcryptCost,
		logger:       logger,
	}
}

// List returns the accounts p may see, narrowed by the developer admin filter.
func (s *Service) List(ctx context.Context, p *access.Principal, filter access.AdminFilter) ([]*User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("list users: %w", err)
	}

	visible, err := access.ListVisible(s.evaluator, p, p.Permissions.ViewUsers, users, Members(users), filter)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordListing(string(access.ResourceUser), len(users), len(visible))
	return visible, nil
}

// Get answers ErrNotFound both for missing accounts and for accounts outside
// the caller's ViewUsers scope.
func (s *Service) Get(ctx context.Context, p *access.Principal, id string) (*User, error) {
	target, members, err := s.loadTarget(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.evaluator.CanAccess(p, p.Permissions.ViewUsers, target.Ownership(), access.ContextFor(p, members))
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.RecordDecision(string(access.ResourceUser), "view", observability.OutcomeNotVisible)
		return nil, errors.ErrNotFound
	}
	return target, nil
}

func (s *Service) Me(ctx context.Context, p *access.Principal) (*User, error) {
	if p == nil {
		return nil, errors.ErrUnauthenticated
	}
	u, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		if stderrors.Is(err, ErrNotFound) {
			return nil, errors.ErrUnauthenticated
		}
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return u, nil
}

// LoadPrincipal reads the account fresh from the store so permission edits
// apply on the next request.
func (s *Service) LoadPrincipal(ctx context.Context, id string) (*access.Principal, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, ErrNotFound) {
			return nil, errors.ErrUnauthenticated
		}
		return nil, fmt.Errorf("load principal: %w", err)
	}
	if !u.IsActive {
		return nil, errors.ErrUserInactive
	}
	if !u.Role.Valid() {
		s.logger.Warn("data integrity: account has an unrecognized role", "user_id", u.ID, "role", u.Role)
	}
	return u.Principal(), nil
}

// CreateAdmin creates an admin account. Admins are hierarchy roots and carry
// no creating admin.
func (s *Service) CreateAdmin(ctx context.Context, p *access.Principal, dto CreateUserDTO) (*User, error) {
	if err := s.requireFlag(p, access.FlagCreateAdmin); err != nil {
		return nil, err
	}
	u, err := s.newUser(ctx, p, access.RoleAdmin, "", dto)
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin created", "user_id", u.ID, "created_by", p.ID)
	return u, nil
}

// CreateEmployee attaches the new employee to an admin: the caller when it is
// an admin, the named admin when the caller is the developer, and the caller's
// own admin when an employee holds the flag.
func (s *Service) CreateEmployee(ctx context.Context, p *access.Principal, dto CreateUserDTO) (*User, error) {
	if err := s.requireFlag(p, access.FlagCreateEmployee); err != nil {
		return nil, err
	}

	var adminID string
	switch p.Role {
	case access.RoleAdmin:
		if dto.AdminID != "" && dto.AdminID != p.ID {
			return nil, errors.NewValidationFieldError("admin_id", "admins can only create their own employees", errors.ErrCodeValidationFailed)
		}
		adminID = p.ID
	case access.RoleDeveloper:
		if strings.TrimSpace(dto.AdminID) == "" {
			return nil, errors.NewValidationFieldError("admin_id", "admin_id is required", errors.ErrCodeValidationFailed)
		}
		admin, err := s.repo.GetByID(ctx, dto.AdminID)
		if err != nil {
			if stderrors.Is(err, ErrNotFound) {
				return nil, errors.ErrAdminNotFound
			}
			return nil, fmt.Errorf("lookup admin: %w", err)
		}
		if admin.Role != access.RoleAdmin {
			return nil, errors.ErrAdminNotFound
		}
		adminID = admin.ID
	default:
		self, err := s.repo.GetByID(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("lookup creator: %w", err)
		}
		if self.CreatedByAdminID == "" {
			return nil, errors.ErrAdminNotFound
		}
		adminID = self.CreatedByAdminID
	}

	u, err := s.newUser(ctx, p, access.RoleEmployee, adminID, dto)
	if err != nil {
		return nil, err
	}

	s.logger.Info("employee created", "user_id", u.ID, "admin_id", adminID, "created_by", p.ID)
	return u, nil
}

// EnsureDeveloper creates the single developer account unless one already
// exists, in which case that account is returned untouched.
func (s *Service) EnsureDeveloper(ctx context.Context, dto CreateUserDTO) (*User, bool, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		if u.Role == access.RoleDeveloper {
			return u, false, nil
		}
	}

	u, err := s.newUser(ctx, nil, access.RoleDeveloper, "", dto)
	if err != nil {
		return nil, false, err
	}
	s.logger.Info("developer account created", "user_id", u.ID)
	return u, true, nil
}

// newUser creates an account with the role defaults merged with any explicit
// permissions. A nil creator is the bootstrap path and skips the grant check.
func (s *Service) newUser(ctx context.Context, creator *access.Principal, role access.Role, adminID string, dto CreateUserDTO) (*User, error) {
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}

	defaults := access.DefaultPermissionsFor(role)
	perms := mergePermissions(defaults, dto.Permissions)
	if err := s.validatePermissions(ctx, perms); err != nil {
		return nil, err
	}
	if creator != nil {
		if err := s.checkGrant(creator, defaults, perms); err != nil {
			return nil, err
		}
	}

	if _, err := s.repo.GetByEmail(ctx, dto.Email); err == nil {
		return nil, errors.ErrEmailTaken
	} else if !stderrors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	u := &User{
		ID:               uuid.NewString(),
		Email:            dto.Email,
		Name:             strings.TrimSpace(dto.Name),
		PasswordHash:     string(hash),
		Role:             role,
		Position:         access.Position(dto.Position),
		CreatedByAdminID: adminID,
		Permissions:      perms,
		IsActive:         true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.Error("failed to create user", "error", err, "role", role)
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UpdatePermissions replaces the permission set of a visible account. Callers
// other than the developer cannot edit their own permissions.
func (s *Service) UpdatePermissions(ctx context.Context, p *access.Principal, id string, perms access.UserPermissions) (*User, error) {
	if p == nil {
		return nil, errors.ErrUnauthenticated
	}
	target, members, err := s.loadTarget(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.evaluator.AuthorizeFlag(p, p.Permissions.ViewUsers, access.FlagEditUserPermissions, target.Ownership(), access.ContextFor(p, members))
	s.metrics.RecordOutcome(string(access.ResourceUser), string(access.FlagEditUserPermissions), err)
	if err != nil {
		return nil, err
	}
	if target.ID == p.ID && !p.IsDeveloper() {
		return nil, errors.ErrPermissionDenied
	}
	if target.Role == access.RoleDeveloper && !p.IsDeveloper() {
		return nil, errors.ErrPermissionDenied
	}

	if err := s.validatePermissions(ctx, perms); err != nil {
		return nil, err
	}
	if err := s.checkGrant(p, target.Permissions, perms); err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePermissions(ctx, target.ID, perms); err != nil {
		s.logger.Error("failed to update permissions", "error", err, "user_id", target.ID)
		return nil, fmt.Errorf("update permissions: %w", err)
	}
	target.Permissions = perms.Clone()

	if s.events != nil {
		if err := s.events.Publish(ctx, events.NewPermissionsUpdatedEvent(target.ID, p.ID)); err != nil {
			s.logger.Warn("failed to publish permissions updated event", "error", err, "user_id", target.ID)
		}
	}

	s.logger.Info("permissions updated", "user_id", target.ID, "updated_by", p.ID)
	return target, nil
}

func (s *Service) checkGrant(p *access.Principal, current, next access.UserPermissions) error {
	fields := access.GrantExceeds(p, current, next)
	if len(fields) == 0 {
		return nil
	}
	s.metrics.RecordDecision(string(access.ResourceUser), "grant", observability.OutcomeDenied)
	s.logger.Warn("access denied: grant exceeds caller's own permissions", "user_id", p.ID, "fields", fields)
	return errors.NewGrantExceededError(fields)
}

// Delete removes an account for good. Admins must have no remaining
// employees, and nobody can delete themselves or the developer.
func (s *Service) Delete(ctx context.Context, p *access.Principal, id string) error {
	if p == nil {
		return errors.ErrUnauthenticated
	}
	if id == p.ID {
		return errors.ErrSelfDelete
	}
	target, members, err := s.loadTarget(ctx, id)
	if err != nil {
		return err
	}

	err = s.evaluator.AuthorizeFlag(p, p.Permissions.ViewUsers, access.FlagDeleteUser, target.Ownership(), access.ContextFor(p, members))
	s.metrics.RecordOutcome(string(access.ResourceUser), string(access.FlagDeleteUser), err)
	if err != nil {
		return err
	}
	if target.Role == access.RoleDeveloper {
		return errors.ErrPermissionDenied
	}
	if target.Role == access.RoleAdmin && access.SubordinateEmployeeIDs(target.ID, members).Len() > 0 {
		return errors.ErrAdminHasEmployees
	}

	if err := s.repo.Delete(ctx, target.ID); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", target.ID)
		return fmt.Errorf("delete user: %w", err)
	}

	// Synchronous so that admin filters naming this account are gone before
	// the response is written.
	if s.events != nil {
		if err := s.events.PublishSync(ctx, events.NewUserDeletedEvent(target.ID, string(target.Role), p.ID)); err != nil {
			s.logger.Warn("user deleted event handler failed", "error", err, "user_id", target.ID)
		}
	}

	s.logger.Info("user deleted", "user_id", target.ID, "role", target.Role, "deleted_by", p.ID)
	return nil
}

// loadTarget reads every account once: the target and the hierarchy snapshot
// come from the same read.
func (s *Service) loadTarget(ctx context.Context, id string) (*User, []access.Member, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		if u.ID == id {
			return u, Members(users), nil
		}
	}
	return nil, nil, errors.ErrNotFound
}

func (s *Service) requireFlag(p *access.Principal, f access.Flag) error {
	ok, err := s.evaluator.Allowed(p, f)
	if err != nil {
		return err
	}
	if !ok {
		s.metrics.RecordDecision(string(access.ResourceUser), string(f), observability.OutcomeDenied)
		s.logger.Warn("access denied: missing permission flag", "user_id", p.ID, "flag", f)
		return errors.ErrPermissionDenied
	}
	s.metrics.RecordDecision(string(access.ResourceUser), string(f), observability.OutcomeAllowed)
	return nil
}

func (s *Service) validatePermissions(ctx context.Context, perms access.UserPermissions) error {
	if appErr := validation.ValidatePermissions(perms); appErr != nil {
		return appErr
	}
	if s.serviceTypes == nil {
		return nil
	}
	codes, err := s.serviceTypes.ActiveCodes(ctx)
	if err != nil {
		return fmt.Errorf("load service types: %w", err)
	}
	if appErr := validation.ValidateServiceTypes("allowedServiceTypes", perms.AllowedServiceTypes.Strings(), validation.KnownIn(codes)); appErr != nil {
		return appErr
	}
	return nil
}
