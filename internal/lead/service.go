package lead

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	errors "github.com/Beamwelly/CRM-Application-sub001/internal"
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/core/common/validation"
	"github.com/Beamwelly/CRM-Application-sub001/internal/observability"
	"github.com/google/uuid"
)

var (
	ErrNotFound = stderrors.New("lead not found")
	// ErrChanged means the lead was reassigned or converted after it was read.
	ErrChanged = stderrors.New("lead changed since it was read")
)

type Repository interface {
	List(ctx context.Context, q ListQuery) ([]*Lead, error)
	GetByID(ctx context.Context, id string) (*Lead, error)
	Create(ctx context.Context, l *Lead) error
	// Update writes the editable fields, guarded by l's assignee and
	// conversion as they were read.
	Update(ctx context.Context, l *Lead) error
	// Assign sets l.AssignedTo if the stored assignee is still from.
	Assign(ctx context.Context, l *Lead, from string) error
	Delete(ctx context.Context, id string) error
}

// MemberSource reads the user hierarchy snapshot.
type MemberSource interface {
	ListMembers(ctx context.Context) ([]access.Member, error)
}

type ServiceTypeCatalog interface {
	ActiveCodes(ctx context.Context) ([]string, error)
}

type Service struct {
	repo         Repository
	members      MemberSource
	serviceTypes ServiceTypeCatalog
	evaluator    *access.Evaluator
	metrics      *observability.Metrics
	logger       *slog.Logger
}

func NewService(repo Repository, members MemberSource, catalog ServiceTypeCatalog, ev *access.Evaluator, m *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:         repo,
		members:      members,
		serviceTypes: catalog,
		evaluator:    ev,
		metrics:      m,
		logger:       logger,
	}
}

// List returns the leads p may see under viewLeads, narrowed by the developer
// admin filter.
func (s *Service) List(ctx context.Context, p *access.Principal, filter access.AdminFilter, q ListQuery) ([]*Lead, error) {
	if p == nil {
		return nil, errors.ErrUnauthenticated
	}
	leads, err := s.repo.List(ctx, q)
	if err != nil {
		s.logger.Error("failed to list leads", "error", err)
		return nil, fmt.Errorf("list leads: %w", err)
	}
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	visible, err := access.ListVisible(s.evaluator, p, p.Permissions.ViewLeads, leads, members, filter)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordListing(string(access.ResourceLead), len(leads), len(visible))
	return visible, nil
}

// Get answers ErrNotFound for leads outside the caller's viewLeads scope.
func (s *Service) Get(ctx context.Context, p *access.Principal, id string) (*Lead, error) {
	l, members, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.evaluator.CanAccess(p, p.Permissions.ViewLeads, l.Ownership(), access.ContextFor(p, members))
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.RecordDecision(string(access.ResourceLead), "view", observability.OutcomeNotVisible)
		return nil, errors.ErrNotFound
	}
	return l, nil
}

func (s *Service) Create(ctx context.Context, p *access.Principal, dto CreateLeadDTO) (*Lead, error) {
	if err := s.requireFlag(p, access.FlagCreateLeads); err != nil {
		return nil, err
	}
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}

	status := dto.Status
	if status == "" {
		status = StatusNew
	}
	if err := validateStatus(status, "", false); err != nil {
		return nil, err
	}
	tags, err := s.serviceTypesFor(ctx, p, dto.ServiceTypes)
	if err != nil {
		return nil, err
	}

	assignee := strings.TrimSpace(dto.AssignedTo)
	if assignee != "" && assignee != p.ID {
		if err := s.requireFlag(p, access.FlagAssignLeads); err != nil {
			return nil, err
		}
		members, err := s.members.ListMembers(ctx)
		if err != nil {
			return nil, fmt.Errorf("load members: %w", err)
		}
		if !access.Assignable(p, assignee, members) {
			return nil, errors.ErrAssigneeNotFound
		}
	}

	l := &Lead{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(dto.Name),
		Email:        strings.ToLower(strings.TrimSpace(dto.Email)),
		Phone:        strings.TrimSpace(dto.Phone),
		Source:       dto.Source,
		Status:       status,
		Notes:        dto.Notes,
		CreatedBy:    p.ID,
		AssignedTo:   assignee,
		ServiceTypes: tags,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("failed to create lead", "error", err, "user_id", p.ID)
		return nil, fmt.Errorf("create lead: %w", err)
	}

	s.logger.Info("lead created", "lead_id", l.ID, "created_by", p.ID, "assigned_to", l.AssignedTo)
	return l, nil
}

// Update applies a partial edit to a lead visible under viewLeads and
// editable under editLeads.
func (s *Service) Update(ctx context.Context, p *access.Principal, id string, dto UpdateLeadDTO) (*Lead, error) {
	l, members, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	err = s.evaluator.Authorize(p, p.Permissions.ViewLeads, p.Permissions.EditLeads, l.Ownership(), access.ContextFor(p, members))
	s.metrics.RecordOutcome(string(access.ResourceLead), "edit", err)
	if err != nil {
		return nil, err
	}
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}

	if dto.Name != nil {
		l.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Email != nil {
		l.Email = strings.ToLower(strings.TrimSpace(*dto.Email))
	}
	if dto.Phone != nil {
		l.Phone = strings.TrimSpace(*dto.Phone)
	}
	if dto.Source != nil {
		l.Source = *dto.Source
	}
	if dto.Notes != nil {
		l.Notes = *dto.Notes
	}
	if dto.Status != nil && *dto.Status != l.Status {
		if err := validateStatus(*dto.Status, l.Status, l.IsConverted()); err != nil {
			return nil, err
		}
		l.Status = *dto.Status
	}
	if dto.ServiceTypes != nil {
		tags, err := s.serviceTypesFor(ctx, p, dto.ServiceTypes)
		if err != nil {
			return nil, err
		}
		l.ServiceTypes = tags
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, s.writeError("update", l.ID, err)
	}
	s.logger.Info("lead updated", "lead_id", l.ID, "updated_by", p.ID)
	return l, nil
}

func (s *Service) Delete(ctx context.Context, p *access.Principal, id string) error {
	l, members, err := s.load(ctx, p, id)
	if err != nil {
		return err
	}
	err = s.evaluator.Authorize(p, p.Permissions.ViewLeads, p.Permissions.DeleteLeads, l.Ownership(), access.ContextFor(p, members))
	s.metrics.RecordOutcome(string(access.ResourceLead), "delete", err)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, l.ID); err != nil {
		if stderrors.Is(err, ErrNotFound) {
			return errors.ErrNotFound
		}
		s.logger.Error("failed to delete lead", "error", err, "lead_id", l.ID)
		return fmt.Errorf("delete lead: %w", err)
	}
	s.logger.Info("lead deleted", "lead_id", l.ID, "deleted_by", p.ID)
	return nil
}

// Assign hands a lead to another user. The caller needs assignLeads and must
// be able to edit the lead; an empty assignee clears the assignment.
func (s *Service) Assign(ctx context.Context, p *access.Principal, id, assignee string) (*Lead, error) {
	l, members, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	ec := access.ContextFor(p, members)
	err = s.evaluator.AuthorizeFlag(p, p.Permissions.ViewLeads, access.FlagAssignLeads, l.Ownership(), ec)
	if err == nil {
		err = s.evaluator.Authorize(p, p.Permissions.ViewLeads, p.Permissions.EditLeads, l.Ownership(), ec)
	}
	s.metrics.RecordOutcome(string(access.ResourceLead), string(access.FlagAssignLeads), err)
	if err != nil {
		return nil, err
	}

	assignee = strings.TrimSpace(assignee)
	if assignee != "" && !access.Assignable(p, assignee, members) {
		return nil, errors.ErrAssigneeNotFound
	}

	previous := l.AssignedTo
	l.AssignedTo = assignee
	if err := s.repo.Assign(ctx, l, previous); err != nil {
		return nil, s.writeError("assign", l.ID, err)
	}
	s.logger.Info("lead assigned", "lead_id", l.ID, "from", previous, "to", assignee, "assigned_by", p.ID)
	return l, nil
}

// PrepareConversion checks that p may convert the lead: it must be editable
// by p and not converted yet.
func (s *Service) PrepareConversion(ctx context.Context, p *access.Principal, id string) (*Lead, error) {
	l, members, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	err = s.evaluator.Authorize(p, p.Permissions.ViewLeads, p.Permissions.EditLeads, l.Ownership(), access.ContextFor(p, members))
	s.metrics.RecordOutcome(string(access.ResourceLead), "convert", err)
	if err != nil {
		return nil, err
	}
	if l.IsConverted() {
		return nil, errors.ErrLeadAlreadyConverted
	}
	return l, nil
}

// ParentServiceTypes returns the service types of a lead visible to p.
// Communications logged against the lead inherit them.
func (s *Service) ParentServiceTypes(ctx context.Context, p *access.Principal, id string) (access.ServiceTypes, error) {
	l, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return l.ServiceTypes, nil
}

func (s *Service) load(ctx context.Context, p *access.Principal, id string) (*Lead, []access.Member, error) {
	if p == nil {
		return nil, nil, errors.ErrUnauthenticated
	}
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, ErrNotFound) {
			return nil, nil, errors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get lead: %w", err)
	}
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load members: %w", err)
	}
	return l, members, nil
}

func (s *Service) requireFlag(p *access.Principal, f access.Flag) error {
	ok, err := s.evaluator.Allowed(p, f)
	if err != nil {
		return err
	}
	if !ok {
		s.metrics.RecordDecision(string(access.ResourceLead), string(f), observability.OutcomeDenied)
		s.logger.Warn("access denied: missing permission flag", "user_id", p.ID, "flag", f)
		return errors.ErrPermissionDenied
	}
	s.metrics.RecordDecision(string(access.ResourceLead), string(f), observability.OutcomeAllowed)
	return nil
}

func (s *Service) serviceTypesFor(ctx context.Context, p *access.Principal, requested []string) (access.ServiceTypes, error) {
	var codes []string
	if s.serviceTypes != nil {
		var err error
		if codes, err = s.serviceTypes.ActiveCodes(ctx); err != nil {
			return nil, fmt.Errorf("load service types: %w", err)
		}
	}
	tags, appErr := validation.ResolveServiceTypes("service_types", requested, codes, p)
	if appErr != nil {
		return nil, appErr
	}
	return tags, nil
}

// validateStatus rejects unknown statuses. "converted" is only reachable
// through lead conversion, and a converted lead keeps it.
func validateStatus(status, current string, converted bool) error {
	v := validation.NewValidator()
	v.Field("status", status).OneOf(errors.ErrCodeInvalidStatus, Statuses...)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	if converted && status != current {
		return errors.NewValidationFieldError("status", "converted leads keep their status", errors.ErrCodeInvalidStatus)
	}
	if status == StatusConverted && !converted {
		return errors.NewValidationFieldError("status", "leads are marked converted by conversion only", errors.ErrCodeInvalidStatus)
	}
	return nil
}

func (s *Service) writeError(op, id string, err error) error {
	switch {
	case stderrors.Is(err, ErrChanged):
		s.logger.Warn("lead changed concurrently", "op", op, "lead_id", id)
		return errors.ErrRecordChanged
	case stderrors.Is(err, ErrNotFound):
		return errors.ErrNotFound
	default:
		s.logger.Error("failed to write lead", "op", op, "error", err, "lead_id", id)
		return fmt.Errorf("%s lead: %w", op, err)
	}
}
