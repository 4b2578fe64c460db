package customer

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	errors "github.com/Beamwelly/CRM-Application-sub001/internal"
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/core/common/validation"
	"github.com/Beamwelly/CRM-Application-sub001/internal/lead"
	"github.com/Beamwelly/CRM-Application-sub001/internal/observability"
	"github.com/google/uuid"
)

var (
	ErrNotFound      = stderrors.New("customer not found")
	ErrLeadConverted = stderrors.New("lead already converted")
	ErrChanged       = stderrors.New("customer reassigned since it was read")
)

type Repository interface {
	List(ctx context.Context, q ListQuery) ([]*Customer, error)
	GetByID(ctx context.Context, id string) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
	// CreateFromLead inserts c and marks lead c.LeadID converted in one
	// transaction, failing with ErrLeadConverted when another conversion won.
	CreateFromLead(ctx context.Context, c *Customer) error
	// Update and Assign fail with ErrChanged when the stored assignee is no
	// longer the one the caller was authorized against.
	Update(ctx context.Context, c *Customer) error
	Assign(ctx context.Context, c *Customer, from string) error
	Delete(ctx context.Context, id string) error
}

type MemberSource interface {
	ListMembers(ctx context.Context) ([]access.Member, error)
}

type ServiceTypeCatalog interface {
	ActiveCodes(ctx context.Context) ([]string, error)
}

// LeadConverter checks that a lead may be converted by the caller.
type LeadConverter interface {
	PrepareConversion(ctx context.Context, p *access.Principal, id string) (*lead.Lead, error)
}

type Service struct {
	repo         Repository
	leads        LeadConverter
	members      MemberSource
	serviceTypes ServiceTypeCatalog
	evaluator    *access.Evaluator
	metrics      *observability.Metrics
	logger       *slog.Logger
}

func NewService(repo Repository, leads LeadConverter, members MemberSource, catalog ServiceTypeCatalog, ev *access.Evaluator, m *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:         repo,
		leads:        leads,
		members:      members,
		serviceTypes: catalog,
		evaluator:    ev,
		metrics:      m,
		logger:       logger,
	}
}

func (s *Service) List(ctx context.Context, p *access.Principal, filter access.AdminFilter, q ListQuery) ([]*Customer, error) {
	if p == nil {
		return nil, errors.ErrUnauthenticated
	}
	customers, err := s.repo.List(ctx, q)
	if err != nil {
		s.logger.Error("failed to list customers", "error", err)
		return nil, fmt.Errorf("list customers: %w", err)
	}
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	visible, err := access.ListVisible(s.evaluator, p, p.Permissions.ViewCustomers, customers, members, filter)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordListing(string(access.ResourceCustomer), len(customers), len(visible))
	return visible, nil
}

func (s *Service) Get(ctx context.Context, p *access.Principal, id string) (*Customer, error) {
	c, members, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.evaluator.CanAccess(p, p.Permissions.ViewCustomers, c.Ownership(), access.ContextFor(p, members))
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.RecordDecision(string(access.ResourceCustomer), "view", observability.OutcomeNotVisible)
		return nil, errors.ErrNotFound
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, p *access.Principal, dto CreateCustomerDTO) (*Customer, error) {
	if err := s.requireFlag(p, access.FlagCreateCustomers); err != nil {
		return nil, err
	}
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}
	tags, err := s.serviceTypesFor(ctx, p, dto.ServiceTypes)
	if err != nil {
		return nil, err
	}
	assignee, err := s.checkAssignee(ctx, p, dto.AssignedTo)
	if err != nil {
		return nil, err
	}

	c := &Customer{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(dto.Name),
		Email:        strings.ToLower(strings.TrimSpace(dto.Email)),
		Phone:        strings.TrimSpace(dto.Phone),
		Segment:      segmentOrDefault(dto.Segment),
		Notes:        dto.Notes,
		CreatedBy:    p.ID,
		AssignedTo:   assignee,
		ServiceTypes: tags,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("failed to create customer", "error", err, "user_id", p.ID)
		return nil, fmt.Errorf("create customer: %w", err)
	}
	s.logger.Info("customer created", "customer_id", c.ID, "created_by", p.ID, "assigned_to", c.AssignedTo)
	return c, nil
}

// ConvertLead creates a customer from a lead the caller can edit. The lead is
// marked converted in the same transaction.
func (s *Service) ConvertLead(ctx context.Context, p *access.Principal, leadID string, dto ConvertLeadDTO) (*Customer, error) {
	if err := s.requireFlag(p, access.FlagCreateCustomers); err != nil {
		return nil, err
	}
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}
	l, err := s.leads.PrepareConversion(ctx, p, leadID)
	if err != nil {
		return nil, err
	}

	notes := dto.Notes
	if notes == "" {
		notes = l.Notes
	}
	c := &Customer{
		ID:           uuid.NewString(),
		Name:         l.Name,
		Email:        l.Email,
		Phone:        l.Phone,
		Segment:      segmentOrDefault(dto.Segment),
		Notes:        notes,
		CreatedBy:    p.ID,
		AssignedTo:   l.AssignedTo,
		ServiceTypes: append(access.ServiceTypes(nil), l.ServiceTypes...),
		LeadID:       l.ID,
	}
	if err := s.repo.CreateFromLead(ctx, c); err != nil {
		if stderrors.Is(err, ErrLeadConverted) {
			return nil, errors.ErrLeadAlreadyConverted
		}
		s.logger.Error("failed to convert lead", "error", err, "lead_id", l.ID)
		return nil, fmt.Errorf("convert lead: %w", err)
	}

	s.logger.Info("lead converted", "lead_id", l.ID, "customer_id", c.ID, "converted_by", p.ID)
	return c, nil
}

func (s *Service) Update(ctx context.Context, p *access.Principal, id string, dto UpdateCustomerDTO) (*Customer, error) {
	c, members, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	err = s.evaluator.Authorize(p, p.Permissions.ViewCustomers, p.Permissions.EditCustomers, c.Ownership(), access.ContextFor(p, members))
	s.metrics.RecordOutcome(string(access.ResourceCustomer), "edit", err)
	if err != nil {
		return nil, err
	}
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}

	if dto.Name != nil {
		c.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*dto.Email))
	}
	if dto.Phone != nil {
		c.Phone = strings.TrimSpace(*dto.Phone)
	}
	if dto.Segment != nil {
		c.Segment = segmentOrDefault(*dto.Segment)
	}
	if dto.Notes != nil {
		c.Notes = *dto.Notes
	}
	if dto.ServiceTypes != nil {
		if c.ServiceTypes, err = s.serviceTypesFor(ctx, p, dto.ServiceTypes); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, s.writeError("update", c.ID, err)
	}
	s.logger.Info("customer updated", "customer_id", c.ID, "updated_by", p.ID)
	return c, nil
}

func (s *Service) Delete(ctx context.Context, p *access.Principal, id string) error {
	c, members, err := s.load(ctx, p, id)
	if err != nil {
		return err
	}
	err = s.evaluator.Authorize(p, p.Permissions.ViewCustomers, p.Permissions.DeleteCustomers, c.Ownership(), access.ContextFor(p, members))
	s.metrics.RecordOutcome(string(access.ResourceCustomer), "delete", err)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, c.ID); err != nil {
		if stderrors.Is(err, ErrNotFound) {
			return errors.ErrNotFound
		}
		s.logger.Error("failed to delete customer", "error", err, "customer_id", c.ID)
		return fmt.Errorf("delete customer: %w", err)
	}
	s.logger.Info("customer deleted", "customer_id", c.ID, "deleted_by", p.ID)
	return nil
}

func (s *Service) Assign(ctx context.Context, p *access.Principal, id, assignee string) (*Customer, error) {
	c, members, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	ec := access.ContextFor(p, members)
	err = s.evaluator.AuthorizeFlag(p, p.Permissions.ViewCustomers, access.FlagAssignCustomers, c.Ownership(), ec)
	if err == nil {
		err = s.evaluator.Authorize(p, p.Permissions.ViewCustomers, p.Permissions.EditCustomers, c.Ownership(), ec)
	}
	s.metrics.RecordOutcome(string(access.ResourceCustomer), string(access.FlagAssignCustomers), err)
	if err != nil {
		return nil, err
	}

	assignee = strings.TrimSpace(assignee)
	if assignee != "" && !access.Assignable(p, assignee, members) {
		return nil, errors.ErrAssigneeNotFound
	}
	previous := c.AssignedTo
	c.AssignedTo = assignee
	if err := s.repo.Assign(ctx, c, previous); err != nil {
		return nil, s.writeError("assign", c.ID, err)
	}
	s.logger.Info("customer assigned", "customer_id", c.ID, "to", assignee, "assigned_by", p.ID)
	return c, nil
}

func (s *Service) writeError(op, id string, err error) error {
	switch {
	case stderrors.Is(err, ErrChanged):
		s.logger.Warn("customer changed concurrently", "op", op, "customer_id", id)
		return errors.ErrRecordChanged
	case stderrors.Is(err, ErrNotFound):
		return errors.ErrNotFound
	default:
		s.logger.Error("failed to write customer", "op", op, "error", err, "customer_id", id)
		return fmt.Errorf("%s customer: %w", op, err)
	}
}

// ParentServiceTypes returns the service types of a customer visible to p.
func (s *Service) ParentServiceTypes(ctx context.Context, p *access.Principal, id string) (access.ServiceTypes, error) {
	c, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return c.ServiceTypes, nil
}

func (s *Service) load(ctx context.Context, p *access.Principal, id string) (*Customer, []access.Member, error) {
	if p == nil {
		return nil, nil, errors.ErrUnauthenticated
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, ErrNotFound) {
			return nil, nil, errors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get customer: %w", err)
	}
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load members: %w", err)
	}
	return c, members, nil
}

// checkAssignee returns the normalised assignee for a new customer. Assigning
// anyone but the caller needs assignCustomers.
func (s *Service) checkAssignee(ctx context.Context, p *access.Principal, assignee string) (string, error) {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" || assignee == p.ID {
		return assignee, nil
	}
	if err := s.requireFlag(p, access.FlagAssignCustomers); err != nil {
		return "", err
	}
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return "", fmt.Errorf("load members: %w", err)
	}
	if !access.Assignable(p, assignee, members) {
		return "", errors.ErrAssigneeNotFound
	}
	return assignee, nil
}

func (s *Service) requireFlag(p *access.Principal, f access.Flag) error {
	ok, err := s.evaluator.Allowed(p, f)
	if err != nil {
		return err
	}
	if !ok {
		s.metrics.RecordDecision(string(access.ResourceCustomer), string(f), observability.OutcomeDenied)
		s.logger.Warn("access denied: missing permission flag", "user_id", p.ID, "flag", f)
		return errors.ErrPermissionDenied
	}
	s.metrics.RecordDecision(string(access.ResourceCustomer), string(f), observability.OutcomeAllowed)
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

func segmentOrDefault(segment string) string {
	if segment == "" {
		return SegmentRetail
	}
	return segment
}
