package communication

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	errors "github.com/Beamwelly/CRM-Application-sub001/internal"
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/core/common/validation"
	"github.com/Beamwelly/CRM-Application-sub001/internal/observability"
	"github.com/google/uuid"
)

var ErrNotFound = stderrors.New("communication not found")

type Repository interface {
	List(ctx context.Context, q ListQuery) ([]*Communication, error)
	GetByID(ctx context.Context, id string) (*Communication, error)
	Create(ctx context.Context, c *Communication) error
}

type MemberSource interface {
	ListMembers(ctx context.Context) ([]access.Member, error)
}

// ParentResolver answers the service types of a parent record visible to p,
// or ErrNotFound.
type ParentResolver interface {
	ParentServiceTypes(ctx context.Context, p *access.Principal, id string) (access.ServiceTypes, error)
}

type Service struct {
	repo      Repository
	members   MemberSource
	parents   map[string]ParentResolver
	evaluator *access.Evaluator
	metrics   *observability.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, members MemberSource, parents map[string]ParentResolver, ev *access.Evaluator, m *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		members:   members,
		parents:   parents,
		evaluator: ev,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns the entries p may see under viewCommunications. With a parent
// in q the parent itself must be visible first.
func (s *Service) List(ctx context.Context, p *access.Principal, filter access.AdminFilter, q ListQuery) ([]*Communication, error) {
	if p == nil {
		return nil, errors.ErrUnauthenticated
	}
	if q.ParentID != "" {
		if _, err := s.parentServiceTypes(ctx, p, q.ParentType, q.ParentID); err != nil {
			return nil, err
		}
	}

	entries, err := s.repo.List(ctx, q)
	if err != nil {
		s.logger.Error("failed to list communications", "error", err)
		return nil, fmt.Errorf("list communications: %w", err)
	}
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	visible, err := access.ListVisible(s.evaluator, p, p.Permissions.ViewCommunications, entries, members, filter)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordListing(string(access.ResourceCommunication), len(entries), len(visible))
	return visible, nil
}

// Add logs an entry against a visible parent. The entry inherits the parent's
// service types.
func (s *Service) Add(ctx context.Context, p *access.Principal, dto AddCommunicationDTO) (*Communication, error) {
	if p == nil {
		return nil, errors.ErrUnauthenticated
	}
	ok, err := s.evaluator.Allowed(p, access.FlagAddCommunications)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.RecordDecision(string(access.ResourceCommunication), string(access.FlagAddCommunications), observability.OutcomeDenied)
		return nil, errors.ErrPermissionDenied
	}
	s.metrics.RecordDecision(string(access.ResourceCommunication), string(access.FlagAddCommunications), observability.OutcomeAllowed)

	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}
	tags, err := s.parentServiceTypes(ctx, p, dto.ParentType, dto.ParentID)
	if err != nil {
		return nil, err
	}

	occurred := s.now().UTC()
	if dto.OccurredAt != nil && !dto.OccurredAt.IsZero() {
		occurred = dto.OccurredAt.UTC()
	}
	c := &Communication{
		ID:           uuid.NewString(),
		ParentType:   dto.ParentType,
		ParentID:     dto.ParentID,
		Kind:         dto.Kind,
		Summary:      strings.TrimSpace(dto.Summary),
		RecordingURL: dto.RecordingURL,
		CreatedBy:    p.ID,
		ServiceTypes: append(access.ServiceTypes(nil), tags...),
		OccurredAt:   occurred,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("failed to add communication", "error", err, "parent_id", dto.ParentID)
		return nil, fmt.Errorf("add communication: %w", err)
	}

	s.logger.Info("communication added", "communication_id", c.ID, "parent_type", c.ParentType, "parent_id", c.ParentID, "kind", c.Kind)
	return c, nil
}

// PlayRecording requires playRecordings on an entry visible to p.
func (s *Service) PlayRecording(ctx context.Context, p *access.Principal, id string) (*Recording, error) {
	return s.recording(ctx, p, id, access.FlagPlayRecordings, "inline")
}

// DownloadRecording requires downloadRecordings on an entry visible to p.
func (s *Service) DownloadRecording(ctx context.Context, p *access.Principal, id string) (*Recording, error) {
	return s.recording(ctx, p, id, access.FlagDownloadRecordings, "attachment")
}

func (s *Service) recording(ctx context.Context, p *access.Principal, id string, flag access.Flag, disposition string) (*Recording, error) {
	if p == nil {
		return nil, errors.ErrUnauthenticated
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, ErrNotFound) {
			return nil, errors.ErrNotFound
		}
		return nil, fmt.Errorf("get communication: %w", err)
	}
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	err = s.evaluator.AuthorizeFlag(p, p.Permissions.ViewCommunications, flag, c.Ownership(), access.ContextFor(p, members))
	s.metrics.RecordOutcome(string(access.ResourceCommunication), string(flag), err)
	if err != nil {
		return nil, err
	}
	if !c.HasRecording() {
		return nil, errors.ErrNotFound
	}

	s.logger.Info("recording accessed", "communication_id", c.ID, "user_id", p.ID, "disposition", disposition)
	return &Recording{CommunicationID: c.ID, URL: c.RecordingURL, Disposition: disposition}, nil
}

func (s *Service) parentServiceTypes(ctx context.Context, p *access.Principal, parentType, parentID string) (access.ServiceTypes, error) {
	resolver, ok := s.parents[parentType]
	if !ok {
		return nil, errors.NewValidationFieldError("parent_type", "parent_type must be one of lead, customer", errors.ErrCodeValidationFailed)
	}
	return resolver.ParentServiceTypes(ctx, p, parentID)
}
