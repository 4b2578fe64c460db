package system

import (
	"context"
	"fmt"
	"log/slog"

	errors "github.com/Beamwelly/CRM-Application-sub001/internal"
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/core/events"
	"github.com/Beamwelly/CRM-Application-sub001/internal/observability"
)

// Resource labels system maintenance decisions in metrics.
const Resource access.Resource = "system"

// Purger removes every lead, customer and communication in one transaction
// and reports how many rows went per table.
type Purger interface {
	Purge(ctx context.Context) (map[string]int64, error)
}

type MemberSource interface {
	ListMembers(ctx context.Context) ([]access.Member, error)
}

type IntegrityIssue struct {
	MemberID string `json:"member_id"`
	Kind     string `json:"kind"`
	Detail   string `json:"detail"`
}

type Service struct {
	purger    Purger
	members   MemberSource
	evaluator *access.Evaluator
	events    events.Publisher
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewService(purger Purger, members MemberSource, ev *access.Evaluator, pub events.Publisher, m *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		purger:    purger,
		members:   members,
		evaluator: ev,
		events:    pub,
		metrics:   m,
		logger:    logger,
	}
}

// ClearData purges business data. User accounts and the service type catalog
// are kept.
func (s *Service) ClearData(ctx context.Context, p *access.Principal) (map[string]int64, error) {
	ok, err := s.evaluator.Allowed(p, access.FlagClearSystemData)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.RecordDecision(string(Resource), string(access.FlagClearSystemData), observability.OutcomeDenied)
		s.logger.Warn("access denied: missing permission flag", "user_id", p.ID, "flag", access.FlagClearSystemData)
		return nil, errors.ErrPermissionDenied
	}
	s.metrics.RecordDecision(string(Resource), string(access.FlagClearSystemData), observability.OutcomeAllowed)

	counts, err := s.purger.Purge(ctx)
	if err != nil {
		s.logger.Error("failed to clear system data", "error", err)
		return nil, fmt.Errorf("clear system data: %w", err)
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, events.NewSystemDataClearedEvent(p.ID, counts)); err != nil {
			s.logger.Warn("failed to publish system data cleared event", "error", err)
		}
	}
	s.logger.Warn("system data cleared", "cleared_by", p.ID, "counts", counts)
	return counts, nil
}

// Integrity lists hierarchy rows the resolver ignores. Developer only.
func (s *Service) Integrity(ctx context.Context, p *access.Principal) ([]IntegrityIssue, error) {
	if p == nil {
		return nil, errors.ErrUnauthenticated
	}
	if !p.IsDeveloper() {
		return nil, errors.ErrPermissionDenied
	}
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	issues := access.CheckIntegrity(members)
	out := make([]IntegrityIssue, len(issues))
	for i, issue := range issues {
		out[i] = IntegrityIssue{MemberID: issue.MemberID, Kind: string(issue.Kind), Detail: issue.Detail}
	}
	return out, nil
}
