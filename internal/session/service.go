package session

import (
	"context"
	"fmt"
	"log/slog"

	errors "github.com/Beamwelly/CRM-Application-sub001/internal"
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/core/events"
)

// MemberSource provides the hierarchy snapshot.
type MemberSource interface {
	ListMembers(ctx context.Context) ([]access.Member, error)
}

type FilterView struct {
	Active  bool   `json:"active"`
	AdminID string `json:"admin_id,omitempty"`
}

func viewOf(f access.AdminFilter) FilterView {
	return FilterView{Active: f.Active(), AdminID: f.AdminID()}
}

type Service struct {
	store   *Store
	members MemberSource
	logger  *slog.Logger
}

func NewService(store *Store, members MemberSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, members: members, logger: logger}
}

func (s *Service) Current(p *access.Principal, sessionID string) (FilterView, error) {
	if p == nil {
		return FilterView{}, errors.ErrUnauthenticated
	}
	if !p.IsDeveloper() {
		return FilterView{}, nil
	}
	return viewOf(s.store.FilterFor(sessionID)), nil
}

// Select is reserved for the developer and must name an existing admin.
func (s *Service) Select(ctx context.Context, p *access.Principal, sessionID, adminID string) (FilterView, error) {
	if p == nil {
		return FilterView{}, errors.ErrUnauthenticated
	}
	if !p.IsDeveloper() {
		s.logger.Warn("admin filter selection refused", "user_id", p.ID, "role", p.Role)
		return FilterView{}, errors.ErrImpersonationNotAllowed
	}

	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return FilterView{}, fmt.Errorf("load members: %w", err)
	}
	admin, ok := access.FindMember(adminID, members)
	if !ok || admin.Role != access.RoleAdmin {
		return FilterView{}, errors.ErrAdminNotFound
	}

	f := s.store.Select(sessionID, admin.ID)
	s.logger.Info("admin filter selected", "user_id", p.ID, "admin_id", admin.ID)
	return viewOf(f), nil
}

func (s *Service) Clear(p *access.Principal, sessionID string) error {
	if p == nil {
		return errors.ErrUnauthenticated
	}
	if !p.IsDeveloper() {
		return errors.ErrImpersonationNotAllowed
	}
	s.store.Clear(sessionID)
	return nil
}

// Subscribe wires the store to the lifecycle events that invalidate filters.
func (s *Service) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeSessionEnded, func(_ context.Context, e events.Event) error {
		ended, ok := e.(*events.SessionEndedEvent)
		if !ok {
			return nil
		}
		s.store.Clear(ended.SessionID)
		return nil
	})
	bus.Subscribe(events.EventTypeUserDeleted, func(_ context.Context, e events.Event) error {
		deleted, ok := e.(*events.UserDeletedEvent)
		if !ok || deleted.Role != string(access.RoleAdmin) {
			return nil
		}
		if n := s.store.ClearAdmin(deleted.UserID); n > 0 {
			s.logger.Info("cleared admin filters for deleted admin", "admin_id", deleted.UserID, "sessions", n)
		}
		return nil
	})
}
