package servicetype

import (
	"context"
	"log/slog"

	servicetypeDatamodel "github.com/Beamwelly/CRM-Application-sub001/internal/core/datamodel/servicetype"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*servicetypeDatamodel.ServiceType, error)
	GetByCode(ctx context.Context, code string) (*servicetypeDatamodel.ServiceType, error)
	Create(ctx context.Context, st *servicetypeDatamodel.ServiceType) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ListActive returns active entries in catalog order.
func (s *Service) ListActive(ctx context.Context) ([]ServiceTypeResponse, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get service types from repository", "error", err)
		return nil, err
	}

	responses := make([]ServiceTypeResponse, 0, len(rows))
	for _, row := range rows {
		st := FromDataModel(row)
		if st.IsActive {
			responses = append(responses, st.ToResponse())
		}
	}
	return responses, nil
}

// ActiveCodes is consulted whenever service type tags are written.
func (s *Service) ActiveCodes(ctx context.Context) ([]string, error) {
	active, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	codes := make([]string, len(active))
	for i, st := range active {
		codes[i] = st.Code
	}
	return codes, nil
}

// SeedBuiltins inserts the built-in entries that are missing. Existing rows,
// including deactivated ones, are left alone.
func (s *Service) SeedBuiltins(ctx context.Context) (int, error) {
	created := 0
	for _, st := range Builtins() {
		existing, err := s.repo.GetByCode(ctx, st.Code)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		if err := s.repo.Create(ctx, ToDataModel(st)); err != nil {
			return created, err
		}
		created++
	}
	if created > 0 {
		s.logger.Info("seeded service types", "count", created)
	}
	return created, nil
}
