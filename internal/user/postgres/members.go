package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/jmoiron/sqlx"
)

// MemberReader loads the hierarchy snapshot with a single narrow query. It is
// shared by every domain that evaluates the "subordinates" scope, so rows the
// resolver has to ignore are logged here on every read.
type MemberReader struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewMemberReader(db *sqlx.DB, logger *slog.Logger) *MemberReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemberReader{db: db, logger: logger}
}

type memberRow struct {
	ID               string         `db:"id"`
	Role             string         `db:"role"`
	CreatedByAdminID sql.NullString `db:"created_by_admin_id"`
	IsActive         bool           `db:"is_active"`
}

func (m *MemberReader) ListMembers(ctx context.Context) ([]access.Member, error) {
	var rows []memberRow
	query := `SELECT id, role, created_by_admin_id, is_active FROM users ORDER BY created_at, id`
	if err := m.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	out := make([]access.Member, len(rows))
	for i, row := range rows {
		out[i] = access.Member{
			ID:               row.ID,
			Role:             access.Role(row.Role),
			CreatedByAdminID: row.CreatedByAdminID.String,
			Active:           row.IsActive,
		}
	}

	for _, issue := range access.CheckIntegrity(out) {
		m.logger.WarnContext(ctx, "data integrity: hierarchy row ignored, failing closed",
			"user_id", issue.MemberID,
			"kind", issue.Kind,
			"detail", issue.Detail)
	}
	return out, nil
}
