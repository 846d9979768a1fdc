package ppp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	internaldb "github.com/Ashu12122005/ppp-management/internal/db"
)

var (
	ErrNotFound     = errors.New("ppp entry not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Service tracks Personal Progress Plan entries, the per-student activity
// log staff review each term.
type Service struct {
	db       *sql.DB
	validate *validator.Validate
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, validate: validator.New()}
}

type Entry struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName,omitempty"`
	Date        time.Time `json:"date"`
	Activity    string    `json:"activity"`
	Remarks     string    `json:"remarks"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateInput struct {
	StudentID string    `validate:"required,uuid4"`
	Date      time.Time `validate:"required"`
	Activity  string    `validate:"required"`
	Remarks   string
	Status    string `validate:"omitempty,oneof=pending ongoing completed"`
	CreatedBy string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Entry, error) {
	in.Activity = strings.TrimSpace(in.Activity)
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	if in.Status == "" {
		in.Status = "pending"
	}
	if err := s.validate.Struct(in); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("begin create entry tx: %w", err)
	}
	defer tx.Rollback()

	var e Entry
	err = tx.QueryRowContext(ctx, `
		INSERT INTO ppp_entries (student_id, date, activity, remarks, status, created_by)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::uuid)
		RETURNING id::text, student_id::text, date, activity, remarks, status,
			COALESCE(created_by::text, ''), created_at
	`, in.StudentID, in.Date, in.Activity, in.Remarks, in.Status, in.CreatedBy).Scan(
		&e.ID, &e.StudentID, &e.Date, &e.Activity, &e.Remarks, &e.Status, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert ppp entry: %w", err)
	}

	if err := internaldb.AppendAuditEvent(ctx, tx, in.CreatedBy, "ppp.created", "ppp_entry", e.ID, map[string]any{
		"studentId": e.StudentID,
		"status":    e.Status,
	}); err != nil {
		return Entry{}, err
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("commit create entry tx: %w", err)
	}
	return e, nil
}

// UpdateStatus moves an entry through pending, ongoing, completed.
func (s *Service) UpdateStatus(ctx context.Context, actorAccountID, id, status string) (Entry, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case "pending", "ongoing", "completed":
	default:
		return Entry{}, fmt.Errorf("%w: status %q", ErrInvalidInput, status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("begin update status tx: %w", err)
	}
	defer tx.Rollback()

	var e Entry
	err = tx.QueryRowContext(ctx, `
		UPDATE ppp_entries SET status = $1 WHERE id = $2
		RETURNING id::text, student_id::text, date, activity, remarks, status,
			COALESCE(created_by::text, ''), created_at
	`, status, id).Scan(
		&e.ID, &e.StudentID, &e.Date, &e.Activity, &e.Remarks, &e.Status, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("update ppp status: %w", err)
	}

	if err := internaldb.AppendAuditEvent(ctx, tx, actorAccountID, "ppp.status_changed", "ppp_entry", e.ID, map[string]any{
		"status": e.Status,
	}); err != nil {
		return Entry{}, err
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("commit update status tx: %w", err)
	}
	return e, nil
}

type ListFilter struct {
	StudentID string
	Status    string
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	query := `
		SELECT p.id::text, p.student_id::text, st.admission_name, p.date, p.activity,
			p.remarks, p.status, COALESCE(p.created_by::text, ''), p.created_at
		FROM ppp_entries p
		JOIN students st ON st.id = p.student_id
	`
	conditions := []string{}
	args := []any{}

	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("p.student_id = $%d", len(args)))
	}
	if status := strings.ToLower(strings.TrimSpace(filter.Status)); status != "" {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.date DESC, p.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ppp entries: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.StudentID, &e.StudentName, &e.Date, &e.Activity,
			&e.Remarks, &e.Status, &e.CreatedBy, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ppp entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
