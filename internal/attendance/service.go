package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	internaldb "github.com/Ashu12122005/ppp-management/internal/db"
)

var (
	ErrNotFound      = errors.New("attendance record not found")
	ErrInvalidStatus = errors.New("invalid attendance status")
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLeave   = "leave"
)

// ValidStatus reports whether the lowercased status is one the register
// accepts.
func ValidStatus(status string) bool {
	switch status {
	case StatusPresent, StatusAbsent, StatusLeave:
		return true
	}
	return false
}

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

type Record struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName,omitempty"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	Remarks     string    `json:"remarks"`
	MarkedBy    string    `json:"markedBy,omitempty"`
	MarkedAt    time.Time `json:"markedAt"`
}

type MarkInput struct {
	StudentID string
	Date      time.Time
	Status    string
	Remarks   string
	MarkedBy  string
}

// Mark records attendance for one student on one day. A second mark for the
// same student and date overwrites the first; the register holds one row per
// (student, date).
func (s *Service) Mark(ctx context.Context, in MarkInput) (Record, error) {
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if !ValidStatus(status) {
		return Record{}, fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("begin mark attendance tx: %w", err)
	}
	defer tx.Rollback()

	var rec Record
	err = tx.QueryRowContext(ctx, `
		INSERT INTO attendance (student_id, date, status, remarks, marked_by)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid)
		ON CONFLICT (student_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			remarks = EXCLUDED.remarks,
			marked_by = EXCLUDED.marked_by,
			marked_at = NOW()
		RETURNING id::text, student_id::text, date, status, remarks, COALESCE(marked_by::text, ''), marked_at
	`, in.StudentID, in.Date, status, in.Remarks, in.MarkedBy).Scan(
		&rec.ID, &rec.StudentID, &rec.Date, &rec.Status, &rec.Remarks, &rec.MarkedBy, &rec.MarkedAt,
	)
	if err != nil {
		return Record{}, fmt.Errorf("upsert attendance: %w", err)
	}

	if err := internaldb.AppendAuditEvent(ctx, tx, in.MarkedBy, "attendance.marked", "attendance", rec.ID, map[string]any{
		"studentId": rec.StudentID,
		"date":      rec.Date.Format("2006-01-02"),
		"status":    rec.Status,
	}); err != nil {
		return Record{}, err
	}

	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit mark attendance tx: %w", err)
	}
	return rec, nil
}

type ListFilter struct {
	StudentID string
	From      *time.Time
	To        *time.Time
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	query := `
		SELECT a.id::text, a.student_id::text, st.admission_name, a.date, a.status,
			a.remarks, COALESCE(a.marked_by::text, ''), a.marked_at
		FROM attendance a
		JOIN students st ON st.id = a.student_id
	`
	conditions := []string{}
	args := []any{}

	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("a.student_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY a.date DESC, a.marked_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID, &rec.StudentID, &rec.StudentName, &rec.Date, &rec.Status,
			&rec.Remarks, &rec.MarkedBy, &rec.MarkedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
