package fees

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
	ErrNotFound     = errors.New("fee payment not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	db       *sql.DB
	validate *validator.Validate
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, validate: validator.New()}
}

type Payment struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName,omitempty"`
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	PaymentMode string    `json:"paymentMode"`
	Status      string    `json:"status"`
	Remarks     string    `json:"remarks"`
	ReceivedBy  string    `json:"receivedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateInput struct {
	StudentID   string    `validate:"required,uuid4"`
	Date        time.Time `validate:"required"`
	Amount      float64   `validate:"gte=0"`
	PaymentMode string    `validate:"omitempty,oneof=cash upi bank"`
	Status      string    `validate:"omitempty,oneof=paid partial pending"`
	Remarks     string    `validate:"max=255"`
	ReceivedBy  string
}

// Create appends a payment to the ledger. Payments are never merged or
// overwritten; every receipt is its own row.
func (s *Service) Create(ctx context.Context, in CreateInput) (Payment, error) {
	in.PaymentMode = strings.ToLower(strings.TrimSpace(in.PaymentMode))
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	if in.PaymentMode == "" {
		in.PaymentMode = "cash"
	}
	if in.Status == "" {
		in.Status = "paid"
	}

	if err := s.validate.Struct(in); err != nil {
		return Payment{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Payment{}, fmt.Errorf("begin create payment tx: %w", err)
	}
	defer tx.Rollback()

	var p Payment
	err = tx.QueryRowContext(ctx, `
		INSERT INTO fee_payments (student_id, date, amount, payment_mode, status, remarks, received_by)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid)
		RETURNING id::text, student_id::text, date, amount, payment_mode, status, remarks,
			COALESCE(received_by::text, ''), created_at
	`, in.StudentID, in.Date, in.Amount, in.PaymentMode, in.Status, in.Remarks, in.ReceivedBy).Scan(
		&p.ID, &p.StudentID, &p.Date, &p.Amount, &p.PaymentMode, &p.Status, &p.Remarks,
		&p.ReceivedBy, &p.CreatedAt,
	)
	if err != nil {
		return Payment{}, fmt.Errorf("insert fee payment: %w", err)
	}

	if err := internaldb.AppendAuditEvent(ctx, tx, in.ReceivedBy, "fee.recorded", "fee_payment", p.ID, map[string]any{
		"studentId": p.StudentID,
		"amount":    p.Amount,
	}); err != nil {
		return Payment{}, err
	}

	if err := tx.Commit(); err != nil {
		return Payment{}, fmt.Errorf("commit create payment tx: %w", err)
	}
	return p, nil
}

type ListFilter struct {
	StudentID string
	From      *time.Time
	To        *time.Time
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Payment, error) {
	query := `
		SELECT f.id::text, f.student_id::text, st.admission_name, f.date, f.amount,
			f.payment_mode, f.status, f.remarks, COALESCE(f.received_by::text, ''), f.created_at
		FROM fee_payments f
		JOIN students st ON st.id = f.student_id
	`
	conditions := []string{}
	args := []any{}

	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("f.student_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("f.date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("f.date <= $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY f.date DESC, f.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fee payments: %w", err)
	}
	defer rows.Close()

	out := []Payment{}
	for rows.Next() {
		var p Payment
		if err := rows.Scan(
			&p.ID, &p.StudentID, &p.StudentName, &p.Date, &p.Amount,
			&p.PaymentMode, &p.Status, &p.Remarks, &p.ReceivedBy, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan fee payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
