package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Ashu12122005/ppp-management/internal/auth"
	internaldb "github.com/Ashu12122005/ppp-management/internal/db"
	"github.com/Ashu12122005/ppp-management/internal/notifier"
)

var (
	ErrNotFound     = errors.New("account not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("account conflict")
)

const uniqueViolation = "23505"

type Service struct {
	db              *sql.DB
	notify          notifier.Notifier
	defaultPassword string
}

func NewService(db *sql.DB, notify notifier.Notifier, defaultPassword string) *Service {
	if notify == nil {
		notify = notifier.LogNotifier{}
	}
	return &Service{db: db, notify: notify, defaultPassword: defaultPassword}
}

type Account struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email,omitempty"`
	Role               string    `json:"role"`
	MustChangePassword bool      `json:"mustChangePassword"`
	CreatedAt          time.Time `json:"createdAt"`
}

// ProvisionInput identifies the student an account is being created for.
// Email is optional; when present the username derives from it and the
// configured default password is issued, otherwise a name-based username and a
// random credential are generated.
type ProvisionInput struct {
	Email         string
	AdmissionName string
	ExamRollNo    string
	ClassRollNo   string
	StudentID     string
}

// EnsureAccount creates a login for a student, retrying with numeric suffixes
// until the username is free. Callers are expected to skip students that
// already hold an account; calling twice for the same student yields two
// accounts, so idempotency lives at the student row.
func (s *Service) EnsureAccount(ctx context.Context, in ProvisionInput) (Account, error) {
	email := cleanEmail(in.Email)

	password := s.defaultPassword
	generated := false
	if email == "" {
		random, err := auth.RandomPassword(10)
		if err != nil {
			return Account{}, err
		}
		password = random
		generated = true
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return Account{}, err
	}

	var account Account
	for attempt := 0; attempt < 50; attempt++ {
		var username string
		if email != "" {
			username = usernameFromEmail(email, attempt)
		} else {
			username = usernameFromName(in.AdmissionName, in.ExamRollNo, in.ClassRollNo, in.StudentID, attempt)
		}
		if username == "" {
			return Account{}, fmt.Errorf("%w: cannot derive username", ErrInvalidInput)
		}

		account, err = s.insertAccount(ctx, username, email, passwordHash)
		if err == nil {
			break
		}
		if isUniqueViolation(err) {
			continue
		}
		return Account{}, err
	}
	if err != nil {
		return Account{}, fmt.Errorf("%w: username space exhausted", ErrConflict)
	}

	if generated {
		if err := s.notify.NotifyCredentialIssued(ctx, notifier.Credential{
			Email:    email,
			Username: account.Username,
			Password: password,
			FullName: strings.TrimSpace(in.AdmissionName),
		}); err != nil {
			return Account{}, fmt.Errorf("notify issued credential: %w", err)
		}
	}

	return account, nil
}

func (s *Service) insertAccount(ctx context.Context, username, email, passwordHash string) (Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Account{}, fmt.Errorf("begin provision tx: %w", err)
	}
	defer tx.Rollback()

	var account Account
	err = tx.QueryRowContext(ctx, `
		INSERT INTO accounts (username, email, password_hash, role, must_change_password)
		VALUES ($1, NULLIF($2, ''), $3, 'student', TRUE)
		RETURNING id::text, username, COALESCE(email, ''), role, must_change_password, created_at
	`, username, email, passwordHash).Scan(
		&account.ID, &account.Username, &account.Email, &account.Role,
		&account.MustChangePassword, &account.CreatedAt,
	)
	if err != nil {
		return Account{}, fmt.Errorf("insert account: %w", err)
	}

	if err := internaldb.AppendAuditEvent(ctx, tx, "", "account.provisioned", "account", account.ID, map[string]any{
		"username": account.Username,
	}); err != nil {
		return Account{}, err
	}

	if err := tx.Commit(); err != nil {
		return Account{}, fmt.Errorf("commit provision tx: %w", err)
	}
	return account, nil
}

// CreateStaff registers a staff login with an operator-chosen password.
func (s *Service) CreateStaff(ctx context.Context, actorAccountID, username, email, password string) (Account, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return Account{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if len(password) < 8 {
		return Account{}, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return Account{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Account{}, fmt.Errorf("begin create staff tx: %w", err)
	}
	defer tx.Rollback()

	var account Account
	err = tx.QueryRowContext(ctx, `
		INSERT INTO accounts (username, email, password_hash, role, must_change_password)
		VALUES ($1, NULLIF($2, ''), $3, 'staff', FALSE)
		RETURNING id::text, username, COALESCE(email, ''), role, must_change_password, created_at
	`, username, cleanEmail(email), passwordHash).Scan(
		&account.ID, &account.Username, &account.Email, &account.Role,
		&account.MustChangePassword, &account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Account{}, fmt.Errorf("%w: username %q is taken", ErrConflict, username)
		}
		return Account{}, fmt.Errorf("insert staff account: %w", err)
	}

	if err := internaldb.AppendAuditEvent(ctx, tx, actorAccountID, "account.staff_created", "account", account.ID, map[string]any{
		"username": account.Username,
	}); err != nil {
		return Account{}, err
	}

	if err := tx.Commit(); err != nil {
		return Account{}, fmt.Errorf("commit create staff tx: %w", err)
	}
	return account, nil
}

func (s *Service) List(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id::text, username, COALESCE(email, ''), role, must_change_password, created_at
		FROM accounts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []Account{}
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Username, &a.Email, &a.Role, &a.MustChangePassword, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ResetPassword issues a fresh random credential for an account, revokes its
// sessions, and reports the new password back to the caller once.
func (s *Service) ResetPassword(ctx context.Context, actorAccountID, accountID string) (string, error) {
	password, err := auth.RandomPassword(10)
	if err != nil {
		return "", err
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin reset password tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET password_hash = $1, must_change_password = TRUE, updated_at = NOW()
		WHERE id = $2
	`, passwordHash, accountID)
	if err != nil {
		return "", fmt.Errorf("update account password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("check reset result: %w", err)
	}
	if affected == 0 {
		return "", ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE sessions
		SET revoked_at = NOW(), updated_at = NOW()
		WHERE account_id = $1 AND revoked_at IS NULL
	`, accountID); err != nil {
		return "", fmt.Errorf("revoke sessions: %w", err)
	}

	if err := internaldb.AppendAuditEvent(ctx, tx, actorAccountID, "account.password_reset", "account", accountID, map[string]any{}); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit reset password tx: %w", err)
	}
	return password, nil
}

// usernameFromEmail returns the email itself on the first attempt, then
// variants with the attempt number spliced in before the "@".
func usernameFromEmail(email string, attempt int) string {
	if attempt == 0 {
		return email
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return fmt.Sprintf("%s%d", email, attempt)
	}
	return fmt.Sprintf("%s%d@%s", email[:at], attempt, email[at+1:])
}

// usernameFromName builds the fallback username from the first word of the
// student's name plus the strongest available roll number, suffixing the
// attempt number on collision.
func usernameFromName(admissionName, examRoll, classRoll, fallback string, attempt int) string {
	base := "student"
	if fields := strings.Fields(strings.TrimSpace(admissionName)); len(fields) > 0 {
		base = strings.ToLower(fields[0])
	}

	discriminator := strings.TrimSpace(examRoll)
	if discriminator == "" {
		discriminator = strings.TrimSpace(classRoll)
	}
	if discriminator == "" {
		discriminator = strings.TrimSpace(fallback)
	}

	candidate := base + discriminator
	if candidate == "" {
		return ""
	}
	if attempt == 0 {
		return candidate
	}
	return fmt.Sprintf("%s%d", candidate, attempt)
}

func cleanEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || email == "nan" || email == "none" {
		return ""
	}
	return email
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
