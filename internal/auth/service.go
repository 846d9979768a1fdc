package auth

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
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

type Service struct {
	db     *sql.DB
	tokens *TokenManager
}

func NewService(db *sql.DB, tokens *TokenManager) *Service {
	return &Service{db: db, tokens: tokens}
}

type LoginInput struct {
	Username   string
	Password   string
	ClientName string
}

type TokenPair struct {
	TokenType             string    `json:"tokenType"`
	AccountID             string    `json:"accountId"`
	Role                  string    `json:"role"`
	MustChangePassword    bool      `json:"mustChangePassword"`
	AccessToken           string    `json:"accessToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshToken          string    `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

func (s *Service) Login(ctx context.Context, in LoginInput) (TokenPair, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" || in.Password == "" {
		return TokenPair{}, ErrInvalidCredentials
	}
	clientName := strings.TrimSpace(in.ClientName)
	if clientName == "" {
		clientName = "web"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TokenPair{}, fmt.Errorf("begin login tx: %w", err)
	}
	defer tx.Rollback()

	var accountID, passwordHash, role string
	var mustChangePassword bool
	err = tx.QueryRowContext(ctx, `
		SELECT id::text, password_hash, role, must_change_password
		FROM accounts
		WHERE username = $1
	`, username).Scan(&accountID, &passwordHash, &role, &mustChangePassword)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("lookup account: %w", err)
	}

	ok, err := VerifyPassword(passwordHash, in.Password)
	if err != nil {
		return TokenPair{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return TokenPair{}, ErrInvalidCredentials
	}

	refreshToken, refreshHash, refreshExpiresAt, err := s.tokens.IssueRefreshToken()
	if err != nil {
		return TokenPair{}, err
	}

	var sessionID string
	err = tx.QueryRowContext(ctx, `
		SELECT id::text
		FROM sessions
		WHERE account_id = $1 AND client_name = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, accountID, clientName).Scan(&sessionID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return TokenPair{}, fmt.Errorf("query session: %w", err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO sessions (account_id, client_name, refresh_token_hash, refresh_token_expires_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id::text
		`, accountID, clientName, refreshHash, refreshExpiresAt).Scan(&sessionID)
		if err != nil {
			return TokenPair{}, fmt.Errorf("insert session: %w", err)
		}
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE sessions
			SET refresh_token_hash = $1,
				refresh_token_expires_at = $2,
				revoked_at = NULL,
				updated_at = NOW()
			WHERE id = $3
		`, refreshHash, refreshExpiresAt, sessionID)
		if err != nil {
			return TokenPair{}, fmt.Errorf("update session: %w", err)
		}
	}

	accessToken, accessExpiresAt, err := s.tokens.IssueAccessToken(accountID, role, sessionID)
	if err != nil {
		return TokenPair{}, err
	}

	if err := internaldb.AppendAuditEvent(ctx, tx, accountID, "auth.login", "session", sessionID, map[string]any{
		"clientName": clientName,
	}); err != nil {
		return TokenPair{}, err
	}

	if err := tx.Commit(); err != nil {
		return TokenPair{}, fmt.Errorf("commit login tx: %w", err)
	}

	return TokenPair{
		TokenType:             "Bearer",
		AccountID:             accountID,
		Role:                  role,
		MustChangePassword:    mustChangePassword,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: refreshExpiresAt,
	}, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return TokenPair{}, ErrInvalidRefreshToken
	}
	refreshHash := s.tokens.HashRefreshToken(refreshToken)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TokenPair{}, fmt.Errorf("begin refresh tx: %w", err)
	}
	defer tx.Rollback()

	var (
		sessionID string
		accountID string
		role      string
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err = tx.QueryRowContext(ctx, `
		SELECT s.id::text, s.account_id::text, a.role, s.refresh_token_expires_at, s.revoked_at
		FROM sessions s
		JOIN accounts a ON a.id = s.account_id
		WHERE s.refresh_token_hash = $1
	`, refreshHash).Scan(&sessionID, &accountID, &role, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, fmt.Errorf("lookup refresh token: %w", err)
	}

	if revokedAt.Valid || time.Now().UTC().After(expiresAt) {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	newRefreshToken, newRefreshHash, newRefreshExpiresAt, err := s.tokens.IssueRefreshToken()
	if err != nil {
		return TokenPair{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE sessions
		SET refresh_token_hash = $1,
			refresh_token_expires_at = $2,
			updated_at = NOW()
		WHERE id = $3
	`, newRefreshHash, newRefreshExpiresAt, sessionID); err != nil {
		return TokenPair{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	accessToken, accessExpiresAt, err := s.tokens.IssueAccessToken(accountID, role, sessionID)
	if err != nil {
		return TokenPair{}, err
	}

	if err := internaldb.AppendAuditEvent(ctx, tx, accountID, "auth.refresh", "session", sessionID, map[string]any{}); err != nil {
		return TokenPair{}, err
	}

	if err := tx.Commit(); err != nil {
		return TokenPair{}, fmt.Errorf("commit refresh tx: %w", err)
	}

	return TokenPair{
		TokenType:             "Bearer",
		AccountID:             accountID,
		Role:                  role,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          newRefreshToken,
		RefreshTokenExpiresAt: newRefreshExpiresAt,
	}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	refreshHash := s.tokens.HashRefreshToken(refreshToken)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin logout tx: %w", err)
	}
	defer tx.Rollback()

	var sessionID, accountID string
	err = tx.QueryRowContext(ctx, `
		SELECT id::text, account_id::text
		FROM sessions
		WHERE refresh_token_hash = $1
		  AND revoked_at IS NULL
	`, refreshHash).Scan(&sessionID, &accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("lookup session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE sessions
		SET revoked_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	if err := internaldb.AppendAuditEvent(ctx, tx, accountID, "auth.logout", "session", sessionID, map[string]any{}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit logout tx: %w", err)
	}
	return nil
}

// ChangePassword verifies the current credential and replaces it, clearing the
// must_change_password flag set at provisioning time.
func (s *Service) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	if len(strings.TrimSpace(newPassword)) < 8 {
		return errors.New("new password must be at least 8 characters")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin change password tx: %w", err)
	}
	defer tx.Rollback()

	var passwordHash string
	err = tx.QueryRowContext(ctx, `
		SELECT password_hash FROM accounts WHERE id = $1
	`, accountID).Scan(&passwordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	ok, err := VerifyPassword(passwordHash, currentPassword)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	newHash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET password_hash = $1, must_change_password = FALSE, updated_at = NOW()
		WHERE id = $2
	`, newHash, accountID); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := internaldb.AppendAuditEvent(ctx, tx, accountID, "auth.password_changed", "account", accountID, map[string]any{}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit change password tx: %w", err)
	}
	return nil
}
