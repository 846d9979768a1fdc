package notices

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	internaldb "github.com/Ashu12122005/ppp-management/internal/db"
)

var (
	ErrNotFound     = errors.New("notice not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

type Notice struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	CreatedBy  string     `json:"createdBy,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	ValidFrom  time.Time  `json:"validFrom"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`
}

type CreateInput struct {
	Title      string
	Message    string
	ValidFrom  *time.Time
	ValidUntil *time.Time
	CreatedBy  string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Notice, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	if in.Title == "" || in.Message == "" {
		return Notice{}, fmt.Errorf("%w: title and message are required", ErrInvalidInput)
	}

	validFrom := time.Now().UTC()
	if in.ValidFrom != nil {
		validFrom = *in.ValidFrom
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Notice{}, fmt.Errorf("begin create notice tx: %w", err)
	}
	defer tx.Rollback()

	var n Notice
	err = tx.QueryRowContext(ctx, `
		INSERT INTO notices (title, message, created_by, valid_from, valid_until)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5)
		RETURNING id::text, title, message, COALESCE(created_by::text, ''), created_at, valid_from, valid_until
	`, in.Title, in.Message, in.CreatedBy, validFrom, in.ValidUntil).Scan(
		&n.ID, &n.Title, &n.Message, &n.CreatedBy, &n.CreatedAt, &n.ValidFrom, &n.ValidUntil,
	)
	if err != nil {
		return Notice{}, fmt.Errorf("insert notice: %w", err)
	}

	if err := internaldb.AppendAuditEvent(ctx, tx, in.CreatedBy, "notice.published", "notice", n.ID, map[string]any{
		"title": n.Title,
	}); err != nil {
		return Notice{}, err
	}

	if err := tx.Commit(); err != nil {
		return Notice{}, fmt.Errorf("commit create notice tx: %w", err)
	}
	return n, nil
}

// ListActive returns notices currently within their validity window, newest
// first.
func (s *Service) ListActive(ctx context.Context) ([]Notice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id::text, title, message, COALESCE(created_by::text, ''), created_at, valid_from, valid_until
		FROM notices
		WHERE valid_from <= NOW()
		  AND (valid_until IS NULL OR valid_until >= NOW())
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list active notices: %w", err)
	}
	defer rows.Close()
	return collectNotices(rows)
}

func (s *Service) List(ctx context.Context) ([]Notice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id::text, title, message, COALESCE(created_by::text, ''), created_at, valid_from, valid_until
		FROM notices
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	defer rows.Close()
	return collectNotices(rows)
}

func (s *Service) Delete(ctx context.Context, actorAccountID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete notice tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := internaldb.AppendAuditEvent(ctx, tx, actorAccountID, "notice.deleted", "notice", id, map[string]any{}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete notice tx: %w", err)
	}
	return nil
}

func (s *Service) publishedSince(ctx context.Context, since time.Time) ([]Notice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id::text, title, message, COALESCE(created_by::text, ''), created_at, valid_from, valid_until
		FROM notices
		WHERE created_at > $1
		ORDER BY created_at
	`, since)
	if err != nil {
		return nil, fmt.Errorf("query notices since cursor: %w", err)
	}
	defer rows.Close()
	return collectNotices(rows)
}

func collectNotices(rows *sql.Rows) ([]Notice, error) {
	out := []Notice{}
	for rows.Next() {
		var n Notice
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.CreatedBy, &n.CreatedAt, &n.ValidFrom, &n.ValidUntil); err != nil {
			return nil, fmt.Errorf("scan notice: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// ServeWS streams newly published notices over a websocket. The connection
// polls the notices table and sends a heartbeat when nothing is new, so
// clients can tell a quiet board from a dead socket.
func (s *Service) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("upgrade websocket: %w", err)
	}
	defer conn.Close()

	cursor := time.Now().UTC()
	if err := conn.WriteJSON(map[string]any{
		"type":   "connected",
		"cursor": cursor,
	}); err != nil {
		return fmt.Errorf("write websocket connected payload: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(1024)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return nil
		case <-done:
			return nil
		case <-ticker.C:
			pollCtx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
			fresh, err := s.publishedSince(pollCtx, cursor)
			cancel()
			if err != nil {
				if writeErr := conn.WriteJSON(map[string]any{"type": "error", "error": err.Error()}); writeErr != nil {
					return fmt.Errorf("write websocket error payload: %w", writeErr)
				}
				continue
			}

			message := map[string]any{
				"type":    "notices",
				"cursor":  cursor,
				"notices": fresh,
			}
			if len(fresh) == 0 {
				message["type"] = "heartbeat"
			} else {
				cursor = fresh[len(fresh)-1].CreatedAt
				message["cursor"] = cursor
			}
			if err := conn.WriteJSON(message); err != nil {
				return fmt.Errorf("write websocket payload: %w", err)
			}
		}
	}
}
