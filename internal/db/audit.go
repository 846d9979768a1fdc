package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// AuditStore is satisfied by both *sql.DB and *sql.Tx so services can append
// audit events inside or outside a transaction.
type AuditStore interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AppendAuditEvent records a business event in the audit log. Events are
// observational; failures are returned to the caller to decide whether the
// surrounding transaction should abort.
func AppendAuditEvent(
	ctx context.Context,
	store AuditStore,
	actorAccountID string,
	eventType string,
	entityType string,
	entityID string,
	payload any,
) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	_, err = store.ExecContext(ctx, `
		INSERT INTO audit_log (actor_account_id, event_type, entity_type, entity_id, payload)
		VALUES (NULLIF($1, '')::uuid, $2, $3, $4, $5::jsonb)
	`, actorAccountID, eventType, entityType, entityID, string(payloadJSON))
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
