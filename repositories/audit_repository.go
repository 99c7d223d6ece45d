package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
)

type AuditRepository interface {
	// Create is called with the transaction of the action being recorded so
	// the audit row commits or rolls back with it.
	Create(ctx context.Context, exec SQLExecutor, entry *models.AuditLog) error
	List(ctx context.Context, limit int, action *string, actorUserID *int) ([]*models.AuditLog, error)
}

type postgresAuditRepository struct {
	db *sql.DB
}

func NewPostgresAuditRepository(db *sql.DB) AuditRepository {
	return &postgresAuditRepository{db: db}
}

const auditColumns = `id, actor_user_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at`

func (r *postgresAuditRepository) Create(ctx context.Context, exec SQLExecutor, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (actor_user_id, action, entity_type, entity_id, ip_address, user_agent, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		entry.ActorUserID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.IPAddress,
		entry.UserAgent,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}
	return nil
}

func (r *postgresAuditRepository) List(ctx context.Context, limit int, action *string, actorUserID *int) ([]*models.AuditLog, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_logs WHERE 1=1`
	args := []interface{}{}
	if action != nil {
		args = append(args, *action)
		query += fmt.Sprintf(` AND action = $%d`, len(args))
	}
	if actorUserID != nil {
		args = append(args, *actorUserID)
		query += fmt.Sprintf(` AND actor_user_id = $%d`, len(args))
	}
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log entries: %w", err)
	}
	defer rows.Close()

	var out []*models.AuditLog
	for rows.Next() {
		entry := &models.AuditLog{}
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorUserID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log row: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
