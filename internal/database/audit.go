package database

import (
	"context"

	"confess-bot/internal/models"
)

type AuditRepository struct {
	db *DB
}

func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, rec *models.AuditRecord) error {
	query := `
		INSERT INTO audit_log (action, user_id, first_name, username, kind, content, photo_id, message_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	return r.db.Pool.QueryRow(ctx, query,
		rec.Action, rec.UserID, rec.FirstName, rec.Username,
		rec.Kind, rec.Content, rec.PhotoID, rec.MessageID,
	).Scan(&rec.ID, &rec.CreatedAt)
}

func (r *AuditRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_log").Scan(&count)
	return count, err
}

func (r *AuditRepository) CountByAction(ctx context.Context, action models.AuditAction) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_log WHERE action = $1", action).Scan(&count)
	return count, err
}
