package database

import (
	"context"
	"time"

	"confess-bot/internal/models"
)

type ModerationRepository struct {
	db *DB
}

func NewModerationRepository(db *DB) *ModerationRepository {
	return &ModerationRepository{db: db}
}

func (r *ModerationRepository) AddBan(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO bans (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Pool.Exec(ctx, query, userID)
	return err
}

func (r *ModerationRepository) RemoveBan(ctx context.Context, userID int64) error {
	_, err := r.db.Pool.Exec(ctx, "DELETE FROM bans WHERE user_id = $1", userID)
	return err
}

func (r *ModerationRepository) ListBans(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Pool.Query(ctx, "SELECT user_id FROM bans")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ModerationRepository) AddWord(ctx context.Context, word string) error {
	query := `
		INSERT INTO banned_words (word)
		VALUES ($1)
		ON CONFLICT (word) DO NOTHING
	`
	_, err := r.db.Pool.Exec(ctx, query, word)
	return err
}

func (r *ModerationRepository) RemoveWord(ctx context.Context, word string) error {
	_, err := r.db.Pool.Exec(ctx, "DELETE FROM banned_words WHERE word = $1", word)
	return err
}

func (r *ModerationRepository) ListWords(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, "SELECT word FROM banned_words ORDER BY word")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func (r *ModerationRepository) SetTimeout(ctx context.Context, userID int64, expiresAt time.Time) error {
	query := `
		INSERT INTO timeouts (user_id, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET expires_at = EXCLUDED.expires_at
	`
	_, err := r.db.Pool.Exec(ctx, query, userID, expiresAt)
	return err
}

func (r *ModerationRepository) RemoveTimeout(ctx context.Context, userID int64) error {
	_, err := r.db.Pool.Exec(ctx, "DELETE FROM timeouts WHERE user_id = $1", userID)
	return err
}

func (r *ModerationRepository) ListTimeouts(ctx context.Context) ([]models.Timeout, error) {
	rows, err := r.db.Pool.Query(ctx, "SELECT user_id, expires_at FROM timeouts")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var timeouts []models.Timeout
	for rows.Next() {
		var t models.Timeout
		if err := rows.Scan(&t.UserID, &t.ExpiresAt); err != nil {
			return nil, err
		}
		timeouts = append(timeouts, t)
	}
	return timeouts, rows.Err()
}

func (r *ModerationRepository) SetToggle(ctx context.Context, name string, enabled bool) error {
	query := `
		INSERT INTO feature_toggles (name, enabled)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET enabled = EXCLUDED.enabled
	`
	_, err := r.db.Pool.Exec(ctx, query, name, enabled)
	return err
}

func (r *ModerationRepository) ListToggles(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.Pool.Query(ctx, "SELECT name, enabled FROM feature_toggles")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	toggles := make(map[string]bool)
	for rows.Next() {
		var name string
		var enabled bool
		if err := rows.Scan(&name, &enabled); err != nil {
			return nil, err
		}
		toggles[name] = enabled
	}
	return toggles, rows.Err()
}
