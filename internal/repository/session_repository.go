package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhishekprajapati1/clavel-assignment/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

const sessionColumns = `id, user_id, browser, os, device, user_agent, ip_address, is_active,
	last_activity, created_at, updated_at, expires_at`

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, session models.Session) error {
	const query = `
		INSERT INTO user_sessions (
			id, user_id, browser, os, device, user_agent, ip_address, is_active, last_activity, created_at, updated_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, TRUE, NOW(), NOW(), NOW(), $8
		)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.DeviceInfo.Browser,
		session.DeviceInfo.OS,
		session.DeviceInfo.Device,
		session.DeviceInfo.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
	)
	return err
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_sessions WHERE id = $1`
	return scanSession(r.pool.QueryRow(ctx, query, id))
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM user_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// Touch bumps last_activity. Concurrent touches are last-write-wins.
func (r *SessionRepository) Touch(ctx context.Context, sessionID string, ip string) error {
	const query = `
		UPDATE user_sessions
		SET last_activity = NOW(),
		    updated_at = NOW(),
		    ip_address = COALESCE(NULLIF($2, ''), ip_address)
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, sessionID, ip)
	return err
}

// Revoke deactivates a session. Revoking an inactive or unknown session is a no-op.
func (r *SessionRepository) Revoke(ctx context.Context, sessionID string) error {
	const query = `UPDATE user_sessions SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`
	_, err := r.pool.Exec(ctx, query, sessionID)
	return err
}

// RevokeForUser deactivates a session only if userID owns it.
func (r *SessionRepository) RevokeForUser(ctx context.Context, userID, sessionID string) error {
	const query = `UPDATE user_sessions SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND user_id = $2`
	cmd, err := r.pool.Exec(ctx, query, sessionID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) RevokeAll(ctx context.Context, userID string) (int64, error) {
	const query = `UPDATE user_sessions SET is_active = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_active`
	cmd, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *SessionRepository) Stats(ctx context.Context, userID string) (models.SessionStats, error) {
	const query = `
		SELECT device, browser, is_active, COUNT(*)
		FROM user_sessions
		WHERE user_id = $1
		GROUP BY device, browser, is_active
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return models.SessionStats{}, err
	}
	defer rows.Close()

	stats := models.NewSessionStats()
	for rows.Next() {
		var (
			device, browser string
			active          bool
			count           int
		)
		if err := rows.Scan(&device, &browser, &active, &count); err != nil {
			return models.SessionStats{}, err
		}
		stats.Add(device, browser, active, count)
	}
	return stats, rows.Err()
}

// ExpireIdle deactivates active sessions whose last activity is older than before.
func (r *SessionRepository) ExpireIdle(ctx context.Context, before time.Time) (int64, error) {
	const query = `
		UPDATE user_sessions SET is_active = FALSE, updated_at = NOW()
		WHERE is_active AND (last_activity < $1 OR expires_at < NOW())
	`
	cmd, err := r.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// PurgeInactive deletes inactive sessions last updated before the cutoff.
func (r *SessionRepository) PurgeInactive(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM user_sessions WHERE NOT is_active AND updated_at < $1`
	cmd, err := r.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanSession(row scanner) (models.Session, error) {
	var session models.Session
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.DeviceInfo.Browser,
		&session.DeviceInfo.OS,
		&session.DeviceInfo.Device,
		&session.DeviceInfo.UserAgent,
		&session.IPAddress,
		&session.IsActive,
		&session.LastActivity,
		&session.CreatedAt,
		&session.UpdatedAt,
		&session.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}
	return session, nil
}
