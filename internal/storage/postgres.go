package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sh16coder/Trackitstudy/internal"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() {
	p.pool.Close()
}

// --- SessionRepository ---

func (p *PostgresStorage) SaveSession(ctx context.Context, sess *internal.StudySession) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO study_sessions (id, owner_id, subject, duration_hours, date, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		sess.ID, sess.OwnerID, sess.Subject, sess.DurationHours, sess.Date, sess.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert study session: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) ListSessions(ctx context.Context, ownerID string, limit int) ([]internal.StudySession, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := p.pool.Query(ctx, `SELECT id, owner_id, subject, duration_hours, date, created_at FROM study_sessions WHERE owner_id = $1 ORDER BY date DESC, created_at DESC LIMIT $2`, ownerID, limit)
	if err != nil {
		p.logger.Errorf("failed to query study sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	sessions := []internal.StudySession{}
	for rows.Next() {
		var s internal.StudySession
		err := rows.Scan(&s.ID, &s.OwnerID, &s.Subject, &s.DurationHours, &s.Date, &s.CreatedAt)
		if err != nil {
			p.logger.Errorf("failed to scan study session: %v", err)
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// --- ProfileRepository ---

func (p *PostgresStorage) GetProfile(ctx context.Context, userID string) (*internal.UserProfile, error) {
	row := p.pool.QueryRow(ctx, `SELECT user_id, COALESCE(display_name, ''), COALESCE(share_code, ''), created_at FROM profiles WHERE user_id = $1`, userID)
	var prof internal.UserProfile
	if err := row.Scan(&prof.UserID, &prof.DisplayName, &prof.ShareCode, &prof.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		p.logger.Errorf("failed to load profile: %v", err)
		return nil, err
	}
	return &prof, nil
}

// MergeProfile upserts the patch fields. COALESCE on the existing row
// keeps a concurrently written share code: two racing ensure-code calls
// converge on whichever code landed first.
func (p *PostgresStorage) MergeProfile(ctx context.Context, userID string, patch internal.ProfilePatch) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO profiles (user_id, display_name, share_code, created_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), profiles.display_name),
			share_code   = COALESCE(profiles.share_code, EXCLUDED.share_code)
	`, userID, patch.DisplayName, patch.ShareCode)
	if err != nil {
		p.logger.Errorf("failed to merge profile: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) FindProfileByShareCode(ctx context.Context, code string) (*internal.UserProfile, error) {
	// share_code has no unique constraint; pick the oldest profile if the
	// store ever holds duplicates (documented first-match behavior).
	row := p.pool.QueryRow(ctx, `SELECT user_id, COALESCE(display_name, ''), COALESCE(share_code, ''), created_at FROM profiles WHERE share_code = $1 ORDER BY created_at ASC LIMIT 1`, code)
	var prof internal.UserProfile
	if err := row.Scan(&prof.UserID, &prof.DisplayName, &prof.ShareCode, &prof.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		p.logger.Errorf("failed to resolve share code: %v", err)
		return nil, err
	}
	return &prof, nil
}

// --- Compile-time assertions ---
var _ SessionRepository = (*PostgresStorage)(nil)
var _ ProfileRepository = (*PostgresStorage)(nil)
