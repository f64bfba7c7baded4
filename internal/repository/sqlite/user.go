package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/codespace/internal/apperror"
	"github.com/sakif/codespace/internal/model"
	"github.com/sakif/codespace/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user account. Accounts are created out-of-band
// by the adduser CLI — there is no signup endpoint.
//
// The caller provides Username, PasswordHash, and IsAdmin; ID and the
// timestamps are filled in here (pointer receiver, modified in place).
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	now := time.Now()
	user.LastActive = now
	user.CreatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, is_admin, last_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.IsAdmin,
		user.LastActive,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// GetByUsername retrieves a user by exact, case-sensitive username match.
// Returns apperror.ErrNotFound if no such user exists — the login flow
// deliberately collapses that into the same "invalid credentials" answer
// as a wrong password.
func (db *DB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, is_admin, last_active, created_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.LastActive,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}

	return &u, nil
}

// TouchLastActive refreshes last_active to now. Called after a successful
// login; the caller treats failures as log-and-continue.
func (db *DB) TouchLastActive(ctx context.Context, id string) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE users SET last_active = ? WHERE id = ?`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: touching last_active for user %s: %w", id, err)
	}
	return nil
}

// DashboardStats computes the teacher dashboard aggregates in one round
// trip, mirroring the three sub-selects of the original report:
// non-admin user count, total submission count, and distinct non-admin
// users active in the last 24 hours.
func (db *DB) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	since := time.Now().Add(-24 * time.Hour)

	err := db.conn.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users WHERE is_admin = 0),
			(SELECT COUNT(*) FROM saved_code),
			(SELECT COUNT(DISTINCT id) FROM users WHERE is_admin = 0 AND last_active >= ?)`,
		since,
	).Scan(
		&stats.TotalStudents,
		&stats.TotalSubmissions,
		&stats.ActiveToday,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: computing dashboard stats: %w", err)
	}

	return &stats, nil
}

// ListStudents returns one row per non-admin user, left-joined against
// saved_code so students with zero submissions still appear (count 0),
// ordered by last_active descending. A non-empty filter keeps only
// usernames containing it, case-insensitively.
//
// SQLite's LIKE is already case-insensitive for ASCII, but we lowercase
// both sides explicitly so the behaviour doesn't depend on the
// case_sensitive_like pragma.
func (db *DB) ListStudents(ctx context.Context, filter string) ([]model.StudentRow, error) {
	query := `
		SELECT u.id, u.username, u.last_active, COUNT(sc.id)
		FROM users u
		LEFT JOIN saved_code sc ON u.id = sc.user_id
		WHERE u.is_admin = 0`
	args := []any{}

	if filter != "" {
		query += ` AND LOWER(u.username) LIKE '%' || LOWER(?) || '%'`
		args = append(args, filter)
	}

	query += `
		GROUP BY u.id
		ORDER BY u.last_active DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing students: %w", err)
	}
	defer rows.Close()

	students := []model.StudentRow{}
	for rows.Next() {
		var s model.StudentRow
		if err := rows.Scan(&s.ID, &s.Username, &s.LastActive, &s.SubmissionCount); err != nil {
			return nil, fmt.Errorf("sqlite: scanning student row: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating students: %w", err)
	}

	return students, nil
}
