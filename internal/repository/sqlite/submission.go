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

// compile-time check that *DB implements repository.SubmissionRepository
var _ repository.SubmissionRepository = (*DB)(nil)

// Create inserts a submission. AnalysisResult may be nil (plain save) or
// set (analyze+save); either way this is a single INSERT, which is what
// makes analyze+save all-or-nothing — the service only calls Create after
// the feedback service has answered.
func (db *DB) Create(ctx context.Context, submission *model.Submission) error {
	submission.ID = xid.New().String()
	submission.CreatedAt = time.Now()

	// sql.NullString bridges the nullable column and the *string field.
	var analysis sql.NullString
	if submission.AnalysisResult != nil {
		analysis = sql.NullString{String: *submission.AnalysisResult, Valid: true}
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO saved_code (id, user_id, code_content, analysis_result, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		submission.ID,
		submission.UserID,
		submission.CodeContent,
		analysis,
		submission.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting submission for user %s: %w", submission.UserID, err)
	}

	return nil
}

// GetByID retrieves a single submission. Visibility (owner/admin) is the
// service layer's concern — the repository returns the row if it exists.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var (
		s        model.Submission
		analysis sql.NullString
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, code_content, analysis_result, created_at
		 FROM saved_code WHERE id = ?`,
		id,
	).Scan(
		&s.ID,
		&s.UserID,
		&s.CodeContent,
		&analysis,
		&s.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("code", id)
		}
		return nil, fmt.Errorf("sqlite: getting submission %s: %w", id, err)
	}

	if analysis.Valid {
		s.AnalysisResult = &analysis.String
	}

	return &s, nil
}

// ListByUser returns the user's submissions, newest first.
func (db *DB) ListByUser(ctx context.Context, userID string) ([]model.Submission, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, code_content, analysis_result, created_at
		 FROM saved_code
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing submissions for user %s: %w", userID, err)
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		var (
			s        model.Submission
			analysis sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.CodeContent, &analysis, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning submission row: %w", err)
		}
		if analysis.Valid {
			s.AnalysisResult = &analysis.String
		}
		submissions = append(submissions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating submissions: %w", err)
	}

	return submissions, nil
}

// Delete removes a submission. A non-empty ownerID scopes the DELETE to
// that owner's rows; admins pass "" to delete unconditionally. The caller
// inspects the returned row count — 0 means "nothing you were allowed to
// delete", whether the row belongs to someone else or never existed.
func (db *DB) Delete(ctx context.Context, id, ownerID string) (int64, error) {
	var (
		result sql.Result
		err    error
	)

	if ownerID == "" {
		result, err = db.conn.ExecContext(ctx,
			`DELETE FROM saved_code WHERE id = ?`, id)
	} else {
		result, err = db.conn.ExecContext(ctx,
			`DELETE FROM saved_code WHERE id = ? AND user_id = ?`, id, ownerID)
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting submission %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return affected, nil
}
