// Package repository declares the storage interfaces the service layer
// programs against. The concrete SQLite implementation lives in the
// sqlite subpackage; tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/codespace/internal/model"
)

// UserRepository provides access to user accounts and the teacher
// dashboard aggregates (which are user-centric queries).
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// TouchLastActive sets last_active to now. Called fire-and-forget on
	// login — its failure must never fail the login itself.
	TouchLastActive(ctx context.Context, id string) error
	DashboardStats(ctx context.Context) (*model.DashboardStats, error)
	// ListStudents returns one row per non-admin user, ordered by
	// last_active descending. A non-empty filter restricts the rows to
	// usernames containing it, case-insensitively.
	ListStudents(ctx context.Context, filter string) ([]model.StudentRow, error)
}

// SubmissionRepository stores the append-only log of code submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.Submission) error
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	ListByUser(ctx context.Context, userID string) ([]model.Submission, error)
	// Delete removes the submission with the given id. When ownerID is
	// non-empty the delete is scoped to that owner; admins pass "" to
	// delete any row. Returns the number of rows removed — 0 means the
	// row didn't exist or wasn't the caller's to delete.
	Delete(ctx context.Context, id, ownerID string) (int64, error)
}
