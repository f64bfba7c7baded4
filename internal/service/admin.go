package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/codespace/internal/apperror"
	"github.com/sakif/codespace/internal/model"
	"github.com/sakif/codespace/internal/repository"
)

// AdminService serves the teacher dashboard: aggregate statistics and the
// per-student views. Authorization is the router's concern — every route
// that reaches this service sits behind the admin guard.
type AdminService struct {
	users       repository.UserRepository
	submissions repository.SubmissionRepository
	logger      *slog.Logger
}

// NewAdminService creates an AdminService.
func NewAdminService(
	users repository.UserRepository,
	submissions repository.SubmissionRepository,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		users:       users,
		submissions: submissions,
		logger:      logger,
	}
}

// DashboardStats returns the headline numbers: non-admin user count,
// total submissions ever, and distinct non-admin users active in the
// last 24 hours.
func (s *AdminService) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	stats, err := s.users.DashboardStats(ctx)
	if err != nil {
		s.logger.Error("failed to compute dashboard stats", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/admin: dashboard stats: %w", err)
	}
	return stats, nil
}

// ListStudents returns every non-admin user with their submission count,
// ordered by last_active descending.
func (s *AdminService) ListStudents(ctx context.Context) ([]model.StudentRow, error) {
	return s.listStudents(ctx, "")
}

// SearchStudents is ListStudents restricted to usernames containing term,
// case-insensitively. An empty term behaves like ListStudents.
func (s *AdminService) SearchStudents(ctx context.Context, term string) ([]model.StudentRow, error) {
	return s.listStudents(ctx, strings.TrimSpace(term))
}

func (s *AdminService) listStudents(ctx context.Context, filter string) ([]model.StudentRow, error) {
	students, err := s.users.ListStudents(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list students",
			slog.String("filter", filter),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/admin: listing students: %w", err)
	}
	return students, nil
}

// StudentCodes returns a given student's submissions, newest first. Used
// by the drill-down view on the teacher dashboard.
func (s *AdminService) StudentCodes(ctx context.Context, studentID string) ([]model.Submission, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, apperror.ValidationFailed("studentId", "student ID is required")
	}

	codes, err := s.submissions.ListByUser(ctx, studentID)
	if err != nil {
		s.logger.Error("failed to list student codes",
			slog.String("studentID", studentID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/admin: listing student codes: %w", err)
	}
	return codes, nil
}
