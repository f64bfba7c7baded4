package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/codespace/internal/apperror"
	"github.com/sakif/codespace/internal/feedback"
	"github.com/sakif/codespace/internal/model"
	"github.com/sakif/codespace/internal/repository"
	"github.com/sakif/codespace/internal/session"
)

// MaxCodeLength caps submitted code at ~100KB — enough for any classroom
// exercise, small enough to keep LLM prompts and DB rows sane.
const MaxCodeLength = 100000

// SubmissionService handles saving, analyzing, listing, and deleting
// code submissions.
type SubmissionService struct {
	submissions repository.SubmissionRepository
	analyzer    feedback.Analyzer
	logger      *slog.Logger
}

// NewSubmissionService creates a SubmissionService.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	analyzer feedback.Analyzer,
	logger *slog.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		analyzer:    analyzer,
		logger:      logger,
	}
}

// validateCode applies the shared input rules for Save and AnalyzeAndSave.
func validateCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return apperror.ValidationFailed("code", "code must not be empty")
	}
	if len(code) > MaxCodeLength {
		return apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}
	return nil
}

// Save persists a submission without feedback.
func (s *SubmissionService) Save(ctx context.Context, userID, code string) (*model.Submission, error) {
	if err := validateCode(code); err != nil {
		return nil, err
	}

	submission := &model.Submission{
		UserID:      userID,
		CodeContent: code,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		s.logger.Error("failed to save submission",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/submission: saving: %w", err)
	}

	s.logger.Info("submission saved",
		slog.String("id", submission.ID),
		slog.String("userID", userID),
	)

	return submission, nil
}

// AnalyzeAndSave sends the code to the feedback service and, only if that
// succeeds, persists code and feedback together in a single insert.
//
// ALL-OR-NOTHING:
// The write is deferred until after the external call, so a failed or
// timed-out analysis leaves no submission behind. No transaction is
// needed — the insert itself is one atomic statement. The analyzer call
// holds no lock on anything while it is in flight.
func (s *SubmissionService) AnalyzeAndSave(ctx context.Context, userID, code string) (*model.Submission, error) {
	if err := validateCode(code); err != nil {
		return nil, err
	}

	feedbackText, err := s.analyzer.Analyze(ctx, code)
	if err != nil {
		// Already an Upstream apperror with a client-safe message.
		return nil, err
	}

	submission := &model.Submission{
		UserID:         userID,
		CodeContent:    code,
		AnalysisResult: &feedbackText,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		s.logger.Error("failed to save analyzed submission",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/submission: saving analysis: %w", err)
	}

	s.logger.Info("submission analyzed and saved",
		slog.String("id", submission.ID),
		slog.String("userID", userID),
	)

	return submission, nil
}

// ListForUser returns the user's own submissions, newest first.
func (s *SubmissionService) ListForUser(ctx context.Context, userID string) ([]model.Submission, error) {
	submissions, err := s.submissions.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list submissions",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/submission: listing: %w", err)
	}
	return submissions, nil
}

// Get returns a single submission, visible to its owner and to admins.
//
// Everyone else gets NotFound, not Forbidden: answering 403 would confirm
// to a non-owner that the id exists.
func (s *SubmissionService) Get(ctx context.Context, id string, requester session.Identity) (*model.Submission, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "code ID is required")
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !requester.IsAdmin && submission.UserID != requester.UserID {
		return nil, apperror.NotFound("code", id)
	}

	return submission, nil
}

// Delete removes a submission. Owners delete their own rows, admins
// delete anything. A delete that touches zero rows — wrong owner or
// nonexistent id alike — comes back Forbidden, matching the scoped-DELETE
// semantics of the storage layer.
func (s *SubmissionService) Delete(ctx context.Context, id string, requester session.Identity) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "code ID is required")
	}

	ownerScope := requester.UserID
	if requester.IsAdmin {
		ownerScope = "" // unscoped: admins may delete any row
	}

	affected, err := s.submissions.Delete(ctx, id, ownerScope)
	if err != nil {
		s.logger.Error("failed to delete submission",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/submission: deleting: %w", err)
	}
	if affected == 0 {
		return apperror.Forbidden("Not authorized to delete this code")
	}

	s.logger.Info("submission deleted",
		slog.String("id", id),
		slog.String("by", requester.UserID),
	)

	return nil
}
