package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/codespace/internal/apperror"
	"github.com/sakif/codespace/internal/model"
)

func createTestSubmission(t *testing.T, db *DB, userID, code string, analysis *string) *model.Submission {
	t.Helper()
	sub := &model.Submission{
		UserID:         userID,
		CodeContent:    code,
		AnalysisResult: analysis,
	}
	if err := db.Create(context.Background(), sub); err != nil {
		t.Fatalf("failed to create test submission: %v", err)
	}
	return sub
}

func TestSubmissionCreate_WithoutAnalysis(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice", false)

	sub := createTestSubmission(t, db, user.ID, "print(1)", nil)

	if sub.ID == "" {
		t.Error("Create() did not set submission.ID")
	}
	if sub.CreatedAt.IsZero() {
		t.Error("Create() did not set submission.CreatedAt")
	}

	found, err := db.GetByID(context.Background(), sub.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.CodeContent != "print(1)" {
		t.Errorf("CodeContent = %q, want %q", found.CodeContent, "print(1)")
	}
	if found.AnalysisResult != nil {
		t.Errorf("AnalysisResult = %v, want nil", *found.AnalysisResult)
	}
}

func TestSubmissionCreate_WithAnalysis(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice", false)

	feedback := "Looks good, but consider naming your variables."
	sub := createTestSubmission(t, db, user.ID, "x=1", &feedback)

	found, err := db.GetByID(context.Background(), sub.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.AnalysisResult == nil {
		t.Fatal("AnalysisResult = nil, want feedback text")
	}
	if *found.AnalysisResult != feedback {
		t.Errorf("AnalysisResult = %q, want %q", *found.AnalysisResult, feedback)
	}
}

func TestSubmissionCreate_UnknownUser(t *testing.T) {
	db := newTestDB(t)

	// Foreign keys are ON: a submission must reference an existing user.
	sub := &model.Submission{UserID: "no-such-user", CodeContent: "x"}
	if err := db.Create(context.Background(), sub); err == nil {
		t.Fatal("Create() should fail for a nonexistent user_id")
	}
}

func TestSubmissionGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestListByUser_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice", false)
	other := createTestUser(t, db, "bob", false)

	first := createTestSubmission(t, db, user.ID, "first", nil)
	time.Sleep(5 * time.Millisecond)
	second := createTestSubmission(t, db, user.ID, "second", nil)
	createTestSubmission(t, db, other.ID, "someone else's", nil)

	subs, err := db.ListByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}

	if len(subs) != 2 {
		t.Fatalf("len(subs) = %d, want 2", len(subs))
	}
	if subs[0].ID != second.ID {
		t.Errorf("subs[0].ID = %q, want newest %q", subs[0].ID, second.ID)
	}
	if subs[1].ID != first.ID {
		t.Errorf("subs[1].ID = %q, want oldest %q", subs[1].ID, first.ID)
	}
}

func TestListByUser_Empty(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice", false)

	subs, err := db.ListByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("len(subs) = %d, want 0", len(subs))
	}
}

func TestSubmissionDelete_OwnerScoped(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice", false)
	bob := createTestUser(t, db, "bob", false)

	sub := createTestSubmission(t, db, alice.ID, "print(1)", nil)

	// Scoped to the wrong owner: nothing is deleted.
	affected, err := db.Delete(ctx, sub.ID, bob.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if affected != 0 {
		t.Errorf("affected = %d, want 0 for non-owner", affected)
	}

	// Scoped to the actual owner: one row gone.
	affected, err = db.Delete(ctx, sub.ID, alice.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if affected != 1 {
		t.Errorf("affected = %d, want 1 for owner", affected)
	}

	// Deleting again is a clean zero, not an error.
	affected, err = db.Delete(ctx, sub.ID, alice.ID)
	if err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if affected != 0 {
		t.Errorf("affected = %d, want 0 on repeat delete", affected)
	}
}

func TestSubmissionDelete_AdminUnscoped(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice", false)

	sub := createTestSubmission(t, db, alice.ID, "print(1)", nil)

	// ownerID "" is the admin path: any row may be deleted.
	affected, err := db.Delete(ctx, sub.ID, "")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if affected != 1 {
		t.Errorf("affected = %d, want 1", affected)
	}
}
