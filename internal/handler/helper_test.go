package handler_test

// Shared test scaffolding for the handler package. Handlers are tested
// through a chi router wired exactly like internal/server mounts them —
// same guards, same route patterns — against an in-memory SQLite database
// and a fake feedback analyzer. Only CORS and the process lifecycle are
// left out.

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/codespace/internal/auth"
	"github.com/sakif/codespace/internal/handler"
	"github.com/sakif/codespace/internal/model"
	"github.com/sakif/codespace/internal/repository/sqlite"
	"github.com/sakif/codespace/internal/service"
	"github.com/sakif/codespace/internal/session"
)

// fakeAnalyzer stands in for the Ollama adapter.
type fakeAnalyzer struct {
	feedback string
	err      error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, code string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.feedback, nil
}

// testStack bundles everything a handler test needs.
type testStack struct {
	router   *chi.Mux
	db       *sqlite.DB
	sessions *session.Manager
	auth     *service.AuthService
}

func newTestStack(t *testing.T, analyzer *fakeAnalyzer) *testStack {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sessions := session.NewManager("test-secret-at-least-16-chars!!")
	t.Cleanup(sessions.Close)

	passwords := auth.NewPasswordServiceForTest(4)

	authService := service.NewAuthService(db, sessions, passwords, logger)
	submissionService := service.NewSubmissionService(db, analyzer, logger)
	adminService := service.NewAdminService(db, db, logger)

	authHandler := handler.NewAuthHandler(authService, false, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	adminHandler := handler.NewAdminHandler(adminService, logger)

	r := chi.NewRouter()
	r.Get("/health", handler.HandleHealth)
	r.Post("/login", authHandler.HandleLogin)
	r.Get("/logout", authHandler.HandleLogout)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(sessions))

		r.Get("/check-admin", authHandler.HandleCheckAdmin)
		r.Get("/redirect-after-login", authHandler.HandleRedirectAfterLogin)
		r.Post("/analyze-code", submissionHandler.HandleAnalyzeCode)
		r.Post("/save-code", submissionHandler.HandleSaveCode)
		r.Get("/get-saved-code", submissionHandler.HandleGetSavedCode)
		r.Get("/get-code/{id}", submissionHandler.HandleGetCode)
		r.Delete("/delete-code/{id}", submissionHandler.HandleDeleteCode)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Get("/dashboard-stats", adminHandler.HandleDashboardStats)
			r.Get("/students", adminHandler.HandleStudents)
			r.Get("/search-student", adminHandler.HandleSearchStudent)
			r.Get("/student-codes/{studentId}", adminHandler.HandleStudentCodes)
		})
	})

	return &testStack{router: r, db: db, sessions: sessions, auth: authService}
}

// seedUser creates an account directly in the database with a bcrypt-4
// hash of the given password.
func (s *testStack) seedUser(t *testing.T, username, password string, admin bool) *model.User {
	t.Helper()

	hash, err := auth.NewPasswordServiceForTest(4).Hash(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	user := &model.User{Username: username, PasswordHash: hash, IsAdmin: admin}
	if err := s.db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seeding user %q: %v", username, err)
	}
	return user
}

// sessionCookie issues a session for the user without going through the
// login endpoint.
func (s *testStack) sessionCookie(t *testing.T, user *model.User) *http.Cookie {
	t.Helper()

	token, err := s.sessions.Create(user)
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}
	return &http.Cookie{Name: auth.SessionCookie, Value: token}
}

// do runs a request through the router and returns the recorder.
func (s *testStack) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}
