package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/codespace/internal/model"
	"github.com/sakif/codespace/internal/service"
)

// AdminHandler serves the teacher dashboard. All routes are mounted
// behind both guards (authenticated + admin).
type AdminHandler struct {
	admin  *service.AdminService
	logger *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(admin *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		logger: logger,
	}
}

// HandleDashboardStats returns the headline aggregates.
//
// HTTP: GET /admin/dashboard-stats
// RESPONSE: {"totalStudents":3,"totalSubmissions":5,"activeToday":1}
func (h *AdminHandler) HandleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.DashboardStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

type studentsResponse struct {
	Success  bool               `json:"success"`
	Students []model.StudentRow `json:"students"`
}

// HandleStudents lists all students with their submission counts.
//
// HTTP: GET /admin/students
func (h *AdminHandler) HandleStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.admin.ListStudents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, studentsResponse{Success: true, Students: students})
}

// HandleSearchStudent is HandleStudents filtered by a case-insensitive
// username substring.
//
// HTTP: GET /admin/search-student?term=ali
func (h *AdminHandler) HandleSearchStudent(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")

	students, err := h.admin.SearchStudents(r.Context(), term)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, studentsResponse{Success: true, Students: students})
}

// HandleStudentCodes returns one student's submissions, newest first.
//
// HTTP: GET /admin/student-codes/{studentId}
func (h *AdminHandler) HandleStudentCodes(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentId")

	codes, err := h.admin.StudentCodes(r.Context(), studentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, codesResponse{Success: true, Codes: codes})
}
