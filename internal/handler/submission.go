package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/codespace/internal/auth"
	"github.com/sakif/codespace/internal/model"
	"github.com/sakif/codespace/internal/service"
)

// SubmissionHandler serves the student-facing code endpoints. Every route
// here sits behind the authenticated guard, so the identity is always
// present in the request context.
type SubmissionHandler struct {
	submissions *service.SubmissionService
	logger      *slog.Logger
}

// NewSubmissionHandler creates a SubmissionHandler.
func NewSubmissionHandler(submissions *service.SubmissionService, logger *slog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		logger:      logger,
	}
}

type codeRequest struct {
	Code string `json:"code"`
}

type feedbackResponse struct {
	Feedback string `json:"feedback"`
}

// HandleAnalyzeCode sends the code for LLM review and saves code plus
// feedback together.
//
// HTTP: POST /analyze-code
// BODY: {"code":"print(1)"}
//
// If the feedback service fails or times out, nothing is saved and the
// client gets a 500 with a generic message.
func (h *SubmissionHandler) HandleAnalyzeCode(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var req codeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid analyze-code JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	submission, err := h.submissions.AnalyzeAndSave(r.Context(), identity.UserID, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, feedbackResponse{Feedback: *submission.AnalysisResult})
}

type saveCodeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HandleSaveCode persists the code without analysis.
//
// HTTP: POST /save-code
// BODY: {"code":"print(1)"}
func (h *SubmissionHandler) HandleSaveCode(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var req codeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid save-code JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	if _, err := h.submissions.Save(r.Context(), identity.UserID, req.Code); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, saveCodeResponse{
		Success: true,
		Message: "Code saved successfully",
	})
}

type codesResponse struct {
	Success bool               `json:"success"`
	Codes   []model.Submission `json:"codes"`
}

// HandleGetSavedCode lists the caller's own submissions, newest first.
//
// HTTP: GET /get-saved-code
func (h *SubmissionHandler) HandleGetSavedCode(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	codes, err := h.submissions.ListForUser(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, codesResponse{Success: true, Codes: codes})
}

type codeResponse struct {
	Success bool              `json:"success"`
	Code    *model.Submission `json:"code"`
}

// HandleGetCode returns a single submission.
//
// HTTP: GET /get-code/{id}
//
// Visible to the owner and to admins; anyone else gets a 404, never a
// 403 — the response must not confirm the id exists.
func (h *SubmissionHandler) HandleGetCode(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	id := chi.URLParam(r, "id")

	submission, err := h.submissions.Get(r.Context(), id, identity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, codeResponse{Success: true, Code: submission})
}

// HandleDeleteCode deletes a submission.
//
// HTTP: DELETE /delete-code/{id}
//
// Owners delete their own, admins delete any; everything else — including
// an id that doesn't exist — is a 403.
func (h *SubmissionHandler) HandleDeleteCode(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.submissions.Delete(r.Context(), id, identity); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
