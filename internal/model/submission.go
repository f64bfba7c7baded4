package model

import "time"

// Submission is one unit of student-authored code, optionally carrying
// the feedback the language model generated for it.
//
// WHY AnalysisResult *string (a pointer)?
// The column is nullable: a plain save has no analysis, an analyze+save
// does. With a pointer, nil marshals to the field being omitted entirely
// (`omitempty`), so clients can distinguish "no feedback was generated"
// from "feedback was an empty string".
//
// Submissions are immutable once created — there is no update path, only
// create, read, and delete.
type Submission struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	CodeContent    string    `json:"code_content"`
	AnalysisResult *string   `json:"analysis_result,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// StudentRow is one row of the teacher dashboard's student listing:
// a non-admin user left-joined against their submissions, so students
// with zero submissions still appear with a count of 0.
type StudentRow struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	LastActive      time.Time `json:"last_active"`
	SubmissionCount int       `json:"submission_count"`
}

// DashboardStats is the aggregate block shown at the top of the teacher
// dashboard. ActiveToday counts distinct non-admin users whose
// last_active falls within the 24 hours before the query.
type DashboardStats struct {
	TotalStudents    int `json:"totalStudents"`
	TotalSubmissions int `json:"totalSubmissions"`
	ActiveToday      int `json:"activeToday"`
}
