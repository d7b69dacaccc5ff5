package handlers

import (
	"net/http"
)

type gradeRequest struct {
	StudentID     string  `json:"student_id"`
	AssignmentID  string  `json:"assignment_id"`
	Value         float64 `json:"value"`
	SubmittedWeek int     `json:"submitted_week"`
	Feedback      string  `json:"feedback"`
}

func (h *Handler) HandleListGrades(w http.ResponseWriter, r *http.Request) {
	grades, err := h.service.FindAllGrades()
	writeRows(w, grades, err)
}

// HandleCreateGrade stores a grade and answers with the penalized value.
func (h *Handler) HandleCreateGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.service.SaveGrade(req.StudentID, req.AssignmentID, req.Value, req.SubmittedWeek, req.Feedback); err != nil {
		writeError(w, err)
		return
	}

	grade, err := h.service.FindGrade(req.StudentID, req.AssignmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, grade)
}

func (h *Handler) HandleGradeReport(w http.ResponseWriter, r *http.Request) {
	path, err := h.service.WriteGradeReport(r.PathValue("student"), r.PathValue("assignment"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"report": path})
}
