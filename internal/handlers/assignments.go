package handlers

import (
	"net/http"
)

type assignmentRequest struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Deadline    int    `json:"deadline"`
	Startline   int    `json:"startline"`
}

type extendRequest struct {
	Weeks int `json:"weeks"`
}

func (h *Handler) HandleListAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.service.FindAllAssignments()
	writeRows(w, assignments, err)
}

func (h *Handler) HandleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.service.SaveAssignment(req.ID, req.Description, req.Deadline, req.Startline); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *Handler) HandleUpdateAssignment(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if !decode(w, r, &req) {
		return
	}

	code, err := h.service.UpdateAssignment(r.PathValue("id"), req.Description, req.Deadline, req.Startline)
	writeResult(w, code, err)
}

func (h *Handler) HandleDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	code, err := h.service.DeleteAssignment(r.PathValue("id"))
	writeResult(w, code, err)
}

// HandleExtendDeadline answers 404 both for a missing assignment and for one whose deadline passed.
func (h *Handler) HandleExtendDeadline(w http.ResponseWriter, r *http.Request) {
	var req extendRequest
	if !decode(w, r, &req) {
		return
	}

	code, err := h.service.ExtendDeadline(r.PathValue("id"), req.Weeks)
	writeResult(w, code, err)
}
