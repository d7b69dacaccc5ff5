package handlers

import (
	"net/http"
)

type studentRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group int    `json:"group"`
}

func (h *Handler) HandleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.service.FindAllStudents()
	writeRows(w, students, err)
}

func (h *Handler) HandleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.service.SaveStudent(req.ID, req.Name, req.Group); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *Handler) HandleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if !decode(w, r, &req) {
		return
	}

	code, err := h.service.UpdateStudent(r.PathValue("id"), req.Name, req.Group)
	writeResult(w, code, err)
}

func (h *Handler) HandleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	code, err := h.service.DeleteStudent(r.PathValue("id"))
	writeResult(w, code, err)
}
