package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/josephgoksu/backlog/internal/section"
	"github.com/josephgoksu/backlog/internal/task"
	"github.com/josephgoksu/backlog/internal/util"
	"github.com/josephgoksu/backlog/models"
	"github.com/josephgoksu/backlog/store"
)

// maxBodyBytes bounds create and edit payloads.
const maxBodyBytes = 1 << 20

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeAPIJSON(w, http.StatusOK, s.info)
}

// handleListTasks accepts status, assignee, label, priority and parent
// query filters.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := task.Filter{
		Status:   q.Get("status"),
		Assignee: q.Get("assignee"),
		Label:    q.Get("label"),
		Priority: q.Get("priority"),
		Parent:   q.Get("parent"),
	}
	tasks, err := s.tasks.ListTasks(r.Context(), filter)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeAPIJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.tasks.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, t)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := s.tasks.CreateTask(r.Context(), req.input())
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeAPIJSON(w, http.StatusCreated, t)
}

func (s *Server) handleEditTask(w http.ResponseWriter, r *http.Request) {
	var req EditTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e := req.edit()
	if e.Empty() {
		writeAPIJSON(w, http.StatusBadRequest, ErrorResponse{Error: "nothing to change"})
		return
	}
	t, err := s.tasks.EditTask(r.Context(), r.PathValue("id"), e)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, t)
}

func (s *Server) handleArchiveTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.tasks.ArchiveTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, t)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.tasks.CompleteTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, t)
}

// handleSequences levels open tasks; ?all=true includes done tasks.
func (s *Server) handleSequences(w http.ResponseWriter, r *http.Request) {
	all := false
	if raw := r.URL.Query().Get("all"); raw != "" {
		var err error
		if all, err = strconv.ParseBool(raw); err != nil {
			writeAPIJSON(w, http.StatusBadRequest, ErrorResponse{Error: "all must be true or false"})
			return
		}
	}
	seqs, err := s.tasks.Sequences(r.Context(), all)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	if seqs == nil {
		seqs = []task.Sequence{}
	}
	writeAPIJSON(w, http.StatusOK, SequencesResponse{Sequences: seqs})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.records.ListDocuments()
	if err != nil {
		writeAPIError(w, err)
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	writeAPIJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.records.GetDocument(r.PathValue("id"))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, doc)
}

func (s *Server) handleListDecisions(w http.ResponseWriter, r *http.Request) {
	decs, err := s.records.ListDecisions()
	if err != nil {
		writeAPIError(w, err)
		return
	}
	if decs == nil {
		decs = []models.Decision{}
	}
	writeAPIJSON(w, http.StatusOK, decs)
}

func (s *Server) handleGetDecision(w http.ResponseWriter, r *http.Request) {
	dec, err := s.records.GetDecision(r.PathValue("id"))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, dec)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeAPIJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrDocumentNotFound),
		errors.Is(err, store.ErrDecisionNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, util.ErrAmbiguousID),
		errors.Is(err, section.ErrCriterionNotFound):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeAPIError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		slog.Error("api request failed", "error", err)
	}
	writeAPIJSON(w, code, ErrorResponse{Error: err.Error()})
}

func writeAPIJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}
