package server

import "net/http"

// registerRoutes sets up all API endpoints
func (s *Server) registerRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/info", s.handleInfo)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PATCH /api/tasks/{id}", s.handleEditTask)
	mux.HandleFunc("POST /api/tasks/{id}/archive", s.handleArchiveTask)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.handleCompleteTask)
	mux.HandleFunc("GET /api/sequences", s.handleSequences)

	mux.HandleFunc("GET /api/docs", s.handleListDocuments)
	mux.HandleFunc("GET /api/docs/{id}", s.handleGetDocument)
	mux.HandleFunc("GET /api/decisions", s.handleListDecisions)
	mux.HandleFunc("GET /api/decisions/{id}", s.handleGetDecision)

	return s.logMiddleware(s.corsMiddleware(mux))
}
