package server

import (
	"net/http"

	"github.com/koustreak/docdeck/internal/console"
	"github.com/koustreak/docdeck/internal/docstore"
	"github.com/koustreak/docdeck/internal/document"
	"github.com/koustreak/docdeck/internal/errs"
)

type connectRequest struct {
	ConnectionString string `json:"connectionString"`
	DBName           string `json:"dbName"`
}

type connectFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type documentRequest struct {
	Document document.Value `json:"document"`
}

type queryResponse struct {
	Success bool           `json:"success"`
	Result  document.Value `json:"result"`
}

type exportResponse struct {
	Success bool                  `json:"success"`
	Export  *console.ExportResult `json:"export"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	err := decodeBody(w, r, &req)
	var res *console.ConnectResult
	if err == nil {
		res, err = s.svc.Connect(r.Context(), req.ConnectionString, req.DBName)
	}
	s.metrics.ObserveConnect(err)

	if err != nil {
		writeJSON(w, errs.HTTPStatus(err), connectFailure{Success: false, Error: errs.Public(err)})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Status(r.Context()))
}

func (s *Server) handleListDatabases(w http.ResponseWriter, r *http.Request) {
	dbs, err := s.svc.ListDatabases(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dbs)
}

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	colls, err := s.svc.ListCollections(r.Context(), param(r, "db"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, colls)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	window := docstore.ParseWindow(q.Get("page"), q.Get("limit"))

	page, err := s.svc.ListDocuments(r.Context(), param(r, "db"), param(r, "col"), window)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleInsertDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.svc.InsertDocument(r.Context(), param(r, "db"), param(r, "col"), req.Document)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReplaceDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.svc.ReplaceDocument(r.Context(), param(r, "db"), param(r, "col"), param(r, "id"), req.Document)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.DeleteDocument(r.Context(), param(r, "db"), param(r, "col"), param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.ExportCollection(r.Context(), param(r, "db"), param(r, "col"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{Success: true, Export: res})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req console.QueryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.svc.ExecuteQuery(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{Success: true, Result: result})
}

func (s *Server) handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "no route for " + r.Method + " " + r.URL.Path})
}

func (s *Server) handleAPIMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method " + r.Method + " not allowed on " + r.URL.Path})
}
