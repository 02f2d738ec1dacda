package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) listDomains(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs, err := s.history.Domains(r.Context(), limit)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"domains": recs})
}

func (s *Server) latestDomain(w http.ResponseWriter, r *http.Request) {
	rec, err := s.history.LatestDomain(r.Context(), chi.URLParam(r, "domain"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) listEmails(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs, err := s.history.Emails(r.Context(), limit)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"emails": recs})
}
