package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"security-assistant/vetting"
)

type checkRequest struct {
	URL     string                   `json:"url,omitempty"`
	Domain  string                   `json:"domain,omitempty"`
	Signals *vetting.SecuritySignals `json:"signals,omitempty"`
}

// checkDomain scores either a page URL, with signals from the configured
// provider, or a bare domain with caller-supplied signals.
func (s *Server) checkDomain(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var (
		v   vetting.DomainVerdict
		err error
	)
	switch {
	case strings.TrimSpace(req.URL) != "":
		u, perr := vetting.ParseURL(req.URL)
		if perr != nil {
			s.writeFailure(w, r, perr)
			return
		}
		v, err = s.evaluator.Evaluate(r.Context(), u)
	case strings.TrimSpace(req.Domain) != "":
		if req.Signals == nil {
			writeError(w, http.StatusBadRequest, "signals required with domain")
			return
		}
		v, err = s.evaluator.EvaluateSignals(r.Context(), vetting.NormalizeDomain(req.Domain), *req.Signals)
	default:
		writeError(w, http.StatusBadRequest, "url or domain required")
		return
	}
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type navigateRequest struct {
	URL string `json:"url"`
}

type sessionResponse struct {
	Changed bool                   `json:"changed"`
	Verdict *vetting.DomainVerdict `json:"verdict,omitempty"`
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess := s.sessions.Session(chi.URLParam(r, "id"))
	v, changed, err := sess.Observe(r.Context(), req.URL)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	resp := sessionResponse{Changed: changed}
	if !changed {
		v, _ = sess.Current()
	}
	resp.Verdict = &v
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) refreshSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	v, err := sess.Refresh(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Changed: true, Verdict: &v})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	v, ok := sess.Current()
	if !ok {
		writeError(w, http.StatusNotFound, "no page observed")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Close(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
