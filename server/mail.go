package server

import (
	"net/http"
	"strings"
	"time"

	"security-assistant/mail"
)

type classifyRequest struct {
	Subject string `json:"subject"`
}

type classifyResponse struct {
	Subject   string    `json:"subject"`
	IsSpam    bool      `json:"is_spam"`
	Matches   []string  `json:"matches"`
	Badge     string    `json:"badge"`
	Timestamp time.Time `json:"timestamp"`
}

func newClassifyResponse(r mail.Result) classifyResponse {
	matches := r.Matches
	if matches == nil {
		matches = []string{}
	}
	return classifyResponse{
		Subject:   r.Subject,
		IsSpam:    r.IsSpam,
		Matches:   matches,
		Badge:     mail.Badge(r.IsSpam),
		Timestamp: r.Timestamp,
	}
}

func (s *Server) classifyMail(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Subject) == "" {
		writeError(w, http.StatusBadRequest, "subject required")
		return
	}
	res, _, err := s.mail.Process(r.Context(), mail.Message{Subject: req.Subject})
	if err != nil {
		s.logger.Warn("recording classification failed", "error", err)
	}
	writeJSON(w, http.StatusOK, newClassifyResponse(res))
}

type messagesRequest struct {
	Messages []mail.Message `json:"messages"`
}

type messagesResponse struct {
	Results []messageResult `json:"results"`
}

type messageResult struct {
	MessageID string `json:"message_id,omitempty"`
	classifyResponse
}

// processMessages classifies a mailbox page. Messages seen before and
// messages with empty subjects are left out of the response.
func (s *Server) processMessages(w http.ResponseWriter, r *http.Request) {
	var req messagesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	results, err := s.mail.ProcessAll(r.Context(), req.Messages)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	out := messagesResponse{Results: make([]messageResult, 0, len(results))}
	for _, res := range results {
		out.Results = append(out.Results, messageResult{MessageID: res.MessageID, classifyResponse: newClassifyResponse(res)})
	}
	writeJSON(w, http.StatusOK, out)
}
