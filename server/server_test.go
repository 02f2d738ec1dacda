package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"security-assistant/history"
	"security-assistant/mail"
	"security-assistant/metrics"
	"security-assistant/monitor"
	"security-assistant/vetting"
)

var fixedNow = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*httptest.Server, history.Store) {
	t.Helper()
	hist := history.NewMemoryStore(history.DefaultLimit)
	m := metrics.New()
	clock := func() time.Time { return fixedNow }

	provider := &vetting.StaticProvider{
		ByHost: map[string]vetting.SecuritySignals{
			"secure.example": {HasHTTPS: true, HasHSTS: true, HasCSP: true, HasXFrameOptions: true, HasXXSSProtection: true},
		},
		Default: vetting.SecuritySignals{HasHTTPS: true, HasHSTS: true},
	}
	ev := monitor.NewEvaluator(provider, vetting.NewDomainSet(vetting.DefaultMaliciousDomains...), nil,
		monitor.WithScorer(vetting.NewSecurityScorer(vetting.WithClock(clock))),
		monitor.WithRecorder(hist),
		monitor.WithObserver(m),
	)
	mailMon := mail.NewMonitor(mail.DefaultLexicon, nil,
		mail.WithRecorder(hist), mail.WithObserver(m), mail.WithClock(clock))

	srv := httptest.NewServer(New(ev, mailMon, hist, m, nil).Router())
	t.Cleanup(srv.Close)
	return srv, hist
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv, _ := newTestServer(t)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestCheckDomain_URL(t *testing.T) {
	srv, hist := newTestServer(t)
	resp, body := do(t, http.MethodPost, srv.URL+"/v1/domains/check", map[string]string{"url": "https://secure.example/login"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var v map[string]any
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, "secure.example", v["domain"])
	assert.Equal(t, "safe", v["status"])
	assert.Equal(t, 100.0, v["score"])
	assert.Len(t, v["reasons"], 5)

	recs, err := hist.Domains(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "secure.example", recs[0].Domain)
}

func TestCheckDomain_IPv6URL(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := do(t, http.MethodPost, srv.URL+"/v1/domains/check", map[string]string{"url": "http://[::1]:8080/"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var v vetting.DomainVerdict
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, "::1", v.Domain)
	assert.Equal(t, 50, v.Score)
}

func TestCheckDomain_WithSignals(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := do(t, http.MethodPost, srv.URL+"/v1/domains/check", map[string]any{
		"domain":  "Example.com",
		"signals": map[string]bool{"has_https": true, "has_hsts": true, "has_csp": true},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var v vetting.DomainVerdict
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, "example.com", v.Domain)
	assert.Equal(t, 70, v.Score)
	assert.Equal(t, vetting.StatusSuspicious, v.Status)
}

func TestCheckDomain_Blocked(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := do(t, http.MethodPost, srv.URL+"/v1/domains/check", map[string]string{"url": "https://malware-distribution.net"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var v vetting.DomainVerdict
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, vetting.StatusUnsafe, v.Status)
	assert.Equal(t, []string{vetting.ReasonKnownMalicious}, v.Reasons)
}

func TestCheckDomain_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t)
	tests := []struct {
		name string
		body any
	}{
		{"empty body", map[string]string{}},
		{"domain without signals", map[string]string{"domain": "example.com"}},
		{"url without host", map[string]string{"url": "just-text"}},
		{"not json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, srv.URL+"/v1/domains/check", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, string(body), `"error"`)
		})
	}
}

func TestSessions_NavigateOnlyChangesOnNewHost(t *testing.T) {
	srv, hist := newTestServer(t)
	url := srv.URL + "/v1/sessions/tab-1/navigate"

	var first sessionResponse
	resp, body := do(t, http.MethodPost, url, map[string]string{"url": "https://secure.example/a"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &first))
	assert.True(t, first.Changed)

	var second sessionResponse
	_, body = do(t, http.MethodPost, url, map[string]string{"url": "https://secure.example/b"})
	require.NoError(t, json.Unmarshal(body, &second))
	assert.False(t, second.Changed)
	require.NotNil(t, second.Verdict)
	assert.Equal(t, "secure.example", second.Verdict.Domain)

	recs, err := hist.Domains(t.Context(), 0)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/sessions/tab-1/refresh", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, http.MethodGet, srv.URL+"/v1/sessions/tab-1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "secure.example")

	resp, _ = do(t, http.MethodDelete, srv.URL+"/v1/sessions/tab-1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/v1/sessions/tab-1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClassifyMail(t *testing.T) {
	srv, hist := newTestServer(t)
	resp, body := do(t, http.MethodPost, srv.URL+"/v1/mail/classify", map[string]string{"subject": "URGENT: You won a free cruise"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var got classifyResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.True(t, got.IsSpam)
	assert.Equal(t, "SPAM", got.Badge)
	assert.ElementsMatch(t, []string{"urgent", "you won", "free"}, got.Matches)
	assert.Equal(t, fixedNow, got.Timestamp)

	resp, body = do(t, http.MethodPost, srv.URL+"/v1/mail/classify", map[string]string{"subject": "Team lunch"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.False(t, got.IsSpam)
	assert.Equal(t, "SAFE", got.Badge)
	assert.Equal(t, []string{}, got.Matches)

	emails, err := hist.Emails(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, emails, 2)
	assert.Equal(t, "Team lunch", emails[0].Subject)

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/mail/classify", map[string]string{"subject": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProcessMessages_SkipsSeenIDs(t *testing.T) {
	srv, _ := newTestServer(t)
	payload := map[string]any{"messages": []mail.Message{
		{ID: "1", Subject: "Free PayPal bonus"},
		{ID: "2", Subject: "Quarterly report"},
		{ID: "3", Subject: ""},
	}}

	var got messagesResponse
	resp, body := do(t, http.MethodPost, srv.URL+"/v1/mail/messages", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Results, 2)
	assert.Equal(t, "1", got.Results[0].MessageID)
	assert.True(t, got.Results[0].IsSpam)
	assert.Equal(t, "2", got.Results[1].MessageID)

	_, body = do(t, http.MethodPost, srv.URL+"/v1/mail/messages", payload)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Empty(t, got.Results)
}

func TestHistoryEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, u := range []string{"https://a.example", "https://b.example", "https://c.example"} {
		resp, _ := do(t, http.MethodPost, srv.URL+"/v1/domains/check", map[string]string{"url": u})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	var list struct {
		Domains []history.DomainRecord `json:"domains"`
	}
	resp, body := do(t, http.MethodGet, srv.URL+"/v1/history/domains?limit=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Domains, 2)
	assert.Equal(t, "c.example", list.Domains[0].Domain)
	assert.NotEmpty(t, list.Domains[0].ID)

	var rec history.DomainRecord
	resp, body = do(t, http.MethodGet, srv.URL+"/v1/history/domains/b.example", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.Equal(t, 50, rec.Score)

	resp, _ = do(t, http.MethodGet, srv.URL+"/v1/history/domains/unknown.example", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/v1/history/domains?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, http.MethodGet, srv.URL+"/v1/history/emails", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"emails":[]}`, string(body))
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, http.MethodPost, srv.URL+"/v1/mail/classify", map[string]string{"subject": "Click here for free money"})

	resp, body := do(t, http.MethodGet, srv.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `security_assistant_mail_classifications_total{result="spam"} 1`)
}
