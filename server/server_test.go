package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/maastricht-university/transcript-analyzer/analysis"
	cfg "github.com/maastricht-university/transcript-analyzer/config"
	"github.com/maastricht-university/transcript-analyzer/orchestrator"
	"github.com/maastricht-university/transcript-analyzer/store"
)

func setupServer(t *testing.T) (*Server, *store.Memory) {
	t.Helper()
	log, _ := test.NewNullLogger()
	conf := cfg.Default()
	conf.Features.EmotionBatchDelayMs = 0
	ms := store.NewMemory()
	return NewServer(orchestrator.NewPipeline(conf, nil, log), ms, 8080, log), ms
}

func do(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

const transcriptBody = `{
  "text": "",
  "segments": [
    {"start": 0, "end": 4, "text": "今天我们讨论人工智能"},
    {"start": 4, "end": 9, "text": "AI is changing everything!"}
  ],
  "speakers": ["host", "guest"]
}`

func TestHealthEndpoint(t *testing.T) {
	srv, _ := setupServer(t)
	w := do(srv, "GET", "/api/v1/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	json.NewDecoder(w.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestAnalyzeAndFetch(t *testing.T) {
	srv, ms := setupServer(t)

	w := do(srv, "POST", "/api/v1/analyze", transcriptBody)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp orchestrator.Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Result == nil || resp.Result.Statistics.SpeakerCount != 2 {
		t.Fatalf("response = %+v", resp)
	}

	if _, err := ms.Get(context.Background(), resp.ID); err != nil {
		t.Fatalf("result not stored: %v", err)
	}

	w = do(srv, "GET", "/api/v1/analyses/"+resp.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}
	var res analysis.AnalysisResult
	json.NewDecoder(w.Body).Decode(&res)
	if res.ID != resp.ID {
		t.Errorf("id = %q", res.ID)
	}

	w = do(srv, "GET", "/api/v1/analyses/"+resp.ID+"/report", "")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/markdown") {
		t.Fatalf("report: %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "## Topic Classification") {
		t.Errorf("report body:\n%s", w.Body.String())
	}

	w = do(srv, "GET", "/api/v1/analyses/"+resp.ID+"/report?format=yaml", "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/yaml" {
		t.Errorf("yaml report: %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	w = do(srv, "GET", "/api/v1/analyses?limit=5", "")
	var list []analysis.AnalysisResult
	json.NewDecoder(w.Body).Decode(&list)
	if w.Code != http.StatusOK || len(list) != 1 {
		t.Errorf("list: %d, %d items", w.Code, len(list))
	}
}

func TestAnalyze_InvalidInput(t *testing.T) {
	srv, ms := setupServer(t)

	for name, body := range map[string]string{
		"no segments": `{"text": "hello", "segments": []}`,
		"not json":    `hello`,
	} {
		w := do(srv, "POST", "/api/v1/analyze", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, w.Code)
		}
		var resp orchestrator.Response
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Success || resp.Error == "" || resp.Result != nil {
			t.Errorf("%s: response = %+v", name, resp)
		}
	}
	if list, _ := ms.List(context.Background(), 0); len(list) != 0 {
		t.Errorf("failed runs must not be stored, got %d", len(list))
	}
}

func TestGetAnalysis_NotFound(t *testing.T) {
	srv, _ := setupServer(t)
	for _, path := range []string{"/api/v1/analyses/nope", "/api/v1/analyses/nope/report"} {
		if w := do(srv, "GET", path, ""); w.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, w.Code)
		}
	}
}
