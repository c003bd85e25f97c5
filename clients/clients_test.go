package clients

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maastricht-university/transcript-analyzer/analysis"
	cfg "github.com/maastricht-university/transcript-analyzer/config"
	"github.com/maastricht-university/transcript-analyzer/inference"
)

func TestHTTPCompleter(t *testing.T) {
	var got CompleteReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/complete" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"text": "{\"ok\": true}"}`)
	}))
	defer srv.Close()

	c := NewHTTPCompleter(nil, srv.URL+"/")
	out, err := c.Complete(context.Background(), inference.Request{System: "sys", User: "usr", Temperature: 0.3, MaxTokens: 50})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != `{"ok": true}` {
		t.Errorf("out = %q", out)
	}
	if got.SystemPrompt != "sys" || got.UserPrompt != "usr" || got.MaxTokens != 50 {
		t.Errorf("request = %+v", got)
	}
}

func TestHTTPCompleter_Failures(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) { http.Error(w, "overloaded", http.StatusServiceUnavailable) },
		"null":   func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, `{"text": null}`) },
		"body":   func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, `not json`) },
	}
	for name, h := range tests {
		srv := httptest.NewServer(h)
		_, err := NewHTTPCompleter(nil, srv.URL).Complete(context.Background(), inference.Request{User: "x"})
		srv.Close()
		if err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestOpenAICompleter(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "test-model",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "hello"}}],
  "usage": {"prompt_tokens": 3, "completion_tokens": 1, "total_tokens": 4}
}`)
	}))
	defer srv.Close()

	c, err := NewOpenAICompleter("test-key", srv.URL+"/", "test-model")
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Complete(context.Background(), inference.Request{System: "be brief", User: "hi", MaxTokens: 10})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "hello" {
		t.Errorf("out = %q", out)
	}
	if body["model"] != "test-model" {
		t.Errorf("model = %v", body["model"])
	}
	if msgs, _ := body["messages"].([]any); len(msgs) != 2 {
		t.Errorf("messages = %v", body["messages"])
	}
}

func TestNewCompleter(t *testing.T) {
	c, err := NewCompleter(cfg.Inference{Provider: "openai"})
	if err != nil || c != nil {
		t.Errorf("unconfigured openai: %v %v", c, err)
	}
	c, err = NewCompleter(cfg.Inference{Provider: "http", URL: "http://localhost:1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*HTTPCompleter); !ok {
		t.Errorf("completer = %T", c)
	}
	if _, err := NewCompleter(cfg.Inference{Provider: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestASR(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil || hdr.Filename != "talk.wav" {
			http.Error(w, "bad upload", http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		if string(data) != "RIFF" {
			http.Error(w, "bad content", http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"text":"hi there","language":"en","segments":[
			{"start":0,"end":1,"text":"hi","speaker":"S1"},
			{"start":1,"end":2,"text":"there"}]}`)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "talk.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp, err := NewHTTP().ASR(context.Background(), srv.URL, path)
	if err != nil {
		t.Fatalf("asr: %v", err)
	}
	tr := resp.ToTranscript()
	if len(tr.Segments) != 2 || tr.Segments[0].Speaker != "S1" || tr.Text != "hi there" {
		t.Errorf("transcript = %+v", tr)
	}
}

func TestASR_Errors(t *testing.T) {
	_, err := NewHTTP().ASR(context.Background(), "", "x.wav")
	if !errors.Is(err, analysis.ErrResourceUnavailable) {
		t.Errorf("no url: %v", err)
	}
	_, err = NewHTTP().ASR(context.Background(), "http://localhost:1", filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, analysis.ErrInputInvalid) {
		t.Errorf("missing file: %v", err)
	}
}
