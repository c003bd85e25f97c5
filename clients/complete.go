package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/maastricht-university/transcript-analyzer/inference"
)

// --- Completion (/complete) ---
type CompleteReq struct {
	SystemPrompt string  `json:"system_prompt"`
	UserPrompt   string  `json:"user_prompt"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
}
type CompleteResp struct {
	Text *string `json:"text"`
}

var errNullCompletion = errors.New("completion service returned no text")

// HTTPCompleter is an inference.Completer for a plain completion service that
// takes both prompts and returns {"text": ...}. A null text is a failure.
type HTTPCompleter struct {
	h   *HTTP
	url string
}

func NewHTTPCompleter(h *HTTP, url string) *HTTPCompleter {
	if h == nil {
		h = NewHTTP()
	}
	return &HTTPCompleter{h: h, url: strings.TrimRight(url, "/")}
}

func (c *HTTPCompleter) Complete(ctx context.Context, r inference.Request) (string, error) {
	payload, err := json.Marshal(CompleteReq{
		SystemPrompt: r.System,
		UserPrompt:   r.User,
		Temperature:  r.Temperature,
		MaxTokens:    r.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/complete", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.h.c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError("complete", resp)
	}

	var out CompleteResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("complete decode: %w", err)
	}
	if out.Text == nil {
		return "", errNullCompletion
	}
	return *out.Text, nil
}
