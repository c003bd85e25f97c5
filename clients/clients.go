// Package clients holds the concrete collaborators of the pipeline: the
// inference backends behind inference.Completer and the transcription service.
package clients

import (
	"fmt"
	"io"
	"net/http"
	"time"

	cfg "github.com/maastricht-university/transcript-analyzer/config"
	"github.com/maastricht-university/transcript-analyzer/inference"
)

type HTTP struct{ c *http.Client }

func NewHTTP() *HTTP { return &HTTP{c: &http.Client{Timeout: 60 * time.Second}} }

// NewHTTPWithTimeout builds an HTTP client whose requests are bounded by d.
func NewHTTPWithTimeout(d time.Duration) *HTTP {
	if d <= 0 {
		return NewHTTP()
	}
	return &HTTP{c: &http.Client{Timeout: d}}
}

// statusError turns a non-200 reply into an error carrying the body.
func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return fmt.Errorf("%s %s: %s", op, resp.Status, string(body))
}

// NewCompleter builds the inference backend described by c. It returns a nil
// completer and no error when no backend is configured, which makes every
// inference stage take its fallback.
func NewCompleter(c cfg.Inference) (inference.Completer, error) {
	switch c.Provider {
	case "http":
		if c.URL == "" {
			return nil, nil
		}
		return NewHTTPCompleter(NewHTTPWithTimeout(cfg.DurSeconds(c.TimeoutSeconds)), c.URL), nil
	case "openai", "":
		if c.APIKey == "" {
			return nil, nil
		}
		oc, err := NewOpenAICompleter(c.APIKey, c.URL, c.Model)
		if err != nil {
			return nil, err
		}
		return oc, nil
	default:
		return nil, fmt.Errorf("unknown inference provider %q", c.Provider)
	}
}
