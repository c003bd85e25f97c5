package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/maastricht-university/transcript-analyzer/analysis"
)

type TransSeg struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}
type ASRResp struct {
	Text     string     `json:"text"`
	Segments []TransSeg `json:"segments"`
	Language string     `json:"language"`
}

// ToTranscript converts the transcription reply into pipeline input.
func (r *ASRResp) ToTranscript() *analysis.Transcript {
	t := &analysis.Transcript{Text: r.Text, Segments: make([]analysis.Segment, 0, len(r.Segments))}
	for _, s := range r.Segments {
		t.Segments = append(t.Segments, analysis.Segment{Start: s.Start, End: s.End, Text: s.Text, Speaker: s.Speaker})
	}
	return t
}

// ASR uploads the audio file at path to the transcription service.
func (h *HTTP) ASR(ctx context.Context, url, path string) (*ASRResp, error) {
	if url == "" {
		return nil, analysis.Errorf(analysis.ResourceUnavailable, "asr", "no transcription service configured")
	}

	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	fd, err := os.Open(path)
	if err != nil {
		return nil, analysis.NewError(analysis.InputInvalid, "asr", err)
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/transcribe", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, analysis.NewError(analysis.ExternalCallFailed, "asr", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, analysis.NewError(analysis.ExternalCallFailed, "asr", statusError("asr", resp))
	}

	var out ASRResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, analysis.NewError(analysis.ParseFailed, "asr", fmt.Errorf("asr decode: %w", err))
	}
	return &out, nil
}
