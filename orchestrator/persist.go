package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maastricht-university/transcript-analyzer/report"
)

func mkRunDir(outputsRoot, id string) (string, error) {
	dir := filepath.Join(outputsRoot, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Persist writes resp to <outputsRoot>/<id>/analysis.json and, for a
// successful run, the Markdown report next to it. It returns the run directory.
func Persist(outputsRoot string, resp *Response) (string, error) {
	if resp == nil || resp.ID == "" {
		return "", fmt.Errorf("persist: response has no id")
	}
	dir, err := mkRunDir(outputsRoot, resp.ID)
	if err != nil {
		return "", fmt.Errorf("persist: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, "analysis.json"), resp); err != nil {
		return "", fmt.Errorf("persist analysis: %w", err)
	}
	if resp.Result != nil {
		md := report.Markdown(resp.Result)
		if err := os.WriteFile(filepath.Join(dir, "report.md"), []byte(md), 0o644); err != nil {
			return "", fmt.Errorf("persist report: %w", err)
		}
	}
	return dir, nil
}
