package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/transcript-analyzer/analysis"
	"github.com/maastricht-university/transcript-analyzer/orchestrator"
	"github.com/maastricht-university/transcript-analyzer/report"
)

var (
	inputPath string
	audioPath string
	format    string
	persist   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a transcript file or an audio file",
	Example: `  transcript-analyzer analyze --input transcript.json
  transcript-analyzer analyze --input - --format markdown < transcript.json
  transcript-analyzer analyze --audio talk.wav --persist`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&inputPath, "input", "i", "", `transcript JSON file ("-" for stdin)`)
	analyzeCmd.Flags().StringVarP(&audioPath, "audio", "a", "", "audio file to transcribe first (needs services.asr.url)")
	analyzeCmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json|yaml|markdown")
	analyzeCmd.Flags().BoolVar(&persist, "persist", false, "also write the run to paths.outputs/<id>/")
	analyzeCmd.MarkFlagsMutuallyExclusive("input", "audio")
	analyzeCmd.MarkFlagsOneRequired("input", "audio")
}

func readTranscript(path string) (*analysis.Transcript, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var tr analysis.Transcript
	if err := json.NewDecoder(r).Decode(&tr); err != nil {
		return nil, analysis.NewError(analysis.InputInvalid, "read transcript", err)
	}
	return &tr, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	p, err := newPipeline()
	if err != nil {
		return err
	}

	var tr *analysis.Transcript
	if audioPath != "" {
		tr, err = p.Transcribe(cmd.Context(), audioPath)
	} else {
		tr, err = readTranscript(inputPath)
	}
	if err != nil {
		return err
	}

	resp := p.Run(cmd.Context(), tr)
	if persist {
		dir, err := orchestrator.Persist(conf.Paths.Outputs, resp)
		if err != nil {
			return err
		}
		log.WithField("dir", dir).Info("run persisted")
	}
	if !resp.Success {
		return errors.New(resp.Error)
	}

	out, err := report.Render(f, resp.Result)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
