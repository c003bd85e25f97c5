package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/transcript-analyzer/clients"
	cfg "github.com/maastricht-university/transcript-analyzer/config"
	"github.com/maastricht-university/transcript-analyzer/orchestrator"
)

var (
	configFile string
	logLevel   string

	conf *cfg.Root
	log  = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "transcript-analyzer",
	Short: "Topic, terminology, chapter and emotion analysis of speech transcripts",
	Long: `transcript-analyzer turns a time-aligned transcript into a structured analysis:
topic classification, domain term detection, chapters with summaries and
per-segment emotion scoring. Every step that needs the inference backend has
a deterministic fallback, so an analysis always completes for valid input.

Configuration is read from --config, config/$CONFIG_ENV/config.yaml or
config.yaml, and TA_* environment variables override any key, e.g.
TA_SERVICES_INFERENCE_API_KEY.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := cfg.Load(configFile)
		if err != nil {
			return err
		}
		conf = c
		return setupLogging(c)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override pipeline.log_level (debug|info|warn|error)")
	rootCmd.AddCommand(analyzeCmd, serveCmd)
}

func setupLogging(c *cfg.Root) error {
	lvl := c.Pipeline.LogLvl
	if logLevel != "" {
		lvl = logLevel
	}
	level, err := logrus.ParseLevel(lvl)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	if strings.EqualFold(c.Pipeline.LogFormat, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// newPipeline wires the configured inference backend into a pipeline.
func newPipeline() (*orchestrator.Pipeline, error) {
	completer, err := clients.NewCompleter(conf.Services.Inference)
	if err != nil {
		return nil, err
	}
	if completer == nil {
		log.Warn("no inference backend configured, every inference stage will use its fallback")
	}
	return orchestrator.NewPipeline(conf, completer, log), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
