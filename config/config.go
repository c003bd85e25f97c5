package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TA_SERVICES_INFERENCE_API_KEY.
const EnvPrefix = "TA"

type Service struct {
	URL string `mapstructure:"url"`
}

type Inference struct {
	URL            string `mapstructure:"url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	Provider       string `mapstructure:"provider"` // openai | http
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type Services struct {
	Inference Inference `mapstructure:"inference"`
	ASR       Service   `mapstructure:"asr"`
}

type Features struct {
	IdleGapSeconds      int  `mapstructure:"idle_gap_seconds"`
	MaxChapterSeconds   int  `mapstructure:"max_chapter_seconds"`
	ChapterPromptChars  int  `mapstructure:"chapter_prompt_chars"`
	SummaryPromptChars  int  `mapstructure:"summary_prompt_chars"`
	TopicPromptChars    int  `mapstructure:"topic_prompt_chars"`
	EmotionBatchSize    int  `mapstructure:"emotion_batch_size"`
	EmotionBatchDelayMs int  `mapstructure:"emotion_batch_delay_ms"`
	EmotionEscalation   bool `mapstructure:"emotion_escalation"`
}

type Store struct {
	Driver     string `mapstructure:"driver"` // memory | mongo
	MongoURI   string `mapstructure:"mongo_uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type Root struct {
	Pipeline struct {
		Name      string `mapstructure:"name"`
		Version   string `mapstructure:"version"`
		LogLvl    string `mapstructure:"log_level"`
		LogFormat string `mapstructure:"log_format"`
	} `mapstructure:"pipeline"`
	Services Services `mapstructure:"services"`
	Features Features `mapstructure:"features"`
	Paths    struct {
		Terms   string `mapstructure:"terms"`
		Outputs string `mapstructure:"outputs"`
	} `mapstructure:"paths"`
	Store  Store `mapstructure:"store"`
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "transcript-analyzer")
	v.SetDefault("pipeline.version", "dev")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("pipeline.log_format", "text")

	v.SetDefault("services.inference.url", "")
	v.SetDefault("services.inference.api_key", "")
	v.SetDefault("services.inference.model", "gpt-4o-mini")
	v.SetDefault("services.inference.provider", "openai")
	v.SetDefault("services.inference.timeout_seconds", 120)
	v.SetDefault("services.asr.url", "")

	v.SetDefault("features.idle_gap_seconds", 600)
	v.SetDefault("features.max_chapter_seconds", 0)
	v.SetDefault("features.chapter_prompt_chars", 8000)
	v.SetDefault("features.summary_prompt_chars", 3000)
	v.SetDefault("features.topic_prompt_chars", 4000)
	v.SetDefault("features.emotion_batch_size", 10)
	v.SetDefault("features.emotion_batch_delay_ms", 1000)
	v.SetDefault("features.emotion_escalation", true)

	v.SetDefault("paths.terms", "")
	v.SetDefault("paths.outputs", "outputs")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("store.database", "transcript_analyzer")
	v.SetDefault("store.collection", "analyses")

	v.SetDefault("server.port", 8080)
}

// Load reads configuration from file, or when file is empty from the first of
// config/<CONFIG_ENV>/config.yaml and config.yaml that exists. A missing file
// is not an error: defaults and TA_* environment overrides still apply.
func Load(file string) (*Root, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file == "" {
		file = guess()
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config %s: %w", file, err)
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config decode: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in defaults without reading files or the environment.
func Default() *Root {
	v := viper.New()
	setDefaults(v)
	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: defaults do not decode: %v", err))
	}
	return &cfg
}

func guess() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	for _, p := range []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *Root) validate() error {
	var errs []error
	switch c.Services.Inference.Provider {
	case "openai", "http":
	default:
		errs = append(errs, fmt.Errorf("services.inference.provider: unknown provider %q", c.Services.Inference.Provider))
	}
	switch c.Store.Driver {
	case "memory", "mongo":
	default:
		errs = append(errs, fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver))
	}
	if c.Features.EmotionBatchSize <= 0 {
		errs = append(errs, errors.New("features.emotion_batch_size must be positive"))
	}
	return errors.Join(errs...)
}

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }

func DurMillis(n int) time.Duration { return time.Duration(n) * time.Millisecond }
