// Package config loads maintdash settings from an optional YAML file and the environment.
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

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultOpenAIModel = "gpt-4o"
	DefaultGeminiModel = "gemini-2.0-flash"
)

type Config struct {
	Database  Database
	LLM       LLM
	Server    Server
	Log       Log
	Generator Generator
}

type Database struct {
	URL          string
	MaxOpenConns int
	Timeout      time.Duration
}

type LLM struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type Server struct {
	Addr         string
	CronSecret   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Log struct {
	Level       string
	Development bool
}

type Generator struct {
	WorkStartHour int
	RowLimit      int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.timeout", 15*time.Second)
	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.timeout", 120*time.Second)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 300*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("generator.work_start_hour", 8)
	v.SetDefault("generator.row_limit", 200)
}

// Load reads maintdash.yaml from path, or from the working directory and
// $HOME/.config/maintdash when path is empty. A missing file is only an error when path was
// given explicitly.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MAINTDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Historical variable names still accepted from older deployments.
	_ = v.BindEnv("database.url", "MAINTDASH_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("server.cron_secret", "MAINTDASH_SERVER_CRON_SECRET", "CRON_SECRET")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("maintdash")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "maintdash"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := Config{
		Database: Database{
			URL:          strings.TrimSpace(v.GetString("database.url")),
			MaxOpenConns: v.GetInt("database.max_open_conns"),
			Timeout:      v.GetDuration("database.timeout"),
		},
		LLM: LLM{
			Provider:    strings.ToLower(strings.TrimSpace(v.GetString("llm.provider"))),
			APIKey:      strings.TrimSpace(v.GetString("llm.api_key")),
			Model:       strings.TrimSpace(v.GetString("llm.model")),
			BaseURL:     strings.TrimRight(v.GetString("llm.base_url"), "/"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
			Timeout:     v.GetDuration("llm.timeout"),
		},
		Server: Server{
			Addr:         v.GetString("server.addr"),
			CronSecret:   strings.TrimSpace(v.GetString("server.cron_secret")),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Log: Log{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
		},
		Generator: Generator{
			WorkStartHour: v.GetInt("generator.work_start_hour"),
			RowLimit:      v.GetInt("generator.row_limit"),
		},
	}
	cfg.LLM.fillProviderDefaults()
	return cfg, nil
}

func (l *LLM) fillProviderDefaults() {
	switch l.Provider {
	case ProviderGemini:
		if l.APIKey == "" {
			l.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		}
		if l.Model == "" {
			l.Model = DefaultGeminiModel
		}
	default:
		if l.APIKey == "" {
			l.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		}
		if l.Model == "" {
			l.Model = DefaultOpenAIModel
		}
	}
}

// Validate checks the values that would otherwise fail late, inside a request.
// A missing database URL or API key is not an error here; commands that need them report it.
func (c Config) Validate() error {
	var problems []string
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		problems = append(problems, fmt.Sprintf("llm.provider %q must be %s or %s", c.LLM.Provider, ProviderOpenAI, ProviderGemini))
	}
	if c.LLM.MaxTokens <= 0 {
		problems = append(problems, "llm.max_tokens must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		problems = append(problems, "llm.temperature must be between 0 and 2")
	}
	if c.LLM.Timeout <= 0 {
		problems = append(problems, "llm.timeout must be positive")
	}
	// A chart request makes two completion calls in a row.
	if c.Server.WriteTimeout > 0 && c.Server.WriteTimeout < 2*c.LLM.Timeout {
		problems = append(problems, "server.write_timeout must be at least twice llm.timeout")
	}
	if c.Database.MaxOpenConns <= 0 {
		problems = append(problems, "database.max_open_conns must be positive")
	}
	if c.Database.Timeout <= 0 {
		problems = append(problems, "database.timeout must be positive")
	}
	if c.Generator.WorkStartHour < 0 || c.Generator.WorkStartHour > 23 {
		problems = append(problems, "generator.work_start_hour must be between 0 and 23")
	}
	if c.Generator.RowLimit <= 0 {
		problems = append(problems, "generator.row_limit must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
