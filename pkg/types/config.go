// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Destination selects where an exporter delivers the report.
type Destination string

const (
	DestinationLocal Destination = "local"
	DestinationEmail Destination = "email"
)

// Format selects the report rendering.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Extension returns the file extension used when the format is written to disk.
func (f Format) Extension() string {
	if f == FormatHTML {
		return "html"
	}
	return "md"
}

// SummaryType selects which parts of each paper's write-up are rendered.
type SummaryType string

const (
	SummaryShort    SummaryType = "short"
	SummaryDetailed SummaryType = "detailed"
	SummaryBoth     SummaryType = "both"
)

// IncludesShort reports whether the round-1 brief summary is rendered.
func (s SummaryType) IncludesShort() bool { return s == SummaryShort || s == SummaryBoth }

// IncludesDetailed reports whether the six narrative sections are rendered.
func (s SummaryType) IncludesDetailed() bool { return s == SummaryDetailed || s == SummaryBoth }

// ExporterConfig configures one delivery of the combined report.
type ExporterConfig struct {
	Destination Destination `json:"destination" yaml:"destination" mapstructure:"destination" validate:"required"`
	Format      Format      `json:"format" yaml:"format" mapstructure:"format" validate:"required"`
	SummaryType SummaryType `json:"summary_type" yaml:"summary_type" mapstructure:"summary_type" validate:"required,oneof=short detailed both"`
}

// Name returns "destination:format", the label used in export statuses.
func (e ExporterConfig) Name() string {
	return string(e.Destination) + ":" + string(e.Format)
}

// UserConfig identifies the report recipient.
type UserConfig struct {
	Name      string           `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	Email     string           `json:"email" yaml:"email" mapstructure:"email" validate:"omitempty,email"`
	Exporters []ExporterConfig `json:"exporters" yaml:"exporters" mapstructure:"exporters" validate:"dive"`
}

// QueryConfig holds the parameters of one pipeline run.
type QueryConfig struct {
	Query       string   `json:"query" yaml:"query" mapstructure:"query" validate:"required"`
	TopK        int      `json:"top_k" yaml:"top_k" mapstructure:"top_k" validate:"gte=1"`
	SearchLimit int      `json:"search_limit" yaml:"search_limit" mapstructure:"search_limit" validate:"gte=1"`
	Categories  []string `json:"categories" yaml:"categories" mapstructure:"categories"`

	// TimeDurationDays sets the window end-N days .. end when From is zero.
	TimeDurationDays int       `json:"time_duration_days" yaml:"time_duration_days" mapstructure:"time_duration_days" validate:"gte=0"`
	From             time.Time `json:"from,omitempty" yaml:"from,omitempty" mapstructure:"from"`
	To               time.Time `json:"to,omitempty" yaml:"to,omitempty" mapstructure:"to"`
}

// Window resolves the publication time window relative to now. An unset end
// is now; an unset start is end minus TimeDurationDays (7 when zero).
func (q QueryConfig) Window(now time.Time) (time.Time, time.Time) {
	to := q.To
	if to.IsZero() {
		to = now
	}
	from := q.From
	if from.IsZero() {
		days := q.TimeDurationDays
		if days <= 0 {
			days = 7
		}
		from = to.AddDate(0, 0, -days)
	}
	return from, to
}

// LLMProviderName selects the language-model backend.
type LLMProviderName string

const (
	ProviderAnthropic LLMProviderName = "anthropic"
	ProviderOpenAI    LLMProviderName = "openai"
	ProviderGemini    LLMProviderName = "gemini"
)

// LLMConfig holds settings for the language-model backend.
type LLMConfig struct {
	Provider   LLMProviderName `json:"provider" yaml:"provider" mapstructure:"provider" validate:"required,oneof=anthropic openai gemini"`
	Model      string          `json:"model" yaml:"model" mapstructure:"model" validate:"required"`
	BaseURL    string          `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url" validate:"omitempty,url"`
	APIKey     string          `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
	MaxRetries int             `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`
	RetryDelay time.Duration   `json:"retry_delay" yaml:"retry_delay" mapstructure:"retry_delay"`
	Timeout    time.Duration   `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ArxivConfig holds settings for the arXiv API client.
type ArxivConfig struct {
	APIBase               string        `json:"api_base" yaml:"api_base" mapstructure:"api_base" validate:"required,url"`
	RequestsPerSecond     float64       `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gt=0"`
	MaxResultsPerCategory int           `json:"max_results_per_category" yaml:"max_results_per_category" mapstructure:"max_results_per_category" validate:"gte=1"`
	Timeout               time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	UserAgent             string        `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// CacheConfig locates the on-disk full-text cache.
type CacheConfig struct {
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir" validate:"required"`
}

// ConverterName selects the PDF-to-text converter.
type ConverterName string

const (
	ConverterPdftotext  ConverterName = "pdftotext"
	ConverterMarkitdown ConverterName = "markitdown"
)

// OutputConfig locates report and run artifacts.
type OutputConfig struct {
	ReportsDir  string `json:"reports_dir" yaml:"reports_dir" mapstructure:"reports_dir" validate:"required"`
	ResultsFile string `json:"results_file,omitempty" yaml:"results_file,omitempty" mapstructure:"results_file"`
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty" mapstructure:"metrics_file"`

	// HistoryFile is the SQLite database delivered papers are recorded in.
	// Empty disables recording.
	HistoryFile string `json:"history_file,omitempty" yaml:"history_file,omitempty" mapstructure:"history_file"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"omitempty,oneof=json console pretty"`
	Output string `json:"output" yaml:"output" mapstructure:"output" validate:"omitempty,oneof=stdout stderr"`
}

// GmailConfig locates the OAuth files used by the email exporter.
type GmailConfig struct {
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file" mapstructure:"credentials_file"`
	TokenFile       string `json:"token_file" yaml:"token_file" mapstructure:"token_file"`
}

// Config is the complete run configuration.
type Config struct {
	User        UserConfig    `json:"user" yaml:"user" mapstructure:"user"`
	Queries     []QueryConfig `json:"queries" yaml:"queries" mapstructure:"queries" validate:"dive"`
	LLM         LLMConfig     `json:"llm" yaml:"llm" mapstructure:"llm"`
	Arxiv       ArxivConfig   `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	Cache       CacheConfig   `json:"cache" yaml:"cache" mapstructure:"cache"`
	Converter   ConverterName `json:"converter" yaml:"converter" mapstructure:"converter" validate:"omitempty,oneof=pdftotext markitdown"`
	Concurrency int           `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency" validate:"gte=0"`
	Output      OutputConfig  `json:"output" yaml:"output" mapstructure:"output"`
	Logging     LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
	Gmail       GmailConfig   `json:"gmail" yaml:"gmail" mapstructure:"gmail"`
}

// NeedsHTMLReformat reports whether any exporter renders detailed sections
// as HTML, which is when the reformatting stage runs.
func (c Config) NeedsHTMLReformat() bool {
	for _, e := range c.User.Exporters {
		if e.Format == FormatHTML && e.SummaryType.IncludesDetailed() {
			return true
		}
	}
	return false
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration's struct constraints. Unknown exporter
// destinations and formats pass here; they are reported per exporter at
// export time.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
