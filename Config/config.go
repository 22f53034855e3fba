package Config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

const (
	BackendGemini    = "gemini"
	BackendAnthropic = "anthropic"

	defaultGenAiModel     = "gemini-3-pro-preview"
	defaultAnthropicModel = "claude-sonnet-4-20250514"
)

// Config is the process-wide configuration snapshot. It is read once in
// main and passed into every constructor; nothing else reads the
// environment.
type Config struct {
	SlackBotToken      string
	SlackSigningSecret string

	SummarizerBackend string
	GeminiAPIKey      string
	GenAiModel        string
	AnthropicAPIKey   string
	AnthropicModel    string

	DefaultChannel string
	DigestSchedule string
	ListenPort     string
	Environment    string
}

// MissingVarError reports one required environment variable that was not
// set at startup.
type MissingVarError struct {
	Name string
}

func (e *MissingVarError) Error() string {
	return fmt.Sprintf("required environment variable %s is not set", e.Name)
}

// Load reads the .env file if one is present and snapshots the
// environment into a Config.
func Load() Config {
	if dotenvLoadError := godotenv.Load(); dotenvLoadError != nil {
		log.Printf("Config:Load#No .env file loaded: %s", dotenvLoadError.Error())
	}

	cfg := Config{
		SlackBotToken:      os.Getenv("SLACK_BOT_TOKEN"),
		SlackSigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),
		SummarizerBackend:  os.Getenv("SUMMARIZER_BACKEND"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GenAiModel:         os.Getenv("GENAI_MODEL"),
		AnthropicAPIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:     os.Getenv("ANTHROPIC_MODEL"),
		DefaultChannel:     os.Getenv("DEFAULT_CHANNEL"),
		DigestSchedule:     os.Getenv("DIGEST_SCHEDULE"),
		ListenPort:         os.Getenv("PORT"),
		Environment:        os.Getenv("APP_ENV"),
	}

	if cfg.SummarizerBackend == "" {
		cfg.SummarizerBackend = BackendGemini
	}
	if cfg.GenAiModel == "" {
		cfg.GenAiModel = defaultGenAiModel
	}
	if cfg.AnthropicModel == "" {
		cfg.AnthropicModel = defaultAnthropicModel
	}
	if cfg.ListenPort == "" {
		cfg.ListenPort = "8080"
	}

	return cfg
}

// Validate returns one MissingVarError per absent required credential.
// The caller decides whether that is fatal; outside production the bot
// keeps running so the gap is visible without crashing.
func (c Config) Validate() []error {
	var missing []error

	if c.SlackBotToken == "" {
		missing = append(missing, &MissingVarError{Name: "SLACK_BOT_TOKEN"})
	}
	if c.SlackSigningSecret == "" {
		missing = append(missing, &MissingVarError{Name: "SLACK_SIGNING_SECRET"})
	}

	switch c.SummarizerBackend {
	case BackendAnthropic:
		if c.AnthropicAPIKey == "" {
			missing = append(missing, &MissingVarError{Name: "ANTHROPIC_API_KEY"})
		}
	default:
		if c.GeminiAPIKey == "" {
			missing = append(missing, &MissingVarError{Name: "GEMINI_API_KEY"})
		}
	}

	return missing
}

// IsProduction reports whether missing credentials should abort startup.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
