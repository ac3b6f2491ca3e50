package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env               string        `mapstructure:"ENV"`
	Port              string        `mapstructure:"PORT"`
	OrgCSVPath        string        `mapstructure:"ORG_CSV_PATH"`
	PromptPath        string        `mapstructure:"PROMPT_PATH"`
	UploadsDir        string        `mapstructure:"UPLOADS_DIR"`
	StagingDir        string        `mapstructure:"STAGING_DIR"`
	StagedMediaTTL    time.Duration `mapstructure:"STAGED_MEDIA_TTL"`
	AssistantBaseURL  string        `mapstructure:"ASSISTANT_BASE_URL"`
	AssistantModel    string        `mapstructure:"ASSISTANT_MODEL"`
	AssistantAPIKey   string        `mapstructure:"ASSISTANT_API_KEY"`
	AssistantMaxToken int           `mapstructure:"ASSISTANT_MAX_TOKENS"`
	AdminKey          string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed       string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	MaxUploadSizeMB   int64         `mapstructure:"MAX_UPLOAD_MB"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ORG_CSV_PATH", "organizations.csv")
	v.SetDefault("PROMPT_PATH", "prompt.txt")
	v.SetDefault("UPLOADS_DIR", "uploads")
	v.SetDefault("STAGING_DIR", "staging")
	// No variant of the product ever pinned a staged-media lifetime; the reap
	// cutoff stays an operator knob rather than a hidden timer.
	v.SetDefault("STAGED_MEDIA_TTL", "24h")
	v.SetDefault("ASSISTANT_MAX_TOKENS", 1024)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 20)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
