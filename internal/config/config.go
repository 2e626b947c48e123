package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port     int
	LogLevel string

	DatabaseURL string

	NatsURL   string
	NatsToken string

	OpenAIEndpoint   string
	OpenAIAPIKey     string
	OpenAIDeployment string

	DevOpsOrg     string
	DevOpsProject string
	DevOpsPAT     string

	APIToken string
}

func Load() Config {
	return Config{
		Port:             envInt("STORYFORGE_PORT", 8760),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		NatsURL:          envStr("NATS_URL", ""),
		NatsToken:        envStr("NATS_TOKEN", ""),
		OpenAIEndpoint:   envStr("AZURE_OPENAI_ENDPOINT", ""),
		OpenAIAPIKey:     envStr("AZURE_OPENAI_API_KEY", ""),
		OpenAIDeployment: envStr("AZURE_OPENAI_DEPLOYMENT", ""),
		DevOpsOrg:        envStr("AZURE_DEVOPS_ORG", ""),
		DevOpsProject:    envStr("AZURE_DEVOPS_PROJECT", ""),
		DevOpsPAT:        envStr("AZURE_DEVOPS_PAT", ""),
		APIToken:         envStr("STORYFORGE_API_TOKEN", ""),
	}
}

// OpenAIConfigured reports whether every value the completion client needs
// is present. Extraction degrades to empty story lists without it.
func (c Config) OpenAIConfigured() bool {
	return c.OpenAIEndpoint != "" && c.OpenAIAPIKey != "" && c.OpenAIDeployment != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
