package scitech

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultAIBaseURL is Gemini's OpenAI-compatible endpoint
	DefaultAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultAIModel   = "gemini-2.5-flash"
)

// Config holds the settings shared by the binaries
type Config struct {
	AIAPIKey   string
	AIBaseURL  string
	AIModel    string
	AITimeout  time.Duration
	DBPath     string
	RedisURL   string
	CacheTTL   time.Duration
	SessionKey string
	Port       string
	LogMode    string
	LLMLogDir  string
}

// LoadConfig reads the environment, after loading .env if one is present
func LoadConfig() Config {
	// .env is optional
	_ = godotenv.Load()

	return Config{
		AIAPIKey:   firstEnv("AI_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY"),
		AIBaseURL:  envString("AI_BASE_URL", DefaultAIBaseURL),
		AIModel:    envString("AI_MODEL", DefaultAIModel),
		AITimeout:  time.Duration(envInt("AI_TIMEOUT_SECONDS", 60)) * time.Second,
		DBPath:     envString("DB_PATH", "./scitech.db"),
		RedisURL:   envString("REDIS_URL", ""),
		CacheTTL:   time.Duration(envInt("CACHE_TTL_HOURS", 24)) * time.Hour,
		SessionKey: envString("SESSION_KEY", ""),
		Port:       envString("PORT", "8180"),
		LogMode:    envString("LOG_MODE", "development"),
		LLMLogDir:  envString("LLM_LOG_DIR", ""),
	}
}

func envString(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		return def
	}
	return i
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}
