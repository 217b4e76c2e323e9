package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	App     AppConfig
	LLM     LLMConfig
	Sources SourcesConfig
	Places  PlacesConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins []string
}

type LLMConfig struct {
	Provider    string // "gemini" or "fake"
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int32
	Timeout     time.Duration
}

type SourcesConfig struct {
	GitHubToken    string
	GitHubBaseURL  string
	SpotifyBaseURL string
	LetterboxdURL  string
	FetchTimeout   time.Duration
	BrowserEnabled bool
	BrowserURL     string // remote DevTools endpoint; empty launches a local browser
	BrowserTimeout time.Duration
	CacheSize      int
	CacheTTL       time.Duration
}

type PlacesConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		zap.L().Info("no .env file found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("PORT", "8080"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8080"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "starstruck.log"),
			CorsAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "gemini"),
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			Model:       getEnv("LLM_MODEL", "gemini-2.5-flash-lite"),
			Temperature: float32(getEnvAsFloat("LLM_TEMPERATURE", 0.7)),
			MaxTokens:   int32(getEnvAsInt("LLM_MAX_TOKENS", 4096)),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
		},
		Sources: SourcesConfig{
			GitHubToken:    getEnv("GITHUB_TOKEN", ""),
			GitHubBaseURL:  getEnv("GITHUB_API_URL", "https://api.github.com"),
			SpotifyBaseURL: getEnv("SPOTIFY_API_URL", "https://api.spotify.com/v1"),
			LetterboxdURL:  getEnv("LETTERBOXD_URL", "https://letterboxd.com"),
			FetchTimeout:   getEnvAsDuration("SOURCE_FETCH_TIMEOUT", 15*time.Second),
			BrowserEnabled: getEnvAsBool("BROWSER_SCRAPING_ENABLED", true),
			BrowserURL:     getEnv("BROWSER_CONTROL_URL", ""),
			BrowserTimeout: getEnvAsDuration("BROWSER_TIMEOUT", 30*time.Second),
			CacheSize:      getEnvAsInt("SOURCE_CACHE_SIZE", 256),
			CacheTTL:       getEnvAsDuration("SOURCE_CACHE_TTL", 10*time.Minute),
		},
		Places: PlacesConfig{
			APIKey:  getEnv("GOOGLE_PLACES_API_KEY", ""),
			BaseURL: getEnv("GOOGLE_PLACES_URL", "https://places.googleapis.com/v1/places:searchText"),
			Timeout: getEnvAsDuration("PLACES_TIMEOUT", 10*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
