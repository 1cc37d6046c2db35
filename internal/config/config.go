package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// AIConfig represents configuration for the annotation model backend
type AIConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	EnableRateLimit       bool
	RateLimitPerSecond    float64
	RateLimitBurst        int
	EnableCORS            bool
	AllowedOrigins        []string
	EnableSecurityHeaders bool
	MaxRequestSize        int64
	EnableRequestID       bool
}

type Config struct {
	Port             int
	DataDir          string
	CacheTTL         time.Duration
	PollInterval     time.Duration
	ArticleRetention time.Duration
	DefaultFeeds     []string
	EnableSwagger    bool
	AI               AIConfig
	Security         SecurityConfig
}

func Load() *Config {
	return &Config{
		Port:             getEnvAsInt("PORT", 8080),
		DataDir:          getEnv("DATA_DIR", "./data"),
		CacheTTL:         getEnvAsDuration("CACHE_TTL", 15*time.Minute),
		PollInterval:     getEnvAsDuration("POLL_INTERVAL", 30*time.Minute),
		ArticleRetention: getEnvAsDuration("ARTICLE_RETENTION", 30*24*time.Hour),
		DefaultFeeds:     getEnvAsStringSlice("DEFAULT_FEEDS", defaultFeeds()),
		EnableSwagger:    getEnvAsBool("ENABLE_SWAGGER", true),
		AI:               loadAIConfig(),
		Security:         loadSecurityConfig(),
	}
}

func loadAIConfig() AIConfig {
	baseURL := getEnv("AI_BASE_URL", "")
	if baseURL == "" {
		// LM Studio style host/port variables take precedence over the
		// localhost default.
		host := getEnv("LM_STUDIO_HOST", "localhost")
		port := getEnv("LM_STUDIO_PORT", "1234")
		baseURL = "http://" + host + ":" + port
	}

	return AIConfig{
		BaseURL:   strings.TrimSuffix(baseURL, "/"),
		APIKey:    getEnv("AI_API_KEY", "lm-studio"),
		Model:     getEnv("AI_MODEL", ""),
		Timeout:   getEnvAsDuration("AI_TIMEOUT", 30*time.Second),
		MaxTokens: getEnvAsInt("AI_MAX_TOKENS", 500),
	}
}

func loadSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableRateLimit:       getEnvAsBool("ENABLE_RATE_LIMIT", true),
		RateLimitPerSecond:    getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10.0),
		RateLimitBurst:        getEnvAsInt("RATE_LIMIT_BURST", 20),
		EnableCORS:            getEnvAsBool("ENABLE_CORS", true),
		AllowedOrigins:        getEnvAsStringSlice("ALLOWED_ORIGINS", []string{"*"}),
		EnableSecurityHeaders: getEnvAsBool("ENABLE_SECURITY_HEADERS", true),
		MaxRequestSize:        getEnvAsInt64("MAX_REQUEST_SIZE", 10<<20), // 10MB
		EnableRequestID:       getEnvAsBool("ENABLE_REQUEST_ID", true),
	}
}

// defaultFeeds seeds the feeds table on first start when nothing is
// configured.
func defaultFeeds() []string {
	return []string{
		"https://feeds.bbci.co.uk/news/rss.xml",
		"https://rss.cnn.com/rss/edition.rss",
		"https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml",
		"https://feeds.arstechnica.com/arstechnica/index",
		"https://feeds.feedburner.com/TechCrunch",
		"https://www.theverge.com/rss/index.xml",
	}
}

func getEnv(key string, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.ParseInt(val, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsStringSlice(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultVal
}
