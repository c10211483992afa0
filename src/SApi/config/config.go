package config

import (
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/trenny-dev/suggestbot/src/data"
)

type Config struct {
	MySQLDSN       string
	SQLitePath     string
	RedisURL       string
	JWTSecret      string
	APIKey         string
	Port           string
	AllowedOrigins []string
}

// Load reads configuration from the settings table with environment
// fallbacks. The database handle must already be connected.
func Load(db *gorm.DB) Config {
	jwtSecret := data.GetSetting("jwt_secret")
	if jwtSecret == "" {
		jwtSecret = os.Getenv("JWT_SECRET")
	}

	apiKey := data.GetSetting("api_key")
	if apiKey == "" {
		apiKey = os.Getenv("API_KEY")
	}

	origins := data.GetSetting("allowed_origins")
	if origins == "" {
		origins = getenv("ALLOWED_ORIGINS", "http://localhost:3000")
	}
	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}

	return Config{
		MySQLDSN:       getenv("MYSQL_DSN", "suggestbot:suggestbot@tcp(127.0.0.1:3306)/suggestbot"),
		SQLitePath:     os.Getenv("SQLITE_PATH"),
		RedisURL:       getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		JWTSecret:      jwtSecret,
		APIKey:         apiKey,
		Port:           getenv("PORT", "8080"),
		AllowedOrigins: allowed,
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
