package config

import (
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/trenny-dev/suggestbot/src/data"
)

type Config struct {
	Token       string
	GuildID     string
	MySQLDSN    string
	SQLitePath  string
	RedisURL    string
	BannedWords []string
}

// Load reads configuration from the settings table with environment
// fallbacks. The database handle must already be connected.
func Load(db *gorm.DB) Config {
	token := data.GetSetting("discord_token")
	if token == "" {
		token = os.Getenv("DISCORD_TOKEN")
	}

	guildID := data.GetSetting("guild_id")
	if guildID == "" {
		guildID = os.Getenv("GUILD_ID")
	}

	banned := data.GetSetting("banned_words")
	if banned == "" {
		banned = os.Getenv("BANNED_WORDS")
	}
	var bannedWords []string
	for _, w := range strings.Split(banned, ",") {
		if w = strings.TrimSpace(w); w != "" {
			bannedWords = append(bannedWords, w)
		}
	}

	return Config{
		Token:       token,
		GuildID:     guildID,
		MySQLDSN:    getenv("MYSQL_DSN", "suggestbot:suggestbot@tcp(127.0.0.1:3306)/suggestbot"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),
		RedisURL:    getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		BannedWords: bannedWords,
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
