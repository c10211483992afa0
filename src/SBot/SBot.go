package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"github.com/trenny-dev/suggestbot/src/SBot/bot"
	"github.com/trenny-dev/suggestbot/src/SBot/config"
	"github.com/trenny-dev/suggestbot/src/data"
)

func main() {
	// Connect to the database first; settings live there.
	var db *gorm.DB
	if path := os.Getenv("SQLITE_PATH"); path != "" {
		var err error
		db, err = data.ConnectSQLite(path)
		if err != nil {
			log.Fatalf("connect sqlite: %v", err)
		}
	} else {
		dsn := os.Getenv("MYSQL_DSN")
		if dsn == "" {
			dsn = "suggestbot:suggestbot@tcp(127.0.0.1:3306)/suggestbot"
		}
		db = data.MustMySQL(dsn)
	}

	if err := data.LoadSettings(db); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}

	cfg := config.Load(db)
	if cfg.Token == "" {
		log.Fatal("DISCORD_TOKEN not set in database or environment")
	}

	rdb := data.MustRedis(cfg.RedisURL)

	b, err := bot.New(bot.Config{
		Token:       cfg.Token,
		GuildID:     cfg.GuildID,
		BannedWords: cfg.BannedWords,
		DB:          db,
		Redis:       rdb,
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	if err := b.Start(); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}

	log.Println("Suggestion bot is running. Press CTRL-C to exit.")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	log.Println("Shutting down")
	b.Stop()
}
