package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/trenny-dev/suggestbot/src/SApi/config"
	"github.com/trenny-dev/suggestbot/src/SApi/webserver"
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
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set in database or environment")
	}

	rdb := data.MustRedis(cfg.RedisURL)

	router := webserver.New(cfg, db, rdb)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
