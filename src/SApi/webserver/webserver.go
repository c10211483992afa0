package webserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/trenny-dev/suggestbot/src/SApi/config"
	"github.com/trenny-dev/suggestbot/src/data"
	"github.com/trenny-dev/suggestbot/src/metrics"
	"github.com/trenny-dev/suggestbot/src/suggestions"
)

func New(cfg config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, db, rdb)
	return g
}

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, rdb *redis.Client) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	repo := suggestions.NewRepository(db)
	cfgStore := suggestions.NewConfigStore(db)
	// The API has no gateway session to answer role questions, so guilds
	// that require a suggestion role only accept submissions via the bot.
	events := data.NewStreamPublisher(rdb)
	engine := suggestions.NewEngine(cfgStore, repo, suggestions.NewModerator(), nil, events)
	aggregator := suggestions.NewAggregator(repo, events)

	authH := NewAuth([]byte(cfg.JWTSecret), cfg.APIKey)
	sugH := NewSuggestions(engine, repo)
	voteH := NewVotes(aggregator, repo)
	cfgH := NewConfigure(cfgStore)
	statsH := NewStatistics(suggestions.NewStats(db))

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/token", authH.Token)

		secured := v1.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		secured.POST("/suggestions", sugH.Create)
		secured.GET("/suggestions/:id", sugH.Get)
		secured.GET("/guilds/:guild/suggestions", sugH.ListMine)
		secured.PUT("/suggestions/:id/status", sugH.SetStatus)
		secured.POST("/votes", voteH.Cast)
		secured.GET("/votes/:id", voteH.Summary)
		secured.GET("/guilds/:guild/config", cfgH.Get)
		secured.PUT("/guilds/:guild/config", cfgH.Set)
		secured.GET("/guilds/:guild/stats", statsH.Guild)
		secured.GET("/guilds/:guild/stats/users/:user", statsH.User)
		secured.GET("/guilds/:guild/stats/categories", statsH.Categories)
		secured.GET("/guilds/:guild/stats/contributors", statsH.Contributors)
		secured.GET("/guilds/:guild/stats/trends", statsH.Trends)
	}
}
