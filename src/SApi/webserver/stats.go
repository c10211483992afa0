package webserver

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trenny-dev/suggestbot/src/suggestions"
)

type Statistics struct {
	stats *suggestions.Stats
}

func NewStatistics(stats *suggestions.Stats) Statistics {
	return Statistics{stats: stats}
}

func (h Statistics) Guild(c *gin.Context) {
	var since time.Time
	if days, err := strconv.Atoi(c.Query("days")); err == nil && days > 0 {
		since = time.Now().UTC().AddDate(0, 0, -days)
	}

	gs, err := h.stats.Guild(c.Request.Context(), c.Param("guild"), since)
	if err != nil {
		log.Printf("guild stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gs)
}

func (h Statistics) User(c *gin.Context) {
	us, err := h.stats.User(c.Request.Context(), c.Param("guild"), c.Param("user"))
	if err != nil {
		log.Printf("user stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
		return
	}
	c.JSON(http.StatusOK, us)
}

func (h Statistics) Categories(c *gin.Context) {
	cats, err := h.stats.Categories(c.Request.Context(), c.Param("guild"))
	if err != nil {
		log.Printf("category stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": cats})
}

func (h Statistics) Contributors(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	top, err := h.stats.TopContributors(c.Request.Context(), c.Param("guild"), limit)
	if err != nil {
		log.Printf("contributor stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": top})
}

func (h Statistics) Trends(c *gin.Context) {
	var since time.Time
	if days, err := strconv.Atoi(c.Query("days")); err == nil && days > 0 {
		since = time.Now().UTC().AddDate(0, 0, -days)
	}

	points, err := h.stats.Trends(c.Request.Context(), c.Param("guild"), since)
	if err != nil {
		log.Printf("trend stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": points})
}
