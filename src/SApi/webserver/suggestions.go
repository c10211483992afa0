package webserver

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/trenny-dev/suggestbot/src/suggestions"
	"github.com/trenny-dev/suggestbot/src/types"
)

type Suggestions struct {
	engine    *suggestions.Engine
	repo      *suggestions.Repository
	sanitizer *bluemonday.Policy
}

func NewSuggestions(engine *suggestions.Engine, repo *suggestions.Repository) Suggestions {
	// Suggestions render as Discord embed text, so strip all markup.
	return Suggestions{engine: engine, repo: repo, sanitizer: bluemonday.StrictPolicy()}
}

func (h Suggestions) Create(c *gin.Context) {
	var req struct {
		GuildID       string `json:"guildId" binding:"required"`
		Content       string `json:"content" binding:"required,min=1,max=4000"`
		Category      string `json:"category" binding:"max=32"`
		Priority      string `json:"priority" binding:"omitempty,oneof=low medium high"`
		Anonymous     bool   `json:"anonymous"`
		AttachmentURL string `json:"attachmentUrl" binding:"omitempty,url,max=512"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	content := h.sanitizer.Sanitize(req.Content)
	if !utf8.ValidString(content) {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid characters in input"})
		return
	}

	created, err := h.engine.Submit(c.Request.Context(), suggestions.SubmitRequest{
		GuildID:       req.GuildID,
		AuthorID:      requestUserID(c),
		Content:       content,
		Category:      req.Category,
		Priority:      types.Priority(req.Priority),
		Anonymous:     req.Anonymous,
		AttachmentURL: req.AttachmentURL,
	})
	if err != nil {
		writeSubmitError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func writeSubmitError(c *gin.Context, err error) {
	var content *suggestions.ContentRejectedError
	var cooldown *suggestions.CooldownError

	switch {
	case errors.Is(err, suggestions.ErrNotConfigured):
		c.JSON(http.StatusConflict, gin.H{"err": "suggestion system not configured"})
	case errors.Is(err, suggestions.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"err": "daily suggestion limit reached"})
	case errors.As(err, &content):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"err": content.Reason})
	case errors.Is(err, suggestions.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"err": "missing required role"})
	case errors.As(err, &cooldown):
		c.Header("Retry-After", strconv.FormatInt(cooldown.SecondsRemaining(), 10))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"err":        "cooldown active",
			"retryAfter": cooldown.SecondsRemaining(),
		})
	case errors.Is(err, suggestions.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid category"})
	default:
		log.Printf("create suggestion: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
	}
}

func (h Suggestions) Get(c *gin.Context) {
	id := strings.ToUpper(c.Param("id"))
	s, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, suggestions.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"err": "not found"})
		return
	}
	if err != nil {
		log.Printf("get suggestion %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
		return
	}
	if s.Anonymous && !isManager(c) && s.AuthorUserID != requestUserID(c) {
		s.AuthorUserID = ""
	}
	c.JSON(http.StatusOK, s)
}

// ListMine returns the caller's own suggestions in a guild, newest first.
func (h Suggestions) ListMine(c *gin.Context) {
	list, err := h.repo.ListByUser(c.Request.Context(), c.Param("guild"), requestUserID(c))
	if err != nil {
		log.Printf("list suggestions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

func (h Suggestions) SetStatus(c *gin.Context) {
	if !isManager(c) {
		c.JSON(http.StatusForbidden, gin.H{"err": "manager token required"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
		Reason string `json:"reason" binding:"max=512"`
		Notify bool   `json:"notify"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	id := strings.ToUpper(c.Param("id"))
	updated, err := h.engine.SetStatus(c.Request.Context(), id,
		types.Status(strings.ToUpper(req.Status)), req.Reason, requestUserID(c), req.Notify)
	switch {
	case errors.Is(err, suggestions.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"err": "not found"})
	case errors.Is(err, suggestions.ErrArchived):
		c.JSON(http.StatusConflict, gin.H{"err": "suggestion is archived"})
	case errors.Is(err, suggestions.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid status"})
	case err != nil:
		log.Printf("set status %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
	default:
		c.JSON(http.StatusOK, updated)
	}
}
