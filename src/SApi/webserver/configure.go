package webserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trenny-dev/suggestbot/src/suggestions"
)

type Configure struct {
	store *suggestions.ConfigStore
}

func NewConfigure(store *suggestions.ConfigStore) Configure {
	return Configure{store: store}
}

func (h Configure) Get(c *gin.Context) {
	cfg, err := h.store.Get(c.Request.Context(), c.Param("guild"))
	if err != nil {
		log.Printf("get config: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h Configure) Set(c *gin.Context) {
	if !isManager(c) {
		c.JSON(http.StatusForbidden, gin.H{"err": "manager token required"})
		return
	}

	var req struct {
		SuggestionChannelID  *string  `json:"suggestionChannelId"`
		EmbedColor           *int     `json:"embedColor"`
		Categories           []string `json:"categories"`
		AllowAnonymous       *bool    `json:"allowAnonymous"`
		ManagerRoleID        *string  `json:"managerRoleId"`
		SuggestionRoleID     *string  `json:"suggestionRoleId"`
		CooldownMinutes      *int     `json:"cooldownMinutes"`
		MaxSuggestionsPerDay *int     `json:"maxSuggestionsPerDay"`
		AutoArchiveDays      *int     `json:"autoArchiveDays"`
		DMNotifications      *bool    `json:"dmNotifications"`
		LogChannelID         *string  `json:"logChannelId"`
		EmbedTemplate        *string  `json:"embedTemplate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	cfg, err := h.store.Set(c.Request.Context(), c.Param("guild"), suggestions.ConfigPatch{
		SuggestionChannelID:  req.SuggestionChannelID,
		EmbedColor:           req.EmbedColor,
		Categories:           req.Categories,
		AllowAnonymous:       req.AllowAnonymous,
		ManagerRoleID:        req.ManagerRoleID,
		SuggestionRoleID:     req.SuggestionRoleID,
		CooldownMinutes:      req.CooldownMinutes,
		MaxSuggestionsPerDay: req.MaxSuggestionsPerDay,
		AutoArchiveDays:      req.AutoArchiveDays,
		DMNotifications:      req.DMNotifications,
		LogChannelID:         req.LogChannelID,
		EmbedTemplate:        req.EmbedTemplate,
	}, requestUserID(c))
	if err != nil {
		var cerr *suggestions.ConfigError
		if errors.As(err, &cerr) {
			c.JSON(http.StatusBadRequest, gin.H{"err": cerr.Reason})
			return
		}
		log.Printf("set config: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}
