package webserver

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trenny-dev/suggestbot/src/suggestions"
	"github.com/trenny-dev/suggestbot/src/types"
)

type Votes struct {
	aggregator *suggestions.Aggregator
	repo       *suggestions.Repository
}

func NewVotes(aggregator *suggestions.Aggregator, repo *suggestions.Repository) Votes {
	return Votes{aggregator: aggregator, repo: repo}
}

func (h Votes) Cast(c *gin.Context) {
	var req struct {
		SuggestionID string `json:"suggestionId" binding:"required,min=1,max=16"`
		Kind         string `json:"kind" binding:"required,oneof=up neutral down"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	tally, err := h.aggregator.Cast(c.Request.Context(), suggestions.VoteRequest{
		SuggestionID: strings.ToUpper(req.SuggestionID),
		VoterUserID:  requestUserID(c),
		Kind:         types.VoteKind(req.Kind),
	})
	switch {
	case errors.Is(err, suggestions.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"err": "not found"})
	case errors.Is(err, suggestions.ErrArchived):
		c.JSON(http.StatusConflict, gin.H{"err": "voting closed"})
	case err != nil:
		log.Printf("cast vote: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
	default:
		c.JSON(http.StatusOK, tally)
	}
}

func (h Votes) Summary(c *gin.Context) {
	id := strings.ToUpper(c.Param("id"))
	s, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, suggestions.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"err": "not found"})
		return
	}
	if err != nil {
		log.Printf("vote summary %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
		return
	}

	tally := s.Tally()
	c.JSON(http.StatusOK, gin.H{
		"suggestionId": s.ID,
		"up":           tally.Up,
		"neutral":      tally.Neutral,
		"down":         tally.Down,
		"total":        tally.Total(),
	})
}
