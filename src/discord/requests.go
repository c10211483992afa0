package discord

import (
	"strings"

	"github.com/trenny-dev/suggestbot/src/types"
)

var buttonActions = map[string]types.VoteKind{
	"upvote":   types.VoteUp,
	"neutral":  types.VoteNeutral,
	"downvote": types.VoteDown,
}

// ParseVoteButton turns a vote button custom id ("upvote_AB12CD") into a
// typed kind and suggestion id. Unknown ids report ok=false; the opaque
// token never travels past this boundary.
func ParseVoteButton(customID string) (kind types.VoteKind, suggestionID string, ok bool) {
	action, id, found := strings.Cut(customID, "_")
	if !found || id == "" {
		return "", "", false
	}
	kind, ok = buttonActions[action]
	if !ok {
		return "", "", false
	}
	return kind, id, true
}
