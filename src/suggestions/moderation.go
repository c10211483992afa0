package suggestions

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minContentLen = 10
	maxContentLen = 2000
	urlLimit      = 3
	mentionLimit  = 3
)

var defaultBannedWords = []string{"spam", "test", "advertisement"}

var (
	newlineCollapse = regexp.MustCompile(`\n{3,}`)
	sentenceStart   = regexp.MustCompile(`(^\w|\.\s+\w)`)
	codeFence       = regexp.MustCompile("(?s)```(\\w+)?\\n?(.*?)\\n?```")
	urlToken        = regexp.MustCompile(`https?://[^\s]+`)
	mentionToken    = regexp.MustCompile(`<@!?\d+>`)
)

// Verdict is the outcome of moderating a proposed suggestion. Normalized is
// always populated so callers persist only sanitized content.
type Verdict struct {
	Allowed    bool
	Reason     string
	Normalized string
}

// Moderator validates and normalizes suggestion text. It is stateless and
// safe for concurrent use.
type Moderator struct {
	banned []string
}

// NewModerator builds a moderator with the given banned-word list, falling
// back to the stock list when none is supplied.
func NewModerator(banned ...string) *Moderator {
	if len(banned) == 0 {
		banned = defaultBannedWords
	}
	lowered := make([]string, 0, len(banned))
	for _, w := range banned {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			lowered = append(lowered, w)
		}
	}
	return &Moderator{banned: lowered}
}

// Moderate normalizes raw and applies the rejection rules in order; the
// first failing rule wins.
func (m *Moderator) Moderate(raw string) Verdict {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = newlineCollapse.ReplaceAllString(text, "\n\n")
	text = sentenceStart.ReplaceAllStringFunc(text, strings.ToUpper)
	text = reflowCodeFences(text)

	v := Verdict{Normalized: text}

	if n := utf8.RuneCountInString(text); n < minContentLen {
		v.Reason = "suggestion is too short"
		return v
	} else if n > maxContentLen {
		v.Reason = "suggestion is too long"
		return v
	}

	if len(urlToken.FindAllStringIndex(text, -1)) > urlLimit {
		v.Reason = "too many URLs"
		return v
	}

	if len(mentionToken.FindAllStringIndex(text, -1)) > mentionLimit {
		v.Reason = "too many mentions"
		return v
	}

	lowered := strings.ToLower(text)
	for _, w := range m.banned {
		if strings.Contains(lowered, w) {
			v.Reason = "contains inappropriate content"
			return v
		}
	}

	v.Allowed = true
	return v
}

// reflowCodeFences trims interior whitespace of fenced blocks while keeping
// the language tag.
func reflowCodeFences(text string) string {
	return codeFence.ReplaceAllStringFunc(text, func(block string) string {
		parts := codeFence.FindStringSubmatch(block)
		lang, body := parts[1], strings.TrimSpace(parts[2])
		return "```" + lang + "\n" + body + "\n```"
	})
}
