package title

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mentra-labs/mentra/internal/store"
)

const (
	maxTitleLen = 32
	maxWords    = 5
)

var (
	extractedBlockRe = regexp.MustCompile(`(?is)--- extracted from.*$`)
	sentFilesLineRe  = regexp.MustCompile(`(?im)^sent files:.*$`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
)

// Conversational starters stripped from the front of the first user message.
// Ordered longest first so compound phrases win over their prefixes.
var fillers = []string{
	"i need help with",
	"could you please",
	"would you please",
	"can you please",
	"help me with",
	"tell me about",
	"could you",
	"would you",
	"how do i",
	"can you",
	"what is",
	"please",
}

// Derive produces a short human-readable label from the first user message.
// It returns the sentinel title when no user message exists or nothing
// meaningful survives the stripping.
func Derive(msgs []store.Message) string {
	var first *store.Message
	for i := range msgs {
		if msgs[i].Role == store.RoleUser {
			first = &msgs[i]
			break
		}
	}
	if first == nil {
		return store.SentinelTitle
	}

	text := extractedBlockRe.ReplaceAllString(first.Content, "")
	text = sentFilesLineRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.ToLower(strings.TrimSpace(text))
	text = stripFillers(text)

	words := strings.Fields(text)
	if len(words) == 0 {
		return store.SentinelTitle
	}
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	for i, w := range words {
		words[i] = capitalize(w)
	}

	formatted := strings.Join(words, " ")
	if runes := []rune(formatted); len(runes) > maxTitleLen {
		formatted = string(runes[:maxTitleLen]) + "…"
	}
	return formatted
}

func stripFillers(text string) string {
	for {
		stripped := false
		for _, f := range fillers {
			if strings.HasPrefix(text, f+" ") {
				text = strings.TrimSpace(text[len(f):])
				stripped = true
				break
			}
		}
		if !stripped {
			return text
		}
	}
}

func capitalize(w string) string {
	runes := []rune(w)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
