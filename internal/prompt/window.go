package prompt

import (
	"strings"

	"github.com/mentra-labs/mentra/internal/store"
)

// DefaultRecentTurns is how many of the latest messages make it into the
// context window when no explicit bound is configured.
const DefaultRecentTurns = 12

const summaryHeader = "CONVERSATION SUMMARY:"

// Window renders the bounded prompt body for a model call: the thread's
// running summary (when present) followed by the last n turns, oldest first.
// The output is handed to the gateway verbatim.
func Window(t *store.Thread, n int) string {
	if n <= 0 {
		n = DefaultRecentTurns
	}

	var sb strings.Builder
	if s := strings.TrimSpace(t.Summary); s != "" {
		sb.WriteString(summaryHeader)
		sb.WriteByte('\n')
		sb.WriteString(s)
		sb.WriteString("\n\n")
	}

	msgs := t.Messages
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	for i, m := range msgs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.ToUpper(string(m.Role)))
		sb.WriteString(": ")
		sb.WriteString(m.Content)
	}
	return sb.String()
}

// Transcript renders messages as ROLE: content lines without any summary
// block or recency bound. Used when condensing turns that left the window.
func Transcript(msgs []store.Message) string {
	t := store.Thread{Messages: msgs}
	return Window(&t, len(msgs))
}
