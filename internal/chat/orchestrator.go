package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mentra-labs/mentra/internal/events"
	"github.com/mentra-labs/mentra/internal/extract"
	"github.com/mentra-labs/mentra/internal/ingest"
	"github.com/mentra-labs/mentra/internal/prompt"
	"github.com/mentra-labs/mentra/internal/store"
	"github.com/mentra-labs/mentra/internal/title"
)

// Gateway is the language-model boundary. The orchestrator treats any
// non-nil error uniformly as a model failure.
type Gateway interface {
	Complete(ctx context.Context, instructions, prompt string) (string, error)
}

const (
	baseInstructions = "You are Mentra, a helpful coursework tutor. If extracted document text appears above, use it directly. Be clear, friendly, and structured."

	detailedInstructions = " Explain step-by-step."
	conciseInstructions  = " Keep answers short and to the point."
	practiceInstructions = " End with a short summary and 2 practice questions."

	condenseInstructions = "You condense tutoring conversations. Summarize the key topics, questions, and explanations in at most 200 words of plain prose, so a tutor can pick the conversation back up."

	// ApologyReply is appended in place of a real answer when the model call
	// fails, so the thread always gains an assistant turn.
	ApologyReply = "Sorry — I hit an error talking to the AI service. Please try again."

	// FallbackReply covers the rare success response with no usable text.
	FallbackReply = "Sorry — I couldn’t generate a reply."
)

// Upload is one inbound attachment, already read into memory.
type Upload struct {
	Name      string
	MediaType string
	Data      []byte
}

// PostOptions adjust how the reply is generated.
type PostOptions struct {
	ResponseStyle   string // "detailed" (default) or "concise"
	IncludePractice bool
}

// Result is the outcome of one posted message. Thread reflects the state
// after both turns landed; ModelFailed marks the apology path.
type Result struct {
	Thread      *store.Thread
	Assistant   store.Message
	ModelFailed bool
}

// Orchestrator drives one inbound message through ingestion, the store, the
// context window and the model gateway, absorbing model failures into the
// conversation instead of dropping them.
type Orchestrator struct {
	store        *store.Store
	extractor    *extract.Extractor
	gateway      Gateway
	events       *events.Publisher
	logger       *slog.Logger
	recentTurns  int
	modelTimeout time.Duration
}

func New(st *store.Store, ex *extract.Extractor, gw Gateway, pub *events.Publisher, recentTurns int, modelTimeout time.Duration, logger *slog.Logger) *Orchestrator {
	if recentTurns <= 0 {
		recentTurns = prompt.DefaultRecentTurns
	}
	return &Orchestrator{
		store:        st,
		extractor:    ex,
		gateway:      gw,
		events:       pub,
		logger:       logger,
		recentTurns:  recentTurns,
		modelTimeout: modelTimeout,
	}
}

// Post handles one inbound message. It returns store.ErrNotFound when the
// thread does not exist and ingest.ErrEmptyMessage when neither text nor
// files contribute content; in both cases nothing is mutated.
func (o *Orchestrator) Post(ctx context.Context, threadID, text string, uploads []Upload, opts PostOptions) (*Result, error) {
	if _, err := o.store.Get(threadID); err != nil {
		return nil, err
	}

	fragments := make([]string, 0, len(uploads))
	for _, u := range uploads {
		fragments = append(fragments, o.extractor.Fragment(u.Data, u.Name, u.MediaType))
	}
	content, err := ingest.Combine(text, fragments)
	if err != nil {
		return nil, err
	}

	userMsg := store.NewMessage(store.RoleUser, content)
	thread, err := o.store.Append(threadID, userMsg)
	if err != nil {
		return nil, err
	}
	o.events.MessageAppended(threadID, userMsg.ID, string(userMsg.Role), false)

	window := prompt.Window(thread, o.recentTurns)

	callCtx, cancel := context.WithTimeout(ctx, o.modelTimeout)
	defer cancel()
	reply, modelErr := o.gateway.Complete(callCtx, instructions(opts), window)

	modelFailed := modelErr != nil
	switch {
	case modelFailed:
		o.logger.Error("model call failed", "thread_id", threadID, "error", modelErr)
		reply = ApologyReply
	case strings.TrimSpace(reply) == "":
		reply = FallbackReply
	default:
		reply = strings.TrimSpace(reply)
	}

	assistant := store.NewMessage(store.RoleAssistant, reply)
	thread, err = o.store.Append(threadID, assistant)
	if err != nil {
		return nil, err
	}
	o.events.MessageAppended(threadID, assistant.ID, string(assistant.Role), modelFailed)

	if !modelFailed && thread.Title == store.SentinelTitle {
		if derived := title.Derive(thread.Messages); derived != store.SentinelTitle {
			if err := o.store.SetTitle(threadID, derived); err == nil {
				thread.Title = derived
			}
		}
	}

	if !modelFailed && len(thread.Messages) > 2*o.recentTurns {
		go o.condense(threadID)
	}

	return &Result{Thread: thread, Assistant: assistant, ModelFailed: modelFailed}, nil
}

// condense folds the turns that slid out of the context window into the
// thread's running summary. Best effort: a failed condense leaves the old
// summary in place and only costs older context, never the request.
func (o *Orchestrator) condense(threadID string) {
	thread, err := o.store.Get(threadID)
	if err != nil {
		return
	}
	if len(thread.Messages) <= o.recentTurns {
		return
	}
	older := thread.Messages[:len(thread.Messages)-o.recentTurns]

	body := prompt.Transcript(older)
	if s := strings.TrimSpace(thread.Summary); s != "" {
		body = "EARLIER SUMMARY:\n" + s + "\n\n" + body
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.modelTimeout)
	defer cancel()
	summary, err := o.gateway.Complete(ctx, condenseInstructions, body)
	if err != nil {
		o.logger.Warn("summary condense failed", "thread_id", threadID, "error", err)
		return
	}
	if summary = strings.TrimSpace(summary); summary == "" {
		return
	}
	if err := o.store.SetSummary(threadID, summary); err != nil {
		o.logger.Warn("summary write failed", "thread_id", threadID, "error", err)
	}
}

func instructions(opts PostOptions) string {
	s := baseInstructions
	if opts.ResponseStyle == "concise" {
		s += conciseInstructions
	} else {
		s += detailedInstructions
	}
	if opts.IncludePractice {
		s += practiceInstructions
	}
	return s
}
