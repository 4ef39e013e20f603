package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subjects for conversation activity. External collaborators
// (summarization, analytics) subscribe to these.
const (
	SubjectThreadCreated   = "mentra.thread.created"
	SubjectThreadDeleted   = "mentra.thread.deleted"
	SubjectMessageAppended = "mentra.message.appended"
)

// ThreadEvent announces thread lifecycle changes.
type ThreadEvent struct {
	ThreadID  string `json:"thread_id"`
	Timestamp string `json:"timestamp"`
}

// MessageEvent announces a turn landing in a thread.
type MessageEvent struct {
	ThreadID    string `json:"thread_id"`
	MessageID   string `json:"message_id"`
	Role        string `json:"role"`
	ModelFailed bool   `json:"model_failed,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// Publisher emits conversation activity over NATS. All methods are safe on a
// nil receiver, so the service runs unchanged when NATS is not configured.
// Publishing is best effort: failures are logged, never surfaced.
type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func Connect(url, token string, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Publisher{conn: nc, logger: logger}, nil
}

func (p *Publisher) ThreadCreated(threadID string) {
	p.publish(SubjectThreadCreated, ThreadEvent{
		ThreadID:  threadID,
		Timestamp: now(),
	})
}

func (p *Publisher) ThreadDeleted(threadID string) {
	p.publish(SubjectThreadDeleted, ThreadEvent{
		ThreadID:  threadID,
		Timestamp: now(),
	})
}

func (p *Publisher) MessageAppended(threadID, messageID, role string, modelFailed bool) {
	p.publish(SubjectMessageAppended, MessageEvent{
		ThreadID:    threadID,
		MessageID:   messageID,
		Role:        role,
		ModelFailed: modelFailed,
		Timestamp:   now(),
	})
}

func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}

func (p *Publisher) publish(subject string, data any) {
	if p == nil || p.conn == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		p.logger.Warn("marshal event payload", "subject", subject, "error", err)
		return
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn("publish event", "subject", subject, "error", err)
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
