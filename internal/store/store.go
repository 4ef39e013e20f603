package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a thread id does not exist in the store.
var ErrNotFound = errors.New("thread not found")

// SentinelTitle is the placeholder title every thread starts with. It is
// replaced at most once, by the derived title after the first real exchange.
const SentinelTitle = "New Chat"

// Greeting seeds every new thread so a conversation never starts empty.
const Greeting = "Hi, I’m Mentra. I help you understand your coursework using only your class materials."

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a conversation. Messages are immutable once appended.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Thread is one conversation. The store is the sole owner of thread state;
// Get and List hand out copies, so callers never hold a live reference.
type Thread struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
	Messages  []Message `json:"messages"`
	Summary   string    `json:"summary,omitempty"`

	seq int // creation order, tie-breaker for List
}

// Store holds all threads for the lifetime of the process. Nothing is
// persisted — a restart starts from zero.
type Store struct {
	mu      sync.Mutex
	threads map[string]*Thread
	nextSeq int
	now     func() time.Time
}

func New() *Store {
	return &Store{
		threads: make(map[string]*Thread),
		now:     time.Now,
	}
}

// Create makes a new thread seeded with the assistant greeting.
func (s *Store) Create() *Thread {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t := &Thread{
		ID:        uuid.NewString(),
		Title:     SentinelTitle,
		UpdatedAt: now,
		Messages: []Message{{
			ID:        uuid.NewString(),
			Role:      RoleAssistant,
			Content:   Greeting,
			CreatedAt: now,
		}},
		seq: s.nextSeq,
	}
	s.nextSeq++
	s.threads[t.ID] = t
	return snapshot(t)
}

// Get returns a copy of the thread, or ErrNotFound.
func (s *Store) Get(id string) (*Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(t), nil
}

// List returns copies of all threads, most recently updated first. Threads
// with equal timestamps keep their creation order.
func (s *Store) List() []*Thread {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*Thread, 0, len(s.threads))
	for _, t := range s.threads {
		all = append(all, t)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].UpdatedAt.Equal(all[j].UpdatedAt) {
			return all[i].seq < all[j].seq
		}
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})

	out := make([]*Thread, len(all))
	for i, t := range all {
		out[i] = snapshot(t)
	}
	return out
}

// Delete removes the thread. A second delete of the same id reports ErrNotFound.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.threads[id]; !ok {
		return ErrNotFound
	}
	delete(s.threads, id)
	return nil
}

// Append adds one or more messages to the thread as a single atomic step and
// bumps UpdatedAt. Returns a copy of the updated thread.
func (s *Store) Append(id string, msgs ...Message) (*Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[id]
	if !ok {
		return nil, ErrNotFound
	}
	t.Messages = append(t.Messages, msgs...)
	if now := s.now(); now.After(t.UpdatedAt) {
		t.UpdatedAt = now
	}
	return snapshot(t), nil
}

// SetTitle replaces the sentinel title with the derived one. It is a no-op
// once a real title has been set, so the title transitions at most once.
func (s *Store) SetTitle(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[id]
	if !ok {
		return ErrNotFound
	}
	if t.Title == SentinelTitle && title != "" {
		t.Title = title
	}
	return nil
}

// SetSummary replaces the thread's running summary of older turns.
func (s *Store) SetSummary(id, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[id]
	if !ok {
		return ErrNotFound
	}
	t.Summary = summary
	return nil
}

// NewMessage builds a message with a fresh id and timestamp.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

func snapshot(t *Thread) *Thread {
	c := *t
	c.Messages = make([]Message, len(t.Messages))
	copy(c.Messages, t.Messages)
	return &c
}
