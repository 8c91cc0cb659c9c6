// ABOUTME: Persisted data structures for the todo assistant memory document
// ABOUTME: Defines MemoryDocument, Exchange, and TodoItem with their JSON wire shape
package models

import (
	"errors"
	"strings"
	"time"
)

// DefaultMaxHistory is the default cap on retained conversation exchanges.
const DefaultMaxHistory = 50

// Exchange is one recorded user/assistant turn. Exchanges are immutable
// once appended; only bulk trim or reset removes them.
type Exchange struct {
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
}

// TodoItem is a single task on the user's list. Completed items are
// retained for history and stats rather than deleted.
type TodoItem struct {
	ID        int       `json:"id"`
	Task      string    `json:"task"`
	CreatedAt time.Time `json:"created_at"`
	Completed bool      `json:"completed"`
}

// MemoryDocument is the root entity persisted as a single JSON file.
// CreatedAt is set once at first creation; LastUpdated is overwritten on
// every successful save.
type MemoryDocument struct {
	CreatedAt           time.Time  `json:"created_at"`
	LastUpdated         time.Time  `json:"last_updated"`
	UserName            string     `json:"user_name,omitempty"`
	ConversationHistory []Exchange `json:"conversation_history"`
	Todos               []TodoItem `json:"todos"`
}

// NewMemoryDocument returns an empty document stamped with the current time.
func NewMemoryDocument() *MemoryDocument {
	now := time.Now().UTC()
	return &MemoryDocument{
		CreatedAt:           now,
		LastUpdated:         now,
		ConversationHistory: []Exchange{},
		Todos:               []TodoItem{},
	}
}

// NewExchange creates an Exchange with validation.
func NewExchange(user, assistant string) (*Exchange, error) {
	if strings.TrimSpace(user) == "" {
		return nil, errors.New("user message cannot be empty")
	}
	return &Exchange{
		Timestamp: time.Now().UTC(),
		User:      user,
		Assistant: assistant,
	}, nil
}

// NewTodoItem creates a TodoItem with validation. The task keeps its
// original casing; only surrounding whitespace is trimmed.
func NewTodoItem(id int, task string) (*TodoItem, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, errors.New("task cannot be empty")
	}
	return &TodoItem{
		ID:        id,
		Task:      task,
		CreatedAt: time.Now().UTC(),
		Completed: false,
	}, nil
}

// NormalizeTask canonicalizes task text for duplicate detection: surrounding
// whitespace is trimmed, runs of internal whitespace collapse to a single
// space, and the result is lowercased.
func NormalizeTask(task string) string {
	return strings.ToLower(strings.Join(strings.Fields(task), " "))
}

// NextTodoID returns the id the next todo should receive: one past the
// highest id ever assigned, starting at 1. Ids are never reused, even after
// items are completed.
func (d *MemoryDocument) NextTodoID() int {
	next := 1
	for _, t := range d.Todos {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	return next
}

// ActiveTodos returns non-completed todos in insertion order.
func (d *MemoryDocument) ActiveTodos() []TodoItem {
	active := []TodoItem{}
	for _, t := range d.Todos {
		if !t.Completed {
			active = append(active, t)
		}
	}
	return active
}

// CompletedTodos returns completed todos in insertion order.
func (d *MemoryDocument) CompletedTodos() []TodoItem {
	done := []TodoItem{}
	for _, t := range d.Todos {
		if t.Completed {
			done = append(done, t)
		}
	}
	return done
}

// Normalize repairs a freshly unmarshaled document so downstream code never
// sees nil collections or a zero creation timestamp.
func (d *MemoryDocument) Normalize() {
	if d.ConversationHistory == nil {
		d.ConversationHistory = []Exchange{}
	}
	if d.Todos == nil {
		d.Todos = []TodoItem{}
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
}
