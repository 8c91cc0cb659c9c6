// ABOUTME: Memory Manager combining todo ledger, conversation log, and user profile
// ABOUTME: Serializes mutations behind one lock and writes through to the store after each
package memory

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/harper/todo-agent/internal/models"
	"github.com/harper/todo-agent/internal/storage"
)

// Sentinel errors for invalid input. Callers map these to user-facing
// outcomes rather than treating them as faults.
var (
	ErrEmptyTask = errors.New("task cannot be empty")
	ErrEmptyName = errors.New("name cannot be empty")
)

// Stats is a read-only aggregate over the whole document.
type Stats struct {
	UserName       string
	ActiveTodos    int
	CompletedTodos int
	TotalExchanges int
	CreatedAt      time.Time
	LastUpdated    time.Time
}

// Manager owns the in-memory document and is the single mutator. Every
// mutating operation runs under the lock as "apply in memory, save"; a
// failed save rolls the in-memory change back so state and disk never
// diverge. Construct one per store; there is no package-level singleton.
type Manager struct {
	store      *storage.Store
	doc        *models.MemoryDocument
	maxHistory int
	mu         sync.Mutex
}

// NewManager loads the document from store and returns a manager over it.
// maxHistory caps retained conversation exchanges; values <= 0 fall back to
// models.DefaultMaxHistory.
func NewManager(store *storage.Store, maxHistory int) (*Manager, error) {
	doc, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading memory: %w", err)
	}
	if maxHistory <= 0 {
		maxHistory = models.DefaultMaxHistory
	}
	return &Manager{store: store, doc: doc, maxHistory: maxHistory}, nil
}

// AddTodo appends a new todo unless an active one with the same normalized
// task already exists. The second return reports whether the item was added;
// a duplicate returns the existing item with added=false and no error.
func (m *Manager) AddTodo(task string) (models.TodoItem, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	norm := models.NormalizeTask(task)
	if norm == "" {
		return models.TodoItem{}, false, ErrEmptyTask
	}

	for _, t := range m.doc.Todos {
		if !t.Completed && models.NormalizeTask(t.Task) == norm {
			return t, false, nil
		}
	}

	item, err := models.NewTodoItem(m.doc.NextTodoID(), task)
	if err != nil {
		return models.TodoItem{}, false, err
	}

	prev := m.doc.Todos
	m.doc.Todos = append(m.doc.Todos, *item)
	if err := m.store.Save(m.doc); err != nil {
		m.doc.Todos = prev
		return models.TodoItem{}, false, err
	}
	return *item, true, nil
}

// ActiveTodos returns non-completed todos in insertion order.
func (m *Manager) ActiveTodos() []models.TodoItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.ActiveTodos()
}

// AllTodos returns every todo, active and completed, in insertion order.
func (m *Manager) AllTodos() []models.TodoItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.TodoItem, len(m.doc.Todos))
	copy(out, m.doc.Todos)
	return out
}

// CompleteTodo marks the first active todo matching query as completed.
// A todo matches when its normalized task equals the normalized query or
// contains it as a substring, so "groceries" completes "Buy groceries".
// Ties break on insertion order. Items are retained for history and stats
// rather than deleted. The second return reports whether a match was found.
func (m *Manager) CompleteTodo(query string) (models.TodoItem, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	norm := models.NormalizeTask(query)
	if norm == "" {
		return models.TodoItem{}, false, ErrEmptyTask
	}

	for i := range m.doc.Todos {
		t := &m.doc.Todos[i]
		if t.Completed {
			continue
		}
		taskNorm := models.NormalizeTask(t.Task)
		if taskNorm == norm || strings.Contains(taskNorm, norm) {
			t.Completed = true
			if err := m.store.Save(m.doc); err != nil {
				t.Completed = false
				return models.TodoItem{}, false, err
			}
			return *t, true, nil
		}
	}
	return models.TodoItem{}, false, nil
}

// CompleteAll marks every active todo as completed and returns how many
// were affected. Zero active todos is a no-op with count 0.
func (m *Manager) CompleteAll() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var completed []int
	for i := range m.doc.Todos {
		if !m.doc.Todos[i].Completed {
			m.doc.Todos[i].Completed = true
			completed = append(completed, i)
		}
	}
	if len(completed) == 0 {
		return 0, nil
	}

	if err := m.store.Save(m.doc); err != nil {
		for _, i := range completed {
			m.doc.Todos[i].Completed = false
		}
		return 0, err
	}
	return len(completed), nil
}

// RecordExchange appends a user/assistant turn to the conversation log, then
// trims from the front until the history cap holds. Strict FIFO: recency of
// creation, not access, governs retention.
func (m *Manager) RecordExchange(userText, assistantText string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ex, err := models.NewExchange(userText, assistantText)
	if err != nil {
		return err
	}

	prev := m.doc.ConversationHistory
	history := append(m.doc.ConversationHistory, *ex)
	if len(history) > m.maxHistory {
		history = history[len(history)-m.maxHistory:]
	}
	m.doc.ConversationHistory = history

	if err := m.store.Save(m.doc); err != nil {
		m.doc.ConversationHistory = prev
		return err
	}
	return nil
}

// RecentHistory returns the last n exchanges in chronological order, or all
// of them when fewer exist.
func (m *Manager) RecentHistory(n int) []models.Exchange {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := m.doc.ConversationHistory
	if n <= 0 || n > len(history) {
		n = len(history)
	}
	out := make([]models.Exchange, n)
	copy(out, history[len(history)-n:])
	return out
}

// ResetHistory clears the conversation log. Todos and profile are untouched.
func (m *Manager) ResetHistory() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.doc.ConversationHistory
	m.doc.ConversationHistory = []models.Exchange{}
	if err := m.store.Save(m.doc); err != nil {
		m.doc.ConversationHistory = prev
		return err
	}
	return nil
}

// SetUserName trims and stores the user's name. Empty input is rejected
// with ErrEmptyName and no mutation.
func (m *Manager) SetUserName(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	prev := m.doc.UserName
	m.doc.UserName = name
	if err := m.store.Save(m.doc); err != nil {
		m.doc.UserName = prev
		return err
	}
	return nil
}

// UserName returns the stored name; empty means unset.
func (m *Manager) UserName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.UserName
}

// Stats returns counts and timestamps for the whole document.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		UserName:       m.doc.UserName,
		ActiveTodos:    len(m.doc.ActiveTodos()),
		CompletedTodos: len(m.doc.CompletedTodos()),
		TotalExchanges: len(m.doc.ConversationHistory),
		CreatedAt:      m.doc.CreatedAt,
		LastUpdated:    m.doc.LastUpdated,
	}
}
