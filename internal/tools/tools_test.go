// ABOUTME: Tests for the tool dispatch contract
// ABOUTME: Verifies outcome tags, rendered messages, and argument validation
package tools

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/todo-agent/internal/memory"
	"github.com/harper/todo-agent/internal/storage"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "memory.json"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	mgr, err := memory.NewManager(store, 0)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return NewDispatcher(mgr)
}

func call(t *testing.T, d *Dispatcher, name string, args map[string]any) Result {
	t.Helper()
	def := d.Find(name)
	if def == nil {
		t.Fatalf("tool %q not registered", name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return def.Call(context.Background(), args)
}

func TestDefinitionsCoverOperationSurface(t *testing.T) {
	d := newTestDispatcher(t)

	want := []string{
		"add_todo", "list_todos", "remove_todo",
		"set_user_name", "get_user_name", "get_memory_stats",
	}
	defs := d.Definitions()
	if len(defs) != len(want) {
		t.Fatalf("Definitions() count = %d, want %d", len(defs), len(want))
	}
	for _, name := range want {
		def := d.Find(name)
		if def == nil {
			t.Errorf("missing tool %q", name)
			continue
		}
		if def.Description == "" {
			t.Errorf("%s: empty description", name)
		}
		if def.Parameters["type"] != "object" {
			t.Errorf("%s: parameters should be a JSON schema object", name)
		}
	}
}

func TestAddTodoOutcomes(t *testing.T) {
	d := newTestDispatcher(t)

	res := call(t, d, "add_todo", map[string]any{"task": "Buy milk"})
	if res.Outcome != OutcomeOK {
		t.Fatalf("add outcome = %s, want ok", res.Outcome)
	}
	if !strings.Contains(res.Message, "Added 'Buy milk'") {
		t.Errorf("add message = %q", res.Message)
	}

	res = call(t, d, "add_todo", map[string]any{"task": "buy   MILK"})
	if res.Outcome != OutcomeDuplicate {
		t.Errorf("duplicate outcome = %s, want duplicate", res.Outcome)
	}
	if !strings.Contains(res.Message, "already in your to-do list") {
		t.Errorf("duplicate message = %q", res.Message)
	}
}

func TestAddTodoInvalidArgs(t *testing.T) {
	d := newTestDispatcher(t)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing arg", map[string]any{}},
		{"empty string", map[string]any{"task": ""}},
		{"whitespace", map[string]any{"task": "   "}},
		{"wrong type", map[string]any{"task": 42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, d, "add_todo", tt.args)
			if res.Outcome != OutcomeInvalid {
				t.Errorf("outcome = %s, want invalid", res.Outcome)
			}
		})
	}
}

func TestListTodos(t *testing.T) {
	d := newTestDispatcher(t)

	res := call(t, d, "list_todos", nil)
	if res.Outcome != OutcomeOK {
		t.Fatalf("empty list outcome = %s, want ok", res.Outcome)
	}
	if !strings.Contains(res.Message, "empty") {
		t.Errorf("empty list message = %q", res.Message)
	}

	call(t, d, "add_todo", map[string]any{"task": "Buy milk"})
	call(t, d, "add_todo", map[string]any{"task": "Walk dog"})

	res = call(t, d, "list_todos", nil)
	if !strings.Contains(res.Message, "1. Buy milk") || !strings.Contains(res.Message, "2. Walk dog") {
		t.Errorf("list message = %q, want numbered items in insertion order", res.Message)
	}
}

func TestRemoveTodo(t *testing.T) {
	d := newTestDispatcher(t)
	call(t, d, "add_todo", map[string]any{"task": "Buy groceries"})

	res := call(t, d, "remove_todo", map[string]any{"task": "groceries"})
	if res.Outcome != OutcomeOK {
		t.Fatalf("remove outcome = %s, want ok", res.Outcome)
	}
	if !strings.Contains(res.Message, "Removed 'Buy groceries'") {
		t.Errorf("remove message = %q", res.Message)
	}

	res = call(t, d, "remove_todo", map[string]any{"task": "nonexistent"})
	if res.Outcome != OutcomeNotFound {
		t.Errorf("not-found outcome = %s, want not_found", res.Outcome)
	}

	res = call(t, d, "list_todos", nil)
	if !strings.Contains(res.Message, "empty") {
		t.Errorf("list after remove = %q, want empty", res.Message)
	}
}

func TestRemoveTodoBulk(t *testing.T) {
	d := newTestDispatcher(t)
	call(t, d, "add_todo", map[string]any{"task": "one"})
	call(t, d, "add_todo", map[string]any{"task": "two"})

	for _, keyword := range []string{"all", "everything", "all todos", "all tasks"} {
		t.Run(keyword, func(t *testing.T) {
			res := call(t, d, "remove_todo", map[string]any{"task": keyword})
			switch res.Outcome {
			case OutcomeOK:
				if !strings.Contains(res.Message, "Removed all 2 tasks") {
					t.Errorf("bulk message = %q", res.Message)
				}
				// Repopulate for the next keyword.
				call(t, d, "add_todo", map[string]any{"task": "one"})
				call(t, d, "add_todo", map[string]any{"task": "two"})
			default:
				t.Errorf("bulk outcome = %s, want ok", res.Outcome)
			}
		})
	}
}

func TestRemoveTodoBulkOnEmptyList(t *testing.T) {
	d := newTestDispatcher(t)

	res := call(t, d, "remove_todo", map[string]any{"task": "all"})
	if res.Outcome != OutcomeNotFound {
		t.Errorf("bulk-on-empty outcome = %s, want not_found", res.Outcome)
	}
	if !strings.Contains(res.Message, "already empty") {
		t.Errorf("bulk-on-empty message = %q", res.Message)
	}
}

func TestUserNameTools(t *testing.T) {
	d := newTestDispatcher(t)

	res := call(t, d, "get_user_name", nil)
	if res.Outcome != OutcomeNotFound {
		t.Errorf("unset name outcome = %s, want not_found", res.Outcome)
	}

	res = call(t, d, "set_user_name", map[string]any{"name": "  Alice "})
	if res.Outcome != OutcomeOK {
		t.Fatalf("set name outcome = %s, want ok", res.Outcome)
	}
	if !strings.Contains(res.Message, "Alice") {
		t.Errorf("set name message = %q", res.Message)
	}

	res = call(t, d, "set_user_name", map[string]any{"name": "   "})
	if res.Outcome != OutcomeInvalid {
		t.Errorf("blank name outcome = %s, want invalid", res.Outcome)
	}

	res = call(t, d, "get_user_name", nil)
	if res.Outcome != OutcomeOK || !strings.Contains(res.Message, "Alice") {
		t.Errorf("get name = %s %q, want ok with Alice", res.Outcome, res.Message)
	}
}

func TestGetMemoryStats(t *testing.T) {
	d := newTestDispatcher(t)
	call(t, d, "add_todo", map[string]any{"task": "one"})
	call(t, d, "add_todo", map[string]any{"task": "two"})
	call(t, d, "remove_todo", map[string]any{"task": "one"})

	res := call(t, d, "get_memory_stats", nil)
	if res.Outcome != OutcomeOK {
		t.Fatalf("stats outcome = %s, want ok", res.Outcome)
	}
	if !strings.Contains(res.Message, "Active todos: 1") {
		t.Errorf("stats message missing active count: %q", res.Message)
	}
	if !strings.Contains(res.Message, "Completed todos: 1") {
		t.Errorf("stats message missing completed count: %q", res.Message)
	}
}

func TestRetrySafety(t *testing.T) {
	// Retrying the same remove is at-most-one-intended-effect: the second
	// call reports not_found instead of failing or double-applying.
	d := newTestDispatcher(t)
	call(t, d, "add_todo", map[string]any{"task": "Buy milk"})

	first := call(t, d, "remove_todo", map[string]any{"task": "milk"})
	second := call(t, d, "remove_todo", map[string]any{"task": "milk"})

	if first.Outcome != OutcomeOK {
		t.Errorf("first remove outcome = %s, want ok", first.Outcome)
	}
	if second.Outcome != OutcomeNotFound {
		t.Errorf("retried remove outcome = %s, want not_found", second.Outcome)
	}
}
