// ABOUTME: Tool dispatch contract exposed to LLM orchestrators
// ABOUTME: Maps named operations onto the Memory Manager and renders friendly result messages
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harper/todo-agent/internal/memory"
)

// Outcome is the machine-checkable tag an orchestrator branches on. The
// textual message in Result is what reaches the end user.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeError     Outcome = "error"
)

// Result pairs a human-readable message with its outcome tag. Duplicates and
// not-found are reportable no-ops, not errors; only store IO failures map to
// OutcomeError.
type Result struct {
	Outcome Outcome
	Message string
}

// Definition describes one operation: its name, description, and JSON-schema
// parameters, plus the callable itself. Both the MCP server and the OpenAI
// function-calling agent are generated from this table.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any
	Call        func(ctx context.Context, args map[string]any) Result
}

// bulkKeywords are remove_todo queries that complete every active todo.
var bulkKeywords = map[string]bool{
	"all":        true,
	"everything": true,
	"all todos":  true,
	"all tasks":  true,
}

// Dispatcher validates untrusted tool-call arguments and applies them to the
// Memory Manager. Every incoming call is fully validated regardless of who
// makes it.
type Dispatcher struct {
	mgr *memory.Manager
}

// NewDispatcher creates a dispatcher over the given manager.
func NewDispatcher(mgr *memory.Manager) *Dispatcher {
	return &Dispatcher{mgr: mgr}
}

// Definitions returns every operation in the dispatch surface.
func (d *Dispatcher) Definitions() []Definition {
	return []Definition{
		{
			Name:        "add_todo",
			Description: "Add a new task to the user's to-do list.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task": map[string]any{
						"type":        "string",
						"description": "The task description to add to the to-do list",
					},
				},
				"required": []string{"task"},
			},
			Call: d.traced("add_todo", d.addTodo),
		},
		{
			Name:        "list_todos",
			Description: "List all active tasks in the user's to-do list.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			Call: d.traced("list_todos", d.listTodos),
		},
		{
			Name:        "remove_todo",
			Description: "Remove a task from the user's to-do list by its description. Pass 'all' to clear the whole list.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task": map[string]any{
						"type":        "string",
						"description": "The task to remove; partial matches like 'groceries' work",
					},
				},
				"required": []string{"task"},
			},
			Call: d.traced("remove_todo", d.removeTodo),
		},
		{
			Name:        "set_user_name",
			Description: "Set or update the user's name.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "The user's name to remember",
					},
				},
				"required": []string{"name"},
			},
			Call: d.traced("set_user_name", d.setUserName),
		},
		{
			Name:        "get_user_name",
			Description: "Get the user's name if it has been set.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			Call: d.traced("get_user_name", d.getUserName),
		},
		{
			Name:        "get_memory_stats",
			Description: "Get statistics about the user's todos and conversation memory.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			Call: d.traced("get_memory_stats", d.getStats),
		},
	}
}

// Find returns the definition with the given name, or nil.
func (d *Dispatcher) Find(name string) *Definition {
	defs := d.Definitions()
	for i := range defs {
		if defs[i].Name == name {
			return &defs[i]
		}
	}
	return nil
}

// traced wraps a handler with per-call structured logging. Each dispatch
// gets a short id so calls can be correlated across agent turns.
func (d *Dispatcher) traced(name string, fn func(context.Context, map[string]any) Result) func(context.Context, map[string]any) Result {
	return func(ctx context.Context, args map[string]any) Result {
		callID := fmt.Sprintf("call_%s", uuid.New().String()[:8])
		res := fn(ctx, args)
		log.Debug("tool dispatched", "tool", name, "call_id", callID, "outcome", res.Outcome)
		return res
	}
}

func (d *Dispatcher) addTodo(_ context.Context, args map[string]any) Result {
	task, ok := stringArg(args, "task")
	if !ok {
		return Result{OutcomeInvalid, "I need a task description to add."}
	}

	item, added, err := d.mgr.AddTodo(task)
	if errors.Is(err, memory.ErrEmptyTask) {
		return Result{OutcomeInvalid, "I need a task description to add."}
	}
	if err != nil {
		return storeFailure(err)
	}
	if !added {
		return Result{OutcomeDuplicate, fmt.Sprintf("'%s' is already in your to-do list.", item.Task)}
	}
	return Result{OutcomeOK, fmt.Sprintf("Added '%s' to your to-do list.", item.Task)}
}

func (d *Dispatcher) listTodos(_ context.Context, _ map[string]any) Result {
	todos := d.mgr.ActiveTodos()
	if len(todos) == 0 {
		return Result{OutcomeOK, "Your to-do list is empty. Great job staying on top of things!"}
	}

	var b strings.Builder
	b.WriteString("Your current to-do list:")
	for i, todo := range todos {
		fmt.Fprintf(&b, "\n%d. %s", i+1, todo.Task)
	}
	return Result{OutcomeOK, b.String()}
}

func (d *Dispatcher) removeTodo(_ context.Context, args map[string]any) Result {
	task, ok := stringArg(args, "task")
	if !ok {
		return Result{OutcomeInvalid, "I need to know which task to remove."}
	}

	if bulkKeywords[strings.ToLower(strings.TrimSpace(task))] {
		count, err := d.mgr.CompleteAll()
		if err != nil {
			return storeFailure(err)
		}
		if count == 0 {
			return Result{OutcomeNotFound, "Your to-do list is already empty."}
		}
		return Result{OutcomeOK, fmt.Sprintf("Removed all %d tasks from your to-do list.", count)}
	}

	item, found, err := d.mgr.CompleteTodo(task)
	if errors.Is(err, memory.ErrEmptyTask) {
		return Result{OutcomeInvalid, "I need to know which task to remove."}
	}
	if err != nil {
		return storeFailure(err)
	}
	if !found {
		return Result{OutcomeNotFound, fmt.Sprintf("Task '%s' not found in your to-do list.", task)}
	}
	return Result{OutcomeOK, fmt.Sprintf("Removed '%s' from your to-do list.", item.Task)}
}

func (d *Dispatcher) setUserName(_ context.Context, args map[string]any) Result {
	name, ok := stringArg(args, "name")
	if !ok {
		return Result{OutcomeInvalid, "I need a name to remember."}
	}

	err := d.mgr.SetUserName(name)
	if errors.Is(err, memory.ErrEmptyName) {
		return Result{OutcomeInvalid, "I need a name to remember."}
	}
	if err != nil {
		return storeFailure(err)
	}
	return Result{OutcomeOK, fmt.Sprintf("Nice to meet you, %s! I'll remember your name.", d.mgr.UserName())}
}

func (d *Dispatcher) getUserName(_ context.Context, _ map[string]any) Result {
	name := d.mgr.UserName()
	if name == "" {
		return Result{OutcomeNotFound, "I don't know your name yet. What should I call you?"}
	}
	return Result{OutcomeOK, fmt.Sprintf("Your name is %s.", name)}
}

func (d *Dispatcher) getStats(_ context.Context, _ map[string]any) Result {
	stats := d.mgr.Stats()

	name := stats.UserName
	if name == "" {
		name = "(not set)"
	}

	msg := fmt.Sprintf(
		"Your Activity Stats:\n"+
			"- Name: %s\n"+
			"- Active todos: %d\n"+
			"- Completed todos: %d\n"+
			"- Total conversations: %d\n"+
			"- Memory created: %s\n"+
			"- Last updated: %s",
		name,
		stats.ActiveTodos,
		stats.CompletedTodos,
		stats.TotalExchanges,
		stats.CreatedAt.Format("2006-01-02"),
		stats.LastUpdated.Format("2006-01-02"),
	)
	return Result{OutcomeOK, msg}
}

func storeFailure(err error) Result {
	log.Error("memory operation failed", "error", err)
	return Result{OutcomeError, "Sorry, I couldn't save that change. Your list is unchanged."}
}

// stringArg extracts a non-empty string argument. Arguments arrive from an
// untrusted caller, so both presence and type are checked.
func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
