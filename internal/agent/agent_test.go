// ABOUTME: Tests for the orchestrating agent loop
// ABOUTME: Uses a scripted fake completer to verify tool execution and exchange recording
package agent

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/harper/todo-agent/internal/memory"
	"github.com/harper/todo-agent/internal/storage"
)

// fakeCompleter replays a scripted sequence of assistant messages and
// records every request it receives.
type fakeCompleter struct {
	script   []openai.ChatCompletionMessage
	requests [][]openai.ChatCompletionMessage
	tools    []openai.Tool
}

func (f *fakeCompleter) ChatCompletion(_ context.Context, messages []openai.ChatCompletionMessage, toolDefs []openai.Tool) (openai.ChatCompletionMessage, error) {
	f.requests = append(f.requests, messages)
	f.tools = toolDefs
	if len(f.script) == 0 {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "done"}, nil
	}
	next := f.script[0]
	f.script = f.script[1:]
	return next, nil
}

func newTestAgent(t *testing.T, fake *fakeCompleter) (*Agent, *memory.Manager) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "memory.json"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	mgr, err := memory.NewManager(store, 0)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return New(fake, mgr), mgr
}

func toolCallMsg(id, name, args string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleAssistant,
		ToolCalls: []openai.ToolCall{{
			ID:       id,
			Type:     openai.ToolTypeFunction,
			Function: openai.FunctionCall{Name: name, Arguments: args},
		}},
	}
}

func TestChatPlainReply(t *testing.T) {
	fake := &fakeCompleter{script: []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleAssistant, Content: "Hello there!"},
	}}
	agent, mgr := newTestAgent(t, fake)

	reply, err := agent.Chat(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "Hello there!" {
		t.Errorf("reply = %q", reply)
	}

	history := mgr.RecentHistory(0)
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	if history[0].User != "hi" || history[0].Assistant != "Hello there!" {
		t.Errorf("recorded exchange = %+v", history[0])
	}
}

func TestChatExecutesToolCall(t *testing.T) {
	fake := &fakeCompleter{script: []openai.ChatCompletionMessage{
		toolCallMsg("call-1", "add_todo", `{"task":"Buy milk"}`),
		{Role: openai.ChatMessageRoleAssistant, Content: "Added it for you."},
	}}
	agent, mgr := newTestAgent(t, fake)

	reply, err := agent.Chat(context.Background(), "add buy milk to my list")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "Added it for you." {
		t.Errorf("reply = %q", reply)
	}

	todos := mgr.ActiveTodos()
	if len(todos) != 1 || todos[0].Task != "Buy milk" {
		t.Errorf("todos = %+v, want Buy milk added", todos)
	}

	// The second request must carry the tool result back to the model.
	if len(fake.requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(fake.requests))
	}
	last := fake.requests[1][len(fake.requests[1])-1]
	if last.Role != openai.ChatMessageRoleTool || last.ToolCallID != "call-1" {
		t.Errorf("final message = %+v, want tool result for call-1", last)
	}
	if !strings.Contains(last.Content, "Added 'Buy milk'") {
		t.Errorf("tool result content = %q", last.Content)
	}
}

func TestChatUnknownToolRecovers(t *testing.T) {
	fake := &fakeCompleter{script: []openai.ChatCompletionMessage{
		toolCallMsg("call-1", "bogus_tool", `{}`),
		{Role: openai.ChatMessageRoleAssistant, Content: "Sorry about that."},
	}}
	agent, _ := newTestAgent(t, fake)

	reply, err := agent.Chat(context.Background(), "do something odd")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "Sorry about that." {
		t.Errorf("reply = %q", reply)
	}

	last := fake.requests[1][len(fake.requests[1])-1]
	if !strings.Contains(last.Content, "not found") {
		t.Errorf("tool result for unknown tool = %q", last.Content)
	}
}

func TestChatMalformedArgumentsRecovers(t *testing.T) {
	fake := &fakeCompleter{script: []openai.ChatCompletionMessage{
		toolCallMsg("call-1", "add_todo", `{"task":`),
		{Role: openai.ChatMessageRoleAssistant, Content: "Let me try again."},
	}}
	agent, mgr := newTestAgent(t, fake)

	if _, err := agent.Chat(context.Background(), "add something"); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got := len(mgr.ActiveTodos()); got != 0 {
		t.Errorf("todos after malformed args = %d, want 0", got)
	}

	last := fake.requests[1][len(fake.requests[1])-1]
	if !strings.Contains(last.Content, "invalid arguments") {
		t.Errorf("tool result = %q", last.Content)
	}
}

func TestChatStepLimit(t *testing.T) {
	// A model that never stops calling tools hits the step bound and the
	// turn still completes with a fallback reply.
	var script []openai.ChatCompletionMessage
	for i := 0; i < maxToolSteps+2; i++ {
		script = append(script, toolCallMsg("call-n", "list_todos", `{}`))
	}
	fake := &fakeCompleter{script: script}
	agent, mgr := newTestAgent(t, fake)

	reply, err := agent.Chat(context.Background(), "loop forever")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply == "" {
		t.Error("reply should be a fallback message, not empty")
	}
	if len(fake.requests) != maxToolSteps {
		t.Errorf("completions = %d, want %d", len(fake.requests), maxToolSteps)
	}
	if got := len(mgr.RecentHistory(0)); got != 1 {
		t.Errorf("history length = %d, want the turn recorded once", got)
	}
}

func TestBuildMessagesIncludesContext(t *testing.T) {
	fake := &fakeCompleter{script: []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleAssistant, Content: "ok"},
	}}
	agent, mgr := newTestAgent(t, fake)

	if err := mgr.SetUserName("Alice"); err != nil {
		t.Fatalf("SetUserName() error = %v", err)
	}
	if err := mgr.RecordExchange("earlier question", "earlier answer"); err != nil {
		t.Fatalf("RecordExchange() error = %v", err)
	}

	if _, err := agent.Chat(context.Background(), "what's next?"); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	sent := fake.requests[0]
	var sawName, sawHistory bool
	for _, m := range sent {
		if m.Role == openai.ChatMessageRoleSystem && strings.Contains(m.Content, "Alice") {
			sawName = true
		}
		if m.Role == openai.ChatMessageRoleUser && m.Content == "earlier question" {
			sawHistory = true
		}
	}
	if !sawName {
		t.Error("prompt should carry the stored user name")
	}
	if !sawHistory {
		t.Error("prompt should replay recent history")
	}
	if last := sent[len(sent)-1]; last.Content != "what's next?" {
		t.Errorf("last message = %q, want the new utterance", last.Content)
	}

	// Tool definitions cover the whole dispatch surface.
	if len(fake.tools) != 6 {
		t.Errorf("tool definitions = %d, want 6", len(fake.tools))
	}
}

func TestWelcomeMessage(t *testing.T) {
	fake := &fakeCompleter{}
	agent, mgr := newTestAgent(t, fake)

	if msg := agent.WelcomeMessage(); !strings.Contains(msg, "What's your name?") {
		t.Errorf("welcome for unknown user = %q", msg)
	}

	if err := mgr.SetUserName("Alice"); err != nil {
		t.Fatalf("SetUserName() error = %v", err)
	}
	if msg := agent.WelcomeMessage(); !strings.Contains(msg, "Alice") {
		t.Errorf("welcome for known user = %q", msg)
	}
}
