// ABOUTME: Orchestrating agent that turns user utterances into tool calls
// ABOUTME: Runs an OpenAI function-calling loop against the memory tool dispatch surface
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/harper/todo-agent/internal/memory"
	"github.com/harper/todo-agent/internal/tools"
)

// maxToolSteps bounds the reasoning loop so a confused model cannot spin
// forever; each step is one completion plus its tool calls.
const maxToolSteps = 8

// contextExchanges is how many recent exchanges are replayed to the model
// as conversational context.
const contextExchanges = 5

const systemPrompt = `You are a helpful personal assistant that manages todo lists and holds conversations.

Your capabilities:
- Add, remove, and list todo items
- Remember the user's name and conversation history
- Provide helpful responses and maintain context
- Be friendly and conversational

Use the provided tools to read or change the user's todo list and profile.
Call a tool whenever the user asks about their list, their name, or their
stats; answer directly for ordinary conversation.`

// chatCompleter is the slice of the LLM client the agent needs; tests
// substitute a scripted fake.
type chatCompleter interface {
	ChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, toolDefs []openai.Tool) (openai.ChatCompletionMessage, error)
}

// Agent owns one conversation-facing loop over the memory manager. The
// manager stays the single source of truth; the agent only relays.
type Agent struct {
	llm        chatCompleter
	mgr        *memory.Manager
	dispatcher *tools.Dispatcher
}

// New creates an agent over the given LLM client and memory manager.
func New(llmClient chatCompleter, mgr *memory.Manager) *Agent {
	return &Agent{
		llm:        llmClient,
		mgr:        mgr,
		dispatcher: tools.NewDispatcher(mgr),
	}
}

// WelcomeMessage greets the user, by name when one is stored.
func (a *Agent) WelcomeMessage() string {
	if name := a.mgr.UserName(); name != "" {
		return fmt.Sprintf("Welcome back, %s! How can I help you today?", name)
	}
	return "Hello! I'm your todo assistant. I can manage your to-do list and remember things between sessions. What's your name?"
}

// Chat processes one user utterance: it asks the model what to do, executes
// any requested tool calls against memory, and loops until the model
// produces a final reply. The finished exchange is recorded in the
// conversation log.
func (a *Agent) Chat(ctx context.Context, userText string) (string, error) {
	turnID := fmt.Sprintf("turn_%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8])

	messages := a.buildMessages(userText)
	toolDefs := a.openAITools()

	for step := 0; step < maxToolSteps; step++ {
		msg, err := a.llm.ChatCompletion(ctx, messages, toolDefs)
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}

		if len(msg.ToolCalls) == 0 {
			reply := msg.Content
			if reply == "" {
				reply = "I'm not sure how to help with that."
			}
			if err := a.mgr.RecordExchange(userText, reply); err != nil {
				log.Warn("failed to record exchange", "turn_id", turnID, "error", err)
			}
			return reply, nil
		}

		messages = append(messages, msg)
		for _, tc := range msg.ToolCalls {
			result := a.execToolCall(ctx, turnID, tc)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				ToolCallID: tc.ID,
			})
		}
	}

	reply := "I had trouble finishing that request. Could you rephrase it?"
	if err := a.mgr.RecordExchange(userText, reply); err != nil {
		log.Warn("failed to record exchange", "turn_id", turnID, "error", err)
	}
	return reply, nil
}

// execToolCall dispatches a single requested tool call and returns the text
// relayed back to the model. A bad tool name or malformed arguments become
// an error message for the model to recover from, never a process fault.
func (a *Agent) execToolCall(ctx context.Context, turnID string, tc openai.ToolCall) string {
	def := a.dispatcher.Find(tc.Function.Name)
	if def == nil {
		log.Warn("model requested unknown tool", "turn_id", turnID, "tool", tc.Function.Name)
		return fmt.Sprintf("tool %q not found", tc.Function.Name)
	}

	args := map[string]any{}
	if tc.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			log.Warn("malformed tool arguments", "turn_id", turnID, "tool", tc.Function.Name, "error", err)
			return fmt.Sprintf("invalid arguments for %s: %v", tc.Function.Name, err)
		}
	}

	res := def.Call(ctx, args)
	log.Debug("tool call executed", "turn_id", turnID, "tool", tc.Function.Name, "outcome", res.Outcome)
	return res.Message
}

// buildMessages assembles the prompt: system instructions, stored profile
// context, the recent conversation window, then the new utterance.
func (a *Agent) buildMessages(userText string) []openai.ChatCompletionMessage {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}

	if name := a.mgr.UserName(); name != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: fmt.Sprintf("The user's name is %s.", name),
		})
	}

	for _, ex := range a.mgr.RecentHistory(contextExchanges) {
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: ex.User},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: ex.Assistant},
		)
	}

	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})
}

// openAITools converts the dispatch surface into OpenAI tool definitions.
func (a *Agent) openAITools() []openai.Tool {
	defs := a.dispatcher.Definitions()
	out := make([]openai.Tool, 0, len(defs))
	for _, d := range defs {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		})
	}
	return out
}
