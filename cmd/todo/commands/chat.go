// ABOUTME: Interactive chat REPL backed by the LLM agent
// ABOUTME: Handles slash commands locally and routes everything else through the model
package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/harper/todo-agent/internal/agent"
	"github.com/harper/todo-agent/internal/llm"
	"github.com/harper/todo-agent/internal/memory"
	"github.com/harper/todo-agent/internal/tools"
)

var (
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with your todo assistant",
		Long: `Start an interactive conversation with your todo assistant.

Chat naturally about your tasks; the assistant reads and updates your
to-do list and remembers your name between sessions. Requires
OPENAI_API_KEY.

Slash commands work alongside conversation:
  /help    Show available commands
  /stats   Show memory and usage statistics
  /reset   Reset conversation history (keeps todos)
  /export  Show all todos, including completed ones
  /clear   Clear the screen
  /quit    Exit`,
		RunE: runChat,
	}

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	mgr, cfg, err := openManager()
	if err != nil {
		return err
	}

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("initializing LLM client (is OPENAI_API_KEY set?): %w", err)
	}

	repl := newREPL(mgr, agent.New(llmClient, mgr), cmd.InOrStdin(), cmd.OutOrStdout())
	return repl.run(cmd.Context())
}

// repl drives the interactive loop. Slash commands are handled locally
// against memory; everything else goes through the agent.
type repl struct {
	mgr   *memory.Manager
	agent *agent.Agent
	in    io.Reader
	out   io.Writer
}

func newREPL(mgr *memory.Manager, a *agent.Agent, in io.Reader, out io.Writer) *repl {
	return &repl{mgr: mgr, agent: a, in: in, out: out}
}

func (r *repl) run(ctx context.Context) error {
	fmt.Fprintln(r.out, headerStyle.Render("Todo Agent"))
	fmt.Fprintln(r.out, "Type a message to chat, or /help for commands.")
	fmt.Fprintln(r.out, assistantStyle.Render("Assistant: "+r.agent.WelcomeMessage()))

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, promptStyle.Render("You: "))
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := r.handleSlashCommand(scanner, line); quit {
				return nil
			}
			continue
		}

		reply, err := r.agent.Chat(ctx, line)
		if err != nil {
			fmt.Fprintln(r.out, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			continue
		}
		fmt.Fprintln(r.out, assistantStyle.Render("Assistant: "+reply))
	}
}

// handleSlashCommand runs a local command and reports whether to exit.
func (r *repl) handleSlashCommand(scanner *bufio.Scanner, line string) bool {
	switch strings.ToLower(strings.Fields(line)[0]) {
	case "/help":
		r.showHelp()
	case "/stats":
		res := tools.NewDispatcher(r.mgr).Find("get_memory_stats").Call(context.Background(), map[string]any{})
		fmt.Fprintln(r.out, res.Message)
	case "/reset":
		r.confirmReset(scanner)
	case "/export":
		r.showExport()
	case "/clear":
		fmt.Fprint(r.out, "\033[2J\033[H")
		fmt.Fprintln(r.out, headerStyle.Render("Todo Agent"))
	case "/quit", "/exit":
		fmt.Fprintln(r.out, noticeStyle.Render("Goodbye!"))
		return true
	default:
		fmt.Fprintln(r.out, errorStyle.Render(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", line)))
	}
	return false
}

func (r *repl) showHelp() {
	fmt.Fprintln(r.out, headerStyle.Render("Available Commands:"))
	fmt.Fprintln(r.out, `  /help    Show this help message
  /stats   Show memory and usage statistics
  /reset   Reset conversation history (keeps todos)
  /export  Show all todos, including completed ones
  /clear   Clear the screen
  /quit    Exit

Example conversations:
  "Add 'Buy groceries' to my todo list"
  "What's on my todo list?"
  "Remove 'finish project' from my todos"
  "My name is Alice"`)
}

func (r *repl) confirmReset(scanner *bufio.Scanner) {
	fmt.Fprint(r.out, noticeStyle.Render("Reset conversation history? Your todos are kept. (y/N): "))
	if !scanner.Scan() {
		return
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	if answer != "y" && answer != "yes" {
		fmt.Fprintln(r.out, "Reset cancelled.")
		return
	}
	if err := r.mgr.ResetHistory(); err != nil {
		fmt.Fprintln(r.out, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		return
	}
	fmt.Fprintln(r.out, noticeStyle.Render("Conversation history reset. Your todos are preserved."))
}

func (r *repl) showExport() {
	todos := r.mgr.AllTodos()
	if len(todos) == 0 {
		fmt.Fprintln(r.out, "No todos found.")
		return
	}

	var active, completed int
	fmt.Fprintln(r.out, headerStyle.Render("All Your Todos:"))
	for _, todo := range todos {
		marker := "[ ]"
		if todo.Completed {
			marker = "[x]"
			completed++
		} else {
			active++
		}
		fmt.Fprintf(r.out, "  %s #%d %s (created %s)\n", marker, todo.ID, todo.Task, formatTime(todo.CreatedAt))
	}
	fmt.Fprintf(r.out, "%d active, %d completed\n", active, completed)
}
