package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"parkassist/internal/llm"
)

type chatCall struct {
	messages []llm.Message
	tools    []llm.Tool
}

// scriptedCompleter replays a fixed sequence of replies and records every
// call it receives.
type scriptedCompleter struct {
	replies []llm.Message
	errs    []error
	calls   []chatCall
}

func (c *scriptedCompleter) Chat(_ context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Message, error) {
	n := len(c.calls)
	copied := make([]llm.Message, len(messages))
	copy(copied, messages)
	c.calls = append(c.calls, chatCall{messages: copied, tools: tools})
	if n < len(c.errs) && c.errs[n] != nil {
		return nil, c.errs[n]
	}
	if n >= len(c.replies) {
		return nil, errors.New("unexpected model call")
	}
	reply := c.replies[n]
	return &reply, nil
}

type dispatched struct {
	name string
	args string
}

type recordingDispatcher struct {
	result string
	calls  []dispatched
}

func (d *recordingDispatcher) Definitions() []llm.Tool {
	return []llm.Tool{{Type: "function", Function: llm.ToolFunction{Name: "lost_ticket"}}}
}

func (d *recordingDispatcher) Dispatch(_ context.Context, name string, args json.RawMessage) string {
	d.calls = append(d.calls, dispatched{name: name, args: string(args)})
	return d.result
}

func TestResolve_PlainAnswerWithoutTools(t *testing.T) {
	completer := &scriptedCompleter{
		replies: []llm.Message{{Role: llm.RoleAssistant, Content: "How can I help you?"}},
	}
	tools := &recordingDispatcher{}
	history := NewMemoryHistory()
	orch := NewOrchestrator(completer, tools, history, "", zap.NewNop())

	out, err := orch.Resolve(context.Background(), "conv-1", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "How can I help you?" {
		t.Fatalf("unexpected answer: %s", out)
	}
	if len(completer.calls) != 1 {
		t.Fatalf("expected a single model call, got %d", len(completer.calls))
	}
	if len(tools.calls) != 0 {
		t.Fatal("no tools should have been dispatched")
	}

	first := completer.calls[0].messages
	if first[0].Role != llm.RoleSystem || first[0].Content != DefaultSystemPrompt {
		t.Fatal("system prompt must open every model call")
	}

	stored, _ := history.List(context.Background(), "conv-1")
	if len(stored) != 2 {
		t.Fatalf("expected user+assistant stored, got %d messages", len(stored))
	}
	if stored[0].Role != llm.RoleUser || stored[1].Role != llm.RoleAssistant {
		t.Fatalf("unexpected stored roles: %s, %s", stored[0].Role, stored[1].Role)
	}
}

func TestResolve_ToolRoundMakesExactlyTwoModelCalls(t *testing.T) {
	completer := &scriptedCompleter{
		replies: []llm.Message{
			{
				Role: llm.RoleAssistant,
				ToolCalls: []llm.ToolCall{{
					ID:   "call-1",
					Type: "function",
					Function: llm.FunctionCall{
						Name:      "lost_ticket",
						Arguments: `{"license_plate":"ABC123"}`,
					},
				}},
			},
			{Role: llm.RoleAssistant, Content: "Your session is closed, you may exit."},
		},
	}
	tools := &recordingDispatcher{result: "session closed"}
	history := NewMemoryHistory()
	orch := NewOrchestrator(completer, tools, history, "", zap.NewNop())

	out, err := orch.Resolve(context.Background(), "conv-1", "I lost my ticket")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Your session is closed, you may exit." {
		t.Fatalf("unexpected answer: %s", out)
	}
	if len(completer.calls) != 2 {
		t.Fatalf("expected exactly two model calls, got %d", len(completer.calls))
	}
	if len(tools.calls) != 1 || tools.calls[0].name != "lost_ticket" {
		t.Fatalf("unexpected dispatches: %+v", tools.calls)
	}
	if tools.calls[0].args != `{"license_plate":"ABC123"}` {
		t.Fatalf("arguments passed through verbatim, got %s", tools.calls[0].args)
	}

	// The follow-up call carries the assistant tool request and a tool
	// message tied to it by ID.
	second := completer.calls[1].messages
	last := second[len(second)-1]
	if last.Role != llm.RoleTool || last.ToolCallID != "call-1" || last.Content != "session closed" {
		t.Fatalf("unexpected tool message in follow-up: %+v", last)
	}

	stored, _ := history.List(context.Background(), "conv-1")
	// user, assistant tool request, tool result, final assistant.
	if len(stored) != 4 {
		t.Fatalf("expected four stored messages, got %d", len(stored))
	}
	for _, m := range stored {
		if m.Role == llm.RoleSystem {
			t.Fatal("system prompt must never be persisted")
		}
	}
}

func TestResolve_AllToolCallsDispatched(t *testing.T) {
	completer := &scriptedCompleter{
		replies: []llm.Message{
			{
				Role: llm.RoleAssistant,
				ToolCalls: []llm.ToolCall{
					{ID: "call-1", Type: "function", Function: llm.FunctionCall{Name: "lost_ticket", Arguments: `{}`}},
					{ID: "call-2", Type: "function", Function: llm.FunctionCall{Name: "cannot_pay", Arguments: `{}`}},
				},
			},
			{Role: llm.RoleAssistant, Content: "done"},
		},
	}
	tools := &recordingDispatcher{result: "ok"}
	orch := NewOrchestrator(completer, tools, NewMemoryHistory(), "", zap.NewNop())

	if _, err := orch.Resolve(context.Background(), "conv-1", "help"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tools.calls) != 2 {
		t.Fatalf("expected both tool calls dispatched, got %d", len(tools.calls))
	}
	if tools.calls[0].name != "lost_ticket" || tools.calls[1].name != "cannot_pay" {
		t.Fatalf("dispatch order must follow the model's order: %+v", tools.calls)
	}
}

func TestResolve_ModelFailureYieldsApology(t *testing.T) {
	completer := &scriptedCompleter{errs: []error{errors.New("connection refused")}}
	history := NewMemoryHistory()
	orch := NewOrchestrator(completer, &recordingDispatcher{}, history, "", zap.NewNop())

	out, err := orch.Resolve(context.Background(), "conv-1", "hello")
	if err != nil {
		t.Fatalf("model failure must not surface as an error: %v", err)
	}
	if out != ApologyMessage {
		t.Fatalf("expected apology, got: %s", out)
	}

	stored, _ := history.List(context.Background(), "conv-1")
	if len(stored) != 2 || stored[1].Content != ApologyMessage {
		t.Fatalf("apology must still be persisted, got %+v", stored)
	}
}

func TestResolve_FollowUpFailureYieldsApology(t *testing.T) {
	completer := &scriptedCompleter{
		replies: []llm.Message{{
			Role: llm.RoleAssistant,
			ToolCalls: []llm.ToolCall{{
				ID: "call-1", Type: "function",
				Function: llm.FunctionCall{Name: "lost_ticket", Arguments: `{}`},
			}},
		}},
		errs: []error{nil, errors.New("timeout")},
	}
	orch := NewOrchestrator(completer, &recordingDispatcher{result: "ok"}, NewMemoryHistory(), "", zap.NewNop())

	out, err := orch.Resolve(context.Background(), "conv-1", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != ApologyMessage {
		t.Fatalf("expected apology, got: %s", out)
	}
}

func TestResolve_HistoryReplayedOnNextTurn(t *testing.T) {
	completer := &scriptedCompleter{
		replies: []llm.Message{
			{Role: llm.RoleAssistant, Content: "What is your license plate?"},
			{Role: llm.RoleAssistant, Content: "Thank you."},
		},
	}
	history := NewMemoryHistory()
	orch := NewOrchestrator(completer, &recordingDispatcher{}, history, "", zap.NewNop())

	if _, err := orch.Resolve(context.Background(), "conv-1", "I lost my ticket"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := orch.Resolve(context.Background(), "conv-1", "ABC123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := completer.calls[1].messages
	// system, prior user, prior assistant, new user.
	if len(second) != 4 {
		t.Fatalf("expected four messages on the second turn, got %d", len(second))
	}
	if second[1].Content != "I lost my ticket" || second[3].Content != "ABC123" {
		t.Fatalf("history not replayed in order: %+v", second)
	}
}

func TestReset_ClearsOnlyTargetConversation(t *testing.T) {
	history := NewMemoryHistory()
	ctx := context.Background()
	_ = history.Append(ctx, "conv-1", llm.Message{Role: llm.RoleUser, Content: "a"})
	_ = history.Append(ctx, "conv-2", llm.Message{Role: llm.RoleUser, Content: "b"})

	orch := NewOrchestrator(&scriptedCompleter{}, &recordingDispatcher{}, history, "", zap.NewNop())
	if err := orch.Reset(ctx, "conv-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	one, _ := history.List(ctx, "conv-1")
	two, _ := history.List(ctx, "conv-2")
	if len(one) != 0 {
		t.Fatalf("conv-1 should be empty, got %d", len(one))
	}
	if len(two) != 1 {
		t.Fatalf("conv-2 must be untouched, got %d", len(two))
	}
}
