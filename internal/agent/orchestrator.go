package agent

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"parkassist/internal/llm"
)

// ApologyMessage is the fixed reply when the language model is
// unreachable. The turn ends there; no further tool chaining is
// attempted.
const ApologyMessage = "I am sorry, something went wrong on our side. Please try again in a moment or call the helpdesk for further assistance."

// DefaultSystemPrompt frames the assistant for the exit-lane dispute
// scenarios.
const DefaultSystemPrompt = "You are the exit-lane assistant of a parking facility. You help drivers who lost " +
	"their parking ticket, whose payment did not go through, or whose license plate was scanned incorrectly at entry. " +
	"Ask for the license plate number when it is missing, use the available tools to look up and settle the parking " +
	"session, and relay the tool results to the driver in a short, polite answer. For the plate mismatch case also ask " +
	"for the approximate entry time and the entry gate number. If a problem cannot be resolved with the tools, direct " +
	"the driver to the helpdesk."

// Completer is the black-box text completion service. It may answer with
// plain text or request tool invocations.
type Completer interface {
	Chat(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Message, error)
}

// ToolDispatcher executes tool calls requested by the model.
type ToolDispatcher interface {
	Definitions() []llm.Tool
	Dispatch(ctx context.Context, name string, args json.RawMessage) string
}

// Orchestrator drives one conversation turn: user message, model call,
// optional tool round, one follow-up model call, final answer. History is
// per conversation ID, never process-global.
type Orchestrator struct {
	completer    Completer
	tools        ToolDispatcher
	history      HistoryStore
	systemPrompt string
	logger       *zap.Logger
}

// NewOrchestrator builds orchestrator. An empty systemPrompt falls back
// to DefaultSystemPrompt.
func NewOrchestrator(completer Completer, tools ToolDispatcher, history HistoryStore, systemPrompt string, logger *zap.Logger) *Orchestrator {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &Orchestrator{
		completer:    completer,
		tools:        tools,
		history:      history,
		systemPrompt: systemPrompt,
		logger:       logger,
	}
}

// Resolve runs one user turn and returns the assistant's final text.
// Model failures degrade to the fixed apology; the error return is
// reserved for conditions the conversation cannot continue from, which
// currently do not exist.
func (o *Orchestrator) Resolve(ctx context.Context, conversationID, text string) (string, error) {
	history, err := o.history.List(ctx, conversationID)
	if err != nil {
		o.logger.Warn("failed to load conversation history",
			zap.String("conversation_id", conversationID), zap.Error(err))
		history = nil
	}

	userMessage := llm.Message{Role: llm.RoleUser, Content: text}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: o.systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, userMessage)

	appended := []llm.Message{userMessage}
	defs := o.tools.Definitions()

	reply, err := o.completer.Chat(ctx, messages, defs)
	if err != nil {
		o.logger.Error("model call failed",
			zap.String("conversation_id", conversationID), zap.Error(err))
		return o.finish(ctx, conversationID, appended, llm.Message{Role: llm.RoleAssistant, Content: ApologyMessage})
	}

	if len(reply.ToolCalls) == 0 {
		return o.finish(ctx, conversationID, appended, *reply)
	}

	messages = append(messages, *reply)
	appended = append(appended, *reply)

	for _, call := range reply.ToolCalls {
		result := o.tools.Dispatch(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))
		toolMessage := llm.Message{
			Role:       llm.RoleTool,
			Content:    result,
			ToolCallID: call.ID,
			Name:       call.Function.Name,
		}
		messages = append(messages, toolMessage)
		appended = append(appended, toolMessage)
	}

	// Exactly one follow-up call after the tool results; tool calls are
	// never chained recursively.
	final, err := o.completer.Chat(ctx, messages, defs)
	if err != nil {
		o.logger.Error("follow-up model call failed",
			zap.String("conversation_id", conversationID), zap.Error(err))
		return o.finish(ctx, conversationID, appended, llm.Message{Role: llm.RoleAssistant, Content: ApologyMessage})
	}

	return o.finish(ctx, conversationID, appended, *final)
}

// Reset clears the history of one conversation.
func (o *Orchestrator) Reset(ctx context.Context, conversationID string) error {
	return o.history.Clear(ctx, conversationID)
}

func (o *Orchestrator) finish(ctx context.Context, conversationID string, appended []llm.Message, final llm.Message) (string, error) {
	appended = append(appended, final)
	if err := o.history.Append(ctx, conversationID, appended...); err != nil {
		o.logger.Warn("failed to persist conversation history",
			zap.String("conversation_id", conversationID), zap.Error(err))
	}
	return final.Content, nil
}
