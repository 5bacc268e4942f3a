package tools

import (
	"context"
	"encoding/json"

	"parkassist/internal/llm"
)

// Payment failure kinds reported by the driver at the exit lane.
const (
	FailureTerminalNotWorking = "TERMINAL_NOT_WORKING"
	FailureNoTerminalAtExit   = "NO_TERMINAL_AT_EXIT"
	FailureNoPaymentCard      = "DONT_HAVE_PAYMENT_CARD"
)

// CannotPayTool gives static guidance when the driver is unable to pay at
// the exit at all. It performs no lookups.
type CannotPayTool struct{}

// NewCannotPayTool builds handler.
func NewCannotPayTool() *CannotPayTool { return &CannotPayTool{} }

// Name implements Handler.
func (t *CannotPayTool) Name() string { return "cannot_pay" }

// Definition implements Handler.
func (t *CannotPayTool) Definition() llm.Tool {
	return llm.Tool{
		Type: "function",
		Function: llm.ToolFunction{
			Name: t.Name(),
			Description: "Should be used when the customer cannot pay at the exit at all, for example because the terminal " +
				"is broken, there is no terminal at the exit, or the customer has no payment card with them.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"payment_failure_type": map[string]interface{}{
						"type":        "string",
						"enum":        []string{FailureTerminalNotWorking, FailureNoTerminalAtExit, FailureNoPaymentCard},
						"description": "The reason the customer cannot pay at the exit",
					},
				},
				"required":             []string{"payment_failure_type"},
				"additionalProperties": false,
			},
			Strict: true,
		},
	}
}

type cannotPayArgs struct {
	PaymentFailureType string `json:"payment_failure_type"`
}

// Execute implements Handler.
func (t *CannotPayTool) Execute(_ context.Context, raw json.RawMessage) string {
	var args cannotPayArgs
	_ = json.Unmarshal(raw, &args)

	switch args.PaymentFailureType {
	case FailureTerminalNotWorking:
		return "The payment terminal is currently not working. Please proceed to the nearest payment kiosk or contact support for assistance."
	case FailureNoTerminalAtExit:
		return "There is no payment terminal at this exit. Please proceed to the nearest payment kiosk or contact support for assistance."
	case FailureNoPaymentCard:
		return "You do not have a payment card with you. Please proceed to the nearest payment kiosk or contact support for assistance."
	default:
		return "An unknown payment issue has occurred. Please contact support for assistance."
	}
}
