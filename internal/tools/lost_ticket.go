package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"parkassist/internal/llm"
	"parkassist/internal/service"
)

// LostTicketTool assists a driver who lost their parking ticket: it looks
// up the active session by plate, checks the balance and closes the
// session so the driver can exit.
type LostTicketTool struct {
	resolver    *service.ResolutionService
	reconciler  *service.Reconciler
	exitStation int
	logger      *zap.Logger
}

// NewLostTicketTool builds handler.
func NewLostTicketTool(resolver *service.ResolutionService, reconciler *service.Reconciler, exitStation int, logger *zap.Logger) *LostTicketTool {
	return &LostTicketTool{
		resolver:    resolver,
		reconciler:  reconciler,
		exitStation: exitStation,
		logger:      logger,
	}
}

// Name implements Handler.
func (t *LostTicketTool) Name() string { return "lost_ticket" }

// Definition implements Handler.
func (t *LostTicketTool) Definition() llm.Tool {
	return llm.Tool{
		Type: "function",
		Function: llm.ToolFunction{
			Name: t.Name(),
			Description: "Should be used when the client says that he lost his parking ticket or simply asks for a new one. " +
				"Assist a customer who has lost their parking ticket by asking their license plate number and checking for an active session.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"license_plate": map[string]interface{}{
						"type":        "string",
						"description": "The license plate number to search for (e.g., 'ABC123')",
					},
				},
				"required":             []string{"license_plate"},
				"additionalProperties": false,
			},
			Strict: true,
		},
	}
}

type lostTicketArgs struct {
	LicensePlate string `json:"license_plate"`
}

// Execute implements Handler.
func (t *LostTicketTool) Execute(ctx context.Context, raw json.RawMessage) string {
	var args lostTicketArgs
	if err := json.Unmarshal(raw, &args); err != nil || args.LicensePlate == "" {
		return "A license plate number is required to look up the parking session. Please ask the customer for it."
	}
	plate := args.LicensePlate

	session, err := t.resolver.ResolveByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return fmt.Sprintf("No active session found for license plate %s. Call the helpdesk for further assistance.", plate)
		}
		t.logger.Error("lost ticket lookup failed", zap.String("license_plate", plate), zap.Error(err))
		return fmt.Sprintf("Error retrieving session for license plate %s. Call the helpdesk for further assistance.", plate)
	}

	err = t.reconciler.SettleAndClose(ctx, session, service.SettleOptions{}, service.CloseInput{
		Plate:       session.LicencePlateEntry,
		ExitPlate:   session.LicencePlateEntry,
		ExitStation: t.exitStation,
		ExitTime:    time.Now().UTC(),
	})
	switch {
	case err == nil:
		return fmt.Sprintf("An active session was found for license plate %s with no outstanding balance. You may proceed to exit.", plate)
	case errors.Is(err, service.ErrNoActiveSession):
		return fmt.Sprintf("No active session to close for license plate %s. Call the helpdesk for further assistance.", plate)
	default:
		var balance *service.OutstandingBalanceError
		if errors.As(err, &balance) {
			return fmt.Sprintf("An active session was found for license plate %s, but there is an outstanding balance of %s. Please proceed to payment or call the helpdesk for further assistance.",
				plate, service.FormatAmount(balance.Cents))
		}
		t.logger.Error("lost ticket closure failed", zap.String("license_plate", plate), zap.Error(err))
		return fmt.Sprintf("Error closing session for license plate %s. Call the helpdesk for further assistance.", plate)
	}
}
