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

// PaymentFailedTool verifies the payment status for a plate when the
// customer claims to have paid but the system shows otherwise. It
// distinguishes a missing payment record, a declined payment and an
// outstanding balance, and closes the session only on full settlement.
type PaymentFailedTool struct {
	resolver    *service.ResolutionService
	reconciler  *service.Reconciler
	exitStation int
	logger      *zap.Logger
}

// NewPaymentFailedTool builds handler.
func NewPaymentFailedTool(resolver *service.ResolutionService, reconciler *service.Reconciler, exitStation int, logger *zap.Logger) *PaymentFailedTool {
	return &PaymentFailedTool{
		resolver:    resolver,
		reconciler:  reconciler,
		exitStation: exitStation,
		logger:      logger,
	}
}

// Name implements Handler.
func (t *PaymentFailedTool) Name() string { return "customer_payment_failed" }

// Definition implements Handler.
func (t *PaymentFailedTool) Definition() llm.Tool {
	return llm.Tool{
		Type: "function",
		Function: llm.ToolFunction{
			Name: t.Name(),
			Description: "Should be used when payment is not found in the system, while the customer claims that he did pay. " +
				"Verify the payment status for a specific license plate number.",
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

type paymentFailedArgs struct {
	LicensePlate string `json:"license_plate"`
}

// Execute implements Handler.
func (t *PaymentFailedTool) Execute(ctx context.Context, raw json.RawMessage) string {
	var args paymentFailedArgs
	if err := json.Unmarshal(raw, &args); err != nil || args.LicensePlate == "" {
		return "A license plate number is required to verify the payment. Please ask the customer for it."
	}
	plate := args.LicensePlate

	session, err := t.resolver.ResolveByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return fmt.Sprintf("No active session found for license plate %s. Call the helpdesk for further assistance.", plate)
		}
		t.logger.Error("payment check lookup failed", zap.String("license_plate", plate), zap.Error(err))
		return fmt.Sprintf("Error retrieving session for license plate %s. Call the helpdesk for further assistance.", plate)
	}

	err = t.reconciler.SettleAndClose(ctx, session, service.SettleOptions{RequirePayment: true}, service.CloseInput{
		Plate:       session.LicencePlateEntry,
		ExitPlate:   session.LicencePlateEntry,
		ExitStation: t.exitStation,
		ExitTime:    time.Now().UTC(),
	})
	switch {
	case err == nil:
		return fmt.Sprintf("Payment for license plate %s was successful. You may proceed to exit.", plate)
	case errors.Is(err, service.ErrPaymentNotFound):
		return fmt.Sprintf("No payment record found for license plate %s. Please complete the payment or call the helpdesk for further assistance.", plate)
	case errors.Is(err, service.ErrNoActiveSession):
		return fmt.Sprintf("No active session to close for license plate %s. Call the helpdesk for further assistance.", plate)
	default:
		var declined *service.PaymentDeclinedError
		if errors.As(err, &declined) {
			return fmt.Sprintf("Payment for license plate %s was declined. Please try another payment method or call the helpdesk for further assistance.", plate)
		}
		var balance *service.OutstandingBalanceError
		if errors.As(err, &balance) {
			return fmt.Sprintf("You still owe %s. Please complete the payment or call the helpdesk for further assistance.",
				service.FormatAmount(balance.Cents))
		}
		t.logger.Error("payment check failed", zap.String("license_plate", plate), zap.Error(err))
		return fmt.Sprintf("Error verifying payment for license plate %s. Call the helpdesk for further assistance.", plate)
	}
}
