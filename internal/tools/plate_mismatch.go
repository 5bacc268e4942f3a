package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"parkassist/internal/llm"
	"parkassist/internal/service"
)

// PlateMismatchTool assists a driver whose plate was misread by the entry
// camera. It searches active sessions by entry window and station, picks
// the closest plate and closes the session under the matched plate; the
// response states the correction when the matched plate differs from the
// one the driver gave.
type PlateMismatchTool struct {
	resolver    *service.ResolutionService
	reconciler  *service.Reconciler
	exitStation int
	logger      *zap.Logger
}

// NewPlateMismatchTool builds handler.
func NewPlateMismatchTool(resolver *service.ResolutionService, reconciler *service.Reconciler, exitStation int, logger *zap.Logger) *PlateMismatchTool {
	return &PlateMismatchTool{
		resolver:    resolver,
		reconciler:  reconciler,
		exitStation: exitStation,
		logger:      logger,
	}
}

// Name implements Handler.
func (t *PlateMismatchTool) Name() string { return "invalid_license_plate" }

// Definition implements Handler.
func (t *PlateMismatchTool) Definition() llm.Tool {
	return llm.Tool{
		Type: "function",
		Function: llm.ToolFunction{
			Name: t.Name(),
			Description: "Should be used when the client's session is not found due to plate number mismatch on entry and exit gates. " +
				"Assist a customer who entered a ticket-less gate and had their license plate number scanned incorrectly by the camera " +
				"by asking their license plate number, entry time, and entered gate, and checking for an active session with these details. " +
				"The goal is to find a session with similar details to identify the session with an incorrectly identified license plate number.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"license_plate": map[string]interface{}{
						"type":        "string",
						"description": "The license plate number to search for (e.g., 'ABC123')",
					},
					"entry_time_interval": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type":   "string",
							"format": "date-time",
						},
						"minItems":    2,
						"maxItems":    2,
						"description": "The entry time interval (start and end) to search within (e.g., ['2023-10-01T08:00:00', '2023-10-01T10:00:00'])",
					},
					"entry_station": map[string]interface{}{
						"type":        "integer",
						"description": "The entry station ID where the vehicle entered (e.g., 1)",
					},
				},
				"required":             []string{"license_plate", "entry_time_interval", "entry_station"},
				"additionalProperties": false,
			},
			Strict: true,
		},
	}
}

type plateMismatchArgs struct {
	LicensePlate      string    `json:"license_plate"`
	EntryTimeInterval [2]string `json:"entry_time_interval"`
	EntryStation      int       `json:"entry_station"`
}

// Execute implements Handler.
func (t *PlateMismatchTool) Execute(ctx context.Context, raw json.RawMessage) string {
	var args plateMismatchArgs
	if err := json.Unmarshal(raw, &args); err != nil || args.LicensePlate == "" {
		return "A license plate number, entry time interval and entry station are required to search for the session. Please ask the customer for them."
	}
	plate := args.LicensePlate

	from, err := parseEntryTime(args.EntryTimeInterval[0])
	if err != nil {
		return fmt.Sprintf("The entry time interval start %q is not a valid timestamp. Please ask the customer for the entry time again.", args.EntryTimeInterval[0])
	}
	to, err := parseEntryTime(args.EntryTimeInterval[1])
	if err != nil {
		return fmt.Sprintf("The entry time interval end %q is not a valid timestamp. Please ask the customer for the entry time again.", args.EntryTimeInterval[1])
	}

	session, err := t.resolver.ResolveByEntryWindowAndStation(ctx, plate, from, to, args.EntryStation)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSimilarSession):
			return fmt.Sprintf("No sufficiently similar session found for license plate %s. Call the helpdesk for further assistance.", plate)
		case errors.Is(err, service.ErrSessionNotFound):
			return fmt.Sprintf("No active session found for license plate %s. Call the helpdesk for further assistance.", plate)
		default:
			t.logger.Error("plate mismatch lookup failed", zap.String("license_plate", plate), zap.Error(err))
			return fmt.Sprintf("Error retrieving session for license plate %s. Call the helpdesk for further assistance.", plate)
		}
	}

	// Closure runs under the matched plate, not the caller-supplied one,
	// and the matched plate is what gets recorded at exit.
	err = t.reconciler.SettleAndClose(ctx, session, service.SettleOptions{}, service.CloseInput{
		Plate:       session.LicencePlateEntry,
		ExitPlate:   session.LicencePlateEntry,
		ExitStation: t.exitStation,
		ExitTime:    time.Now().UTC(),
	})
	switch {
	case err == nil:
		if !strings.EqualFold(session.LicencePlateEntry, plate) {
			return fmt.Sprintf("There was a small mistake in the scanned license plate. Your session was matched and closed under plate %s. You may proceed to exit.",
				session.LicencePlateEntry)
		}
		return fmt.Sprintf("An active session was found for license plate %s with no outstanding balance. You may proceed to exit.", plate)
	case errors.Is(err, service.ErrNoActiveSession):
		return fmt.Sprintf("No active session to close for license plate %s. Call the helpdesk for further assistance.", plate)
	default:
		var balance *service.OutstandingBalanceError
		if errors.As(err, &balance) {
			return fmt.Sprintf("An active session was found for license plate %s, but there is an outstanding balance of %s. Please proceed to payment or call the helpdesk for further assistance.",
				plate, service.FormatAmount(balance.Cents))
		}
		t.logger.Error("plate mismatch closure failed", zap.String("license_plate", plate), zap.Error(err))
		return fmt.Sprintf("Error closing session for license plate %s. Call the helpdesk for further assistance.", plate)
	}
}

func parseEntryTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02T15:04:05", value)
}
