package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"parkassist/internal/auth"
)

// NewTokenHandler returns POST /api/auth/token handler issuing operator
// bearer tokens.
func NewTokenHandler(svc *auth.Service, logger *zap.Logger) http.HandlerFunc {
	type request struct {
		OperatorID string `json:"operator_id"`
		Password   string `json:"password"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if req.OperatorID == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "operator_id and password are required")
			return
		}

		token, err := svc.IssueToken(req.OperatorID, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			logger.Error("token issue failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to issue token")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}
