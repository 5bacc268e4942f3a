package auth

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("opensesame"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return NewService("test-secret", "helpdesk", string(hash), ttl)
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	svc := newTestService(t, time.Hour)

	token, err := svc.IssueToken("helpdesk", "opensesame")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	subject, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "helpdesk" {
		t.Fatalf("unexpected subject: %s", subject)
	}
}

func TestIssueToken_RejectsBadCredentials(t *testing.T) {
	svc := newTestService(t, time.Hour)

	if _, err := svc.IssueToken("helpdesk", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.IssueToken("intruder", "opensesame"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown operator, got %v", err)
	}
}

func TestVerify_RejectsGarbageAndForeignTokens(t *testing.T) {
	svc := newTestService(t, time.Hour)

	if _, err := svc.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	other := newTestService(t, time.Hour)
	other.secret = []byte("different-secret")
	token, err := other.IssueToken("helpdesk", "opensesame")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	svc := newTestService(t, -time.Minute)

	token, err := svc.IssueToken("helpdesk", "opensesame")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}
