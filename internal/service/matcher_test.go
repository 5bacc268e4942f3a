package service

import (
	"errors"
	"testing"

	"parkassist/internal/models"
)

func TestPlateSimilarity(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		candidate string
		want      int
	}{
		{"identical plate scores its length", "ABC123", "ABC123", 6},
		{"fully different plate scores zero", "XYZ000", "ABC123", 0},
		{"single mismatch", "ABD123", "ABC123", 5},
		{"shorter candidate caps the comparison", "ABC123", "ABC", 3},
		{"comparison is case sensitive", "abc123", "ABC123", 3},
		{"shifted plate scores low", "ABC123", "AABC12", 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := plateSimilarity(tc.input, tc.candidate); got != tc.want {
				t.Fatalf("plateSimilarity(%q, %q) = %d, want %d", tc.input, tc.candidate, got, tc.want)
			}
		})
	}
}

func sessionsWithPlates(plates ...string) []models.Session {
	sessions := make([]models.Session, 0, len(plates))
	for i, p := range plates {
		sessions = append(sessions, models.Session{
			ID:                int64(i + 1),
			Status:            models.SessionStatusActive,
			LicencePlateEntry: p,
		})
	}
	return sessions
}

func TestClosestPlateMatch_PicksHighestScore(t *testing.T) {
	candidates := sessionsWithPlates("ZZZ999", "ABC123", "ABD123")

	got, err := closestPlateMatch("ABC123", candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.LicencePlateEntry != "ABC123" {
		t.Fatalf("expected ABC123, got %s", got.LicencePlateEntry)
	}
}

func TestClosestPlateMatch_TieKeepsFirstSeen(t *testing.T) {
	// Both candidates score 5 of 6 against the input.
	candidates := sessionsWithPlates("ABC124", "ABC125")

	got, err := closestPlateMatch("ABC123", candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 1 {
		t.Fatalf("expected first candidate to win the tie, got session %d", got.ID)
	}
}

func TestClosestPlateMatch_ThresholdBoundary(t *testing.T) {
	// Exactly half the positions match: 3 of 6. Accepted.
	if _, err := closestPlateMatch("ABC123", sessionsWithPlates("ABCXXX")); err != nil {
		t.Fatalf("score 0.5 should be accepted, got %v", err)
	}

	// Just below half: 2 of 6. Rejected.
	if _, err := closestPlateMatch("ABC123", sessionsWithPlates("ABXXXX")); !errors.Is(err, ErrNoSimilarSession) {
		t.Fatalf("expected ErrNoSimilarSession, got %v", err)
	}
}

func TestClosestPlateMatch_RejectsDissimilar(t *testing.T) {
	_, err := closestPlateMatch("XYZ000", sessionsWithPlates("ABC123"))
	if !errors.Is(err, ErrNoSimilarSession) {
		t.Fatalf("expected ErrNoSimilarSession, got %v", err)
	}
}

func TestClosestPlateMatch_EmptyInputs(t *testing.T) {
	if _, err := closestPlateMatch("", sessionsWithPlates("ABC123")); !errors.Is(err, ErrNoSimilarSession) {
		t.Fatalf("expected ErrNoSimilarSession for empty plate, got %v", err)
	}
	if _, err := closestPlateMatch("ABC123", nil); !errors.Is(err, ErrNoSimilarSession) {
		t.Fatalf("expected ErrNoSimilarSession for no candidates, got %v", err)
	}
}
