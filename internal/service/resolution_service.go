package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"parkassist/internal/models"
	"parkassist/internal/repository"
)

// ErrSessionNotFound re-exported so callers can match on the service
// boundary without importing the repository.
var ErrSessionNotFound = repository.ErrSessionNotFound

// SessionStore is the query contract the resolution flow needs from
// session storage.
type SessionStore interface {
	GetActiveByPlate(ctx context.Context, plate string) (*models.Session, error)
	ListActiveByEntryTimeAndStation(ctx context.Context, entryTime time.Time, entryStation int) ([]models.Session, error)
	ListActiveByEntryWindowAndStation(ctx context.Context, from, to time.Time, entryStation int) ([]models.Session, error)
	CloseSession(ctx context.Context, plate, exitPlate string, exitStation int, exitTime time.Time) error
}

// ResolutionService locates the parking session a dispute refers to. All
// strategies consider active sessions only.
type ResolutionService struct {
	sessions SessionStore
	logger   *zap.Logger
}

// NewResolutionService builds service.
func NewResolutionService(sessions SessionStore, logger *zap.Logger) *ResolutionService {
	return &ResolutionService{sessions: sessions, logger: logger}
}

// ResolveByPlate finds the most recent active session for an exact,
// case-insensitive plate match.
func (s *ResolutionService) ResolveByPlate(ctx context.Context, plate string) (*models.Session, error) {
	session, err := s.sessions.GetActiveByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			s.logger.Info("no active session for plate", zap.String("license_plate", plate))
			return nil, err
		}
		return nil, fmt.Errorf("resolve by plate: %w", err)
	}
	return session, nil
}

// ResolveByEntryTimeAndStation finds an active session by exact entry
// time and station. Multiple candidates are disambiguated by plate
// similarity.
func (s *ResolutionService) ResolveByEntryTimeAndStation(ctx context.Context, plate string, entryTime time.Time, entryStation int) (*models.Session, error) {
	candidates, err := s.sessions.ListActiveByEntryTimeAndStation(ctx, entryTime, entryStation)
	if err != nil {
		return nil, fmt.Errorf("resolve by entry time and station: %w", err)
	}
	return s.pickCandidate(plate, candidates)
}

// ResolveByEntryWindowAndStation finds an active session whose entry time
// lies in the inclusive [from, to] window at the given station. Multiple
// candidates are disambiguated by plate similarity.
func (s *ResolutionService) ResolveByEntryWindowAndStation(ctx context.Context, plate string, from, to time.Time, entryStation int) (*models.Session, error) {
	candidates, err := s.sessions.ListActiveByEntryWindowAndStation(ctx, from, to, entryStation)
	if err != nil {
		return nil, fmt.Errorf("resolve by entry window and station: %w", err)
	}
	return s.pickCandidate(plate, candidates)
}

// pickCandidate applies the similarity threshold to every non-empty
// candidate set, so even a sole candidate with an entirely different
// plate is rejected rather than closed by accident.
func (s *ResolutionService) pickCandidate(plate string, candidates []models.Session) (*models.Session, error) {
	if len(candidates) == 0 {
		s.logger.Info("no candidate sessions", zap.String("license_plate", plate))
		return nil, repository.ErrSessionNotFound
	}

	session, err := closestPlateMatch(plate, candidates)
	if err != nil {
		s.logger.Info("no sufficiently similar session",
			zap.String("license_plate", plate),
			zap.Int("candidates", len(candidates)))
		return nil, err
	}
	s.logger.Info("matched session by plate similarity",
		zap.String("license_plate", plate),
		zap.String("matched_plate", session.LicencePlateEntry))
	return session, nil
}
