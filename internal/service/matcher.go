package service

import (
	"errors"

	"parkassist/internal/models"
)

// ErrNoSimilarSession indicates that candidates existed but none was
// similar enough to the input plate. Distinct from ErrSessionNotFound,
// which means there were no candidates at all.
var ErrNoSimilarSession = errors.New("no sufficiently similar session found")

// similarityThreshold is the minimum accepted ratio of positionally
// matching characters to input plate length.
const similarityThreshold = 0.5

// plateSimilarity counts positions where the two plates carry the same
// character, up to the shorter length. The comparison is anchored at
// position zero and case sensitive, unlike the exact lookup; plates of
// different lengths or with an inserted character score low on purpose.
func plateSimilarity(input, candidate string) int {
	n := len(input)
	if len(candidate) < n {
		n = len(candidate)
	}
	score := 0
	for i := 0; i < n; i++ {
		if input[i] == candidate[i] {
			score++
		}
	}
	return score
}

// closestPlateMatch picks the candidate session whose entry plate scores
// highest against the input plate. Ties keep the first-seen candidate.
// The winner is accepted only when score/len(input) reaches the
// similarity threshold.
func closestPlateMatch(plate string, sessions []models.Session) (*models.Session, error) {
	if plate == "" || len(sessions) == 0 {
		return nil, ErrNoSimilarSession
	}

	best := 0
	bestScore := plateSimilarity(plate, sessions[0].LicencePlateEntry)
	for i := 1; i < len(sessions); i++ {
		if score := plateSimilarity(plate, sessions[i].LicencePlateEntry); score > bestScore {
			best = i
			bestScore = score
		}
	}

	if float64(bestScore)/float64(len(plate)) < similarityThreshold {
		return nil, ErrNoSimilarSession
	}
	return &sessions[best], nil
}
