package services

import (
	"time"

	types "github.com/tandemstudy/tandem-backend/internal/domain"
)

// neverStudiedScore is the need score for a card a participant has never
// reviewed. It is a distinguished high constant rather than +Inf so the
// primary-minus-partner subtraction in the assignment engine stays finite
// (two never-studied scores cancel to zero instead of producing NaN).
const neverStudiedScore = 1e9

// complexityScore estimates how urgently a participant needs to review a
// card, from their most recent review log. The exact weighting is a tuning
// choice; only its ordering matters: worse last rating scores higher, and
// more elapsed time scores higher (forgetting).
func complexityScore(last *types.ReviewLog, now time.Time) float64 {
	if last == nil {
		return neverStudiedScore
	}
	elapsedDays := now.Sub(last.Review).Hours() / 24.0
	if elapsedDays < 0 {
		elapsedDays = 0
	}
	return float64(5-last.Rating) * (1 + elapsedDays)
}
