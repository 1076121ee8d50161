package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tandemstudy/tandem-backend/internal/data/repos"
	types "github.com/tandemstudy/tandem-backend/internal/domain"
)

const (
	// sessionCardCap bounds how many cards enter one session, however large
	// the due backlog is.
	sessionCardCap = 50

	// dueLookahead admits cards whose short learning-step interval lands just
	// ahead of now, so they can resurface within the same sitting.
	dueLookahead = time.Hour
)

// candidateSelector gathers the eligible due cards for a source and ranks
// them by need.
type candidateSelector struct {
	cards      repos.CardRepo
	reviewLogs repos.ReviewLogRepo
}

// Select returns the capped, need-sorted candidate pool. partnerID is nil in
// solo mode. An empty result is valid: the learner is caught up.
func (s *candidateSelector) Select(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, partnerID *uuid.UUID, now time.Time) ([]candidate, error) {
	cards, err := s.cards.ListStudiable(ctx, tx, sourceID, now.Add(dueLookahead))
	if err != nil {
		return nil, fmt.Errorf("list studiable cards: %w", err)
	}
	if len(cards) == 0 {
		return []candidate{}, nil
	}

	cardIDs := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		cardIDs[i] = c.ID
	}

	primaryLogs, err := s.reviewLogs.LatestByParticipant(ctx, tx, cardIDs, nil)
	if err != nil {
		return nil, fmt.Errorf("load primary review logs: %w", err)
	}
	var partnerLogs map[uuid.UUID]*types.ReviewLog
	if partnerID != nil {
		partnerLogs, err = s.reviewLogs.LatestByParticipant(ctx, tx, cardIDs, partnerID)
		if err != nil {
			return nil, fmt.Errorf("load partner review logs: %w", err)
		}
	}

	candidates := make([]candidate, 0, len(cards))
	for _, card := range cards {
		c := candidate{
			Card:         card,
			PrimaryScore: complexityScore(primaryLogs[card.ID], now),
		}
		if partnerID != nil {
			c.PartnerScore = complexityScore(partnerLogs[card.ID], now)
			c.Need = c.PrimaryScore
			if c.PartnerScore > c.Need {
				c.Need = c.PartnerScore
			}
		} else {
			c.Need = c.PrimaryScore
		}
		candidates = append(candidates, c)
	}

	// Highest need first; most overdue first among equals, for determinism.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Need != candidates[j].Need {
			return candidates[i].Need > candidates[j].Need
		}
		return candidates[i].Card.Due.Before(candidates[j].Card.Due)
	})

	if len(candidates) > sessionCardCap {
		candidates = candidates[:sessionCardCap]
	}
	return candidates, nil
}
