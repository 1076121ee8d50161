package services

import (
	"sort"

	"github.com/google/uuid"

	types "github.com/tandemstudy/tandem-backend/internal/domain"
)

// candidate is a studiable card with its per-participant need scores.
// PartnerScore is meaningful only when the session has a partner.
type candidate struct {
	Card         *types.Card
	PrimaryScore float64
	PartnerScore float64
	Need         float64
}

// participant identifies who a card can be routed to. A nil PartnerID is the
// primary learner. The assignment engine takes one or two participants so the
// solo and paired paths share the same shape.
type participant struct {
	PartnerID *uuid.UUID
}

// assign partitions and orders the candidate pool into session queue rows.
// With one participant every card goes to the primary learner in candidate
// order. With two, each participant receives the cards they comparatively
// need more, under a hard even-split invariant: ceil(N/2) cards to the
// primary learner, floor(N/2) to the partner, regardless of how lopsided the
// per-card preferences are.
func assign(candidates []candidate, participants []participant) []types.StudySessionCard {
	if len(participants) < 2 {
		return assignSolo(candidates)
	}
	return assignPaired(candidates, participants[1].PartnerID)
}

func assignSolo(candidates []candidate) []types.StudySessionCard {
	rows := make([]types.StudySessionCard, 0, len(candidates))
	for i, c := range candidates {
		rows = append(rows, types.StudySessionCard{
			CardID:   c.Card.ID,
			Position: i,
		})
	}
	return rows
}

func assignPaired(candidates []candidate, partnerID *uuid.UUID) []types.StudySessionCard {
	n := len(candidates)
	if n == 0 {
		return []types.StudySessionCard{}
	}

	// Rank by how much harder the card is for the primary learner than for
	// the partner. Never-studied sentinels participate normally, so a card
	// unseen by one party lands far toward that party's end of the ranking.
	ranked := make([]candidate, n)
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		di := ranked[i].PrimaryScore - ranked[i].PartnerScore
		dj := ranked[j].PrimaryScore - ranked[j].PartnerScore
		return di > dj
	})

	// Fixed split first; the diff ranking only decides which cards fall on
	// each side of the cut, never how many.
	cut := (n + 1) / 2
	primaryGroup := make([]candidate, cut)
	copy(primaryGroup, ranked[:cut])
	partnerGroup := make([]candidate, n-cut)
	copy(partnerGroup, ranked[cut:])

	// Each group is served hardest-first for its own participant.
	sort.SliceStable(primaryGroup, func(i, j int) bool {
		return primaryGroup[i].PrimaryScore > primaryGroup[j].PrimaryScore
	})
	sort.SliceStable(partnerGroup, func(i, j int) bool {
		return partnerGroup[i].PartnerScore > partnerGroup[j].PartnerScore
	})

	// Interleave primary-first. Odd pools leave the final position to the
	// primary group.
	rows := make([]types.StudySessionCard, 0, n)
	for i := 0; i < cut; i++ {
		rows = append(rows, types.StudySessionCard{
			CardID:   primaryGroup[i].Card.ID,
			Position: len(rows),
		})
		if i < len(partnerGroup) {
			pid := *partnerID
			rows = append(rows, types.StudySessionCard{
				CardID:            partnerGroup[i].Card.ID,
				Position:          len(rows),
				LearningPartnerID: &pid,
			})
		}
	}
	return rows
}
