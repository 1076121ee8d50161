package services

import (
	"testing"

	"github.com/google/uuid"

	types "github.com/tandemstudy/tandem-backend/internal/domain"
)

func makeCandidates(n int) []candidate {
	out := make([]candidate, n)
	for i := range out {
		out[i] = candidate{Card: &types.Card{ID: uuid.New()}}
	}
	return out
}

func soloParticipants() []participant { return []participant{{}} }

func pairedParticipants(partnerID uuid.UUID) []participant {
	return []participant{{}, {PartnerID: &partnerID}}
}

func TestAssignSoloKeepsCandidateOrder(t *testing.T) {
	candidates := makeCandidates(5)
	rows := assign(candidates, soloParticipants())

	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	for i, row := range rows {
		if row.Position != i {
			t.Errorf("row %d: position = %d, want %d", i, row.Position, i)
		}
		if row.CardID != candidates[i].Card.ID {
			t.Errorf("row %d: card order changed", i)
		}
		if row.LearningPartnerID != nil {
			t.Errorf("row %d: solo row has a partner", i)
		}
	}
}

func TestAssignEmptyPool(t *testing.T) {
	if rows := assign(nil, soloParticipants()); len(rows) != 0 {
		t.Errorf("solo: rows = %d, want 0", len(rows))
	}
	if rows := assign(nil, pairedParticipants(uuid.New())); len(rows) != 0 {
		t.Errorf("paired: rows = %d, want 0", len(rows))
	}
}

func TestAssignPairedEvenSplit(t *testing.T) {
	partnerID := uuid.New()

	for _, n := range []int{1, 2, 5, 10, 49} {
		candidates := makeCandidates(n)
		// Lopsided preferences: every card is harder for the partner. The
		// split must still be even.
		for i := range candidates {
			candidates[i].PrimaryScore = 1
			candidates[i].PartnerScore = 100
		}

		rows := assign(candidates, pairedParticipants(partnerID))
		if len(rows) != n {
			t.Fatalf("n=%d: rows = %d", n, len(rows))
		}

		primary, partner := 0, 0
		for _, row := range rows {
			if row.LearningPartnerID == nil {
				primary++
			} else {
				partner++
			}
		}
		wantPrimary := (n + 1) / 2
		if primary != wantPrimary || partner != n-wantPrimary {
			t.Errorf("n=%d: split %d/%d, want %d/%d", n, primary, partner, wantPrimary, n-wantPrimary)
		}
	}
}

func TestAssignPairedRoutesByComparativeNeed(t *testing.T) {
	partnerID := uuid.New()
	candidates := makeCandidates(4)

	// Cards 0,1 are much harder for the primary learner; 2,3 for the partner.
	candidates[0].PrimaryScore, candidates[0].PartnerScore = 90, 10
	candidates[1].PrimaryScore, candidates[1].PartnerScore = 80, 20
	candidates[2].PrimaryScore, candidates[2].PartnerScore = 10, 90
	candidates[3].PrimaryScore, candidates[3].PartnerScore = 20, 80

	rows := assign(candidates, pairedParticipants(partnerID))

	got := map[uuid.UUID]bool{} // cardID -> assigned to partner
	for _, row := range rows {
		got[row.CardID] = row.LearningPartnerID != nil
	}
	for i, wantPartner := range []bool{false, false, true, true} {
		if got[candidates[i].Card.ID] != wantPartner {
			t.Errorf("card %d: assigned to partner = %v, want %v", i, got[candidates[i].Card.ID], wantPartner)
		}
	}
}

func TestAssignPairedInterleavesPrimaryFirst(t *testing.T) {
	partnerID := uuid.New()
	candidates := makeCandidates(6)
	for i := range candidates {
		candidates[i].PrimaryScore = float64(10 - i)
		candidates[i].PartnerScore = float64(i)
	}

	rows := assign(candidates, pairedParticipants(partnerID))

	for i, row := range rows {
		if row.Position != i {
			t.Errorf("row %d: position = %d", i, row.Position)
		}
		wantPartner := i%2 == 1
		if (row.LearningPartnerID != nil) != wantPartner {
			t.Errorf("position %d: partner = %v, want %v", i, row.LearningPartnerID != nil, wantPartner)
		}
		if row.LearningPartnerID != nil && *row.LearningPartnerID != partnerID {
			t.Errorf("position %d: wrong partner id", i)
		}
	}
}

func TestAssignPairedEveryCardExactlyOnce(t *testing.T) {
	partnerID := uuid.New()
	candidates := makeCandidates(9)
	for i := range candidates {
		candidates[i].PrimaryScore = float64(i * 7 % 5)
		candidates[i].PartnerScore = float64(i * 3 % 4)
	}

	rows := assign(candidates, pairedParticipants(partnerID))
	if len(rows) != len(candidates) {
		t.Fatalf("rows = %d, want %d", len(rows), len(candidates))
	}

	seen := map[uuid.UUID]int{}
	for _, row := range rows {
		seen[row.CardID]++
	}
	for i, c := range candidates {
		if seen[c.Card.ID] != 1 {
			t.Errorf("card %d assigned %d times", i, seen[c.Card.ID])
		}
	}
}

func TestAssignPairedOneSidedHistoryRoutesToOtherParty(t *testing.T) {
	partnerID := uuid.New()
	candidates := makeCandidates(4)

	// Cards 0,1 have history only from the primary learner, 2,3 only from the
	// partner. The sentinel on the unseen side dominates the diff, so each
	// card must land with the party that has never studied it.
	candidates[0].PrimaryScore, candidates[0].PartnerScore = 24, neverStudiedScore
	candidates[1].PrimaryScore, candidates[1].PartnerScore = 3, neverStudiedScore
	candidates[2].PrimaryScore, candidates[2].PartnerScore = neverStudiedScore, 24
	candidates[3].PrimaryScore, candidates[3].PartnerScore = neverStudiedScore, 3

	rows := assign(candidates, pairedParticipants(partnerID))

	got := map[uuid.UUID]bool{} // cardID -> assigned to partner
	for _, row := range rows {
		got[row.CardID] = row.LearningPartnerID != nil
	}
	for i, wantPartner := range []bool{true, true, false, false} {
		if got[candidates[i].Card.ID] != wantPartner {
			t.Errorf("card %d: assigned to partner = %v, want %v", i, got[candidates[i].Card.ID], wantPartner)
		}
	}
}

func TestAssignPairedNeverStudiedBothSides(t *testing.T) {
	partnerID := uuid.New()
	candidates := makeCandidates(4)
	// Neither participant has seen any card: all diffs cancel to zero and
	// assignment degrades to a stable alternating split.
	for i := range candidates {
		candidates[i].PrimaryScore = neverStudiedScore
		candidates[i].PartnerScore = neverStudiedScore
	}

	rows := assign(candidates, pairedParticipants(partnerID))

	primary := 0
	for _, row := range rows {
		if row.LearningPartnerID == nil {
			primary++
		}
	}
	if primary != 2 {
		t.Errorf("primary rows = %d, want 2", primary)
	}
}
