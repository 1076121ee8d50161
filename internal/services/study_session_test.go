package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/tandemstudy/tandem-backend/internal/domain"
	apperrors "github.com/tandemstudy/tandem-backend/internal/pkg/errors"
)

func TestStartOrResumeUnknownSource(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.sessions.StartOrResume(ctx, uuid.New(), time.Now().UTC())
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestStartOrResumeBuildsSoloQueue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	source := env.seedSource(t, "kanji")
	// Needier card: studied long ago with a bad rating.
	hard := env.seedCard(t, source.ID, now.Add(-time.Hour))
	env.seedReviewLog(t, hard.ID, nil, types.RatingAgain, now.Add(-5*24*time.Hour))
	// Less needy: recently rated easy.
	easy := env.seedCard(t, source.ID, now.Add(-time.Hour))
	env.seedReviewLog(t, easy.ID, nil, types.RatingEasy, now.Add(-2*time.Hour))
	// Never studied ranks above both.
	fresh := env.seedCard(t, source.ID, now.Add(-time.Minute))
	// Not eligible.
	env.seedCard(t, source.ID, now.Add(48*time.Hour))

	session, err := env.sessions.StartOrResume(ctx, source.ID, now)
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	if len(session.Cards) != 3 {
		t.Fatalf("queue length = %d, want 3", len(session.Cards))
	}

	wantOrder := []struct {
		name string
		id   uuid.UUID
	}{
		{"never-studied first", fresh.ID},
		{"worst-rated second", hard.ID},
		{"easiest last", easy.ID},
	}
	for i, want := range wantOrder {
		if session.Cards[i].CardID != want.id {
			t.Errorf("position %d: got %s, want %s (%s)", i, session.Cards[i].CardID, want.id, want.name)
		}
		if session.Cards[i].Position != i {
			t.Errorf("position %d: stored position = %d", i, session.Cards[i].Position)
		}
		if session.Cards[i].LearningPartnerID != nil {
			t.Errorf("position %d: solo session row has a partner", i)
		}
	}
}

func TestStartOrResumeIsIdempotentWithinDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	source := env.seedSource(t, "verbs")
	env.seedCard(t, source.ID, now.Add(-time.Hour))
	env.seedCard(t, source.ID, now.Add(-time.Minute))

	first, err := env.sessions.StartOrResume(ctx, source.ID, now)
	if err != nil {
		t.Fatalf("first StartOrResume: %v", err)
	}

	// A new card appearing mid-day must not change the already-built queue.
	env.seedCard(t, source.ID, now.Add(-time.Second))

	second, err := env.sessions.StartOrResume(ctx, source.ID, now.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("second StartOrResume: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("same day returned a different session: %s vs %s", second.ID, first.ID)
	}
	if len(second.Cards) != len(first.Cards) {
		t.Fatalf("queue regenerated: %d vs %d cards", len(second.Cards), len(first.Cards))
	}
	for i := range first.Cards {
		if first.Cards[i].CardID != second.Cards[i].CardID {
			t.Errorf("position %d changed between resumes", i)
		}
	}
}

func TestStartOrResumeNewDayNewSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	source := env.seedSource(t, "dates")
	env.seedCard(t, source.ID, now.Add(-time.Hour))

	today, err := env.sessions.StartOrResume(ctx, source.ID, now)
	if err != nil {
		t.Fatalf("StartOrResume today: %v", err)
	}
	tomorrow, err := env.sessions.StartOrResume(ctx, source.ID, now.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("StartOrResume tomorrow: %v", err)
	}
	if today.ID == tomorrow.ID {
		t.Error("different days must produce different sessions")
	}
}

func TestStartOrResumePartnerMode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	source := env.seedSource(t, "duets")
	partner := env.seedPartner(t, "Sam")
	if _, err := env.settings.Update(ctx, source.ID, types.StudyModeWithPartner); err != nil {
		t.Fatalf("enable partner mode: %v", err)
	}

	for i := 0; i < 5; i++ {
		env.seedCard(t, source.ID, now.Add(-time.Duration(i+1)*time.Minute))
	}

	session, err := env.sessions.StartOrResume(ctx, source.ID, now)
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	if len(session.Cards) != 5 {
		t.Fatalf("queue length = %d, want 5", len(session.Cards))
	}

	primary, partnerCount := 0, 0
	for _, row := range session.Cards {
		if row.LearningPartnerID == nil {
			primary++
			continue
		}
		partnerCount++
		if *row.LearningPartnerID != partner.ID {
			t.Errorf("row assigned to unknown partner %s", row.LearningPartnerID)
		}
	}
	if primary != 3 || partnerCount != 2 {
		t.Errorf("split %d/%d, want 3/2", primary, partnerCount)
	}
	if session.Cards[0].LearningPartnerID != nil {
		t.Error("first card must go to the primary learner")
	}
}

func TestStartOrResumeCapsOversizedPool(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	source := env.seedSource(t, "backlog")

	// 50 never-studied cards outrank the 10 recently-aced ones, so the cap
	// must keep exactly the fresh set and drop every aced card.
	fresh := make(map[uuid.UUID]bool, 50)
	for i := 0; i < 50; i++ {
		card := env.seedCard(t, source.ID, now.Add(-time.Duration(i+1)*time.Minute))
		fresh[card.ID] = true
	}
	aced := make(map[uuid.UUID]bool, 10)
	for i := 0; i < 10; i++ {
		card := env.seedCard(t, source.ID, now.Add(-time.Duration(i+1)*time.Hour))
		env.seedReviewLog(t, card.ID, nil, types.RatingEasy, now.Add(-time.Hour))
		aced[card.ID] = true
	}

	session, err := env.sessions.StartOrResume(ctx, source.ID, now)
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	if len(session.Cards) != 50 {
		t.Fatalf("queue length = %d, want 50", len(session.Cards))
	}
	for i, row := range session.Cards {
		if aced[row.CardID] {
			t.Errorf("position %d: low-need card %s made it past the cap", i, row.CardID)
		}
		if !fresh[row.CardID] {
			t.Errorf("position %d: unexpected card %s in session", i, row.CardID)
		}
	}
}

func TestStartOrResumePartnerModeRoutesOneSidedHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	source := env.seedSource(t, "handoff")
	partner := env.seedPartner(t, "Alex")
	if _, err := env.settings.Update(ctx, source.ID, types.StudyModeWithPartner); err != nil {
		t.Fatalf("enable partner mode: %v", err)
	}

	// primaryOnly has been studied only by the primary learner, partnerOnly
	// only by the partner. Each must be routed to the party that has never
	// seen it.
	primaryOnly := env.seedCard(t, source.ID, now.Add(-2*time.Hour))
	env.seedReviewLog(t, primaryOnly.ID, nil, types.RatingGood, now.Add(-24*time.Hour))
	partnerOnly := env.seedCard(t, source.ID, now.Add(-time.Hour))
	env.seedReviewLog(t, partnerOnly.ID, &partner.ID, types.RatingGood, now.Add(-24*time.Hour))

	session, err := env.sessions.StartOrResume(ctx, source.ID, now)
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	if len(session.Cards) != 2 {
		t.Fatalf("queue length = %d, want 2", len(session.Cards))
	}

	for _, row := range session.Cards {
		switch row.CardID {
		case primaryOnly.ID:
			if row.LearningPartnerID == nil || *row.LearningPartnerID != partner.ID {
				t.Errorf("primary-studied card went to the primary learner again")
			}
		case partnerOnly.ID:
			if row.LearningPartnerID != nil {
				t.Errorf("partner-studied card went back to the partner")
			}
		default:
			t.Errorf("unexpected card %s in session", row.CardID)
		}
	}
}

func TestStartOrResumePartnerModeWithoutPartners(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	source := env.seedSource(t, "solo-fallback")
	if _, err := env.settings.Update(ctx, source.ID, types.StudyModeWithPartner); err != nil {
		t.Fatalf("enable partner mode: %v", err)
	}
	env.seedCard(t, source.ID, now.Add(-time.Hour))
	env.seedCard(t, source.ID, now.Add(-time.Minute))

	session, err := env.sessions.StartOrResume(ctx, source.ID, now)
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	for i, row := range session.Cards {
		if row.LearningPartnerID != nil {
			t.Errorf("row %d assigned to a partner with none enabled", i)
		}
	}
}

func TestStartOrResumeEmptyPool(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	source := env.seedSource(t, "caught-up")
	session, err := env.sessions.StartOrResume(ctx, source.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	if len(session.Cards) != 0 {
		t.Errorf("caught-up learner got %d cards", len(session.Cards))
	}

	head, err := env.sessions.Head(ctx, session.ID)
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head != nil {
		t.Errorf("empty session head = %+v", head)
	}
}
