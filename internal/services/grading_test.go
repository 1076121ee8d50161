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

func TestGradeValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := env.grading.Grade(ctx, uuid.New(), uuid.New(), 0, nil, now); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Errorf("rating 0: got %v, want ErrInvalidArgument", err)
	}
	if _, err := env.grading.Grade(ctx, uuid.New(), uuid.New(), 5, nil, now); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Errorf("rating 5: got %v, want ErrInvalidArgument", err)
	}
	if _, err := env.grading.Grade(ctx, uuid.New(), uuid.New(), types.RatingGood, nil, now); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("unknown session: got %v, want ErrNotFound", err)
	}
}

func TestGradeLearningCardRequeues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	source := env.seedSource(t, "requeue")
	env.seedCard(t, source.ID, now.Add(-2*time.Hour))
	env.seedCard(t, source.ID, now.Add(-time.Hour))

	session, err := env.sessions.StartOrResume(ctx, source.ID, now)
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	head := session.Cards[0].CardID

	// Good on a new card lands in a short learning step, so the card cycles
	// back instead of leaving the session.
	outcome, err := env.grading.Grade(ctx, session.ID, head, types.RatingGood, nil, now)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if !outcome.Requeued {
		t.Error("learning-step card should be requeued")
	}
	if outcome.Remaining != 2 {
		t.Errorf("remaining = %d, want 2", outcome.Remaining)
	}
	if outcome.Next == nil || outcome.Next.CardID == head {
		t.Errorf("next should be the other card, got %+v", outcome.Next)
	}
	if outcome.Card.State != types.StateLearning {
		t.Errorf("card state = %s, want learning", outcome.Card.State)
	}
	if outcome.Card.Reps != 1 {
		t.Errorf("reps = %d, want 1", outcome.Card.Reps)
	}
}

func TestGradeEasyRemovesFromSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	source := env.seedSource(t, "graduate")
	env.seedCard(t, source.ID, now.Add(-time.Hour))

	session, err := env.sessions.StartOrResume(ctx, source.ID, now)
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	cardID := session.Cards[0].CardID

	outcome, err := env.grading.Grade(ctx, session.ID, cardID, types.RatingEasy, nil, now)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if outcome.Requeued {
		t.Error("graduated card must leave the session")
	}
	if outcome.Remaining != 0 || outcome.Next != nil {
		t.Errorf("queue not empty: remaining=%d next=%+v", outcome.Remaining, outcome.Next)
	}
	if !outcome.SessionComplete() {
		t.Error("session should be complete")
	}
	if outcome.Card.State != types.StateReview {
		t.Errorf("card state = %s, want review", outcome.Card.State)
	}
	if outcome.Card.Due.Sub(now) < 24*time.Hour {
		t.Errorf("graduated due %v is within the same sitting", outcome.Card.Due.Sub(now))
	}
}

func TestGradeReviewLapse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	source := env.seedSource(t, "lapse")
	card := env.seedReviewCard(t, source.ID, now.Add(-time.Hour), 10.0, now.Add(-12*24*time.Hour))

	session, err := env.sessions.StartOrResume(ctx, source.ID, now)
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}

	outcome, err := env.grading.Grade(ctx, session.ID, card.ID, types.RatingAgain, nil, now)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if !outcome.Requeued {
		t.Error("failed card must be requeued")
	}
	if outcome.Card.State != types.StateRelearning {
		t.Errorf("state = %s, want relearning", outcome.Card.State)
	}
	if outcome.Card.Lapses != 1 {
		t.Errorf("lapses = %d, want 1", outcome.Card.Lapses)
	}

	// A lapse from learning state must not count again.
	outcome, err = env.grading.Grade(ctx, session.ID, card.ID, types.RatingAgain, nil, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Grade second: %v", err)
	}
	if outcome.Card.Lapses != 1 {
		t.Errorf("lapses after relearning fail = %d, want still 1", outcome.Card.Lapses)
	}
}

func TestGradeStaleIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	source := env.seedSource(t, "stale")
	env.seedCard(t, source.ID, now.Add(-2*time.Hour))
	env.seedCard(t, source.ID, now.Add(-time.Hour))

	session, err := env.sessions.StartOrResume(ctx, source.ID, now)
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	cardID := session.Cards[0].CardID

	// Resolve the card out of the session.
	if _, err := env.grading.Grade(ctx, session.ID, cardID, types.RatingEasy, nil, now); err != nil {
		t.Fatalf("first grade: %v", err)
	}

	// The duplicate submit must not write anything.
	var before int64
	env.tx.Model(&types.ReviewLog{}).Count(&before)

	outcome, err := env.grading.Grade(ctx, session.ID, cardID, types.RatingAgain, nil, now.Add(time.Second))
	if err != nil {
		t.Fatalf("stale grade: %v", err)
	}
	if !outcome.Stale {
		t.Error("outcome should be marked stale")
	}
	if outcome.Card != nil {
		t.Error("stale grade must not return scheduling changes")
	}
	if outcome.Next == nil {
		t.Error("stale outcome should still report the live head")
	}

	var after int64
	env.tx.Model(&types.ReviewLog{}).Count(&after)
	if after != before {
		t.Errorf("stale grade wrote %d review logs", after-before)
	}
}

func TestGradeWithPartnerWritesPartnerLog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	source := env.seedSource(t, "pairs")
	partner := env.seedPartner(t, "Robin")
	card := env.seedCard(t, source.ID, now.Add(-time.Hour))

	session, err := env.sessions.StartOrResume(ctx, source.ID, now)
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}

	if _, err := env.grading.Grade(ctx, session.ID, card.ID, types.RatingGood, &partner.ID, now); err != nil {
		t.Fatalf("Grade: %v", err)
	}

	var log types.ReviewLog
	if err := env.tx.Where("card_id = ?", card.ID).First(&log).Error; err != nil {
		t.Fatalf("load review log: %v", err)
	}
	if log.LearningPartnerID == nil || *log.LearningPartnerID != partner.ID {
		t.Errorf("review log participant = %v, want partner %s", log.LearningPartnerID, partner.ID)
	}

	unknown := uuid.New()
	if _, err := env.grading.Grade(ctx, session.ID, card.ID, types.RatingGood, &unknown, now.Add(time.Minute)); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("unknown partner: got %v, want ErrNotFound", err)
	}
}
