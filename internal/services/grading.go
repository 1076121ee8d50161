package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tandemstudy/tandem-backend/internal/data/repos"
	types "github.com/tandemstudy/tandem-backend/internal/domain"
	"github.com/tandemstudy/tandem-backend/internal/fsrs"
	apperrors "github.com/tandemstudy/tandem-backend/internal/pkg/errors"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

// GradeOutcome reports what a grade did to the session queue.
type GradeOutcome struct {
	// Card carries the post-grade scheduling state. Nil on a stale grade.
	Card *types.Card `json:"card,omitempty"`
	// Requeued is true when the card went to the back of the queue instead
	// of leaving the session.
	Requeued bool `json:"requeued"`
	// Next is the new head of the queue, nil when the session is complete.
	Next *types.StudySessionCard `json:"next,omitempty"`
	// Remaining counts queue rows left after this grade.
	Remaining int64 `json:"remaining"`
	// Stale marks a grade for a card no longer in the session. Nothing was
	// written; the rest of the outcome still describes the live queue.
	Stale bool `json:"stale"`
}

func (o GradeOutcome) SessionComplete() bool { return o.Remaining == 0 }

// GradingService is the orchestrator for a single grade: it runs the FSRS
// update, appends the review log, and resolves the card's fate in the queue,
// all in one transaction.
type GradingService interface {
	Grade(ctx context.Context, sessionID, cardID uuid.UUID, rating types.Rating, partnerID *uuid.UUID, now time.Time) (*GradeOutcome, error)
}

type gradingService struct {
	db        *gorm.DB
	log       *logger.Logger
	scheduler *fsrs.Scheduler
	cards     repos.CardRepo
	logs      repos.ReviewLogRepo
	partners  repos.LearningPartnerRepo
	sessions  repos.StudySessionRepo
}

func NewGradingService(
	db *gorm.DB,
	baseLog *logger.Logger,
	scheduler *fsrs.Scheduler,
	cards repos.CardRepo,
	logs repos.ReviewLogRepo,
	partners repos.LearningPartnerRepo,
	sessions repos.StudySessionRepo,
) GradingService {
	return &gradingService{
		db:        db,
		log:       baseLog.With("service", "GradingService"),
		scheduler: scheduler,
		cards:     cards,
		logs:      logs,
		partners:  partners,
		sessions:  sessions,
	}
}

func (s *gradingService) Grade(ctx context.Context, sessionID, cardID uuid.UUID, rating types.Rating, partnerID *uuid.UUID, now time.Time) (*GradeOutcome, error) {
	if !rating.IsValid() {
		return nil, fmt.Errorf("rating %d: %w", int(rating), apperrors.ErrInvalidArgument)
	}

	ctx, span := otel.Tracer("services/grading").Start(ctx, "grade")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", sessionID.String()),
		attribute.String("card.id", cardID.String()),
		attribute.Int("grade.rating", int(rating)),
	)

	var out *GradeOutcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.sessions.GetByID(ctx, tx, sessionID)
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		if session == nil {
			return fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
		}

		card, err := s.cards.GetByID(ctx, tx, cardID)
		if err != nil {
			return fmt.Errorf("get card: %w", err)
		}
		if card == nil {
			return fmt.Errorf("card %s: %w", cardID, apperrors.ErrNotFound)
		}

		if partnerID != nil {
			partner, err := s.partners.GetByID(ctx, tx, *partnerID)
			if err != nil {
				return fmt.Errorf("get partner: %w", err)
			}
			if partner == nil {
				return fmt.Errorf("learning partner %s: %w", *partnerID, apperrors.ErrNotFound)
			}
		}

		row, err := s.sessions.GetCard(ctx, tx, sessionID, cardID)
		if err != nil {
			return fmt.Errorf("get session card: %w", err)
		}
		if row == nil {
			// Already graded from another tab, or never in this session.
			// Treat as a no-op so a double-submit cannot corrupt the queue.
			out, err = s.queueState(ctx, tx, sessionID)
			if err != nil {
				return err
			}
			out.Stale = true
			s.log.Debug("Ignored stale grade", "session_id", sessionID, "card_id", cardID)
			return nil
		}

		res, err := s.scheduler.Schedule(fsrs.Snapshot{
			State:      card.State,
			Step:       card.LearningSteps,
			Stability:  card.Stability,
			Difficulty: card.Difficulty,
			LastReview: card.LastReview,
		}, rating, now)
		if err != nil {
			return fmt.Errorf("schedule: %w", err)
		}

		if card.State == types.StateReview && rating == types.RatingAgain {
			card.Lapses++
		}
		card.Reps++
		card.State = res.State
		card.LearningSteps = res.Step
		card.Stability = res.Stability
		card.Difficulty = res.Difficulty
		card.Due = res.Due
		card.ElapsedDays = res.ElapsedDays
		card.ScheduledDays = res.ScheduledDays
		review := now
		card.LastReview = &review

		if err := s.cards.UpdateScheduling(ctx, tx, card); err != nil {
			return fmt.Errorf("update card scheduling: %w", err)
		}

		if _, err := s.logs.Create(ctx, tx, []*types.ReviewLog{{
			CardID:            card.ID,
			LearningPartnerID: partnerID,
			Rating:            rating,
			Review:            now,
			State:             res.State,
			Stability:         res.Stability,
			Difficulty:        res.Difficulty,
		}}); err != nil {
			return fmt.Errorf("append review log: %w", err)
		}

		// A failed card, or one due again within the sitting, cycles to the
		// back of the queue; otherwise it is done for the day.
		requeue := rating == types.RatingAgain || !res.Due.After(now.Add(dueLookahead))
		if requeue {
			if err := s.sessions.MoveToBack(ctx, tx, sessionID, cardID); err != nil {
				return fmt.Errorf("requeue card: %w", err)
			}
		} else {
			if err := s.sessions.RemoveCard(ctx, tx, sessionID, cardID); err != nil {
				return fmt.Errorf("remove card: %w", err)
			}
		}

		out, err = s.queueState(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		out.Card = card
		out.Requeued = requeue
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Graded card",
		"session_id", sessionID,
		"card_id", cardID,
		"rating", int(rating),
		"requeued", out.Requeued,
		"remaining", out.Remaining,
		"stale", out.Stale,
	)
	return out, nil
}

func (s *gradingService) queueState(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*GradeOutcome, error) {
	head, err := s.sessions.Head(ctx, tx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get queue head: %w", err)
	}
	remaining, err := s.sessions.CountRemaining(ctx, tx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count remaining: %w", err)
	}
	return &GradeOutcome{Next: head, Remaining: remaining}, nil
}
