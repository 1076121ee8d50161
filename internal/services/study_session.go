package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tandemstudy/tandem-backend/internal/data/repos"
	types "github.com/tandemstudy/tandem-backend/internal/domain"
	apperrors "github.com/tandemstudy/tandem-backend/internal/pkg/errors"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

// StudySessionService is the session store: it owns the day-scoped queue rows
// and hands the UI a stable, reload-safe ordered list.
type StudySessionService interface {
	// StartOrResume returns the source's session for the current calendar
	// day, constructing and persisting it on first use. Re-calling with the
	// same source on the same day returns the identical (possibly partially
	// consumed) queue; it never reshuffles or regenerates assignments.
	StartOrResume(ctx context.Context, sourceID uuid.UUID, now time.Time) (*types.StudySession, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*types.StudySession, error)
	// Head returns the lowest-position remaining row, nil when the session
	// is complete.
	Head(ctx context.Context, sessionID uuid.UUID) (*types.StudySessionCard, error)
}

type studySessionService struct {
	db       *gorm.DB
	log      *logger.Logger
	sources  repos.SourceRepo
	settings repos.StudySettingsRepo
	partners repos.LearningPartnerRepo
	sessions repos.StudySessionRepo
	selector candidateSelector
}

func NewStudySessionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sources repos.SourceRepo,
	cards repos.CardRepo,
	reviewLogs repos.ReviewLogRepo,
	settings repos.StudySettingsRepo,
	partners repos.LearningPartnerRepo,
	sessions repos.StudySessionRepo,
) StudySessionService {
	return &studySessionService{
		db:       db,
		log:      baseLog.With("service", "StudySessionService"),
		sources:  sources,
		settings: settings,
		partners: partners,
		sessions: sessions,
		selector: candidateSelector{cards: cards, reviewLogs: reviewLogs},
	}
}

func (s *studySessionService) StartOrResume(ctx context.Context, sourceID uuid.UUID, now time.Time) (*types.StudySession, error) {
	source, err := s.sources.GetByID(ctx, nil, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("source %s: %w", sourceID, apperrors.ErrNotFound)
	}

	day := types.SessionDay(now)

	var out *types.StudySession
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.sessions.GetBySourceAndDay(ctx, tx, sourceID, day)
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		if existing != nil {
			out = existing
			return nil
		}

		built, err := s.buildSession(ctx, tx, sourceID, day, now)
		if err != nil {
			return err
		}
		if err := s.sessions.Create(ctx, tx, built); err != nil {
			return err
		}
		out = built
		return nil
	})
	if err != nil {
		// Another client created the same (source, day) session between our
		// lookup and insert; theirs is authoritative.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.Debug("Lost session-create race, reusing existing row", "source_id", sourceID)
			existing, getErr := s.sessions.GetBySourceAndDay(ctx, nil, sourceID, day)
			if getErr != nil {
				return nil, fmt.Errorf("get session after conflict: %w", getErr)
			}
			if existing == nil {
				return nil, fmt.Errorf("session vanished after conflict: %w", apperrors.ErrNotFound)
			}
			return existing, nil
		}
		return nil, err
	}
	return out, nil
}

func (s *studySessionService) buildSession(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, day, now time.Time) (*types.StudySession, error) {
	ctx, span := otel.Tracer("services/study_session").Start(ctx, "session.build")
	defer span.End()

	participants, err := s.activeParticipants(ctx, tx, sourceID)
	if err != nil {
		return nil, err
	}

	var partnerID *uuid.UUID
	if len(participants) > 1 {
		partnerID = participants[1].PartnerID
	}

	candidates, err := s.selector.Select(ctx, tx, sourceID, partnerID, now)
	if err != nil {
		return nil, err
	}

	rows := assign(candidates, participants)
	span.SetAttributes(
		attribute.Int("session.candidates", len(candidates)),
		attribute.Int("session.participants", len(participants)),
	)
	s.log.Info("Built study session",
		"source_id", sourceID,
		"cards", len(rows),
		"participants", len(participants),
	)

	return &types.StudySession{
		SourceID: sourceID,
		Day:      day,
		Cards:    rows,
	}, nil
}

// activeParticipants resolves the study mode into one or two participants.
// Partner mode without any enabled partner degrades to solo.
func (s *studySessionService) activeParticipants(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) ([]participant, error) {
	participants := []participant{{}}

	settings, err := s.settings.GetBySourceID(ctx, tx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get study settings: %w", err)
	}
	if settings == nil || settings.StudyMode != types.StudyModeWithPartner {
		return participants, nil
	}

	enabled, err := s.partners.ListEnabled(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("list enabled partners: %w", err)
	}
	if len(enabled) == 0 {
		return participants, nil
	}

	id := enabled[0].ID
	return append(participants, participant{PartnerID: &id}), nil
}

func (s *studySessionService) Get(ctx context.Context, sessionID uuid.UUID) (*types.StudySession, error) {
	session, err := s.sessions.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	return session, nil
}

func (s *studySessionService) Head(ctx context.Context, sessionID uuid.UUID) (*types.StudySessionCard, error) {
	return s.sessions.Head(ctx, nil, sessionID)
}
