package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tandemstudy/tandem-backend/internal/data/repos"
	"github.com/tandemstudy/tandem-backend/internal/data/repos/testutil"
	types "github.com/tandemstudy/tandem-backend/internal/domain"
	"github.com/tandemstudy/tandem-backend/internal/fsrs"
)

// testEnv wires the real services against a transaction-scoped database so
// each test starts from an empty schema.
type testEnv struct {
	tx       *gorm.DB
	sessions StudySessionService
	grading  GradingService
	settings StudySettingsService
	partners LearningPartnerService
	counts   DueCountsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	sourceRepo := repos.NewSourceRepo(tx, log)
	cardRepo := repos.NewCardRepo(tx, log)
	reviewLogRepo := repos.NewReviewLogRepo(tx, log)
	partnerRepo := repos.NewLearningPartnerRepo(tx, log)
	settingsRepo := repos.NewStudySettingsRepo(tx, log)
	sessionRepo := repos.NewStudySessionRepo(tx, log)

	scheduler, err := fsrs.NewScheduler(fsrs.Config{})
	if err != nil {
		t.Fatalf("init scheduler: %v", err)
	}

	return &testEnv{
		tx: tx,
		sessions: NewStudySessionService(
			tx, log, sourceRepo, cardRepo, reviewLogRepo, settingsRepo, partnerRepo, sessionRepo,
		),
		grading: NewGradingService(
			tx, log, scheduler, cardRepo, reviewLogRepo, partnerRepo, sessionRepo,
		),
		settings: NewStudySettingsService(tx, log, sourceRepo, settingsRepo),
		partners: NewLearningPartnerService(tx, log, partnerRepo),
		counts:   NewDueCountsService(tx, log, sourceRepo, cardRepo, nil),
	}
}

func (e *testEnv) seedSource(t *testing.T, name string) *types.Source {
	t.Helper()
	source := &types.Source{Name: name}
	if err := e.tx.Create(source).Error; err != nil {
		t.Fatalf("seed source: %v", err)
	}
	return source
}

func (e *testEnv) seedCard(t *testing.T, sourceID uuid.UUID, due time.Time) *types.Card {
	t.Helper()
	card := &types.Card{
		SourceID:  sourceID,
		State:     types.StateNew,
		Due:       due,
		Readiness: types.ReadinessReady,
	}
	if err := e.tx.Create(card).Error; err != nil {
		t.Fatalf("seed card: %v", err)
	}
	return card
}

func (e *testEnv) seedReviewCard(t *testing.T, sourceID uuid.UUID, due time.Time, stability float64, lastReview time.Time) *types.Card {
	t.Helper()
	card := &types.Card{
		SourceID:   sourceID,
		State:      types.StateReview,
		Stability:  stability,
		Difficulty: 5.0,
		Due:        due,
		LastReview: &lastReview,
		Readiness:  types.ReadinessReady,
	}
	if err := e.tx.Create(card).Error; err != nil {
		t.Fatalf("seed review card: %v", err)
	}
	return card
}

func (e *testEnv) seedPartner(t *testing.T, name string) *types.LearningPartner {
	t.Helper()
	partner := &types.LearningPartner{Name: name, IsEnabled: true}
	if err := e.tx.Create(partner).Error; err != nil {
		t.Fatalf("seed partner: %v", err)
	}
	return partner
}

func (e *testEnv) seedReviewLog(t *testing.T, cardID uuid.UUID, partnerID *uuid.UUID, rating types.Rating, review time.Time) {
	t.Helper()
	log := &types.ReviewLog{
		CardID:            cardID,
		LearningPartnerID: partnerID,
		Rating:            rating,
		Review:            review,
		State:             types.StateReview,
	}
	if err := e.tx.Create(log).Error; err != nil {
		t.Fatalf("seed review log: %v", err)
	}
}
