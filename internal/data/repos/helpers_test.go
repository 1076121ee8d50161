package repos

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/tandemstudy/tandem-backend/internal/domain"
)

func seedSource(t *testing.T, tx *gorm.DB, name string) *types.Source {
	t.Helper()
	source := &types.Source{Name: name}
	if err := tx.Create(source).Error; err != nil {
		t.Fatalf("seed source: %v", err)
	}
	return source
}

func seedCard(t *testing.T, tx *gorm.DB, sourceID uuid.UUID, due time.Time, readiness types.Readiness) *types.Card {
	t.Helper()
	card := &types.Card{
		SourceID:  sourceID,
		State:     types.StateNew,
		Due:       due,
		Readiness: readiness,
	}
	if err := tx.Create(card).Error; err != nil {
		t.Fatalf("seed card: %v", err)
	}
	return card
}

func seedPartner(t *testing.T, tx *gorm.DB, name string) *types.LearningPartner {
	t.Helper()
	partner := &types.LearningPartner{Name: name, IsEnabled: true}
	if err := tx.Create(partner).Error; err != nil {
		t.Fatalf("seed partner: %v", err)
	}
	return partner
}

func seedReviewLog(t *testing.T, tx *gorm.DB, cardID uuid.UUID, partnerID *uuid.UUID, rating types.Rating, review time.Time) *types.ReviewLog {
	t.Helper()
	log := &types.ReviewLog{
		CardID:            cardID,
		LearningPartnerID: partnerID,
		Rating:            rating,
		Review:            review,
		State:             types.StateReview,
	}
	if err := tx.Create(log).Error; err != nil {
		t.Fatalf("seed review log: %v", err)
	}
	return log
}
