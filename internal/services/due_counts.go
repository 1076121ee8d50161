package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tandemstudy/tandem-backend/internal/data/repos"
	types "github.com/tandemstudy/tandem-backend/internal/domain"
	apperrors "github.com/tandemstudy/tandem-backend/internal/pkg/errors"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

const (
	// dueCountDisplayCap caps each badge; past this the exact number stops
	// being useful ("50+").
	dueCountDisplayCap = 50

	dueCountsCacheTTL = 30 * time.Second
)

// DueCounts are the per-stage badge numbers shown on a source. Counts are
// capped at dueCountDisplayCap; Capped reports whether any bucket hit it.
type DueCounts struct {
	New        int64 `json:"new"`
	Learning   int64 `json:"learning"`
	Review     int64 `json:"review"`
	Relearning int64 `json:"relearning"`
	Capped     bool  `json:"capped"`
}

type DueCountsService interface {
	Get(ctx context.Context, sourceID uuid.UUID, now time.Time) (*DueCounts, error)
}

type dueCountsService struct {
	db      *gorm.DB
	log     *logger.Logger
	sources repos.SourceRepo
	cards   repos.CardRepo
	cache   *redis.Client // nil disables caching
}

func NewDueCountsService(db *gorm.DB, baseLog *logger.Logger, sources repos.SourceRepo, cards repos.CardRepo, cache *redis.Client) DueCountsService {
	return &dueCountsService{
		db:      db,
		log:     baseLog.With("service", "DueCountsService"),
		sources: sources,
		cards:   cards,
		cache:   cache,
	}
}

func (s *dueCountsService) Get(ctx context.Context, sourceID uuid.UUID, now time.Time) (*DueCounts, error) {
	source, err := s.sources.GetByID(ctx, nil, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("source %s: %w", sourceID, apperrors.ErrNotFound)
	}

	key := fmt.Sprintf("due_counts:%s", sourceID)
	if cached := s.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	horizon := now.Add(dueLookahead)
	counts := &DueCounts{}
	targets := []struct {
		state types.CardState
		dst   *int64
	}{
		{types.StateNew, &counts.New},
		{types.StateLearning, &counts.Learning},
		{types.StateReview, &counts.Review},
		{types.StateRelearning, &counts.Relearning},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		g.Go(func() error {
			n, err := s.cards.CountDueByState(gctx, nil, sourceID, t.state, horizon)
			if err != nil {
				return fmt.Errorf("count %s: %w", t.state, err)
			}
			*t.dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, t := range targets {
		if *t.dst > dueCountDisplayCap {
			*t.dst = dueCountDisplayCap
			counts.Capped = true
		}
	}

	s.toCache(ctx, key, counts)
	return counts, nil
}

// fromCache returns nil on miss or any cache error; counting is cheap enough
// that the cache is never allowed to fail a request.
func (s *dueCountsService) fromCache(ctx context.Context, key string) *DueCounts {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("Due-counts cache read failed", "key", key, "error", err)
		}
		return nil
	}
	var counts DueCounts
	if err := json.Unmarshal(payload, &counts); err != nil {
		s.log.Warn("Dropping malformed due-counts cache entry", "key", key, "error", err)
		return nil
	}
	return &counts
}

func (s *dueCountsService) toCache(ctx context.Context, key string, counts *DueCounts) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(counts)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, dueCountsCacheTTL).Err(); err != nil {
		s.log.Warn("Due-counts cache write failed", "key", key, "error", err)
	}
}
