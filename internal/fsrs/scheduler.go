// Package fsrs implements the FSRS v6 spaced-repetition formula used by the
// grading orchestrator. It is a pure library: Schedule performs no I/O and
// never mutates its input.
package fsrs

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/tandemstudy/tandem-backend/internal/domain"
)

// Config configures a Scheduler. Zero values produce sensible defaults.
type Config struct {
	Parameters       [21]float64     `yaml:"parameters"`        // zero → DefaultParameters
	DesiredRetention float64         `yaml:"desired_retention"` // zero → 0.9
	LearningSteps    []time.Duration `yaml:"learning_steps"`    // nil → [1m, 10m]
	RelearningSteps  []time.Duration `yaml:"relearning_steps"`  // nil → [10m]
	MaximumInterval  int             `yaml:"maximum_interval"`  // zero → 36500 days
	EnableFuzzing    bool            `yaml:"enable_fuzzing"`    // off by default: session behavior stays deterministic
}

// Snapshot is the card scheduling state the formula consumes.
type Snapshot struct {
	State      domain.CardState
	Step       int // current learning/relearning step, ignored in Review
	Stability  float64
	Difficulty float64
	LastReview *time.Time
}

// Result is the new scheduling state after a grade.
type Result struct {
	State         domain.CardState
	Step          int
	Stability     float64
	Difficulty    float64
	Due           time.Time
	ElapsedDays   float64
	ScheduledDays float64
}

// Scheduler applies the FSRS state machine New → Learning → Review ⇄ Relearning.
type Scheduler struct {
	algo             algo
	desiredRetention float64
	learningSteps    []time.Duration
	relearningSteps  []time.Duration
	maximumInterval  int
	enableFuzzing    bool
	rng              *rand.Rand
}

func NewScheduler(cfg Config) (*Scheduler, error) {
	params := cfg.Parameters
	if params == ([21]float64{}) {
		params = DefaultParameters
	}
	if err := ValidateParameters(params); err != nil {
		return nil, err
	}

	dr := cfg.DesiredRetention
	if dr == 0 {
		dr = 0.9
	}
	if dr < 0 || dr > 1 {
		return nil, fmt.Errorf("fsrs: desired retention %f out of range (0, 1]", dr)
	}

	maxIvl := cfg.MaximumInterval
	if maxIvl == 0 {
		maxIvl = 36500
	}
	if maxIvl < 0 {
		return nil, fmt.Errorf("fsrs: maximum interval %d must be positive", maxIvl)
	}

	ls := cfg.LearningSteps
	if ls == nil {
		ls = []time.Duration{time.Minute, 10 * time.Minute}
	}
	rs := cfg.RelearningSteps
	if rs == nil {
		rs = []time.Duration{10 * time.Minute}
	}

	return &Scheduler{
		algo:             newAlgo(params),
		desiredRetention: dr,
		learningSteps:    ls,
		relearningSteps:  rs,
		maximumInterval:  maxIvl,
		enableFuzzing:    cfg.EnableFuzzing,
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Schedule grades the snapshot at the given time and returns the new state.
func (s *Scheduler) Schedule(snap Snapshot, rating domain.Rating, now time.Time) (Result, error) {
	if !rating.IsValid() {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}

	state := snap.State
	step := snap.Step
	if state == domain.StateNew || state == "" {
		state = domain.StateLearning
		step = 0
	}

	var elapsedDays float64
	if snap.LastReview != nil {
		elapsedDays = now.Sub(*snap.LastReview).Hours() / 24.0
		if elapsedDays < 0 {
			elapsedDays = 0
		}
	}

	stability, difficulty := s.updateMemory(snap.Stability, snap.Difficulty, rating, elapsedDays)

	res := Result{
		State:       state,
		Step:        step,
		Stability:   stability,
		Difficulty:  difficulty,
		ElapsedDays: elapsedDays,
	}

	interval := s.transition(&res, rating)

	if s.enableFuzzing && res.State == domain.StateReview {
		days := int(interval.Hours() / 24.0)
		if days > 0 {
			interval = time.Duration(s.fuzzInterval(days)) * 24 * time.Hour
		}
	}

	res.Due = now.Add(interval)
	res.ScheduledDays = interval.Hours() / 24.0
	return res, nil
}

// Retrievability returns the probability of recall at the given time.
// Zero for cards that have never been reviewed.
func (s *Scheduler) Retrievability(snap Snapshot, now time.Time) float64 {
	if snap.LastReview == nil || snap.Stability <= 0 {
		return 0
	}
	elapsed := now.Sub(*snap.LastReview).Hours() / 24.0
	return s.algo.retrievability(elapsed, snap.Stability)
}

func (s *Scheduler) updateMemory(stability, difficulty float64, rating domain.Rating, elapsedDays float64) (float64, float64) {
	if stability <= 0 {
		// First review: initialize S and D.
		return s.algo.initStability(rating), s.algo.initDifficulty(rating, true)
	}
	var nextS float64
	if elapsedDays < 1 {
		nextS = s.algo.shortTermStability(stability, rating)
	} else {
		r := s.algo.retrievability(elapsedDays, stability)
		nextS = s.algo.nextStability(difficulty, stability, r, rating)
	}
	return nextS, s.algo.nextDifficulty(difficulty, rating)
}

func (s *Scheduler) transition(res *Result, rating domain.Rating) time.Duration {
	switch res.State {
	case domain.StateLearning:
		return s.transitionLearning(res, rating, s.learningSteps)
	case domain.StateRelearning:
		return s.transitionLearning(res, rating, s.relearningSteps)
	default:
		return s.transitionReview(res, rating)
	}
}

func (s *Scheduler) transitionLearning(res *Result, rating domain.Rating, steps []time.Duration) time.Duration {
	step := res.Step

	// Empty steps or step overflow graduate the card to Review.
	if len(steps) == 0 || (step >= len(steps) && rating != domain.RatingAgain) {
		return s.graduate(res)
	}

	switch rating {
	case domain.RatingAgain:
		res.Step = 0
		return steps[0]

	case domain.RatingHard:
		if step == 0 && len(steps) == 1 {
			return time.Duration(float64(steps[0]) * 1.5)
		}
		if step == 0 && len(steps) >= 2 {
			return (steps[0] + steps[1]) / 2
		}
		return steps[step]

	case domain.RatingGood:
		next := step + 1
		if next >= len(steps) {
			return s.graduate(res)
		}
		res.Step = next
		return steps[next]

	default: // Easy
		return s.graduate(res)
	}
}

func (s *Scheduler) transitionReview(res *Result, rating domain.Rating) time.Duration {
	if rating == domain.RatingAgain && len(s.relearningSteps) > 0 {
		res.State = domain.StateRelearning
		res.Step = 0
		return s.relearningSteps[0]
	}
	res.Step = 0
	days := s.algo.nextInterval(res.Stability, s.desiredRetention, s.maximumInterval)
	return time.Duration(days) * 24 * time.Hour
}

func (s *Scheduler) graduate(res *Result) time.Duration {
	res.State = domain.StateReview
	res.Step = 0
	days := s.algo.nextInterval(res.Stability, s.desiredRetention, s.maximumInterval)
	return time.Duration(days) * 24 * time.Hour
}

// fuzzInterval spreads review-state intervals slightly so cards graded
// together drift apart over time.
func (s *Scheduler) fuzzInterval(days int) int {
	if days < 3 {
		return days
	}
	var delta float64
	switch {
	case days < 7:
		delta = 0.15 * float64(days)
	case days < 20:
		delta = 0.15*7 + 0.1*float64(days-7)
	default:
		delta = 0.15*7 + 0.1*13 + 0.05*float64(days-20)
	}
	low := days - int(delta)
	high := days + int(delta)
	if low < 2 {
		low = 2
	}
	if high > s.maximumInterval {
		high = s.maximumInterval
	}
	if high <= low {
		return low
	}
	return low + s.rng.Intn(high-low+1)
}
