package fsrs

import (
	"math"

	"github.com/tandemstudy/tandem-backend/internal/domain"
)

// algo holds precomputed constants derived from the 21 FSRS weights.
type algo struct {
	w      [21]float64
	decay  float64 // -w[20]
	factor float64 // 0.9^(1/decay) - 1
}

func newAlgo(p [21]float64) algo {
	decay := -p[20]
	factor := math.Pow(0.9, 1.0/decay) - 1.0
	return algo{w: p, decay: decay, factor: factor}
}

// retrievability computes R(t, S) = (1 + FACTOR * t / S) ^ DECAY.
func (a *algo) retrievability(elapsedDays, stability float64) float64 {
	return math.Pow(1+a.factor*elapsedDays/stability, a.decay)
}

func (a *algo) initStability(r domain.Rating) float64 {
	return clampStability(a.w[r-1])
}

// initDifficulty computes D₀(G) = w[4] - e^(w[5]*(G-1)) + 1.
func (a *algo) initDifficulty(r domain.Rating, clamp bool) float64 {
	d := a.w[4] - math.Exp(a.w[5]*float64(r-1)) + 1
	if clamp {
		return clampDifficulty(d)
	}
	return d
}

// nextInterval computes the next review interval in days,
// clamped to [1, maxInterval].
func (a *algo) nextInterval(stability, desiredRetention float64, maxInterval int) int {
	ivl := stability / a.factor * (math.Pow(desiredRetention, 1.0/a.decay) - 1)
	rounded := int(math.Round(ivl))
	if rounded < 1 {
		rounded = 1
	}
	if rounded > maxInterval {
		rounded = maxInterval
	}
	return rounded
}

// shortTermStability handles same-day reviews.
func (a *algo) shortTermStability(stability float64, r domain.Rating) float64 {
	inc := math.Exp(a.w[17]*(float64(r)-3+a.w[18])) * math.Pow(stability, -a.w[19])
	if r == domain.RatingGood || r == domain.RatingEasy {
		inc = math.Max(inc, 1.0)
	}
	return clampStability(stability * inc)
}

// nextDifficulty applies linear damping plus mean reversion toward D₀(Easy).
func (a *algo) nextDifficulty(difficulty float64, r domain.Rating) float64 {
	deltaD := -a.w[6] * (float64(r) - 3)
	dPrime := difficulty + (10-difficulty)*deltaD/9
	d0Easy := a.initDifficulty(domain.RatingEasy, false)
	return clampDifficulty(a.w[7]*d0Easy + (1-a.w[7])*dPrime)
}

func (a *algo) nextStability(d, s, r float64, rating domain.Rating) float64 {
	if rating == domain.RatingAgain {
		return a.nextForgetStability(d, s, r)
	}
	return a.nextRecallStability(d, s, r, rating)
}

func (a *algo) nextRecallStability(d, s, r float64, rating domain.Rating) float64 {
	hardPenalty := 1.0
	if rating == domain.RatingHard {
		hardPenalty = a.w[15]
	}
	easyBonus := 1.0
	if rating == domain.RatingEasy {
		easyBonus = a.w[16]
	}
	return s * (1 + math.Exp(a.w[8])*
		(11-d)*
		math.Pow(s, -a.w[9])*
		(math.Exp((1-r)*a.w[10])-1)*
		hardPenalty*easyBonus)
}

func (a *algo) nextForgetStability(d, s, r float64) float64 {
	long := a.w[11] *
		math.Pow(d, -a.w[12]) *
		(math.Pow(s+1, a.w[13]) - 1) *
		math.Exp((1-r)*a.w[14])
	short := s / math.Exp(a.w[17]*a.w[18])
	return math.Min(long, short)
}

func clampStability(s float64) float64 {
	return math.Max(s, 0.001)
}

func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
