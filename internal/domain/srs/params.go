package srs

import (
	"github.com/recallkit/recall-api/internal/domain"
)

// Params defines all configurable parameters for the SRS algorithm.
type Params struct {
	// Quality maps each review outcome to its SM-2 quality score.
	Quality map[domain.ReviewOutcome]int

	// PassThreshold is the minimum quality score counted as successful
	// recall. Outcomes below it are lapses: the repetition streak resets
	// and the interval drops back to one day.
	PassThreshold int

	// MinEaseFactor is the floor the ease factor never goes below.
	MinEaseFactor float64

	// FirstInterval and SecondInterval are the fixed intervals, in days,
	// granted by the first and second consecutive passes.
	FirstInterval  int
	SecondInterval int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance.
type ParamsConfig struct {
	// HardIsLapse treats a Hard rating as failed recall, resetting the
	// streak like Again does. The default keeps Hard as a pass.
	HardIsLapse bool

	MinEaseFactor  float64
	FirstInterval  int
	SecondInterval int
}

// NewDefaultParams creates a new Params instance with the standard SM-2
// values: quality scores {0, 3, 4, 5} and pass threshold 3, so Again is the
// only lapse outcome.
func NewDefaultParams() *Params {
	return &Params{
		Quality: map[domain.ReviewOutcome]int{
			domain.ReviewOutcomeAgain: 0,
			domain.ReviewOutcomeHard:  3,
			domain.ReviewOutcomeGood:  4,
			domain.ReviewOutcomeEasy:  5,
		},
		PassThreshold:  3,
		MinEaseFactor:  domain.MinEaseFactor,
		FirstInterval:  1,
		SecondInterval: 6,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.HardIsLapse {
		// Raising the threshold above Hard's quality score makes Hard a
		// lapse while Good and Easy still pass.
		params.PassThreshold = params.Quality[domain.ReviewOutcomeGood]
	}

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}

	return params
}

// IsPass reports whether the outcome counts as successful recall under these
// parameters.
func (p *Params) IsPass(outcome domain.ReviewOutcome) bool {
	return p.Quality[outcome] >= p.PassThreshold
}
