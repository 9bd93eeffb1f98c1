package srs

import (
	"testing"

	"github.com/recallkit/recall-api/internal/domain"
)

func TestNewDefaultParams(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	wantQuality := map[domain.ReviewOutcome]int{
		domain.ReviewOutcomeAgain: 0,
		domain.ReviewOutcomeHard:  3,
		domain.ReviewOutcomeGood:  4,
		domain.ReviewOutcomeEasy:  5,
	}
	for outcome, want := range wantQuality {
		if got := params.Quality[outcome]; got != want {
			t.Errorf("Quality[%s] = %d, want %d", outcome, got, want)
		}
	}

	if params.PassThreshold != 3 {
		t.Errorf("PassThreshold = %d, want 3", params.PassThreshold)
	}
	if params.MinEaseFactor != domain.MinEaseFactor {
		t.Errorf("MinEaseFactor = %v, want %v", params.MinEaseFactor, domain.MinEaseFactor)
	}
	if params.FirstInterval != 1 || params.SecondInterval != 6 {
		t.Errorf("Fixed intervals = (%d, %d), want (1, 6)",
			params.FirstInterval, params.SecondInterval)
	}
}

func TestIsPass(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		config  ParamsConfig
		outcome domain.ReviewOutcome
		want    bool
	}{
		{
			name:    "Again is a lapse by default",
			outcome: domain.ReviewOutcomeAgain,
			want:    false,
		},
		{
			name:    "Hard is a pass by default",
			outcome: domain.ReviewOutcomeHard,
			want:    true,
		},
		{
			name:    "Good is a pass by default",
			outcome: domain.ReviewOutcomeGood,
			want:    true,
		},
		{
			name:    "Easy is a pass by default",
			outcome: domain.ReviewOutcomeEasy,
			want:    true,
		},
		{
			name:    "Hard is a lapse when configured strict",
			config:  ParamsConfig{HardIsLapse: true},
			outcome: domain.ReviewOutcomeHard,
			want:    false,
		},
		{
			name:    "Good still passes when Hard is a lapse",
			config:  ParamsConfig{HardIsLapse: true},
			outcome: domain.ReviewOutcomeGood,
			want:    true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params := NewParams(tc.config)
			if got := params.IsPass(tc.outcome); got != tc.want {
				t.Errorf("IsPass(%s) = %v, want %v", tc.outcome, got, tc.want)
			}
		})
	}
}

func TestNewParamsOverrides(t *testing.T) {
	t.Parallel()

	params := NewParams(ParamsConfig{
		MinEaseFactor:  1.5,
		FirstInterval:  2,
		SecondInterval: 8,
	})

	if params.MinEaseFactor != 1.5 {
		t.Errorf("MinEaseFactor = %v, want 1.5", params.MinEaseFactor)
	}
	if params.FirstInterval != 2 || params.SecondInterval != 8 {
		t.Errorf("Fixed intervals = (%d, %d), want (2, 8)",
			params.FirstInterval, params.SecondInterval)
	}

	// Zero values keep the defaults.
	defaults := NewParams(ParamsConfig{})
	if defaults.MinEaseFactor != domain.MinEaseFactor {
		t.Errorf("MinEaseFactor = %v, want default %v",
			defaults.MinEaseFactor, domain.MinEaseFactor)
	}
}
