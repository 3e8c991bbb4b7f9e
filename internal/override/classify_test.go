package override

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/types"
)

func TestClassify(t *testing.T) {
	danger := func(reason string) types.Analysis {
		return types.Analysis{Rating: types.RatingDanger, Reason: reason}
	}
	tests := []struct {
		name  string
		a     types.Analysis
		score *float64
		want  types.BlockOrigin
	}{
		{"explicit user wins over score", types.Analysis{Rating: types.RatingDanger, Origin: types.OriginUser}, f(99), types.OriginUser},
		{"safe is none", types.Analysis{Rating: types.RatingSafe, Reason: "GSB_"}, nil, types.OriginNone},
		{"warn is none", types.Analysis{Rating: types.RatingWarn}, f(90), types.OriginNone},
		{"user marker wins over score", danger("USER_REPORTED"), f(80), types.OriginUser},
		{"user marker wins over high score", danger("USER_REPORTED (Score: 97)"), f(97), types.OriginUser},
		{"score below threshold user", danger("USER_REPORTED"), f(79), types.OriginUser},
		{"score at threshold", danger("lookalike domain"), f(80), types.OriginSystem},
		{"malware marker", danger("malware host"), nil, types.OriginSystem},
		{"gemini marker", danger("GEMINI_HIGH_RISK"), nil, types.OriginSystem},
		{"global db marker", danger("GLOBAL_DB_BLOCK"), nil, types.OriginSystem},
		{"user marker", danger("USER_REPORTED"), nil, types.OriginUser},
		{"unknown defaults to system", danger("something odd"), nil, types.OriginSystem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.a, tt.score, DefaultSystemScoreThreshold))
		})
	}
}

func TestEffectiveScore(t *testing.T) {
	a := types.Analysis{Rating: types.RatingWarn, Score: f(30)}
	assert.Equal(t, 70.0, EffectiveScore(a, types.Info{AIScore: f(70)}))
	assert.Equal(t, 30.0, EffectiveScore(a, types.Info{}))
	assert.Equal(t, 50.0, EffectiveScore(types.Analysis{Rating: types.RatingWarn}, types.Info{}))
}
