package override

import (
	"strings"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/types"
)

// DefaultSystemScoreThreshold is the score from which a block counts as
// system-imposed.
const DefaultSystemScoreThreshold = 80

var (
	systemMarkers = []string{"GSB_", "MALWARE", "GEMINI_HIGH_RISK", "GLOBAL_DB_BLOCK"}
	userMarker    = "USER_REPORTED"
)

// Classify decides who imposed a block. An origin reported by the analysis
// service wins. Otherwise a non-DANGER verdict is not a block and a
// USER_REPORTED reason means user, whatever the score. A score at or above
// threshold or a system reason code means system. Anything else is treated
// as system so it cannot be lifted from the popup. score is nil when no
// score is known.
func Classify(a types.Analysis, score *float64, threshold float64) types.BlockOrigin {
	if a.Origin != "" {
		return a.Origin
	}
	if a.Rating != types.RatingDanger {
		return types.OriginNone
	}

	reason := strings.ToUpper(a.Reason)
	if strings.Contains(reason, userMarker) {
		return types.OriginUser
	}
	if score != nil && *score >= threshold {
		return types.OriginSystem
	}
	for _, m := range systemMarkers {
		if strings.Contains(reason, m) {
			return types.OriginSystem
		}
	}
	return types.OriginSystem
}

// knownScore prefers the cached AI score, then the analysis score.
func knownScore(a types.Analysis, info types.Info) *float64 {
	if info.AIScore != nil {
		return info.AIScore
	}
	return a.Score
}

// EffectiveScore is the score shown to the user: the known score, or the
// default implied by the rating.
func EffectiveScore(a types.Analysis, info types.Info) float64 {
	if s := knownScore(a, info); s != nil {
		return *s
	}
	return a.Rating.DefaultScore()
}
