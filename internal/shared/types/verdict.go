package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRating is returned for decision strings that map to no rating.
var ErrUnknownRating = errors.New("unknown rating")

// Rating is the three-level verdict on a URL.
type Rating string

const (
	RatingSafe   Rating = "SAFE"
	RatingWarn   Rating = "WARN"
	RatingDanger Rating = "DANGER"
)

// ParseRating normalises the decision vocabularies used by the analysis
// service, including the Korean labels of older deployments.
func ParseRating(s string) (Rating, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SAFE", "안전":
		return RatingSafe, nil
	case "WARN", "WARNING", "경고":
		return RatingWarn, nil
	case "BLOCK", "DANGER", "위험":
		return RatingDanger, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRating, s)
	}
}

// Blocking reports whether the rating stops the navigation.
func (r Rating) Blocking() bool {
	return r == RatingDanger
}

// DefaultScore is the score implied by a rating when none was reported.
func (r Rating) DefaultScore() float64 {
	switch r {
	case RatingDanger:
		return 100
	case RatingWarn:
		return 50
	default:
		return 10
	}
}

func (r Rating) String() string { return string(r) }

// BlockOrigin records who imposed a block.
type BlockOrigin string

const (
	OriginNone   BlockOrigin = "none"
	OriginUser   BlockOrigin = "user"
	OriginSystem BlockOrigin = "system"
)

// ParseBlockOrigin maps a wire value to an origin. The empty string and
// unknown values report ok=false so callers can fall back to inference.
func ParseBlockOrigin(s string) (BlockOrigin, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return OriginNone, true
	case "user":
		return OriginUser, true
	case "system":
		return OriginSystem, true
	default:
		return "", false
	}
}

// Analysis is the verdict on a URL. Reason is plain text and must never be
// rendered as markup.
type Analysis struct {
	Rating               Rating      `json:"rating"`
	Reason               string      `json:"reason"`
	Score                *float64    `json:"score,omitempty"`
	SuggestedOfficialURL string      `json:"suggested_official_url,omitempty"`
	Origin               BlockOrigin `json:"block_origin,omitempty"`
}

// WithScore returns a copy of a carrying the given score.
func (a Analysis) WithScore(score float64) Analysis {
	a.Score = &score
	return a
}

// Info is the supplementary cached verdict kept by the analysis service.
type Info struct {
	AIScore     *float64 `json:"ai_score,omitempty"`
	AIReason    string   `json:"ai_reason,omitempty"`
	OfficialURL string   `json:"official_url,omitempty"`
}

// Decision is the value sent with an override: 1 blocks, 0 unblocks.
type Decision int

const (
	DecisionUnblock Decision = 0
	DecisionBlock   Decision = 1
)

func (d Decision) String() string {
	if d == DecisionBlock {
		return "block"
	}
	return "unblock"
}
