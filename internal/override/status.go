package override

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/types"
)

// Popup messages.
const (
	MessageUnreachable = "analysis server unreachable"
	MessageSystemBlock = "This site is blocked by PhishGuard and cannot be unblocked."
	MessageUserBlock   = "You blocked this site. You can unblock it."
)

// Status is the popup view of a URL.
type Status struct {
	URL        string            `json:"url"`
	Rating     types.Rating      `json:"rating"`
	Reason     string            `json:"reason"`
	Detail     string            `json:"detail,omitempty"`
	Score      float64           `json:"score"`
	Origin     types.BlockOrigin `json:"origin"`
	Official   string            `json:"official_url,omitempty"`
	CanBlock   bool              `json:"can_block"`
	CanUnblock bool              `json:"can_unblock"`
	Message    string            `json:"message,omitempty"`
	Reachable  bool              `json:"reachable"`
}

// Status builds the popup view for url. It never fails: an unreachable
// service yields a WARN status with both actions disabled.
func (m *Manager) Status(ctx context.Context, url, clientID string) Status {
	a, info, err := m.lookup(ctx, url, clientID)
	if err != nil {
		return Status{
			URL:     url,
			Rating:  types.RatingWarn,
			Reason:  MessageUnreachable,
			Score:   types.RatingWarn.DefaultScore(),
			Origin:  types.OriginNone,
			Message: MessageUnreachable,
		}
	}

	return m.statusFrom(url, a, info)
}

// StatusFor builds the popup view from a verdict the caller already holds.
// Only the cached info is fetched, best effort.
func (m *Manager) StatusFor(ctx context.Context, url string, a types.Analysis) Status {
	info, err := m.remote.GlobalInfo(ctx, url)
	if err != nil {
		m.logger.Debug("global info unavailable", zap.String("url", url), zap.Error(err))
		info = types.Info{}
	}
	return m.statusFrom(url, a, info)
}

func (m *Manager) statusFrom(url string, a types.Analysis, info types.Info) Status {
	origin := Classify(a, knownScore(a, info), m.threshold)
	st := Status{
		URL:        url,
		Rating:     a.Rating,
		Reason:     a.Reason,
		Detail:     info.AIReason,
		Score:      EffectiveScore(a, info),
		Origin:     origin,
		Official:   a.SuggestedOfficialURL,
		CanBlock:   origin == types.OriginNone,
		CanUnblock: origin == types.OriginUser,
		Reachable:  true,
	}
	if st.Official == "" {
		st.Official = info.OfficialURL
	}
	switch origin {
	case types.OriginSystem:
		st.Message = MessageSystemBlock
	case types.OriginUser:
		st.Message = MessageUserBlock
	}
	return st
}
