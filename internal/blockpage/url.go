package blockpage

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names carried by the block page URL.
const (
	ParamReason   = "reason"
	ParamURL      = "url"
	ParamScore    = "score"
	ParamOfficial = "official"
)

// ErrNotBlockPage is returned by ParseURL for URLs that carry no blocked URL.
var ErrNotBlockPage = errors.New("not a block page url")

// State is everything the block page shows.
type State struct {
	Reason   string
	URL      string
	Score    *float64
	Official string
}

// BuildURL appends s to the block page base URL.
func BuildURL(base string, s State) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse block page url: %w", err)
	}
	q := u.Query()
	q.Set(ParamReason, s.Reason)
	q.Set(ParamURL, s.URL)
	if s.Score != nil {
		q.Set(ParamScore, strconv.FormatFloat(*s.Score, 'f', -1, 64))
	}
	if s.Official != "" {
		q.Set(ParamOfficial, s.Official)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ParseURL reads the state back from a block page URL.
func ParseURL(raw string) (State, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return State{}, fmt.Errorf("parse block page url: %w", err)
	}
	return FromQuery(u.Query())
}

// FromQuery reads the state from decoded query values.
func FromQuery(q url.Values) (State, error) {
	s := State{
		Reason:   q.Get(ParamReason),
		URL:      q.Get(ParamURL),
		Official: q.Get(ParamOfficial),
	}
	if s.URL == "" {
		return State{}, ErrNotBlockPage
	}
	if raw := strings.TrimSpace(q.Get(ParamScore)); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			s.Score = &v
		}
	}
	return s, nil
}
