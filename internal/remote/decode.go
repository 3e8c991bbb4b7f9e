package remote

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/types"
)

// flexBool accepts true/false, 0/1 and their string forms.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	switch strings.ToLower(s) {
	case "true", "1":
		*b = true
	case "false", "0", "", "null":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", data)
	}
	*f = flexFloat(v)
	return nil
}

func (f *flexFloat) ptr() *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}

type checkResponse struct {
	IsBlocked *flexBool `json:"is_blocked"`
	Blocked   *flexBool `json:"blocked"`
}

type analyzeResponse struct {
	Decision             string     `json:"decision"`
	Rating               string     `json:"rating"`
	Reason               string     `json:"reason"`
	SuggestedOfficialURL string     `json:"suggested_official_url"`
	Score                *flexFloat `json:"score"`
	BlockOrigin          string     `json:"block_origin"`
}

type infoResponse struct {
	AIScore     *flexFloat `json:"ai_score"`
	AIReason    string     `json:"ai_reason"`
	OfficialURL string     `json:"official_url"`
}

type reportResponse struct {
	Message  string `json:"message"`
	ReportID any    `json:"report_id"`
}

type ackResponse struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

type listResponse struct {
	URLs *[]string `json:"urls"`
}

// scorePattern finds a score embedded in a reason, e.g. "... (Score: 85)".
var scorePattern = regexp.MustCompile(`(?i)score\s*:\s*(\d+(?:\.\d+)?)`)

// ScoreFromReason extracts a "Score: NN" value from free text.
func ScoreFromReason(reason string) (float64, bool) {
	m := scorePattern.FindStringSubmatch(reason)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func unmarshal(endpoint Endpoint, body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: %s: empty body", ErrMalformed, endpoint)
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, endpoint, err)
	}
	return nil
}

func decodeCheck(body []byte) (bool, error) {
	var r checkResponse
	if err := unmarshal(EndpointCheck, body, &r); err != nil {
		return false, err
	}
	switch {
	case r.IsBlocked != nil:
		return bool(*r.IsBlocked), nil
	case r.Blocked != nil:
		return bool(*r.Blocked), nil
	default:
		return false, fmt.Errorf("%w: %s: no is_blocked or blocked field", ErrMalformed, EndpointCheck)
	}
}

func decodeAnalysis(body []byte) (types.Analysis, error) {
	var r analyzeResponse
	if err := unmarshal(EndpointAnalyze, body, &r); err != nil {
		return types.Analysis{}, err
	}

	decision := r.Decision
	if decision == "" {
		decision = r.Rating
	}
	rating, err := types.ParseRating(decision)
	if err != nil {
		return types.Analysis{}, fmt.Errorf("%w: %s: %v", ErrMalformed, EndpointAnalyze, err)
	}

	a := types.Analysis{
		Rating:               rating,
		Reason:               r.Reason,
		Score:                r.Score.ptr(),
		SuggestedOfficialURL: r.SuggestedOfficialURL,
	}
	if a.Score == nil {
		if s, ok := ScoreFromReason(r.Reason); ok {
			a.Score = &s
		}
	}
	if origin, ok := types.ParseBlockOrigin(r.BlockOrigin); ok {
		a.Origin = origin
	}
	return a, nil
}

func decodeInfo(body []byte) (types.Info, error) {
	var r infoResponse
	if err := unmarshal(EndpointInfo, body, &r); err != nil {
		return types.Info{}, err
	}
	return types.Info{
		AIScore:     r.AIScore.ptr(),
		AIReason:    r.AIReason,
		OfficialURL: r.OfficialURL,
	}, nil
}

func decodeReport(body []byte) (Receipt, error) {
	// some deployments answer 200 with an empty body
	if len(bytes.TrimSpace(body)) == 0 {
		return Receipt{}, nil
	}
	var r reportResponse
	if err := unmarshal(EndpointReport, body, &r); err != nil {
		return Receipt{}, err
	}
	receipt := Receipt{Message: r.Message}
	if r.ReportID != nil {
		receipt.ReportID = fmt.Sprint(r.ReportID)
	}
	return receipt, nil
}

func decodeAck(endpoint Endpoint, body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var r ackResponse
	if err := unmarshal(endpoint, body, &r); err != nil {
		return err
	}
	if r.Success != nil && !*r.Success {
		if r.Message != "" {
			return fmt.Errorf("%w: %s", ErrNotApplied, r.Message)
		}
		return ErrNotApplied
	}
	return nil
}

func decodeList(body []byte) ([]string, error) {
	var r listResponse
	if err := unmarshal(EndpointListOverrides, body, &r); err != nil {
		return nil, err
	}
	if r.URLs == nil {
		return nil, fmt.Errorf("%w: %s: no urls field", ErrMalformed, EndpointListOverrides)
	}
	return *r.URLs, nil
}
