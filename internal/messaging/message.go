package messaging

import (
	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/types"
)

// Kind names a message from the extension.
type Kind string

const (
	KindCheckURL        Kind = "CHECK_URL"
	KindAnalyzeForPopup Kind = "ANALYZE_FOR_POPUP"
	KindReportURL       Kind = "REPORT_URL"
	KindSetBlock        Kind = "SET_BLOCK"
	KindRemoveBlock     Kind = "REMOVE_BLOCK"
	KindListBlocked     Kind = "LIST_BLOCKED"
	KindGetClientID     Kind = "GET_CLIENT_ID"
	KindTabActivated    Kind = "TAB_ACTIVATED"
	KindTabNavigated    Kind = "TAB_NAVIGATED"
	KindTabClosed       Kind = "TAB_CLOSED"
)

// Event reports whether the kind is a tab lifecycle event.
func (k Kind) Event() bool {
	switch k {
	case KindTabActivated, KindTabNavigated, KindTabClosed:
		return true
	}
	return false
}

// Error codes carried in Response.Error.
const (
	CodeInvalidInput     = "invalid_input"
	CodeOverrideRejected = "override_rejected"
	CodeUnreachable      = "unreachable"
	CodeServerError      = "server_error"
	CodeMalformed        = "malformed_response"
	CodeUnknownKind      = "unknown_kind"
	CodeInternal         = "internal"
)

// Message is the envelope sent by the content script, popup and block page.
type Message struct {
	ID           string         `json:"id,omitempty"`
	Kind         Kind           `json:"kind"`
	TabID        *types.TabID   `json:"tab_id,omitempty"`
	URL          string         `json:"url,omitempty"`
	SuggestedURL string         `json:"suggested_url,omitempty"`
	Payload      map[string]any `json:"payload,omitempty"`
}

// Response answers a Message with the same ID.
type Response struct {
	ID    string `json:"id,omitempty"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// Accepted is the data of fire-and-forget kinds.
type Accepted struct {
	Accepted bool `json:"accepted"`
}
