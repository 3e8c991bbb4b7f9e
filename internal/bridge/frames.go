package bridge

import (
	"github.com/GriffinCanCode/PhishGuard/backend/internal/messaging"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/types"
)

// Frame types.
const (
	FrameMessage  = "message"
	FrameResponse = "response"
	FrameCommand  = "command"
	FrameAck      = "ack"
	FrameSystem   = "system"
)

// Tab commands understood by the extension.
const (
	CommandShowOverlay = "showOverlay"
	CommandCloseTab    = "closeTab"
	CommandRedirectTab = "redirectTab"
)

// AckTabGone is the ack error the extension sends for a missing tab.
const AckTabGone = "tab_gone"

// inbound is any frame sent by the extension. A frame without a type is a
// message.
type inbound struct {
	Type string `json:"type"`
	messaging.Message
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type responseFrame struct {
	Type string `json:"type"`
	messaging.Response
}

type commandFrame struct {
	Type    string         `json:"type"`
	ID      string         `json:"id"`
	Command string         `json:"command"`
	TabID   types.TabID    `json:"tab_id"`
	Overlay *types.Overlay `json:"overlay,omitempty"`
	URL     string         `json:"url,omitempty"`
}

type ack struct {
	OK    bool
	Error string
}
