// Package bridge connects the agent to the browser extension over a
// websocket.
//
// The extension's background script keeps one connection open to /ws.
// Frames it sends are messaging envelopes (routed to a messaging.Router)
// or acks for tab commands. Frames the agent sends are responses, for
// messages that carried an id, and tab commands:
//
//	{"type":"command","id":"cmd_...","command":"showOverlay","tab_id":7,"overlay":{...}}
//	{"type":"command","id":"cmd_...","command":"redirectTab","tab_id":7,"url":"..."}
//	{"type":"command","id":"cmd_...","command":"closeTab","tab_id":7}
//
// Each command waits for {"type":"ack","id":...,"ok":true} up to the
// configured timeout. An ack with error "tab_gone", or no connection at all,
// is reported as guard.ErrTabGone.
//
// Example Usage:
//
//	hub := bridge.New(bridge.Options{CommandTimeout: 2 * time.Second})
//	g := guard.New(client, hub, identity, opts)
//	router.GET("/ws", hub.Handler(messagingRouter))
package bridge
