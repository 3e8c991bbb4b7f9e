/*
Package messaging routes extension messages.

Every surface the extension talks to (the websocket bridge and the
POST /v1/messages endpoint) decodes a Message and hands it to a Router.
CHECK_URL is fire-and-forget: the tab evaluation runs in the background and
enforces its verdict through the guard. Tab lifecycle events update the
TabRegistry and supersede pending evaluations. Everything else is
request/response.

Errors never leave the router as Go errors; they become a Response with
ok=false and one of the Code* values.
*/
package messaging
