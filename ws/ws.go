// Package ws defines the websocket transport contract shared by the
// library-specific subpackages.
package ws

import (
	"net/http"

	"github.com/wsrpc/wsrpc"
)

// Upgrader takes an HTTP request, upgrades it to a websocket session and
// returns the server-side transport. This allows switching between
// different websocket implementations.
type Upgrader interface {
	Upgrade(*http.Request, http.ResponseWriter) (wsrpc.Transport, error)
}
