package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-hclog"

	"github.com/msys2/msys2-web/pkg/queue"
	"github.com/msys2/msys2-web/pkg/snapshot"
)

// Server wraps up the request routers and associated components that
// serve the msys2-web API.
type Server struct {
	l hclog.Logger
	r chi.Router

	n *http.Server
}

// Triggerer requests an out-of-band refresh; it must never block.
type Triggerer interface {
	Trigger()
}

// API serves the queue and snapshot queries.  All handlers read from
// the publisher's current snapshot and never mutate it.
type API struct {
	l hclog.Logger

	pub      *snapshot.Publisher
	resolver *queue.Resolver
	trigger  Triggerer
}
