package snapshot

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// A Publisher owns the single shared reference to the current
// snapshot.  Publishing swaps the reference atomically; readers that
// already hold a snapshot keep computing against it undisturbed.
type Publisher struct {
	l   hclog.Logger
	cur atomic.Pointer[Snapshot]
}

// NewPublisher starts out serving the empty snapshot so that queries
// before the first refresh return empty results instead of failing.
func NewPublisher(l hclog.Logger) *Publisher {
	p := &Publisher{l: l.Named("snapshot")}
	p.cur.Store(Empty())
	return p
}

// Publish makes snap the current snapshot and stamps it with a fresh
// fingerprint.  The snapshot must not be modified afterwards.
func (p *Publisher) Publish(snap *Snapshot) {
	snap.fingerprint = uuid.NewString()
	p.cur.Store(snap)
	p.l.Debug("published snapshot",
		"sources", len(snap.Sources),
		"sourceinfos", len(snap.SourceInfos),
		"fingerprint", snap.fingerprint)
}

// Current returns the published snapshot.  It never blocks and never
// returns nil.
func (p *Publisher) Current() *Snapshot {
	return p.cur.Load()
}
