package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-hclog"

	"github.com/msys2/msys2-web/pkg/queue"
	"github.com/msys2/msys2-web/pkg/snapshot"
)

// NewAPI wires the query handlers to a publisher and resolver.
func NewAPI(l hclog.Logger, pub *snapshot.Publisher, resolver *queue.Resolver, trigger Triggerer) *API {
	return &API{
		l:        l.Named("api"),
		pub:      pub,
		resolver: resolver,
		trigger:  trigger,
	}
}

// HTTPEntry provides the mountpoint for this service into the shared
// webserver routing tree.
func (a *API) HTTPEntry() chi.Router {
	r := chi.NewRouter()

	r.Get("/buildqueue2", a.httpBuildQueue)
	r.Get("/removals", a.httpRemovals)
	r.Post("/trigger_update", a.httpTriggerUpdate)

	return r
}

// writeCached handles conditional requests against the snapshot
// fingerprint before encoding out.
func (a *API) writeCached(w http.ResponseWriter, r *http.Request, snap *snapshot.Snapshot, out interface{}) {
	etag := `"` + snap.Fingerprint() + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag && snap.Fingerprint() != "" {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	enc := json.NewEncoder(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	enc.Encode(out)
}

func (a *API) httpBuildQueue(w http.ResponseWriter, r *http.Request) {
	snap := a.pub.Current()
	entries := a.resolver.BuildQueue(snap)
	if entries == nil {
		entries = []queue.QueueEntry{}
	}
	a.writeCached(w, r, snap, entries)
}

type removalEntry struct {
	Repo string `json:"repo"`
	Name string `json:"name"`
}

// httpRemovals lists binary packages no longer backed by a recipe and
// with nothing depending on them, so they are safe to drop from the
// repos.
func (a *API) httpRemovals(w http.ResponseWriter, r *http.Request) {
	snap := a.pub.Current()

	entries := []removalEntry{}
	for _, src := range snap.SortedSources() {
		for _, p := range src.SortedPackages() {
			if _, ok := snap.SourceInfos[p.Name]; ok {
				continue
			}
			if len(snap.ReverseDepends(p)) > 0 {
				continue
			}
			entries = append(entries, removalEntry{Repo: p.Repo, Name: p.Name})
		}
	}
	a.writeCached(w, r, snap, entries)
}

func (a *API) httpTriggerUpdate(w http.ResponseWriter, r *http.Request) {
	a.trigger.Trigger()
	w.WriteHeader(http.StatusNoContent)
}
