package config

import (
	"github.com/msys2/msys2-web/pkg/types"
)

// Config represents the complete application configuration that
// msys2-web supports.
type Config struct {
	// Repos lists every binary repository that is mirrored into
	// the snapshot.
	Repos []types.Repository

	// SrcInfoURLs point at published srcinfo caches.  Ignored
	// when a recipe checkout is configured.
	SrcInfoURLs []string

	// RecipeCheckouts map a recipe repository remote to the
	// target repo its sections are recorded under.
	RecipeCheckouts map[string]string

	// CheckoutDir is where recipe clones are kept.
	CheckoutDir string

	Bind string

	// Storage selects the fetch cache backend.  Caching pins every
	// fetched payload to its first retrieval, so it stays off
	// unless explicitly configured for development.
	Storage string

	// UpdateInterval is the background refresh period and
	// RefreshesPerWindow/RefreshWindow bound how often refreshes
	// may actually run.
	UpdateInterval     types.Duration
	RefreshesPerWindow int
	RefreshWindow      types.Duration

	// BaseDepends are seeded into every dependency closure.
	BaseDepends []string
}
