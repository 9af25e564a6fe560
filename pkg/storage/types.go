package storage

// Storage is an interface for a generic blobstore, used here as the
// cache for fetched upstream payloads.
type Storage interface {
	Get([]byte) ([]byte, error)
	Put([]byte, []byte) error
	Del([]byte) error

	Close() error
}
