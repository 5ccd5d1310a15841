package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks inboxpilot/internal/vectorstore VectorStore

import "context"

// Record kinds stored in the shared collection. Every point carries one in
// its payload so searches can stay within a single target type.
const (
	KindEmail = "email"
	KindTask  = "task"
)

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// Hit is a single nearest-neighbor result. Distance is ascending: smaller
// means closer. Recency is the source record's unix timestamp, used by
// callers to break distance ties in favor of newer records.
type Hit struct {
	RecordID string
	Distance float32
	Recency  int64
	Meta     map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection. Repeated upserts
	// for the same point ID overwrite rather than duplicate.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Query returns the k nearest points, filtered by payload fields,
	// ordered by ascending distance.
	Query(ctx context.Context, collection string, vector []float32, k int, filters map[string]any) ([]Hit, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// CollectionExists checks whether the collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
