package vectorstore

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"inboxpilot/internal/contextutil"
)

// Adapter persists normalized vectors keyed by source record and answers
// nearest-neighbor queries over one collection. When the underlying store is
// unreachable it declares itself degraded rather than failed: queries return
// an empty result set instead of an error, so callers fall back to lexical
// matching cleanly. Degraded is a normal, tested operating mode, not an
// exception path.
type Adapter struct {
	store      VectorStore
	collection string
	width      int
	degraded   atomic.Bool
}

// NewAdapter creates an adapter over a vector store collection. width is the
// fixed stored vector width; vectors of any other length are normalized on
// the way in.
func NewAdapter(store VectorStore, collection string, width int) *Adapter {
	return &Adapter{
		store:      store,
		collection: collection,
		width:      width,
	}
}

// Width returns the fixed stored vector width.
func (a *Adapter) Width() int {
	return a.width
}

// Degraded reports whether the last store interaction failed.
func (a *Adapter) Degraded() bool {
	return a.degraded.Load()
}

// Available checks whether semantic search can serve queries right now.
// It is the capability probe callers consult before embedding a query.
func (a *Adapter) Available(ctx context.Context) bool {
	exists, err := a.store.CollectionExists(ctx, a.collection)
	ok := err == nil && exists
	a.degraded.Store(!ok)
	return ok
}

// pointID maps a source record ID onto a deterministic UUID. Qdrant accepts
// only UUID or integer point IDs, while record IDs arrive from the sync
// subsystem in arbitrary shapes (IMAP Message-IDs and the like). The mapping
// is stable, so repeated upserts for the same record still overwrite.
func pointID(recordID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(recordID)).String()
}

// Upsert stores a normalized vector for a source record. Repeated calls for
// the same record ID overwrite. kind tags the record as an email or task;
// recency is the record's unix timestamp used for distance tie-breaking.
// The record ID travels in the payload because the point ID is a derived
// UUID, not the record ID itself.
func (a *Adapter) Upsert(ctx context.Context, recordID, kind string, vec []float32, recency int64) error {
	point := Point{
		ID:  pointID(recordID),
		Vec: Normalize(vec, a.width),
		Meta: map[string]any{
			"record_id": recordID,
			"kind":      kind,
			"recency":   recency,
		},
	}
	if err := a.store.Upsert(ctx, a.collection, []Point{point}); err != nil {
		a.degraded.Store(true)
		return err
	}
	a.degraded.Store(false)
	return nil
}

// Query returns the k nearest records of the given kind, ordered by ascending
// distance with ties broken by more-recent record first. A nil query vector,
// an unreachable store, or any query failure yields an empty list, never an
// error; the adapter records itself degraded so health checks can surface it.
func (a *Adapter) Query(ctx context.Context, vec []float32, kind string, k int) []Hit {
	logger := contextutil.LoggerFromContext(ctx)

	if len(vec) == 0 || k <= 0 {
		return nil
	}

	hits, err := a.store.Query(ctx, a.collection, Normalize(vec, a.width), k, map[string]any{"kind": kind})
	if err != nil {
		logger.WarnContext(ctx, "vector store degraded, returning empty results", "kind", kind, "error", err)
		a.degraded.Store(true)
		return nil
	}
	a.degraded.Store(false)

	// Qdrant already orders by distance; enforce the recency tie-break.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0; j-- {
			if hits[j-1].Distance == hits[j].Distance && hits[j-1].Recency < hits[j].Recency {
				hits[j-1], hits[j] = hits[j], hits[j-1]
			} else {
				break
			}
		}
	}

	return hits
}

// Delete removes a record's vector. Used when a source record is purged.
func (a *Adapter) Delete(ctx context.Context, recordID string) error {
	return a.store.Delete(ctx, a.collection, []string{pointID(recordID)})
}
