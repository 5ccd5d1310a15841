package vectorstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"

	"inboxpilot/internal/vectorstore"
	"inboxpilot/internal/vectorstore/mocks"
)

func TestAdapter_UpsertNormalizesAndTags(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	adapter := vectorstore.NewAdapter(store, "mail", 8)

	store.EXPECT().
		Upsert(gomock.Any(), "mail", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, points []vectorstore.Point) error {
			if len(points) != 1 {
				t.Fatalf("Upsert got %d points, want 1", len(points))
			}
			p := points[0]
			if p.Meta["record_id"] != "email-1" {
				t.Errorf("record_id = %v, want email-1", p.Meta["record_id"])
			}
			if len(p.Vec) != 8 {
				t.Errorf("vector length = %d, want 8", len(p.Vec))
			}
			if p.Meta["kind"] != vectorstore.KindEmail {
				t.Errorf("kind = %v, want %q", p.Meta["kind"], vectorstore.KindEmail)
			}
			if p.Meta["recency"] != int64(1700000000) {
				t.Errorf("recency = %v, want 1700000000", p.Meta["recency"])
			}
			return nil
		})

	err := adapter.Upsert(context.Background(), "email-1", vectorstore.KindEmail,
		[]float32{0.1, 0.2}, 1700000000)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if adapter.Degraded() {
		t.Error("Degraded() = true after successful upsert")
	}
}

func TestAdapter_UpsertMapsRecordIDToPointUUID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	adapter := vectorstore.NewAdapter(store, "mail", 4)

	// Record IDs from the sync subsystem are not UUIDs; the point ID must
	// still be one, and the same record must map to the same point.
	var ids []string
	store.EXPECT().
		Upsert(gomock.Any(), "mail", gomock.Any()).
		Times(3).
		DoAndReturn(func(_ context.Context, _ string, points []vectorstore.Point) error {
			ids = append(ids, points[0].ID)
			return nil
		})

	for _, recordID := range []string{"imap-17@host", "imap-17@host", "imap-18@host"} {
		err := adapter.Upsert(context.Background(), recordID, vectorstore.KindEmail,
			[]float32{0.1}, 1700000000)
		if err != nil {
			t.Fatalf("Upsert(%q) error = %v", recordID, err)
		}
	}

	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("point ID %q is not a UUID: %v", id, err)
		}
	}
	if ids[0] != ids[1] {
		t.Errorf("same record mapped to different points: %q vs %q", ids[0], ids[1])
	}
	if ids[0] == ids[2] {
		t.Errorf("distinct records mapped to the same point %q", ids[0])
	}
}

func TestAdapter_DeleteUsesPointUUID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	adapter := vectorstore.NewAdapter(store, "mail", 4)

	var upserted, deleted string
	store.EXPECT().
		Upsert(gomock.Any(), "mail", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, points []vectorstore.Point) error {
			upserted = points[0].ID
			return nil
		})
	store.EXPECT().
		Delete(gomock.Any(), "mail", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, ids []string) error {
			deleted = ids[0]
			return nil
		})

	if err := adapter.Upsert(context.Background(), "imap-17@host", vectorstore.KindEmail,
		[]float32{0.1}, 1700000000); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := adapter.Delete(context.Background(), "imap-17@host"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted != upserted {
		t.Errorf("Delete removed point %q, upsert stored %q", deleted, upserted)
	}
}

func TestAdapter_QueryDegradesToEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	adapter := vectorstore.NewAdapter(store, "mail", 8)

	store.EXPECT().
		Query(gomock.Any(), "mail", gomock.Any(), 5, gomock.Any()).
		Return(nil, errors.New("connection refused"))

	hits := adapter.Query(context.Background(), []float32{0.1}, vectorstore.KindEmail, 5)
	if len(hits) != 0 {
		t.Errorf("Query() returned %d hits, want 0 when store is down", len(hits))
	}
	if !adapter.Degraded() {
		t.Error("Degraded() = false, want true after query failure")
	}
}

func TestAdapter_QueryNilVector(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	adapter := vectorstore.NewAdapter(store, "mail", 8)

	// No store call expected.
	hits := adapter.Query(context.Background(), nil, vectorstore.KindEmail, 5)
	if hits != nil {
		t.Errorf("Query(nil vector) = %v, want nil", hits)
	}
}

func TestAdapter_QueryRecencyTieBreak(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	adapter := vectorstore.NewAdapter(store, "mail", 8)

	store.EXPECT().
		Query(gomock.Any(), "mail", gomock.Any(), 3, gomock.Any()).
		Return([]vectorstore.Hit{
			{RecordID: "old", Distance: 0.25, Recency: 100},
			{RecordID: "new", Distance: 0.25, Recency: 200},
			{RecordID: "far", Distance: 0.80, Recency: 300},
		}, nil)

	hits := adapter.Query(context.Background(), []float32{0.1}, vectorstore.KindEmail, 3)
	if len(hits) != 3 {
		t.Fatalf("Query() returned %d hits, want 3", len(hits))
	}
	if hits[0].RecordID != "new" || hits[1].RecordID != "old" {
		t.Errorf("tie order = [%s, %s], want [new, old]", hits[0].RecordID, hits[1].RecordID)
	}
	if hits[2].RecordID != "far" {
		t.Errorf("hits[2] = %s, want far", hits[2].RecordID)
	}
}

func TestAdapter_Available(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	adapter := vectorstore.NewAdapter(store, "mail", 8)

	store.EXPECT().CollectionExists(gomock.Any(), "mail").Return(true, nil)
	if !adapter.Available(context.Background()) {
		t.Error("Available() = false, want true")
	}

	store.EXPECT().CollectionExists(gomock.Any(), "mail").Return(false, errors.New("down"))
	if adapter.Available(context.Background()) {
		t.Error("Available() = true, want false when probe fails")
	}
	if !adapter.Degraded() {
		t.Error("Degraded() = false, want true after failed probe")
	}
}
