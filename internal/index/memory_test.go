package index

import (
	"context"
	"testing"

	"ragflow/pkg/pipeline"
)

func doc(id, content string) pipeline.Document {
	return pipeline.Document{ID: id, Content: content}
}

func TestMemory_QueryEmptyIndex(t *testing.T) {
	m := NewMemory()
	got, err := m.Query(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("empty index must not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d docs", len(got))
	}
}

func TestMemory_QueryOrdersBySimilarity(t *testing.T) {
	m := NewMemory()
	err := m.Upsert(context.Background(),
		[]pipeline.Document{doc("a", "A"), doc("b", "B"), doc("c", "C")},
		[][]float32{{1, 0}, {0, 1}, {0.9, 0.1}})
	if err != nil {
		t.Fatal(err)
	}

	got, err := m.Query(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "c" || got[2].ID != "b" {
		t.Errorf("order = [%s %s %s], want [a c b]", got[0].ID, got[1].ID, got[2].ID)
	}
	for _, d := range got {
		if d.Score == nil {
			t.Errorf("doc %s has no score", d.ID)
		}
	}
	if *got[0].Score < *got[1].Score || *got[1].Score < *got[2].Score {
		t.Error("scores not decreasing")
	}
}

func TestMemory_QueryCapsAtTopK(t *testing.T) {
	m := NewMemory()
	err := m.Upsert(context.Background(),
		[]pipeline.Document{doc("a", "A"), doc("b", "B"), doc("c", "C")},
		[][]float32{{1, 0}, {0, 1}, {1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := m.Query(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 results, got %d", len(got))
	}
}

func TestMemory_TieBreakPreservesInsertionOrder(t *testing.T) {
	m := NewMemory()
	// b and c are identical vectors; b was inserted first.
	err := m.Upsert(context.Background(),
		[]pipeline.Document{doc("b", "B"), doc("c", "C")},
		[][]float32{{1, 1}, {1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := m.Query(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].ID != "b" || got[1].ID != "c" {
		t.Errorf("tie-break order = [%s %s], want [b c]", got[0].ID, got[1].ID)
	}
}

func TestMemory_UpsertReplacesByID(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if err := m.Upsert(ctx, []pipeline.Document{doc("a", "old")}, [][]float32{{1, 0}}); err != nil {
		t.Fatal(err)
	}
	if err := m.Upsert(ctx, []pipeline.Document{doc("a", "new")}, [][]float32{{1, 0}}); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
	got, err := m.Query(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Content != "new" {
		t.Errorf("content = %q, want new", got[0].Content)
	}
}

func TestMemory_UpsertLengthMismatch(t *testing.T) {
	m := NewMemory()
	err := m.Upsert(context.Background(), []pipeline.Document{doc("a", "A")}, nil)
	if err == nil {
		t.Error("expected error for mismatched lengths")
	}
}
