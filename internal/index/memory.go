package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"ragflow/pkg/pipeline"
)

// Memory is a brute-force cosine similarity index. Fine for the embedded
// demo corpus and for tests; use the pgvector index for real corpora.
type Memory struct {
	mu      sync.RWMutex
	docs    map[string]pipeline.Document
	vectors map[string][]float32
	order   []string // insertion order, the tie-break for equal scores
}

// NewMemory creates an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{
		docs:    make(map[string]pipeline.Document),
		vectors: make(map[string][]float32),
	}
}

// Upsert stores documents and vectors, replacing entries with matching IDs.
func (m *Memory) Upsert(_ context.Context, docs []pipeline.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("index: %d documents but %d vectors", len(docs), len(vectors))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range docs {
		if _, exists := m.docs[d.ID]; !exists {
			m.order = append(m.order, d.ID)
		}
		m.docs[d.ID] = d
		m.vectors[d.ID] = vectors[i]
	}
	return nil
}

// Query scores every stored vector against the query by cosine similarity
// and returns the topK best, ties resolved by insertion order.
func (m *Memory) Query(_ context.Context, vector []float32, topK int) ([]pipeline.Document, error) {
	if topK <= 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		id    string
		score float64
	}
	results := make([]scored, 0, len(m.order))
	for _, id := range m.order {
		results = append(results, scored{id: id, score: cosine(vector, m.vectors[id])})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })

	if topK > len(results) {
		topK = len(results)
	}
	out := make([]pipeline.Document, 0, topK)
	for _, r := range results[:topK] {
		out = append(out, m.docs[r.id].WithScore(r.score))
	}
	return out, nil
}

// Len returns the number of stored documents.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
