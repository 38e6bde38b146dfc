package embed

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// DefaultHashingDimension keeps hash collisions rare for small corpora
// while staying cheap to compare.
const DefaultHashingDimension = 256

var wordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// Hashing is a deterministic feature-hashing embedder. It needs no model
// backend, which makes it the default for tests and offline runs; the
// resulting vectors capture lexical overlap only.
type Hashing struct {
	dimension int
}

// NewHashing creates a hashing embedder with the given dimension.
// Non-positive dimensions fall back to DefaultHashingDimension.
func NewHashing(dimension int) *Hashing {
	if dimension <= 0 {
		dimension = DefaultHashingDimension
	}
	return &Hashing{dimension: dimension}
}

func (h *Hashing) Name() string { return "hashing" }

// Embed tokenizes the text, hashes each token into a bucket, and returns
// the L2-normalized bucket counts. A text with no tokens yields the zero
// vector.
func (h *Hashing) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, h.dimension)
	tokens := wordRe.FindAllString(strings.ToLower(text), -1)
	for _, tok := range tokens {
		hasher := fnv.New32a()
		hasher.Write([]byte(tok))
		vec[hasher.Sum32()%uint32(h.dimension)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}
