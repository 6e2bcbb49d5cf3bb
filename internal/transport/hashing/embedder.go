// Package hashing is a deterministic, offline embedding provider based on signed
// feature hashing of word unigrams and bigrams. Vectors are L2-normalized.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/kailas-cloud/travelrag/internal/domain"
	"github.com/kailas-cloud/travelrag/internal/metrics"
)

// DefaultDimensions is used when the configured dimension is not positive.
const DefaultDimensions = 384

const (
	providerName = "hashing"
	modelName    = "fnv-1a"
)

// Embedder maps text to a fixed-size vector without any network call.
type Embedder struct {
	dim int
}

// NewEmbedder creates a hashing embedder with dim buckets.
func NewEmbedder(dim int) *Embedder {
	if dim <= 0 {
		dim = DefaultDimensions
	}
	return &Embedder{dim: dim}
}

// Dimensions returns the vector size.
func (e *Embedder) Dimensions() int { return e.dim }

// Embed implements domain.Embedder. Token counts are the number of hashed features.
func (e *Embedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	vec, n := e.vector(text)
	metrics.ObserveEmbedding(providerName, modelName, time.Since(start), n, n)
	return domain.EmbeddingResult{Embedding: vec, PromptTokens: n, TotalTokens: n}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (e *Embedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	out := make([][]float32, len(texts))
	total := 0
	for i, t := range texts {
		var n int
		out[i], n = e.vector(t)
		total += n
	}
	metrics.ObserveEmbedding(providerName, modelName, time.Since(start), total, total)
	return domain.BatchEmbeddingResult{Embeddings: out, PromptTokens: total, TotalTokens: total}, nil
}

func (e *Embedder) vector(text string) ([]float32, int) {
	acc := make([]float64, e.dim)
	words := tokenize(text)

	features := 0
	add := func(feature string) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(feature))
		sum := h.Sum64()
		idx := int(sum % uint64(e.dim))
		if sum>>63 == 1 {
			acc[idx]--
		} else {
			acc[idx]++
		}
		features++
	}

	for i, w := range words {
		add(w)
		if i > 0 {
			add(words[i-1] + " " + w)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, e.dim)
	if norm == 0 {
		return out, features
	}
	for i, v := range acc {
		out[i] = float32(v / norm)
	}
	return out, features
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
