// Package gemini is an embedding provider on the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/travelrag/internal/domain"
	"github.com/kailas-cloud/travelrag/internal/metrics"
)

const providerName = "gemini"

// Task types understood by Gemini embedding models.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// models is the slice of *genai.Models the embedder calls.
type models interface {
	EmbedContent(
		ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig,
	) (*genai.EmbedContentResponse, error)
}

// Config holds the Gemini settings.
type Config struct {
	APIKey     string
	Model      string
	Dimensions int
	TaskType   string
	Logger     *zap.Logger
}

// Embedder calls Models.EmbedContent. One request carries the whole batch.
type Embedder struct {
	models     models
	model      string
	dimensions int
	taskType   string
	logger     *zap.Logger
}

// NewEmbedder creates the Gen AI client once and wraps it.
func NewEmbedder(ctx context.Context, cfg *Config) (*Embedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newWithModels(client.Models, cfg), nil
}

func newWithModels(m models, cfg *Config) *Embedder {
	return &Embedder{
		models:     m,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		taskType:   cfg.TaskType,
		logger:     cfg.Logger,
	}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.embed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: res.Embeddings[0]}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	return e.embed(ctx, texts)
}

// HealthCheck embeds a single short probe.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.embed(ctx, []string{"ping"}); err != nil {
		return fmt.Errorf("gemini probe: %w", err)
	}
	return nil
}

func (e *Embedder) embed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	cfg := &genai.EmbedContentConfig{TaskType: e.taskType}
	if e.dimensions > 0 {
		cfg.OutputDimensionality = genai.Ptr(int32(e.dimensions))
	}

	start := time.Now()
	resp, err := e.models.EmbedContent(ctx, e.model, contents, cfg)
	duration := time.Since(start)

	if err != nil {
		metrics.ObserveEmbeddingError(providerName, e.model, "api_error")
		return domain.BatchEmbeddingResult{}, wrapError(err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		metrics.ObserveEmbeddingError(providerName, e.model, "count_mismatch")
		return domain.BatchEmbeddingResult{}, fmt.Errorf("got %d embeddings for %d texts: %w",
			got, len(texts), domain.ErrEmbeddingProviderError)
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			metrics.ObserveEmbeddingError(providerName, e.model, "empty_response")
			return domain.BatchEmbeddingResult{}, fmt.Errorf("empty embedding at %d: %w",
				i, domain.ErrEmbeddingProviderError)
		}
		out[i] = emb.Values
	}

	metrics.ObserveEmbedding(providerName, e.model, duration, 0, 0)
	e.logger.Debug("Gemini embedding call completed",
		zap.String("model", e.model),
		zap.Int("texts", len(texts)),
		zap.Duration("duration", duration),
	)
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

func wrapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return fmt.Errorf("gemini API error %d: %s: %w: %w",
				apiErr.Code, apiErr.Message, domain.ErrEmbeddingQuotaExceeded, domain.ErrEmbeddingProviderError)
		}
		return fmt.Errorf("gemini API error %d: %s: %w", apiErr.Code, apiErr.Message, domain.ErrEmbeddingProviderError)
	}
	return fmt.Errorf("gemini request failed: %v: %w", err, domain.ErrEmbeddingProviderError)
}
