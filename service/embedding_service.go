package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
)

const (
	// Provider-safe character budget per input, bounding token cost.
	embeddingMaxChars = 8000
	// Batch contract: fixed batch size with a short pause between batches
	// to stay under provider rate limits.
	embeddingBatchSize  = 16
	embeddingBatchPause = 100 * time.Millisecond
)

var ErrEmptyEmbeddingInput = errors.New("empty text provided for embedding")

// embeddingClient is the slice of the OpenAI client the gateway needs.
type embeddingClient interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// EmbeddingService converts text into fixed-length vectors via an
// OpenAI-compatible embedding deployment.
type EmbeddingService struct {
	client    embeddingClient
	model     string
	dimension int
}

// NewEmbeddingService creates an embedding gateway. An empty API key yields
// an unavailable service; callers short-circuit via IsAvailable instead of
// failing deep inside a request.
func NewEmbeddingService(baseURL, apiKey, model string, dimension int) *EmbeddingService {
	s := &EmbeddingService{
		model:     model,
		dimension: dimension,
	}
	if apiKey == "" {
		log.Println("Embedding service not configured, vector generation disabled")
		return s
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	s.client = openai.NewClientWithConfig(config)
	return s
}

func (s *EmbeddingService) IsAvailable() bool {
	return s.client != nil
}

// Dimension returns the fixed vector width of the configured deployment.
func (s *EmbeddingService) Dimension() int {
	return s.dimension
}

// Embed generates one embedding. Unlike batch embedding, a failure here
// propagates to the caller.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.client == nil {
		return nil, errors.New("embedding service not configured")
	}
	clean := cleanEmbeddingInput(text)
	if clean == "" {
		return nil, ErrEmptyEmbeddingInput
	}

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(s.model),
		Input: []string{clean},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding returned from API")
	}
	return resp.Data[0].Embedding, nil
}

// EmbedBatch generates embeddings for all texts, batch by batch. A failed
// batch is substituted with zero vectors of the expected dimensionality so
// the output always aligns positionally with the input; those chunks stay
// searchable by plain text only.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if s.client == nil {
		return nil, errors.New("embedding service not configured")
	}

	vectors := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch := make([]string, 0, end-i)
		for _, text := range texts[i:end] {
			batch = append(batch, cleanEmbeddingInput(text))
		}

		resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(s.model),
			Input: batch,
		})
		if err != nil || len(resp.Data) != len(batch) {
			if err != nil {
				log.Printf("Embedding batch %d-%d failed, using zero vectors: %v", i, end, err)
			} else {
				log.Printf("Embedding batch %d-%d returned %d vectors for %d inputs, using zero vectors", i, end, len(resp.Data), len(batch))
			}
			for range batch {
				vectors = append(vectors, make([]float32, s.dimension))
			}
		} else {
			for _, item := range resp.Data {
				vectors = append(vectors, item.Embedding)
			}
		}

		if end < len(texts) {
			time.Sleep(embeddingBatchPause)
		}
	}

	return vectors, nil
}

// cleanEmbeddingInput collapses internal whitespace, trims, and truncates to
// the provider-safe budget.
func cleanEmbeddingInput(text string) string {
	clean := strings.Join(strings.Fields(text), " ")
	if len(clean) > embeddingMaxChars {
		clean = clean[:embeddingMaxChars]
		// Never cut inside a multi-byte character.
		for len(clean) > 0 && !utf8.ValidString(clean) {
			clean = clean[:len(clean)-1]
		}
	}
	return clean
}
