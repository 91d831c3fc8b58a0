package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbeddingClient returns one vector per input whose first component is
// the input length, so tests can verify positional alignment.
type fakeEmbeddingClient struct {
	calls     int
	failCalls map[int]bool
	batches   [][]string
}

func (f *fakeEmbeddingClient) CreateEmbeddings(_ context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	f.calls++
	inputs := req.Convert().Input.([]string)
	f.batches = append(f.batches, inputs)
	if f.failCalls[f.calls] {
		return openai.EmbeddingResponse{}, errors.New("rate limited")
	}
	data := make([]openai.Embedding, 0, len(inputs))
	for i, input := range inputs {
		data = append(data, openai.Embedding{
			Index:     i,
			Embedding: []float32{float32(len(input)), 1, 2, 3},
		})
	}
	return openai.EmbeddingResponse{Data: data}, nil
}

func newTestEmbeddingService(fake *fakeEmbeddingClient) *EmbeddingService {
	return &EmbeddingService{client: fake, model: "test-embedding", dimension: 4}
}

func TestEmbedReturnsVector(t *testing.T) {
	service := newTestEmbeddingService(&fakeEmbeddingClient{})

	vector, err := service.Embed(context.Background(), "hola mundo")

	require.NoError(t, err)
	assert.Equal(t, []float32{10, 1, 2, 3}, vector)
}

func TestEmbedEmptyInput(t *testing.T) {
	service := newTestEmbeddingService(&fakeEmbeddingClient{})

	_, err := service.Embed(context.Background(), "   \n\t ")

	assert.ErrorIs(t, err, ErrEmptyEmbeddingInput)
}

func TestEmbedPropagatesError(t *testing.T) {
	service := newTestEmbeddingService(&fakeEmbeddingClient{failCalls: map[int]bool{1: true}})

	_, err := service.Embed(context.Background(), "hola")

	assert.Error(t, err)
}

func TestEmbeddingServiceUnavailableWithoutKey(t *testing.T) {
	service := NewEmbeddingService("", "", "test-embedding", 4)

	assert.False(t, service.IsAvailable())

	_, err := service.Embed(context.Background(), "hola")
	assert.Error(t, err)

	_, err = service.EmbedBatch(context.Background(), []string{"hola"})
	assert.Error(t, err)
}

func TestEmbedBatchAlignment(t *testing.T) {
	fake := &fakeEmbeddingClient{}
	service := newTestEmbeddingService(fake)

	texts := make([]string, 20)
	for i := range texts {
		texts[i] = strings.Repeat("a", i+1)
	}

	vectors, err := service.EmbedBatch(context.Background(), texts)

	require.NoError(t, err)
	require.Len(t, vectors, len(texts))
	for i, vector := range vectors {
		assert.Equal(t, float32(i+1), vector[0], "vector %d out of position", i)
	}
	// 20 inputs at batch size 16 means two calls.
	assert.Equal(t, 2, fake.calls)
	assert.Len(t, fake.batches[0], 16)
	assert.Len(t, fake.batches[1], 4)
}

func TestEmbedBatchZeroFillsFailedBatch(t *testing.T) {
	fake := &fakeEmbeddingClient{failCalls: map[int]bool{2: true}}
	service := newTestEmbeddingService(fake)

	texts := make([]string, 40)
	for i := range texts {
		texts[i] = strings.Repeat("b", i+1)
	}

	vectors, err := service.EmbedBatch(context.Background(), texts)

	require.NoError(t, err)
	require.Len(t, vectors, 40)

	zero := make([]float32, 4)
	for i := 16; i < 32; i++ {
		assert.Equal(t, zero, vectors[i], "failed batch position %d should be zero-filled", i)
	}
	// Surrounding batches keep their real vectors.
	assert.Equal(t, float32(1), vectors[0][0])
	assert.Equal(t, float32(40), vectors[39][0])
}

func TestCleanEmbeddingInput(t *testing.T) {
	assert.Equal(t, "a b c", cleanEmbeddingInput("  a\n\nb\t c  "))
	assert.Equal(t, "", cleanEmbeddingInput("   "))

	long := cleanEmbeddingInput(strings.Repeat("x", 9000))
	assert.Len(t, long, embeddingMaxChars)
}
