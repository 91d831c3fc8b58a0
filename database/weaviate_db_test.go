package database

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/periferia-labs/perxia-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkObjectIDDeterministic(t *testing.T) {
	first := ChunkObjectID("doc-1", 0)
	second := ChunkObjectID("doc-1", 0)
	other := ChunkObjectID("doc-1", 1)

	// Re-uploading the same document must hit the same object IDs.
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.NotEqual(t, first, ChunkObjectID("doc-2", 0))

	_, err := uuid.Parse(first)
	require.NoError(t, err)
}

func TestChunkProperties(t *testing.T) {
	uploadedAt := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	record := types.IndexedChunkRecord{
		ID:            ChunkObjectID("doc-1", 2),
		DocumentID:    "doc-1",
		Filename:      "informe.pdf",
		Content:       "contenido del chunk",
		ContentVector: []float32{0.1, 0.2},
		ChunkIndex:    2,
		TotalChunks:   7,
		PageNumber:    3,
		FileType:      ".pdf",
		FileSize:      2048,
		UploadedBy:    "tester",
		UploadedAt:    uploadedAt,
		Tags:          []string{"demo"},
	}

	props := chunkProperties(record)

	assert.Equal(t, "doc-1_chunk_2", props["chunkId"])
	assert.Equal(t, "doc-1", props["documentId"])
	assert.Equal(t, "contenido del chunk", props["content"])
	assert.Equal(t, 2, props["chunkIndex"])
	assert.Equal(t, 7, props["totalChunks"])
	assert.Equal(t, 3, props["pageNumber"])
	assert.Equal(t, "2025-03-14T09:30:00Z", props["uploadedAt"])
	assert.Equal(t, []string{"demo"}, props["tags"])

	// The vector rides on the object, never as a property.
	_, hasVector := props["contentVector"]
	assert.False(t, hasVector)
}
