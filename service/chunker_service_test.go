package service

import (
	"strings"
	"testing"

	"github.com/periferia-labs/perxia-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParagraph() string {
	// 399 characters, no internal blank lines.
	return strings.TrimSpace(strings.Repeat("palabra ", 50))
}

func TestChunkByStructureEmptyInput(t *testing.T) {
	chunker := NewChunkerService(types.ChunkOptions{})

	assert.Empty(t, chunker.ChunkByStructure(""))
	assert.Empty(t, chunker.ChunkByStructure("   \n\n  \t  "))
}

func TestChunkByStructureSingleParagraph(t *testing.T) {
	chunker := NewChunkerService(types.ChunkOptions{MaxChunkSize: 1000, MinChunkSize: 200, Overlap: 100})
	para := testParagraph()

	chunks := chunker.ChunkByStructure(para)

	require.Len(t, chunks, 1)
	assert.Equal(t, para, chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, len(para), chunks[0].EndOffset)
}

func TestChunkByStructureFlushesAtMaxSize(t *testing.T) {
	chunker := NewChunkerService(types.ChunkOptions{MaxChunkSize: 1000, MinChunkSize: 200, Overlap: 100})
	para := testParagraph()
	text := para + "\n\n" + para + "\n\n" + para

	chunks := chunker.ChunkByStructure(text)

	// First two paragraphs fit together under the limit, the third forces a
	// flush and stands alone.
	require.Len(t, chunks, 2)
	assert.Equal(t, para+"\n\n"+para, chunks[0].Text)
	assert.Equal(t, para, chunks[1].Text)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.LessOrEqual(t, len(chunk.Text), 1000)
		assert.Equal(t, text[chunk.StartOffset:chunk.EndOffset], chunk.Text)
	}
}

func TestChunkByStructureMergesSmallTail(t *testing.T) {
	chunker := NewChunkerService(types.ChunkOptions{MaxChunkSize: 450, MinChunkSize: 200, Overlap: 50})
	big := testParagraph()                                     // 399 chars
	small := strings.TrimSpace(strings.Repeat("corto ", 17))   // under min size
	text := big + "\n\n" + small

	chunks := chunker.ChunkByStructure(text)

	// The tail is below the minimum size, so it merges into the previous
	// chunk instead of being emitted standalone.
	require.Len(t, chunks, 1)
	assert.Equal(t, big+"\n\n"+small, chunks[0].Text)
	assert.Equal(t, text[chunks[0].StartOffset:chunks[0].EndOffset], chunks[0].Text)
}

func TestChunkByStructureFirstChunkException(t *testing.T) {
	chunker := NewChunkerService(types.ChunkOptions{MaxChunkSize: 1500, MinChunkSize: 200, Overlap: 100})
	short := "Documento muy corto."

	chunks := chunker.ChunkByStructure(short)

	// A document smaller than the minimum still yields one chunk.
	require.Len(t, chunks, 1)
	assert.Equal(t, short, chunks[0].Text)
}

func TestChunkByStructureSubChunksOversizedParagraph(t *testing.T) {
	chunker := NewChunkerService(types.ChunkOptions{MaxChunkSize: 500, MinChunkSize: 100, Overlap: 60})
	oversized := strings.TrimSpace(strings.Repeat("una frase que sigue y sigue. ", 70))

	chunks := chunker.ChunkByStructure(oversized)

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.NotEmpty(t, strings.TrimSpace(chunk.Text))
		assert.LessOrEqual(t, len(chunk.Text), 500)
	}
}

func TestChunkTextOverlapAndReconstruction(t *testing.T) {
	chunker := NewChunkerService(types.ChunkOptions{MaxChunkSize: 300, MinChunkSize: 50, Overlap: 60})
	sentence := "The quick brown fox jumps over. " // 32 chars
	text := strings.Repeat(sentence, 30)

	chunks := chunker.ChunkText(text)

	require.GreaterOrEqual(t, len(chunks), 3)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.LessOrEqual(t, len(chunk.Text), 300)
		// Offsets always map back onto the source text.
		assert.Equal(t, text[chunk.StartOffset:chunk.EndOffset], chunk.Text)
		if i > 0 {
			// Adjacent windows overlap.
			assert.Less(t, chunk.StartOffset, chunks[i-1].EndOffset)
		}
	}
}

func TestChunkTextCutsAtSentenceBoundary(t *testing.T) {
	chunker := NewChunkerService(types.ChunkOptions{MaxChunkSize: 300, MinChunkSize: 50, Overlap: 60})
	sentence := "The quick brown fox jumps over. "
	text := strings.Repeat(sentence, 30)

	chunks := chunker.ChunkText(text)

	require.NotEmpty(t, chunks)
	// Every non-final chunk should end at a sentence boundary because the
	// text offers one inside each lookback window.
	for _, chunk := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(chunk.Text, "."), "chunk should end at a sentence: %q", chunk.Text)
	}
}

func TestChunkByPages(t *testing.T) {
	chunker := NewChunkerService(types.ChunkOptions{MaxChunkSize: 1500, MinChunkSize: 200, Overlap: 100})
	pages := []types.Page{
		{PageNumber: 1, Text: "Contenido de la primera página del documento."},
		{PageNumber: 2, Text: "Contenido de la segunda página del documento."},
	}

	chunks := chunker.ChunkByPages(pages)

	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].PageNumber)
	assert.Equal(t, 2, chunks[1].PageNumber)
	// Indices are global across pages.
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[1].Index)
}

func TestNewChunkerServiceDefaults(t *testing.T) {
	chunker := NewChunkerService(types.ChunkOptions{})

	assert.Equal(t, DefaultChunkOptions.MaxChunkSize, chunker.maxChunkSize)
	assert.Equal(t, DefaultChunkOptions.MinChunkSize, chunker.minChunkSize)
	assert.Equal(t, DefaultChunkOptions.Overlap, chunker.overlap)
}
