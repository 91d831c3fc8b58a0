package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/periferia-labs/perxia-be/types"
)

// lookbackWindow bounds the backward search for a natural break when the
// fixed-window chunker has to cut inside a long run of text.
const lookbackWindow = 200

var DefaultChunkOptions = types.ChunkOptions{
	MaxChunkSize: 1500,
	MinChunkSize: 200,
	Overlap:      100,
}

var paragraphSplitter = regexp.MustCompile(`\n\n+`)

// ChunkerService splits extracted document text into bounded,
// overlap-controlled chunks sized for embedding and indexing.
type ChunkerService struct {
	maxChunkSize int // Maximum size of each text chunk
	minChunkSize int // Chunks below this merge into a neighbor
	overlap      int // Overlap between adjacent fixed-window chunks
}

// NewChunkerService creates a chunker with configurable chunk sizes.
func NewChunkerService(opts types.ChunkOptions) *ChunkerService {
	if opts.MaxChunkSize <= 0 {
		opts.MaxChunkSize = DefaultChunkOptions.MaxChunkSize
	}
	if opts.MinChunkSize <= 0 {
		opts.MinChunkSize = DefaultChunkOptions.MinChunkSize
	}
	if opts.Overlap <= 0 {
		opts.Overlap = DefaultChunkOptions.Overlap
	}
	return &ChunkerService{
		maxChunkSize: opts.MaxChunkSize,
		minChunkSize: opts.MinChunkSize,
		overlap:      opts.Overlap,
	}
}

// ChunkByStructure splits text respecting the document structure: paragraphs
// accumulate into a buffer that is flushed whenever the next paragraph would
// push it past the maximum size. A buffer below the minimum size is never
// emitted standalone; it keeps accumulating, or merges into the previous
// flushed chunk, with the very first chunk as the only exception. Paragraphs
// longer than the maximum size are sub-chunked by the fixed-window walk.
// Whitespace-only input yields no chunks. Pure function, no I/O.
func (s *ChunkerService) ChunkByStructure(text string) []types.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []types.Chunk
	var buffer []string
	bufLen := 0
	bufStart, bufEnd := 0, 0

	flush := func() {
		if bufLen == 0 {
			return
		}
		chunks = append(chunks, types.Chunk{
			Text:        strings.Join(buffer, "\n\n"),
			StartOffset: bufStart,
			EndOffset:   bufEnd,
		})
		buffer = nil
		bufLen = 0
	}

	// A buffer too small to stand alone merges into the previous chunk,
	// except at the very start of the document.
	flushSmall := func() {
		if bufLen == 0 {
			return
		}
		if len(chunks) > 0 {
			last := &chunks[len(chunks)-1]
			last.Text += "\n\n" + strings.Join(buffer, "\n\n")
			last.EndOffset = bufEnd
		} else {
			chunks = append(chunks, types.Chunk{
				Text:        strings.Join(buffer, "\n\n"),
				StartOffset: bufStart,
				EndOffset:   bufEnd,
			})
		}
		buffer = nil
		bufLen = 0
	}

	for _, p := range splitParagraphs(text) {
		// Oversized paragraphs are sub-chunked independently.
		if len(p.text) > s.maxChunkSize {
			if bufLen >= s.minChunkSize {
				flush()
			} else {
				flushSmall()
			}
			chunks = append(chunks, s.chunkWindow(p.text, p.start, 0)...)
			continue
		}

		if bufLen > 0 && bufLen+len(p.text)+2 > s.maxChunkSize {
			if bufLen >= s.minChunkSize {
				flush()
			}
			// Below the minimum the buffer keeps accumulating instead
			// of being emitted undersized.
		}
		if bufLen == 0 {
			bufStart = p.start
		}
		buffer = append(buffer, p.text)
		bufLen += len(p.text)
		if len(buffer) > 1 {
			bufLen += 2
		}
		bufEnd = p.end
	}

	if bufLen >= s.minChunkSize {
		flush()
	} else {
		flushSmall()
	}

	return reindex(chunks)
}

// ChunkText splits text into fixed-size windows with overlap, cutting at the
// nearest natural break before each window boundary. Used directly for flat
// text and as the fallback for oversized paragraphs.
func (s *ChunkerService) ChunkText(text string) []types.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return reindex(s.chunkWindow(text, 0, 0))
}

// ChunkByPages chunks each extracted page independently and stamps chunks
// with their page number. Indices are assigned globally across pages.
func (s *ChunkerService) ChunkByPages(pages []types.Page) []types.Chunk {
	var chunks []types.Chunk
	for _, page := range pages {
		for _, chunk := range s.ChunkByStructure(page.Text) {
			chunk.PageNumber = page.PageNumber
			chunks = append(chunks, chunk)
		}
	}
	return reindex(chunks)
}

// chunkWindow walks text in maxChunkSize windows. Before cutting it searches
// backward within the lookback window for, in priority order, a blank line,
// a sentence end, then a plain space. Adjacent windows overlap so content
// spanning a cut point is not lost to the embedder.
func (s *ChunkerService) chunkWindow(text string, baseOffset, pageNumber int) []types.Chunk {
	var chunks []types.Chunk
	textLen := len(text)
	startIndex := 0

	for startIndex < textLen {
		endIndex := startIndex + s.maxChunkSize
		if endIndex >= textLen {
			endIndex = textLen
		} else {
			searchStart := endIndex - lookbackWindow
			if searchStart < startIndex {
				searchStart = startIndex
			}
			if cut := lastNaturalBreak(text[searchStart:endIndex]); cut != -1 {
				endIndex = searchStart + cut + 1
			} else {
				// No break found: back up to a rune boundary so the
				// window never splits a multi-byte character.
				for endIndex > startIndex && !utf8.RuneStart(text[endIndex]) {
					endIndex--
				}
			}
		}

		piece := text[startIndex:endIndex]
		trimmed := strings.TrimSpace(piece)
		if trimmed != "" {
			lead := strings.Index(piece, trimmed)
			chunks = append(chunks, types.Chunk{
				Text:        trimmed,
				StartOffset: baseOffset + startIndex + lead,
				EndOffset:   baseOffset + startIndex + lead + len(trimmed),
				PageNumber:  pageNumber,
			})
		}

		if endIndex >= textLen {
			break
		}
		next := endIndex - s.overlap
		if next <= startIndex {
			next = endIndex
		}
		startIndex = next
		if startIndex >= textLen-s.overlap {
			break
		}
	}

	return chunks
}

// lastNaturalBreak returns the offset of the best cut point in window, or -1.
func lastNaturalBreak(window string) int {
	if cut := strings.LastIndex(window, "\n\n"); cut != -1 {
		return cut
	}
	if cut := strings.LastIndex(window, ". "); cut != -1 {
		return cut
	}
	if cut := strings.LastIndex(window, ".\n"); cut != -1 {
		return cut
	}
	return strings.LastIndex(window, " ")
}

type paragraph struct {
	text  string
	start int
	end   int
}

// splitParagraphs cuts text on blank-line boundaries, trimming each piece
// and skipping empty ones. Offsets refer to the trimmed text within the
// original string.
func splitParagraphs(text string) []paragraph {
	var paragraphs []paragraph
	pos := 0
	emit := func(segment string, segStart int) {
		trimmed := strings.TrimSpace(segment)
		if trimmed == "" {
			return
		}
		lead := strings.Index(segment, trimmed)
		paragraphs = append(paragraphs, paragraph{
			text:  trimmed,
			start: segStart + lead,
			end:   segStart + lead + len(trimmed),
		})
	}
	for _, sep := range paragraphSplitter.FindAllStringIndex(text, -1) {
		emit(text[pos:sep[0]], pos)
		pos = sep[1]
	}
	emit(text[pos:], pos)
	return paragraphs
}

// reindex assigns sequential 0-based indices in emission order.
func reindex(chunks []types.Chunk) []types.Chunk {
	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks
}
