package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/periferia-labs/perxia-be/database"
	"github.com/periferia-labs/perxia-be/repository"
	"github.com/periferia-labs/perxia-be/types"
)

const maxUploadBytes = 50 << 20 // 50 MB

// FileService runs the ingestion pipeline: validate, archive the original,
// extract text, chunk, embed, index, persist metadata. Steps run
// sequentially; the first terminal error fails the upload.
type FileService struct {
	storage   BlobStorage
	extractor TextExtractor
	chunker   *ChunkerService
	embedder  *EmbeddingService
	index     database.ChunkIndex
	documents repository.DocumentRepo
}

func NewFileService(
	storage BlobStorage,
	extractor TextExtractor,
	chunker *ChunkerService,
	embedder *EmbeddingService,
	index database.ChunkIndex,
	documents repository.DocumentRepo,
) *FileService {
	return &FileService{
		storage:   storage,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		documents: documents,
	}
}

// UploadDocument ingests one document and returns what was indexed.
func (s *FileService) UploadDocument(ctx context.Context, req types.UploadRequest, data []byte) (*types.UploadResult, error) {
	started := time.Now()

	ext := strings.ToLower(filepath.Ext(req.Filename))
	if !s.supportedExtension(ext) {
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file: %s", req.Filename)
	}
	if len(data) > maxUploadBytes {
		return nil, fmt.Errorf("file too large: %d bytes (limit %d)", len(data), maxUploadBytes)
	}

	documentID := uuid.NewString()

	archiveURL, err := s.storage.Put(documentID+"/"+sanitizeFilename(req.Filename), data)
	if err != nil {
		return nil, fmt.Errorf("failed to archive original: %w", err)
	}

	extraction, err := s.extractor.Extract(ctx, data, req.Filename)
	if err != nil {
		return nil, fmt.Errorf("text extraction failed: %w", err)
	}
	if strings.TrimSpace(extraction.Text) == "" {
		return nil, fmt.Errorf("no extractable text in %s", req.Filename)
	}

	var chunks []types.Chunk
	if len(extraction.Pages) > 0 {
		chunks = s.chunker.ChunkByPages(extraction.Pages)
	} else {
		chunks = s.chunker.ChunkByStructure(extraction.Text)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("chunking produced no chunks for %s", req.Filename)
	}

	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	doc := &types.DocumentInfo{
		DocumentID:  documentID,
		Filename:    req.Filename,
		FileType:    ext,
		FileSize:    int64(len(data)),
		PageCount:   extraction.PageCount,
		TotalChunks: len(chunks),
		UploadedBy:  req.UploadedBy,
		UploadedAt:  time.Now().UTC(),
		ArchiveURL:  archiveURL,
		Tags:        req.Tags,
	}

	indexed, err := s.index.UpsertChunks(ctx, doc, chunks, vectors)
	if err != nil {
		return nil, fmt.Errorf("failed to index chunks: %w", err)
	}

	if err := s.documents.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to persist document metadata: %w", err)
	}

	return &types.UploadResult{
		DocumentID:    documentID,
		Filename:      req.Filename,
		FileType:      ext,
		FileSize:      doc.FileSize,
		PageCount:     extraction.PageCount,
		Chunks:        len(chunks),
		ChunksIndexed: indexed,
		ArchiveURL:    archiveURL,
		Seconds:       time.Since(started).Seconds(),
	}, nil
}

// embedChunks embeds all chunk texts, or zero-fills every vector when the
// embedding service is not configured so the document stays searchable by
// plain text.
func (s *FileService) embedChunks(ctx context.Context, chunks []types.Chunk) ([][]float32, error) {
	if !s.embedder.IsAvailable() {
		log.Println("Embedding service unavailable, indexing chunks with zero vectors")
		vectors := make([][]float32, len(chunks))
		for i := range vectors {
			vectors[i] = make([]float32, s.embedder.Dimension())
		}
		return vectors, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	return vectors, nil
}

// DeleteDocument cascades: index chunks first, then the archived original
// (failure logged, not rolled back), then the metadata row. Deleting an
// unknown document is not an error.
func (s *FileService) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	deleted, err := s.index.DeleteByDocumentID(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete indexed chunks: %w", err)
	}

	if err := s.storage.DeletePrefix(documentID); err != nil {
		log.Printf("Failed to delete archived files for %s: %v", documentID, err)
	}

	if err := s.documents.DeleteDocument(ctx, documentID); err != nil {
		return deleted, fmt.Errorf("failed to delete document metadata: %w", err)
	}
	return deleted, nil
}

func (s *FileService) ListDocuments(ctx context.Context) ([]*types.DocumentInfo, error) {
	return s.documents.ListDocuments(ctx)
}

func (s *FileService) Stats(ctx context.Context) (*types.DocumentStats, error) {
	return s.documents.Stats(ctx)
}

func (s *FileService) supportedExtension(ext string) bool {
	for _, supported := range s.extractor.SupportedExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// sanitizeFilename keeps archive keys filesystem-safe.
func sanitizeFilename(filename string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, filename)
}
