package types

import "time"

// Chunk is a bounded substring of a document's extracted text, sized for
// embedding and indexing. Chunks are produced only by the chunker and are
// immutable once emitted.
type Chunk struct {
	Text        string `json:"text"`
	Index       int    `json:"index"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
	PageNumber  int    `json:"page_number,omitempty"`
}

// ChunkOptions controls the structure-aware chunker.
type ChunkOptions struct {
	MaxChunkSize int // Maximum size for text chunks
	MinChunkSize int // Chunks below this merge into the previous chunk
	Overlap      int // Overlap between adjacent fixed-window chunks
}

// Page is a single page of extracted text.
type Page struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// Extraction is the output of the text extraction boundary.
type Extraction struct {
	Text      string `json:"text"`
	PageCount int    `json:"page_count"`
	Pages     []Page `json:"pages,omitempty"`
}

// IndexedChunkRecord is one chunk row in the document search index.
// ID is deterministic from (DocumentID, ChunkIndex). ContentVector always
// has the index's fixed dimensionality; a zero vector marks a chunk whose
// embedding generation failed (still searchable by plain text).
type IndexedChunkRecord struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	Filename      string    `json:"filename"`
	Content       string    `json:"content"`
	ContentVector []float32 `json:"content_vector,omitempty"`
	ChunkIndex    int       `json:"chunk_index"`
	TotalChunks   int       `json:"total_chunks"`
	PageNumber    int       `json:"page_number"`
	FileType      string    `json:"file_type"`
	FileSize      int64     `json:"file_size"`
	UploadedBy    string    `json:"uploaded_by"`
	UploadedAt    time.Time `json:"uploaded_at"`
	Tags          []string  `json:"tags"`
}

// DocumentInfo is the metadata row kept per uploaded document.
type DocumentInfo struct {
	DocumentID  string    `bson:"_id" json:"document_id"`
	Filename    string    `bson:"filename" json:"filename"`
	FileType    string    `bson:"file_type" json:"file_type"`
	FileSize    int64     `bson:"file_size" json:"file_size"`
	PageCount   int       `bson:"page_count" json:"page_count"`
	TotalChunks int       `bson:"total_chunks" json:"total_chunks"`
	UploadedBy  string    `bson:"uploaded_by" json:"uploaded_by"`
	UploadedAt  time.Time `bson:"uploaded_at" json:"uploaded_at"`
	ArchiveURL  string    `bson:"archive_url" json:"archive_url"`
	Tags        []string  `bson:"tags" json:"tags"`
}

// DocumentStats summarizes the indexed corpus.
type DocumentStats struct {
	TotalDocuments int64 `json:"total_documents"`
	TotalChunks    int64 `json:"total_chunks"`
	TotalBytes     int64 `json:"total_bytes"`
}

// UploadResult reports the outcome of one ingestion run.
type UploadResult struct {
	DocumentID    string  `json:"document_id"`
	Filename      string  `json:"filename"`
	FileType      string  `json:"file_type"`
	FileSize      int64   `json:"file_size"`
	PageCount     int     `json:"page_count"`
	Chunks        int     `json:"chunks"`
	ChunksIndexed int     `json:"chunks_indexed"`
	ArchiveURL    string  `json:"archive_url"`
	Seconds       float64 `json:"processing_time_seconds"`
}
