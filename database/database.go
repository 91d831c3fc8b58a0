package database

import (
	"context"

	"github.com/periferia-labs/perxia-be/types"
)

// ChunkIndex is the document chunk search index: the write path of the
// ingestion pipeline and the primary read path of retrieval.
type ChunkIndex interface {
	EnsureSchema(ctx context.Context) error
	UpsertChunks(ctx context.Context, doc *types.DocumentInfo, chunks []types.Chunk, vectors [][]float32) (int, error)
	DeleteByDocumentID(ctx context.Context, documentID string) (int, error)
	Search(ctx context.Context, query string, opts types.SearchOptions) ([]types.RankedItem, error)
}

// HubIndex is the read-only curated record index.
type HubIndex interface {
	Search(ctx context.Context, query string, top int) ([]types.HubRecord, error)
}
