package database

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/periferia-labs/perxia-be/config"
	"github.com/periferia-labs/perxia-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const chunkBatchSize = 100

// chunkClass builds the class definition for the chunk index. Vectors are
// supplied by the ingestion pipeline, never by a Weaviate vectorizer module.
func chunkClass(name string) *models.Class {
	return &models.Class{
		Class:      name,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "chunkId", DataType: []string{"text"}},
			{Name: "documentId", DataType: []string{"text"}},
			{Name: "filename", DataType: []string{"text"}},
			{Name: "content", DataType: []string{"text"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
			{Name: "totalChunks", DataType: []string{"int"}},
			{Name: "pageNumber", DataType: []string{"int"}},
			{Name: "fileType", DataType: []string{"text"}},
			{Name: "fileSize", DataType: []string{"int"}},
			{Name: "uploadedBy", DataType: []string{"text"}},
			{Name: "uploadedAt", DataType: []string{"date"}},
			{Name: "tags", DataType: []string{"text[]"}},
		},
		VectorIndexType: "hnsw",
	}
}

// WeaviateChunkStore is the write+read adapter for the document chunk index.
type WeaviateChunkStore struct {
	client *weaviate.Client
	class  string
}

func NewWeaviateChunkStore(cfg config.WeaviateConfig) (*WeaviateChunkStore, error) {
	client, err := newWeaviateClient(cfg)
	if err != nil {
		return nil, err
	}
	return &WeaviateChunkStore{
		client: client,
		class:  cfg.Class,
	}, nil
}

// newWeaviateClient builds a client from a host that may or may not carry an
// explicit scheme.
func newWeaviateClient(cfg config.WeaviateConfig) (*weaviate.Client, error) {
	scheme := "http"
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")

	wcfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{Value: cfg.APIKey}
	}

	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}
	return client, nil
}

// EnsureSchema creates the chunk class if it does not exist yet.
func (s *WeaviateChunkStore) EnsureSchema(ctx context.Context) error {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema: %v", err)
	}
	for _, class := range schema.Classes {
		if class.Class == s.class {
			return nil
		}
	}
	if err := s.client.Schema().ClassCreator().WithClass(chunkClass(s.class)).Do(ctx); err != nil {
		return fmt.Errorf("failed to create class %s: %v", s.class, err)
	}
	return nil
}

// RecreateSchema drops and recreates the chunk class, discarding all
// indexed chunks.
func (s *WeaviateChunkStore) RecreateSchema(ctx context.Context) error {
	if err := s.client.Schema().ClassDeleter().WithClassName(s.class).Do(ctx); err != nil {
		log.Printf("Class %s delete before recreate: %v", s.class, err)
	}
	if err := s.client.Schema().ClassCreator().WithClass(chunkClass(s.class)).Do(ctx); err != nil {
		return fmt.Errorf("failed to create class %s: %v", s.class, err)
	}
	return nil
}

// ChunkObjectID derives the deterministic Weaviate object UUID for a chunk.
// Re-uploading the same document overwrites its chunk objects in place.
func ChunkObjectID(documentID string, chunkIndex int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s_chunk_%d", documentID, chunkIndex))).String()
}

// UpsertChunks writes all chunks of a document in fixed-size batches and
// returns how many objects were accepted. A failing batch aborts the upload;
// partial progress is reported through the returned count.
func (s *WeaviateChunkStore) UpsertChunks(ctx context.Context, doc *types.DocumentInfo, chunks []types.Chunk, vectors [][]float32) (int, error) {
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	succeeded := 0
	total := len(chunks)
	for i := 0; i < total; i += chunkBatchSize {
		end := i + chunkBatchSize
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			record := types.IndexedChunkRecord{
				ID:            ChunkObjectID(doc.DocumentID, chunks[j].Index),
				DocumentID:    doc.DocumentID,
				Filename:      doc.Filename,
				Content:       chunks[j].Text,
				ContentVector: vectors[j],
				ChunkIndex:    chunks[j].Index,
				TotalChunks:   total,
				PageNumber:    chunks[j].PageNumber,
				FileType:      doc.FileType,
				FileSize:      doc.FileSize,
				UploadedBy:    doc.UploadedBy,
				UploadedAt:    doc.UploadedAt,
				Tags:          doc.Tags,
			}
			batcher = batcher.WithObjects(&models.Object{
				ID:         strfmt.UUID(record.ID),
				Class:      s.class,
				Properties: chunkProperties(record),
				Vector:     record.ContentVector,
			})
		}

		if _, err := batcher.Do(ctx); err != nil {
			return succeeded, fmt.Errorf("failed to insert batch %d-%d: %v", i, end, err)
		}
		succeeded += end - i
		log.Printf("Indexed batch %d-%d of %d chunks for document %s", i, end, total, doc.DocumentID)
	}

	return succeeded, nil
}

// chunkProperties maps an index record onto the chunk class property names.
// The vector travels on the object itself, not as a property.
func chunkProperties(record types.IndexedChunkRecord) map[string]interface{} {
	return map[string]interface{}{
		"chunkId":     fmt.Sprintf("%s_chunk_%d", record.DocumentID, record.ChunkIndex),
		"documentId":  record.DocumentID,
		"filename":    record.Filename,
		"content":     record.Content,
		"chunkIndex":  record.ChunkIndex,
		"totalChunks": record.TotalChunks,
		"pageNumber":  record.PageNumber,
		"fileType":    record.FileType,
		"fileSize":    record.FileSize,
		"uploadedBy":  record.UploadedBy,
		"uploadedAt":  record.UploadedAt.Format(time.RFC3339),
		"tags":        record.Tags,
	}
}

// DeleteByDocumentID removes every chunk of a document. Idempotent: deleting
// an unknown document is 0, nil.
func (s *WeaviateChunkStore) DeleteByDocumentID(ctx context.Context, documentID string) (int, error) {
	where := filters.Where().
		WithPath([]string{"documentId"}).
		WithOperator(filters.Equal).
		WithValueText(documentID)

	resp, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(s.class).
		WithWhere(where).
		WithOutput("minimal").
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chunks for document %s: %v", documentID, err)
	}
	if resp == nil || resp.Results == nil {
		return 0, nil
	}
	return int(resp.Results.Successful), nil
}

// Search queries the chunk index: BM25 for text mode, BM25+vector fusion for
// hybrid mode. Mode selection is entirely the caller's; there is no internal
// fallback between modes.
func (s *WeaviateChunkStore) Search(ctx context.Context, query string, opts types.SearchOptions) ([]types.RankedItem, error) {
	if opts.Top <= 0 {
		opts.Top = 5
	}

	fields := []graphql.Field{
		{Name: "documentId"},
		{Name: "filename"},
		{Name: "content"},
		{Name: "chunkIndex"},
		{Name: "pageNumber"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "score"}}},
	}

	builder := s.client.GraphQL().Get().
		WithClassName(s.class).
		WithFields(fields...).
		WithLimit(opts.Top)

	switch opts.Mode {
	case types.SearchModeHybrid:
		if len(opts.Vector) == 0 {
			return nil, fmt.Errorf("hybrid search requires a query vector")
		}
		builder = builder.WithHybrid(s.client.GraphQL().HybridArgumentBuilder().
			WithQuery(query).
			WithVector(opts.Vector))
	case types.SearchModeText, "":
		builder = builder.WithBM25(s.client.GraphQL().Bm25ArgBuilder().
			WithQuery(query).
			WithProperties("content"))
	default:
		return nil, fmt.Errorf("unknown search mode: %s", opts.Mode)
	}

	if opts.Filter != "" {
		builder = builder.WithWhere(filters.Where().
			WithPath([]string{"documentId"}).
			WithOperator(filters.Equal).
			WithValueText(opts.Filter))
	}

	result, err := builder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("chunk search failed: %v", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("chunk search failed: %v", result.Errors[0].Message)
	}

	var items []types.RankedItem
	for _, raw := range classObjects(result, s.class) {
		obj, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		item := types.RankedItem{
			SourceKind: types.SourceKindDocument,
			Title:      stringProp(obj, "filename"),
			Content:    stringProp(obj, "content"),
			DocumentID: stringProp(obj, "documentId"),
			ChunkIndex: intProp(obj, "chunkIndex"),
			PageNumber: intProp(obj, "pageNumber"),
		}
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			item.Score = parseScore(additional["score"])
		}
		items = append(items, item)
	}
	return items, nil
}

// classObjects pulls the per-class result list out of a GraphQL response.
func classObjects(result *models.GraphQLResponse, class string) []interface{} {
	get, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	data, _ := get[class].([]interface{})
	return data
}

func stringProp(obj map[string]interface{}, key string) string {
	v, _ := obj[key].(string)
	return v
}

func intProp(obj map[string]interface{}, key string) int {
	if v, ok := obj[key].(float64); ok {
		return int(v)
	}
	return 0
}

// parseScore handles the _additional score, which the GraphQL layer returns
// as a string on some server versions and a number on others.
func parseScore(v interface{}) float64 {
	switch score := v.(type) {
	case float64:
		return score
	case string:
		parsed, err := strconv.ParseFloat(score, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
