package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/periferia-labs/perxia-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChunkIndex struct {
	upsertDoc     *types.DocumentInfo
	upsertChunks  []types.Chunk
	upsertVectors [][]float32
	deletedIDs    []string
	deleteCount   int
	deleteErr     error
}

func (f *fakeChunkIndex) EnsureSchema(context.Context) error { return nil }

func (f *fakeChunkIndex) UpsertChunks(_ context.Context, doc *types.DocumentInfo, chunks []types.Chunk, vectors [][]float32) (int, error) {
	f.upsertDoc = doc
	f.upsertChunks = chunks
	f.upsertVectors = vectors
	return len(chunks), nil
}

func (f *fakeChunkIndex) DeleteByDocumentID(_ context.Context, documentID string) (int, error) {
	f.deletedIDs = append(f.deletedIDs, documentID)
	return f.deleteCount, f.deleteErr
}

func (f *fakeChunkIndex) Search(context.Context, string, types.SearchOptions) ([]types.RankedItem, error) {
	return nil, nil
}

type fakeDocumentRepo struct {
	created map[string]*types.DocumentInfo
	deleted []string
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{created: map[string]*types.DocumentInfo{}}
}

func (f *fakeDocumentRepo) CreateDocument(_ context.Context, doc *types.DocumentInfo) error {
	f.created[doc.DocumentID] = doc
	return nil
}

func (f *fakeDocumentRepo) GetDocument(_ context.Context, documentID string) (*types.DocumentInfo, error) {
	doc, ok := f.created[documentID]
	if !ok {
		return nil, errors.New("not found")
	}
	return doc, nil
}

func (f *fakeDocumentRepo) ListDocuments(context.Context) ([]*types.DocumentInfo, error) {
	return nil, nil
}

func (f *fakeDocumentRepo) DeleteDocument(_ context.Context, documentID string) error {
	f.deleted = append(f.deleted, documentID)
	return nil
}

func (f *fakeDocumentRepo) Stats(context.Context) (*types.DocumentStats, error) {
	return &types.DocumentStats{}, nil
}

// failingStorage errors on every call; DeleteDocument treats its DeletePrefix
// failure as non-fatal.
type failingStorage struct{}

func (failingStorage) Put(string, []byte) (string, error) { return "", errors.New("disk full") }
func (failingStorage) DeletePrefix(string) error          { return errors.New("disk full") }

func newTestFileService(t *testing.T, storage BlobStorage, index *fakeChunkIndex, repo *fakeDocumentRepo) *FileService {
	t.Helper()
	if storage == nil {
		s, err := NewStorageService(t.TempDir())
		require.NoError(t, err)
		storage = s
	}
	chunker := NewChunkerService(types.ChunkOptions{})
	embedder := NewEmbeddingService("", "", "test-embedding", 3)
	extractor := NewLocalExtractor(t.TempDir())
	return NewFileService(storage, extractor, chunker, embedder, index, repo)
}

func TestUploadDocumentTxtPipeline(t *testing.T) {
	index := &fakeChunkIndex{}
	repo := newFakeDocumentRepo()
	service := newTestFileService(t, nil, index, repo)

	data := []byte(strings.Repeat("Contenido del documento de prueba. ", 20))
	result, err := service.UploadDocument(context.Background(), types.UploadRequest{
		Filename:   "notas de trabajo.txt",
		UploadedBy: "tester",
		Tags:       []string{"demo"},
	}, data)

	require.NoError(t, err)
	assert.NotEmpty(t, result.DocumentID)
	assert.Equal(t, ".txt", result.FileType)
	assert.Equal(t, 1, result.PageCount)
	assert.Greater(t, result.Chunks, 0)
	assert.Equal(t, result.Chunks, result.ChunksIndexed)

	// The original was archived.
	_, err = os.Stat(result.ArchiveURL)
	assert.NoError(t, err)

	// The embedder is unavailable, so every vector is zero-filled at the
	// configured dimension and stays aligned with its chunk.
	require.Len(t, index.upsertVectors, len(index.upsertChunks))
	for _, vector := range index.upsertVectors {
		assert.Equal(t, []float32{0, 0, 0}, vector)
	}

	// Metadata landed in the repository.
	doc, ok := repo.created[result.DocumentID]
	require.True(t, ok)
	assert.Equal(t, "notas de trabajo.txt", doc.Filename)
	assert.Equal(t, result.Chunks, doc.TotalChunks)
	assert.Equal(t, []string{"demo"}, doc.Tags)
}

func TestUploadDocumentRejectsUnsupportedType(t *testing.T) {
	service := newTestFileService(t, nil, &fakeChunkIndex{}, newFakeDocumentRepo())

	_, err := service.UploadDocument(context.Background(), types.UploadRequest{Filename: "binario.exe"}, []byte("x"))

	assert.Error(t, err)
}

func TestUploadDocumentRejectsEmptyFile(t *testing.T) {
	service := newTestFileService(t, nil, &fakeChunkIndex{}, newFakeDocumentRepo())

	_, err := service.UploadDocument(context.Background(), types.UploadRequest{Filename: "vacio.txt"}, nil)

	assert.Error(t, err)
}

func TestUploadDocumentArchiveFailureIsFatal(t *testing.T) {
	index := &fakeChunkIndex{}
	repo := newFakeDocumentRepo()
	service := newTestFileService(t, failingStorage{}, index, repo)

	_, err := service.UploadDocument(context.Background(), types.UploadRequest{Filename: "notas.txt"}, []byte("Contenido suficiente para extraer."))

	require.Error(t, err)
	assert.Nil(t, index.upsertDoc)
	assert.Empty(t, repo.created)
}

func TestDeleteDocumentCascades(t *testing.T) {
	index := &fakeChunkIndex{deleteCount: 7}
	repo := newFakeDocumentRepo()
	// Archive deletion failure is logged, never fatal.
	service := newTestFileService(t, failingStorage{}, index, repo)

	deleted, err := service.DeleteDocument(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.Equal(t, 7, deleted)
	assert.Equal(t, []string{"doc-1"}, index.deletedIDs)
	assert.Equal(t, []string{"doc-1"}, repo.deleted)
}

func TestDeleteDocumentIndexFailureStops(t *testing.T) {
	index := &fakeChunkIndex{deleteErr: errors.New("index down")}
	repo := newFakeDocumentRepo()
	service := newTestFileService(t, failingStorage{}, index, repo)

	_, err := service.DeleteDocument(context.Background(), "doc-1")

	require.Error(t, err)
	assert.Empty(t, repo.deleted)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "notas_de_trabajo.txt", sanitizeFilename("notas de trabajo.txt"))
	assert.Equal(t, "a_b_.pdf", sanitizeFilename("a/b?.pdf"))
}
