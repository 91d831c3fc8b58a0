package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/periferia-labs/perxia-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDocumentSearcher struct {
	items    []types.RankedItem
	err      error
	gotQuery string
	gotOpts  types.SearchOptions
	calls    int
}

func (f *fakeDocumentSearcher) Search(_ context.Context, query string, opts types.SearchOptions) ([]types.RankedItem, error) {
	f.calls++
	f.gotQuery = query
	f.gotOpts = opts
	return f.items, f.err
}

type fakeHubSearcher struct {
	results map[string][]types.HubRecord
	err     error
	queries []string
}

func (f *fakeHubSearcher) Search(_ context.Context, query string, _ int) ([]types.HubRecord, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

type fakeQueryEmbedder struct {
	available bool
	vector    []float32
	err       error
}

func (f *fakeQueryEmbedder) IsAvailable() bool { return f.available }

func (f *fakeQueryEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return f.vector, f.err
}

func newTestRetrieval(docs documentSearcher, hub hubSearcher, embedder queryEmbedder) *RetrievalService {
	return NewRetrievalService(docs, hub, embedder, NewEnrichService(), types.ContextOptions{})
}

func TestBuildContextFailingSourcesDegrade(t *testing.T) {
	docs := &fakeDocumentSearcher{err: errors.New("index down")}
	hub := &fakeHubSearcher{err: errors.New("hub down")}
	retrieval := newTestRetrieval(docs, hub, nil)

	result := retrieval.BuildContext(context.Background(), "casos de éxito con clientes", types.ContextOptions{UseHub: true})

	// Both sources failed, but assembly never errors: the generator just
	// gets an empty context.
	require.NotNil(t, result)
	assert.Empty(t, result.Items)
	assert.Empty(t, result.RenderedText)
}

func TestBuildContextHybridWhenEmbedderAvailable(t *testing.T) {
	docs := &fakeDocumentSearcher{}
	embedder := &fakeQueryEmbedder{available: true, vector: []float32{0.1, 0.2}}
	retrieval := newTestRetrieval(docs, nil, embedder)

	retrieval.BuildContext(context.Background(), "arquitectura del sistema", types.ContextOptions{TopDocuments: 3})

	assert.Equal(t, types.SearchModeHybrid, docs.gotOpts.Mode)
	assert.Equal(t, []float32{0.1, 0.2}, docs.gotOpts.Vector)
	assert.Equal(t, 3, docs.gotOpts.Top)
}

func TestBuildContextTextModeWhenEmbeddingFails(t *testing.T) {
	docs := &fakeDocumentSearcher{}
	embedder := &fakeQueryEmbedder{available: true, err: errors.New("quota exceeded")}
	retrieval := newTestRetrieval(docs, nil, embedder)

	retrieval.BuildContext(context.Background(), "arquitectura del sistema", types.ContextOptions{})

	assert.Equal(t, types.SearchModeText, docs.gotOpts.Mode)
	assert.Nil(t, docs.gotOpts.Vector)
}

func TestBuildContextTextModeWithoutEmbedder(t *testing.T) {
	docs := &fakeDocumentSearcher{}
	retrieval := newTestRetrieval(docs, nil, nil)

	retrieval.BuildContext(context.Background(), "arquitectura del sistema", types.ContextOptions{})

	assert.Equal(t, types.SearchModeText, docs.gotOpts.Mode)
}

func TestBuildContextSkipsHubWithoutKeyword(t *testing.T) {
	hub := &fakeHubSearcher{}
	retrieval := newTestRetrieval(&fakeDocumentSearcher{}, hub, nil)

	retrieval.BuildContext(context.Background(), "hola, cómo funciona esto", types.ContextOptions{UseHub: true})

	assert.Empty(t, hub.queries)
}

func TestBuildContextSkipsHubWhenDisabled(t *testing.T) {
	hub := &fakeHubSearcher{}
	retrieval := newTestRetrieval(&fakeDocumentSearcher{}, hub, nil)

	retrieval.BuildContext(context.Background(), "casos de éxito con clientes", types.ContextOptions{UseHub: false})

	assert.Empty(t, hub.queries)
}

func TestBuildContextTitleSearchWithRawQueryFallback(t *testing.T) {
	query := `Cuéntame sobre el proyecto "Banca Móvil"`
	hub := &fakeHubSearcher{results: map[string][]types.HubRecord{
		query: {{ID: "h1", Score: 0.9, Fields: map[string]interface{}{
			"content": "Cliente: Bancolombia. Resultado: reducción de costos del 30%.",
		}}},
	}}
	retrieval := newTestRetrieval(&fakeDocumentSearcher{}, hub, nil)

	result := retrieval.BuildContext(context.Background(), query, types.ContextOptions{UseHub: true})

	// The embedded title is tried first; zero hits fall back to the raw query.
	require.Equal(t, []string{"Banca Móvil", query}, hub.queries)
	require.Len(t, result.Items, 1)
	assert.Equal(t, types.SourceKindHub, result.Items[0].SourceKind)
	assert.Equal(t, "Bancolombia", result.Items[0].Title)
	assert.Equal(t, types.HubTypeCasoExito, result.Items[0].Type)
}

func TestBuildContextDocumentsBeforeHub(t *testing.T) {
	query := "casos de éxito con clientes"
	docs := &fakeDocumentSearcher{items: []types.RankedItem{
		{SourceKind: types.SourceKindDocument, Score: 0.87, Title: "manual.pdf", Content: "contenido del manual"},
		{SourceKind: types.SourceKindDocument, Score: 0.52, Title: "guia.pdf", Content: "contenido de la guía"},
	}}
	hub := &fakeHubSearcher{results: map[string][]types.HubRecord{
		query: {{ID: "h1", Score: 0.9, Fields: map[string]interface{}{
			"content": "Cliente: Bancolombia. Resultado: reducción de costos del 30%.",
		}}},
	}}
	retrieval := newTestRetrieval(docs, hub, nil)

	result := retrieval.BuildContext(context.Background(), query, types.ContextOptions{UseHub: true})

	require.Len(t, result.Items, 3)
	assert.Equal(t, types.SourceKindDocument, result.Items[0].SourceKind)
	assert.Equal(t, types.SourceKindDocument, result.Items[1].SourceKind)
	assert.Equal(t, types.SourceKindHub, result.Items[2].SourceKind)

	// Rendered block: document section first, hub section after.
	docSection := strings.Index(result.RenderedText, "CONTEXTO DE DOCUMENTOS RELEVANTES:")
	hubSection := strings.Index(result.RenderedText, "INFORMACIÓN DE PROYECTOS REALES DE PERIFERIA IT:")
	require.NotEqual(t, -1, docSection)
	require.NotEqual(t, -1, hubSection)
	assert.Less(t, docSection, hubSection)

	assert.Contains(t, result.RenderedText, "Documento 1: manual.pdf")
	assert.Contains(t, result.RenderedText, "Relevancia: 87.0%")
	assert.Contains(t, result.RenderedText, "[1] Bancolombia (caso_exito)")
}

func TestRenderContextEmpty(t *testing.T) {
	assert.Empty(t, renderContext(nil, nil))
}

func TestExtractProjectTitle(t *testing.T) {
	assert.Equal(t, "Banca Móvil", extractProjectTitle(`Cuéntame sobre el caso de éxito "Banca Móvil"`))
	assert.Equal(t, "Pagos QR", extractProjectTitle("Dame más información sobre: Pagos QR de Periferia IT"))
	assert.Equal(t, "", extractProjectTitle("hola"))
}

func TestShouldSearchHub(t *testing.T) {
	assert.True(t, shouldSearchHub("¿Qué casos de éxito tienen con bancos?"))
	assert.True(t, shouldSearchHub("Cuéntame sobre los PROYECTOS de Periferia"))
	assert.False(t, shouldSearchHub("hola, cómo funciona esto"))
}
