package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/periferia-labs/perxia-be/types"
)

// hubKeywords gates the curated-index search: the hub is only queried when
// the question plausibly concerns company projects, cases or tools.
// Substring match on the lower-cased query, any hit triggers.
var hubKeywords = []string{
	"caso de éxito", "casos de éxito", "caso de exito", "casos de exito",
	"poc", "pocs", "pov", "povs", "proof of concept", "proof of value",
	"herramienta", "herramientas", "proyecto", "proyectos",
	"periferia it", "periferia", "cliente", "clientes",
	"qué se ha hecho", "que se ha hecho", "qué proyectos", "que proyectos",
	"qué casos", "que casos", "experiencia con", "trabajado con",
	"implementación", "implementacion", "desarrollado",
	"semillero", "semilleros",
	"cuéntame sobre", "cuentame sobre", "información sobre", "informacion sobre",
	"qué se hizo", "que se hizo", "qué tecnologías", "que tecnologias",
	"resultados", "dame más información", "dame mas informacion",
}

// projectTitlePatterns recognize prompts generated from hub cards, where the
// query embeds the exact project title.
var projectTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)cu[eé]ntame sobre (?:el|la)?\s*(?:caso de éxito|poc|pov|herramienta|proyecto)?\s*"([^"]+)"`),
	regexp.MustCompile(`(?i)dame m[aá]s informaci[oó]n sobre[:\s]*"?([^"?.]+)"?`),
	regexp.MustCompile(`(?i)informaci[oó]n sobre[:\s]*"?([^"?.]+)"?`),
}

var titleCompanySuffix = regexp.MustCompile(`(?i)\s+de Periferia IT.*$`)

// documentSearcher is the read side of the chunk index.
type documentSearcher interface {
	Search(ctx context.Context, query string, opts types.SearchOptions) ([]types.RankedItem, error)
}

// hubSearcher is the read side of the curated hub index.
type hubSearcher interface {
	Search(ctx context.Context, query string, top int) ([]types.HubRecord, error)
}

// queryEmbedder embeds the user query for hybrid search.
type queryEmbedder interface {
	IsAvailable() bool
	Embed(ctx context.Context, text string) ([]float32, error)
}

// RetrievalService assembles the generator context for a user query: chunk
// index results first, curated hub results second, rendered into one
// deterministic delimited block. Source scores are never merged across
// backends; each source keeps its own internal order.
type RetrievalService struct {
	documents documentSearcher
	hub       hubSearcher
	embedder  queryEmbedder
	enricher  *EnrichService
	defaults  types.ContextOptions
}

func NewRetrievalService(
	documents documentSearcher,
	hub hubSearcher,
	embedder queryEmbedder,
	enricher *EnrichService,
	defaults types.ContextOptions,
) *RetrievalService {
	if defaults.TopDocuments <= 0 {
		defaults.TopDocuments = 5
	}
	if defaults.TopHub <= 0 {
		defaults.TopHub = 5
	}
	return &RetrievalService{
		documents: documents,
		hub:       hub,
		embedder:  embedder,
		enricher:  enricher,
		defaults:  defaults,
	}
}

// BuildContext retrieves and renders everything relevant to query. A failing
// source is logged and contributes zero items; assembly never errors, so the
// generator always receives whatever context is available, possibly none.
func (s *RetrievalService) BuildContext(ctx context.Context, query string, opts types.ContextOptions) *types.RetrievalContext {
	if opts.TopDocuments <= 0 {
		opts.TopDocuments = s.defaults.TopDocuments
	}
	if opts.TopHub <= 0 {
		opts.TopHub = s.defaults.TopHub
	}

	docItems := s.searchDocuments(ctx, query, opts.TopDocuments)

	var hubItems []types.RankedItem
	if opts.UseHub && s.hub != nil && shouldSearchHub(query) {
		hubItems = s.searchHub(ctx, query, opts.TopHub)
	}

	items := make([]types.RankedItem, 0, len(docItems)+len(hubItems))
	items = append(items, docItems...)
	items = append(items, hubItems...)

	return &types.RetrievalContext{
		Items:        items,
		RenderedText: renderContext(docItems, hubItems),
	}
}

// searchDocuments queries the chunk index, hybrid when the query embedding
// succeeded, plain text otherwise.
func (s *RetrievalService) searchDocuments(ctx context.Context, query string, top int) []types.RankedItem {
	if s.documents == nil {
		return nil
	}

	searchOpts := types.SearchOptions{
		Top:  top,
		Mode: types.SearchModeText,
	}
	if s.embedder != nil && s.embedder.IsAvailable() {
		if vector, err := s.embedder.Embed(ctx, query); err != nil {
			log.Printf("Query embedding failed, falling back to text search: %v", err)
		} else {
			searchOpts.Mode = types.SearchModeHybrid
			searchOpts.Vector = vector
		}
	}

	items, err := s.documents.Search(ctx, query, searchOpts)
	if err != nil {
		log.Printf("Document search failed (non-blocking): %v", err)
		return nil
	}
	return items
}

// searchHub queries the curated index. When the query embeds a project title
// the title is tried first, the raw query only on zero hits. Every hit goes
// through enrichment before it becomes a ranked item.
func (s *RetrievalService) searchHub(ctx context.Context, query string, top int) []types.RankedItem {
	searchQuery := query
	if title := extractProjectTitle(query); title != "" {
		searchQuery = title
	}

	records, err := s.hub.Search(ctx, searchQuery, top)
	if err == nil && len(records) == 0 && searchQuery != query {
		records, err = s.hub.Search(ctx, query, top)
	}
	if err != nil {
		log.Printf("Hub search failed (non-blocking): %v", err)
		return nil
	}

	items := make([]types.RankedItem, 0, len(records))
	for _, record := range records {
		enriched := s.enricher.Enrich(record)
		items = append(items, types.RankedItem{
			SourceKind: types.SourceKindHub,
			Score:      record.Score,
			Title:      enriched.Title,
			Content:    fieldString(record, contentFieldNames...),
			Type:       enriched.Type,
			Tags:       enriched.Tags,
		})
	}
	return items
}

func shouldSearchHub(query string) bool {
	queryLower := strings.ToLower(query)
	for _, keyword := range hubKeywords {
		if strings.Contains(queryLower, keyword) {
			return true
		}
	}
	return false
}

// extractProjectTitle pulls an explicit project title out of hub-card style
// prompts. Empty when the query carries no recognizable title.
func extractProjectTitle(query string) string {
	for _, pattern := range projectTitlePatterns {
		match := pattern.FindStringSubmatch(query)
		if match == nil {
			continue
		}
		title := strings.TrimSpace(match[1])
		title = strings.TrimSpace(titleCompanySuffix.ReplaceAllString(title, ""))
		if title != "" {
			return title
		}
	}
	return ""
}

// renderContext produces the generator-facing text block: documents first,
// then curated hub items, each source in its own score order. Chunk content
// is passed through in full.
func renderContext(docItems, hubItems []types.RankedItem) string {
	var b strings.Builder

	if len(docItems) > 0 {
		b.WriteString("CONTEXTO DE DOCUMENTOS RELEVANTES:\n\n")
		for i, item := range docItems {
			fmt.Fprintf(&b, "---\nDocumento %d: %s\n", i+1, item.Title)
			fmt.Fprintf(&b, "Relevancia: %.1f%%\n", item.Score*100)
			fmt.Fprintf(&b, "Contenido:\n%s\n\n", item.Content)
		}
		b.WriteString("---\n\nAnaliza la información anterior de forma crítica y úsala para responder la consulta del usuario.\n")
	}

	if len(hubItems) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("INFORMACIÓN DE PROYECTOS REALES DE PERIFERIA IT:\n")
		b.WriteString("Los siguientes son casos de éxito y proyectos reales. Los títulos son nombres de clientes o proyectos, no temas generales.\n\n")
		for i, item := range hubItems {
			header := item.Title
			if item.Type != "" {
				if len(item.Tags) > 0 {
					header = fmt.Sprintf("%s (%s, Tags: %s)", item.Title, item.Type, strings.Join(item.Tags, ", "))
				} else {
					header = fmt.Sprintf("%s (%s)", item.Title, item.Type)
				}
			}
			fmt.Fprintf(&b, "[%d] %s\n%s", i+1, header, item.Content)
			if i < len(hubItems)-1 {
				b.WriteString("\n\n---\n\n")
			}
		}
		b.WriteString("\n\nAnaliza qué hizo Periferia IT en estos proyectos, las tecnologías implementadas y los resultados obtenidos.\n")
	}

	return b.String()
}
