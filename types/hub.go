package types

// Hub record types assigned by the enricher.
const (
	HubTypeCasoExito   = "caso_exito"
	HubTypePoc         = "poc"
	HubTypePov         = "pov"
	HubTypeHerramienta = "herramienta"
	HubTypeOtros       = "otros"
)

// HubRecord is a raw document from the curated business-case index. The
// index is external and heterogeneous, so all properties travel in Fields
// and the enricher derives the display view from them at read time.
type HubRecord struct {
	ID     string                 `json:"id"`
	Score  float64                `json:"score"`
	Fields map[string]interface{} `json:"fields"`
}

// TagCount is one tag with its frequency across enriched records.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// HubStats summarizes the curated index by enriched category.
type HubStats struct {
	Total   int        `json:"total"`
	Casos   int        `json:"casos"`
	Pocs    int        `json:"pocs"`
	Tools   int        `json:"tools"`
	Otros   int        `json:"otros"`
	TopTags []TagCount `json:"top_tags"`
}

// EnrichedRecord is the normalized read-time view of a HubRecord.
// It is never persisted; enrichment is a pure function of the raw record.
type EnrichedRecord struct {
	Record      HubRecord `json:"record"`
	Title       string    `json:"enriched_title"`
	Type        string    `json:"enriched_type"`
	Tags        []string  `json:"enriched_tags"`
	Description string    `json:"enriched_description"`
}
