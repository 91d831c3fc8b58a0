package service

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/periferia-labs/perxia-be/types"
)

const (
	fallbackTitle       = "Proyecto de Periferia IT"
	fallbackDescription = "Sin descripción disponible"
	maxTitleLength      = 60
	maxDescLength       = 150
)

// Hub records come from a heterogeneous external index, so every derived
// field reads from a list of candidate property names.
var (
	contentFieldNames     = []string{"content", "contenido", "chunk", "text"}
	titleFieldNames       = []string{"titulo", "title", "nombre"}
	typeFieldNames        = []string{"tipo", "type", "categoria"}
	descriptionFieldNames = []string{"descripcion", "description", "summary"}
)

// titleDenylist holds bare place names and generic words that disqualify a
// title candidate at every extraction stage. Comparison is an exact match on
// the trimmed lower-cased candidate, so "Bancolombia" survives while a bare
// "Colombia" falls through to the next strategy.
var titleDenylist = map[string]bool{
	"colombia":   true,
	"méxico":     true,
	"mexico":     true,
	"perú":       true,
	"peru":       true,
	"chile":      true,
	"argentina":  true,
	"ecuador":    true,
	"brasil":     true,
	"españa":     true,
	"espana":     true,
	"panamá":     true,
	"panama":     true,
	"venezuela":  true,
	"bolivia":    true,
	"uruguay":    true,
	"paraguay":   true,
	"documento":  true,
	"sin título": true,
	"sin titulo": true,
	"untitled":   true,
	"proyecto":   true,
	"sistema":    true,
	"cliente":    true,
	"empresa":    true,
}

// Client and organization patterns, tried before anything structural.
var clientPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:cliente|empresa|compañía)\s*:\s*([A-ZÁÉÍÓÚÑ][\wáéíóúñÁÉÍÓÚÑ &-]{2,60}?)(?:[.,;\n]|$)`),
	regexp.MustCompile(`para\s+(?:la empresa\s+)?([A-ZÁÉÍÓÚÑ][A-Za-záéíóúñ &]{2,60}?)(?:[.,;\n]|\s+con\s|\s+en\s|$)`),
	regexp.MustCompile(`([A-ZÁÉÍÓÚÑ][A-Za-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][A-Za-záéíóúñ]+)*)\s+(?:revoluciona|moderniza|implementa|transforma)`),
}

var clientActionPattern = regexp.MustCompile(`(?i)(?:moderniz|transform|implement|revolucion|migr|integr)\w*\s+(.{10,50}?)[.,;\n]`)

// Project and system naming patterns.
var projectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bus\s+de\s+servicios\s*:\s*([^.;\n]{3,60})`),
	regexp.MustCompile(`(?i)(?:renovación|modernización|implementación)\s+(?:del?\s+)?([A-Za-záéíóúñÁÉÍÓÚÑ ]{5,60}?)(?:[.,;\n]|$)`),
	regexp.MustCompile(`(?i)sistema\s+(?:de\s+)?([A-Za-záéíóúñ ]{5,60}?)(?:[.,;\n]|\s+para\s|$)`),
	regexp.MustCompile(`(?i)plataforma\s+(?:de\s+)?([A-Za-záéíóúñ ]{5,60}?)(?:[.,;\n]|\s+para\s|$)`),
	regexp.MustCompile(`(?i)integración\s+(?:de\s+)?([A-Za-záéíóúñ &]{5,60}?)(?:[.,;\n]|$)`),
}

var (
	technologyPattern = regexp.MustCompile(`(?i)\b(Azure(?:\s+[A-Za-z]+)?|AWS|Kubernetes|Docker|Power BI|Cosmos DB|SQL Server|SAP|Dynamics)\b`)
	labelLinePattern  = regexp.MustCompile(`(?m)^[A-ZÁÉÍÓÚÑ\s]+[;:]`)
	sentenceSplitter  = regexp.MustCompile(`[.!?]+`)
	sentenceLabel     = regexp.MustCompile(`(?i)^(logro|titulo|título|blog|fecha)`)
	titleCleanPrefix  = regexp.MustCompile(`(?i)^(logro|titulo|título|blog|fecha|cliente|proyecto)\s*:?\s*`)
	titleCleanChars   = regexp.MustCompile("[\"“”\\[\\]]+")
)

// Type classification tables. Strong phrases short-circuit; weak indicators
// accumulate hits against the profile threshold. Short ambiguous tokens use
// word boundaries so "roi" never matches inside another word.
var (
	pocStrongPattern = regexp.MustCompile(`(?i)\bpoc\b|proof of concept|prueba de concepto`)
	pocIndicators    = compileIndicators(
		`prototipo`, `\bdemo\b`, `demostración`, `piloto`, `validación técnica`,
		`prueba técnica`, `\bconcepto\b`, `experimentación`, `evaluación técnica`,
		`fase de prueba`, `\bmvp\b`, `mínimo viable`,
	)

	povStrongPattern = regexp.MustCompile(`(?i)\bpov\b|proof of value|prueba de valor`)
	povIndicators    = compileIndicators(
		`valor de negocio`, `retorno de inversión`, `\broi\b`, `impacto comercial`,
		`beneficio económico`, `caso de negocio`, `business case`,
	)

	casoStrongPattern = regexp.MustCompile(`(?i)caso\s*de\s*[eé]xito`)
	casoIndicators    = compileIndicators(
		`cliente:`, `resultado:`, `logro:`, `impacto:`, `beneficio:`,
		`implementación exitosa`, `proyecto completado`, `en producción`,
		`go live`, `lanzamiento`,
	)

	toolStrongPattern = regexp.MustCompile(`(?i)herramienta[;:\s]|\btool[;:\s]`)
	toolIndicators    = compileIndicators(
		`\bsdk\b`, `librería`, `\blibrary\b`, `\bframework\b`, `\bapi\b`,
		`\bplugin\b`, `extensión`, `\bextension\b`, `utilidad`, `\butility\b`,
		`módulo`,
	)
)

// Tag vocabulary: technology first, then industry, in declaration order.
var tagVocabulary = []struct {
	Tag     string
	Pattern *regexp.Regexp
}{
	{"azure", regexp.MustCompile(`azure|microsoft cloud`)},
	{"ai", regexp.MustCompile(`\b(ia|ai|inteligencia artificial|machine learning|ml|deep learning)\b`)},
	{"data", regexp.MustCompile(`\b(data|datos|analytics|bi|power bi|tableau|etl)\b`)},
	{"cloud", regexp.MustCompile(`\b(cloud|nube|aws|gcp|kubernetes|docker)\b`)},
	{"devops", regexp.MustCompile(`\b(devops|ci/cd|pipeline|jenkins|github actions)\b`)},
	{"web", regexp.MustCompile(`\b(web|frontend|backend|react|angular|node|api rest)\b`)},
	{"mobile", regexp.MustCompile(`\b(mobile|móvil|ios|android|flutter|react native)\b`)},
	{"iot", regexp.MustCompile(`\b(iot|internet of things|sensores|embedded)\b`)},
	{"security", regexp.MustCompile(`\b(seguridad|security|cybersecurity|oauth|jwt)\b`)},
	{"database", regexp.MustCompile(`\b(sql|nosql|mongodb|cosmos|postgresql|mysql)\b`)},
	{"automation", regexp.MustCompile(`\b(automatización|automation|rpa|power automate)\b`)},
	{"finanzas", regexp.MustCompile(`\b(banco|financiero|fintech|crédito|inversión)\b`)},
	{"retail", regexp.MustCompile(`\b(retail|comercio|ecommerce|tienda|ventas)\b`)},
	{"salud", regexp.MustCompile(`\b(salud|hospital|médico|healthcare|clínica)\b`)},
	{"educación", regexp.MustCompile(`\b(educación|universidad|escuela|learning)\b`)},
	{"gobierno", regexp.MustCompile(`\b(gobierno|público|municipal|estatal)\b`)},
	{"manufactura", regexp.MustCompile(`\b(manufactura|producción|fábrica|industrial)\b`)},
}

var descriptionBoilerplate = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(CASO DE [EÉ]XITO|POC|POV|HERRAMIENTA)[;:]\s*`),
	regexp.MustCompile(`(?i)T[ÍI]TULO\s*PRINCIPAL\s*:?\s*["“][^"”]+["”]`),
}

func compileIndicators(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// EnrichService derives a normalized display view (title, type, tags,
// description) from raw curated hub records. Pure and deterministic: the
// same record always yields the same enrichment, so the view is computed
// fresh on every read and never persisted.
type EnrichService struct{}

func NewEnrichService() *EnrichService {
	return &EnrichService{}
}

func (s *EnrichService) Enrich(record types.HubRecord) types.EnrichedRecord {
	return types.EnrichedRecord{
		Record:      record,
		Title:       s.ExtractTitle(record),
		Type:        s.ClassifyType(record),
		Tags:        s.ExtractTags(record),
		Description: s.ExtractDescription(record),
	}
}

// ExtractTitle runs the title strategies in priority order: explicit title
// field, client/organization pattern, project pattern, technology mention,
// first significant sentence. The denylist disqualifies a candidate at every
// stage; the output is always non-empty and capped at 60 characters.
func (s *EnrichService) ExtractTitle(record types.HubRecord) string {
	content := fieldString(record, contentFieldNames...)

	if explicit := fieldString(record, titleFieldNames...); len(explicit) > 5 {
		if title, ok := acceptTitle(explicit); ok {
			return title
		}
	}

	for _, pattern := range clientPatterns {
		match := pattern.FindStringSubmatch(content)
		if match == nil || len(strings.TrimSpace(match[1])) <= 3 {
			continue
		}
		client := strings.TrimSpace(match[1])
		if action := clientActionPattern.FindStringSubmatch(content); action != nil {
			if title, ok := acceptTitle(client + ": " + strings.TrimSpace(action[1])); ok {
				return title
			}
		}
		if title, ok := acceptTitle(client); ok {
			return title
		}
	}

	for _, pattern := range projectPatterns {
		if match := pattern.FindStringSubmatch(content); match != nil {
			if title, ok := acceptTitle(strings.TrimSpace(match[1])); ok {
				return title
			}
		}
	}

	if tech := technologyPattern.FindString(content); tech != "" {
		usage := regexp.QuoteMeta(tech) + `[^.\n]{5,40}`
		if use := regexp.MustCompile(`(?i)` + usage).FindString(content); use != "" {
			if title, ok := acceptTitle(use); ok {
				return title
			}
		}
		if title, ok := acceptTitle("Proyecto " + tech); ok {
			return title
		}
	}

	if title, ok := acceptTitle(firstSignificantSentence(content, 20, 7)); ok {
		return title
	}

	return fallbackTitle
}

// ClassifyType scores the record content against the category keyword
// tables. An explicit, recognizable type field short-circuits; strong
// phrases win immediately; weak indicators need to reach the category
// threshold; leftover partial hits resolve in poc, caso_exito, herramienta
// order; everything else is otros.
func (s *EnrichService) ClassifyType(record types.HubRecord) string {
	content := strings.ToLower(fieldString(record, contentFieldNames...))
	existing := strings.ToLower(fieldString(record, typeFieldNames...))

	switch {
	case strings.Contains(existing, "caso") || strings.Contains(existing, "exito") || strings.Contains(existing, "éxito"):
		return types.HubTypeCasoExito
	case strings.Contains(existing, "poc"):
		return types.HubTypePoc
	case strings.Contains(existing, "pov"):
		return types.HubTypePov
	case strings.Contains(existing, "herramienta") || strings.Contains(existing, "tool"):
		return types.HubTypeHerramienta
	}

	if pocStrongPattern.MatchString(content) {
		return types.HubTypePoc
	}
	pocScore := countIndicatorHits(content, pocIndicators)
	if pocScore >= 2 {
		return types.HubTypePoc
	}

	if povStrongPattern.MatchString(content) {
		return types.HubTypePov
	}
	if countIndicatorHits(content, povIndicators) >= 1 {
		return types.HubTypePov
	}

	if casoStrongPattern.MatchString(content) {
		return types.HubTypeCasoExito
	}
	casoScore := countIndicatorHits(content, casoIndicators)
	if casoScore >= 2 {
		return types.HubTypeCasoExito
	}
	if strings.Contains(content, "cliente") &&
		(strings.Contains(content, "resultado") || strings.Contains(content, "logr")) {
		return types.HubTypeCasoExito
	}

	if toolStrongPattern.MatchString(content) {
		return types.HubTypeHerramienta
	}
	toolScore := countIndicatorHits(content, toolIndicators)
	if toolScore >= 2 {
		return types.HubTypeHerramienta
	}

	switch {
	case pocScore >= 1:
		return types.HubTypePoc
	case casoScore >= 1:
		return types.HubTypeCasoExito
	case toolScore >= 1:
		return types.HubTypeHerramienta
	}
	return types.HubTypeOtros
}

// ExtractTags matches the fixed technology and industry vocabulary against
// the lower-cased content. Set semantics, vocabulary declaration order.
func (s *EnrichService) ExtractTags(record types.HubRecord) []string {
	content := strings.ToLower(fieldString(record, contentFieldNames...))
	var tags []string
	for _, entry := range tagVocabulary {
		if entry.Pattern.MatchString(content) {
			tags = append(tags, entry.Tag)
		}
	}
	return tags
}

// ExtractDescription prefers an explicit description field, otherwise strips
// boilerplate label prefixes and returns the first sentence of at least 20
// characters, capped at 150 with an ellipsis.
func (s *EnrichService) ExtractDescription(record types.HubRecord) string {
	if explicit := fieldString(record, descriptionFieldNames...); explicit != "" {
		return truncateRunes(explicit, maxDescLength)
	}

	cleaned := fieldString(record, contentFieldNames...)
	for _, pattern := range descriptionBoilerplate {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	for _, sentence := range sentenceSplitter.Split(cleaned, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) >= 20 {
			return truncateRunes(sentence, maxDescLength)
		}
	}

	if cleaned != "" {
		return truncateRunes(cleaned, maxDescLength)
	}
	return fallbackDescription
}

// fieldString returns the first non-empty string field among keys.
func fieldString(record types.HubRecord, keys ...string) string {
	for _, key := range keys {
		if value, ok := record.Fields[key].(string); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// acceptTitle cleans a candidate and checks it against the denylist.
func acceptTitle(candidate string) (string, bool) {
	title := cleanTitle(candidate)
	if len(title) < 4 {
		return "", false
	}
	if titleDenylist[strings.ToLower(title)] {
		return "", false
	}
	return title, true
}

// cleanTitle strips noise prefixes and quoting, capitalizes the first rune,
// and caps the length with an ellipsis.
func cleanTitle(title string) string {
	title = strings.TrimLeft(title, "/- \t:;")
	title = titleCleanPrefix.ReplaceAllString(title, "")
	title = titleCleanChars.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}

	runes := []rune(title)
	runes[0] = unicode.ToUpper(runes[0])
	title = string(runes)

	return truncateRunes(title, maxTitleLength)
}

// firstSignificantSentence returns the first sentence of at least minLen
// characters, truncated to maxWords words. Label lines are stripped first.
func firstSignificantSentence(content string, minLen, maxWords int) string {
	cleaned := labelLinePattern.ReplaceAllString(content, "")
	for _, sentence := range sentenceSplitter.Split(cleaned, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < minLen || sentenceLabel.MatchString(sentence) {
			continue
		}
		words := strings.Fields(sentence)
		if len(words) > maxWords {
			words = words[:maxWords]
		}
		return strings.Join(words, " ")
	}
	return ""
}

func countIndicatorHits(content string, indicators []*regexp.Regexp) int {
	hits := 0
	for _, indicator := range indicators {
		if indicator.MatchString(content) {
			hits++
		}
	}
	return hits
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
