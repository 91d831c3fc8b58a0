package service

import (
	"context"
	"errors"
	"testing"

	"github.com/periferia-labs/perxia-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hubBrowseRecords() []types.HubRecord {
	contents := []string{
		"Cliente: Bancolombia. Resultado: reducción de costos. Migración a Azure.",
		"Se construyó un prototipo como demo piloto. Desplegado en Azure con Kubernetes.",
		"Medición del retorno de inversión del despliegue.",
		"Herramienta: CLI interna para despliegues.",
		"Resumen trimestral de actividades generales.",
	}
	records := make([]types.HubRecord, 0, len(contents))
	for i, content := range contents {
		records = append(records, types.HubRecord{
			ID:     string(rune('a' + i)),
			Fields: map[string]interface{}{"content": content},
		})
	}
	return records
}

func TestHubServiceAvailability(t *testing.T) {
	enricher := NewEnrichService()

	assert.False(t, NewHubService(nil, enricher).IsAvailable())
	assert.True(t, NewHubService(&fakeHubSearcher{}, enricher).IsAvailable())
}

func TestHubServiceStats(t *testing.T) {
	hub := &fakeHubSearcher{results: map[string][]types.HubRecord{"*": hubBrowseRecords()}}
	service := NewHubService(hub, NewEnrichService())

	stats, err := service.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 1, stats.Casos)
	// poc and pov count together.
	assert.Equal(t, 2, stats.Pocs)
	assert.Equal(t, 1, stats.Tools)
	assert.Equal(t, 1, stats.Otros)

	require.NotEmpty(t, stats.TopTags)
	assert.Equal(t, types.TagCount{Name: "azure", Count: 2}, stats.TopTags[0])
}

func TestHubServiceStatsPropagatesError(t *testing.T) {
	hub := &fakeHubSearcher{err: errors.New("index down")}
	service := NewHubService(hub, NewEnrichService())

	_, err := service.Stats(context.Background())

	assert.Error(t, err)
}

func TestHubServiceGetByCategory(t *testing.T) {
	hub := &fakeHubSearcher{results: map[string][]types.HubRecord{"*": hubBrowseRecords()}}
	service := NewHubService(hub, NewEnrichService())

	items, err := service.GetByCategory(context.Background(), types.HubTypePoc)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, types.HubTypePoc, items[0].Type)
}

func TestHubServiceAvailableTags(t *testing.T) {
	hub := &fakeHubSearcher{results: map[string][]types.HubRecord{"*": hubBrowseRecords()}}
	service := NewHubService(hub, NewEnrichService())

	tags, err := service.AvailableTags(context.Background(), "all")

	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, types.TagCount{Name: "azure", Count: 2}, tags[0])
	// Equal counts resolve by name for a stable order.
	assert.Equal(t, types.TagCount{Name: "cloud", Count: 1}, tags[1])
	assert.Equal(t, types.TagCount{Name: "finanzas", Count: 1}, tags[2])
}

func TestHubServiceTagsByCategory(t *testing.T) {
	hub := &fakeHubSearcher{results: map[string][]types.HubRecord{"*": hubBrowseRecords()}}
	service := NewHubService(hub, NewEnrichService())

	tags, err := service.AvailableTags(context.Background(), types.HubTypeCasoExito)

	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, types.TagCount{Name: "azure", Count: 1}, tags[0])
}
