package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/periferia-labs/perxia-be/config"
	"github.com/periferia-labs/perxia-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
)

// WeaviateHubStore is the read-only adapter for the curated hub index. The
// hub class is populated and owned externally and its records are
// heterogeneous, so the adapter discovers the class properties from the
// schema instead of assuming a fixed shape.
type WeaviateHubStore struct {
	client *weaviate.Client
	class  string

	once       sync.Once
	properties []string
	propErr    error
}

// NewWeaviateHubStore returns nil when the hub index is not configured;
// callers treat a nil store as "hub disabled".
func NewWeaviateHubStore(cfg config.WeaviateConfig) (*WeaviateHubStore, error) {
	if cfg.Host == "" {
		return nil, nil
	}
	client, err := newWeaviateClient(cfg)
	if err != nil {
		return nil, err
	}
	return &WeaviateHubStore{
		client: client,
		class:  cfg.Class,
	}, nil
}

// classProperties reads the hub class property names once and caches them.
func (s *WeaviateHubStore) classProperties(ctx context.Context) ([]string, error) {
	s.once.Do(func() {
		class, err := s.client.Schema().ClassGetter().WithClassName(s.class).Do(ctx)
		if err != nil {
			s.propErr = fmt.Errorf("failed to read hub class %s: %v", s.class, err)
			return
		}
		for _, prop := range class.Properties {
			s.properties = append(s.properties, prop.Name)
		}
		if len(s.properties) == 0 {
			s.propErr = fmt.Errorf("hub class %s has no properties", s.class)
		}
	})
	return s.properties, s.propErr
}

// Search runs a BM25 query over the curated records. The wildcard query "*"
// lists records without scoring, which backs the browse/stats endpoints.
func (s *WeaviateHubStore) Search(ctx context.Context, query string, top int) ([]types.HubRecord, error) {
	if top <= 0 {
		top = 5
	}

	properties, err := s.classProperties(ctx)
	if err != nil {
		return nil, err
	}

	fields := make([]graphql.Field, 0, len(properties)+1)
	for _, name := range properties {
		fields = append(fields, graphql.Field{Name: name})
	}
	fields = append(fields, graphql.Field{
		Name:   "_additional",
		Fields: []graphql.Field{{Name: "id"}, {Name: "score"}},
	})

	builder := s.client.GraphQL().Get().
		WithClassName(s.class).
		WithFields(fields...).
		WithLimit(top)

	if query != "" && query != "*" {
		builder = builder.WithBM25(s.client.GraphQL().Bm25ArgBuilder().WithQuery(query))
	}

	result, err := builder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("hub search failed: %v", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("hub search failed: %v", result.Errors[0].Message)
	}

	var records []types.HubRecord
	for _, raw := range classObjects(result, s.class) {
		obj, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		record := types.HubRecord{Fields: map[string]interface{}{}}
		for key, value := range obj {
			if key == "_additional" {
				continue
			}
			record.Fields[key] = value
		}
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			record.ID = stringProp(additional, "id")
			record.Score = parseScore(additional["score"])
		}
		records = append(records, record)
	}
	return records, nil
}
