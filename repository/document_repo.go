package repository

import (
	"context"
	"errors"

	"github.com/periferia-labs/perxia-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrDocumentNotFound is returned when a document id has no metadata row.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentRepo stores the per-document metadata rows backing the list,
// stats and delete endpoints. Chunk content never lands here; it lives in
// the search index only.
type DocumentRepo interface {
	CreateDocument(ctx context.Context, doc *types.DocumentInfo) error
	GetDocument(ctx context.Context, documentID string) (*types.DocumentInfo, error)
	ListDocuments(ctx context.Context) ([]*types.DocumentInfo, error)
	DeleteDocument(ctx context.Context, documentID string) error
	Stats(ctx context.Context) (*types.DocumentStats, error)
}

type documentRepo struct {
	collection *mongo.Collection
}

func NewDocumentRepo(collection *mongo.Collection) DocumentRepo {
	return &documentRepo{
		collection: collection,
	}
}

func (r *documentRepo) CreateDocument(ctx context.Context, doc *types.DocumentInfo) error {
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

func (r *documentRepo) GetDocument(ctx context.Context, documentID string) (*types.DocumentInfo, error) {
	var doc types.DocumentInfo
	err := r.collection.FindOne(ctx, bson.M{"_id": documentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) ListDocuments(ctx context.Context) ([]*types.DocumentInfo, error) {
	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*types.DocumentInfo
	for cursor.Next(ctx) {
		var doc types.DocumentInfo
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, cursor.Err()
}

func (r *documentRepo) DeleteDocument(ctx context.Context, documentID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": documentID})
	return err
}

func (r *documentRepo) Stats(ctx context.Context) (*types.DocumentStats, error) {
	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"total":        bson.M{"$sum": 1},
			"total_chunks": bson.M{"$sum": "$total_chunks"},
			"total_bytes":  bson.M{"$sum": "$file_size"},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := &types.DocumentStats{}
	if cursor.Next(ctx) {
		var row struct {
			Total       int64 `bson:"total"`
			TotalChunks int64 `bson:"total_chunks"`
			TotalBytes  int64 `bson:"total_bytes"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		stats.TotalDocuments = row.Total
		stats.TotalChunks = row.TotalChunks
		stats.TotalBytes = row.TotalBytes
	}
	return stats, cursor.Err()
}
