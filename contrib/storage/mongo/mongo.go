// Package mongo provides a MongoDB document store. Page images stay on the
// filesystem; MongoDB holds the metadata, page records, and summaries.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docpixie/docpixie/document"
	"github.com/docpixie/docpixie/errors"
	"github.com/docpixie/docpixie/storage"
)

// Config holds MongoDB connection configuration.
type Config struct {
	URI        string
	Database   string
	Collection string
}

// DefaultConfig returns default MongoDB configuration.
func DefaultConfig() *Config {
	return &Config{
		URI:        "mongodb://localhost:27017",
		Database:   "docpixie",
		Collection: "documents",
	}
}

// Store is a MongoDB-backed document store.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ storage.Storage = (*Store)(nil)

// mongoDocument is the internal representation for MongoDB.
type mongoDocument struct {
	ID        string          `bson:"_id"`
	Name      string          `bson:"name"`
	Pages     []document.Page `bson:"pages"`
	Summary   string          `bson:"summary,omitempty"`
	Status    document.Status `bson:"status"`
	Metadata  map[string]any  `bson:"metadata,omitempty"`
	CreatedAt time.Time       `bson:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

// New connects to MongoDB, verifies the connection, and creates indexes.
func New(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	store := &Store{
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
	}
	if err := store.createIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return store, nil
}

func (s *Store) createIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	return err
}

// SaveDocument writes or replaces a document record.
func (s *Store) SaveDocument(ctx context.Context, doc *document.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document has no id", errors.ErrInvalidInput)
	}
	record := mongoDocument{
		ID:        doc.ID,
		Name:      doc.Name,
		Pages:     doc.Pages,
		Summary:   doc.Summary,
		Status:    doc.Status,
		Metadata:  doc.Metadata,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: time.Now(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, record, opts); err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return nil
}

// GetDocument returns a document by id.
func (s *Store) GetDocument(ctx context.Context, id string) (*document.Document, error) {
	var record mongoDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("%w: document %s", errors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", id, err)
	}
	return record.toDocument(), nil
}

// ListDocuments returns metadata for all documents, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]document.Info, error) {
	docs, err := s.GetAllDocuments(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]document.Info, 0, len(docs))
	for _, doc := range docs {
		infos = append(infos, document.Info{
			ID:        doc.ID,
			Name:      doc.Name,
			Summary:   doc.Summary,
			PageCount: doc.PageCount(),
			Status:    doc.Status,
			CreatedAt: doc.CreatedAt,
		})
	}
	return infos, nil
}

// DeleteDocument removes a document by id.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: document %s", errors.ErrNotFound, id)
	}
	return nil
}

// UpdateSummary replaces the stored summary for a document.
func (s *Store) UpdateSummary(ctx context.Context, id, summary string) error {
	update := bson.M{"$set": bson.M{"summary": summary, "updated_at": time.Now()}}
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update summary for %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: document %s", errors.ErrNotFound, id)
	}
	return nil
}

// GetAllDocuments returns every stored document, newest first.
func (s *Store) GetAllDocuments(ctx context.Context) ([]*document.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*document.Document
	for cursor.Next(ctx) {
		var record mongoDocument
		if err := cursor.Decode(&record); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		docs = append(docs, record.toDocument())
	}
	return docs, cursor.Err()
}

// Close disconnects the MongoDB client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (r *mongoDocument) toDocument() *document.Document {
	return &document.Document{
		ID:        r.ID,
		Name:      r.Name,
		Pages:     r.Pages,
		Summary:   r.Summary,
		Status:    r.Status,
		Metadata:  r.Metadata,
		CreatedAt: r.CreatedAt,
	}
}
