// MongoDB row store.
//
// Information Hiding:
// - Collection names and document shapes behind the Store interface
// - Index provisioning encapsulated in EnsureSchema
//
// Mongo creates collections on first write, so a store that never ran
// EnsureSchema does not fail reads the way the SQL drivers do; it only
// reports unprovisioned conditions the server itself raises.

package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type turnDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Sender    string    `bson:"sender"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
}

type mediaDocument struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"user_id"`
	Prompt      string    `bson:"prompt"`
	StoragePath string    `bson:"storage_path"`
	CreatedAt   time.Time `bson:"created_at"`
}

// MongoStore implements Store on two MongoDB collections.
type MongoStore struct {
	client *mongo.Client
	turns  *mongo.Collection
	media  *mongo.Collection
}

// OpenMongo connects to the deployment at uri and uses the named
// database. database defaults to "atelier" if empty.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = "atelier"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to reach MongoDB: %w", err)
	}

	db := client.Database(database)
	return &MongoStore{
		client: client,
		turns:  db.Collection("chat_turns"),
		media:  db.Collection("media_items"),
	}, nil
}

// Close disconnects from the deployment.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// EnsureSchema creates the per-user indexes both collections query on.
func (s *MongoStore) EnsureSchema(ctx context.Context) error {
	turnIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}},
	}
	if _, err := s.turns.Indexes().CreateOne(ctx, turnIndex); err != nil {
		return fmt.Errorf("failed to create chat turn index: %w", err)
	}

	mediaIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	}
	if _, err := s.media.Indexes().CreateOne(ctx, mediaIndex); err != nil {
		return fmt.Errorf("failed to create media index: %w", err)
	}

	return nil
}

// ListTurns loads a user's conversation turns oldest first.
func (s *MongoStore) ListTurns(ctx context.Context, userID string) ([]ChatTurnRow, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := s.turns.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer cursor.Close(ctx)

	turns := []ChatTurnRow{} // Start with empty slice, not nil
	for cursor.Next(ctx) {
		var doc turnDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode turn: %w", err)
		}
		turns = append(turns, ChatTurnRow{
			ID:        doc.ID,
			UserID:    doc.UserID,
			Sender:    doc.Sender,
			Text:      doc.Content,
			CreatedAt: doc.CreatedAt.UTC(),
		})
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating turns: %w", err)
	}

	return turns, nil
}

// AppendTurns writes the rows in one batch.
func (s *MongoStore) AppendTurns(ctx context.Context, turns []ChatTurnRow) error {
	if len(turns) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(turns))
	for _, turn := range turns {
		docs = append(docs, turnDocument{
			ID:        turn.ID,
			UserID:    turn.UserID,
			Sender:    turn.Sender,
			Content:   turn.Text,
			CreatedAt: turn.CreatedAt.UTC(),
		})
	}

	if _, err := s.turns.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert turns: %w", err)
	}
	return nil
}

// DeleteTurns removes all turns for a user.
func (s *MongoStore) DeleteTurns(ctx context.Context, userID string) error {
	if _, err := s.turns.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete turns: %w", err)
	}
	return nil
}

// ListMedia loads a user's media records newest first.
func (s *MongoStore) ListMedia(ctx context.Context, userID string) ([]MediaRecord, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.media.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", err)
	}
	defer cursor.Close(ctx)

	records := []MediaRecord{} // Start with empty slice, not nil
	for cursor.Next(ctx) {
		var doc mediaDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode media record: %w", err)
		}
		records = append(records, MediaRecord{
			ID:          doc.ID,
			UserID:      doc.UserID,
			Prompt:      doc.Prompt,
			StoragePath: doc.StoragePath,
			CreatedAt:   doc.CreatedAt.UTC(),
		})
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media records: %w", err)
	}

	return records, nil
}

// InsertMedia writes one media record.
func (s *MongoStore) InsertMedia(ctx context.Context, record MediaRecord) error {
	doc := mediaDocument{
		ID:          record.ID,
		UserID:      record.UserID,
		Prompt:      record.Prompt,
		StoragePath: record.StoragePath,
		CreatedAt:   record.CreatedAt.UTC(),
	}

	if _, err := s.media.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert media record: %w", err)
	}
	return nil
}

// DeleteMedia removes the record matching (userID, storagePath).
func (s *MongoStore) DeleteMedia(ctx context.Context, userID, storagePath string) error {
	filter := bson.M{"user_id": userID, "storage_path": storagePath}
	if _, err := s.media.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete media record: %w", err)
	}
	return nil
}

// Verify MongoStore implements Store
var _ Store = (*MongoStore)(nil)
