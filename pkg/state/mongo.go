package state

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	perrors "github.com/matzehuels/stacktile/pkg/errors"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "stacktile"
	DefaultMongoCollection = "workspaces"
)

// MongoStore keeps one document per workspace, keyed by the workspace in
// _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and uses the workspaces collection of
// database. An empty database selects [DefaultMongoDatabase].
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(DefaultMongoCollection),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, workspace string) (Record, bool, error) {
	if err := perrors.ValidateWorkspaceKey(workspace); err != nil {
		return Record{}, false, err
	}
	var rec Record
	err := s.coll.FindOne(ctx, byWorkspace(workspace)).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("find workspace %s: %w", workspace, err)
	}
	return rec, true, nil
}

func (s *MongoStore) Set(ctx context.Context, rec Record) error {
	rec, err := prepare(rec)
	if err != nil {
		return err
	}
	_, err = s.coll.ReplaceOne(ctx, byWorkspace(rec.Workspace), rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store workspace %s: %w", rec.Workspace, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, workspace string) error {
	if err := perrors.ValidateWorkspaceKey(workspace); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, byWorkspace(workspace)); err != nil {
		return fmt.Errorf("delete workspace %s: %w", workspace, err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Record, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer cur.Close(ctx)

	out := []Record{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode workspaces: %w", err)
	}
	return out, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func byWorkspace(workspace string) bson.D {
	return bson.D{{Key: "_id", Value: workspace}}
}

var _ Store = (*MongoStore)(nil)
