package store

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/observability"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "traitforge"
	DefaultMongoCollection = "dna_sets"
)

// setDocument is the document stored for every set name.
type setDocument struct {
	Name       string      `bson:"_id"`
	Vectors    [][]int     `bson:"vectors,omitempty"`
	Checkpoint *Checkpoint `bson:"checkpoint,omitempty"`
	UpdatedAt  time.Time   `bson:"updated_at"`
}

// toVectors converts a set to the document representation.
func toVectors(s dna.Set) [][]int {
	out := make([][]int, len(s))
	for i, d := range s {
		out[i] = append([]int(nil), d[:]...)
	}
	return out
}

// fromVectors converts the document representation back to a set.
func fromVectors(vs [][]int) (dna.Set, error) {
	set := make(dna.Set, len(vs))
	for i, v := range vs {
		if len(v) != dna.NumSlots {
			return nil, errors.New(errors.ErrCodeParse, "stored entry %d has %d values, want %d", i+1, len(v), dna.NumSlots)
		}
		copy(set[i][:], v)
	}
	return set, nil
}

// MongoStore keeps one document per set name holding the vectors and the
// checkpoint.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and pings the primary. An empty database
// selects [DefaultMongoDatabase].
func NewMongoStore(ctx context.Context, uri, database string, logger *log.Logger) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connect mongodb")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}
	if logger != nil {
		logger.Debug("connected to mongodb", "database", database, "collection", DefaultMongoCollection)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(DefaultMongoCollection),
	}, nil
}

func (s *MongoStore) upsert(ctx context.Context, name string, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{"$set": fields},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *MongoStore) find(ctx context.Context, name string) (*setDocument, error) {
	var doc setDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// SaveSet implements [Store].
func (s *MongoStore) SaveSet(ctx context.Context, name string, set dna.Set) (err error) {
	defer func() { observability.Store().OnSave(ctx, "mongo", "set", err) }()
	if err := errors.ValidateSetName(name); err != nil {
		return err
	}
	if err := s.upsert(ctx, name, bson.M{"vectors": toVectors(set)}); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save set %s", name)
	}
	return nil
}

// LoadSet implements [Store].
func (s *MongoStore) LoadSet(ctx context.Context, name string) (set dna.Set, hit bool, err error) {
	defer func() { observability.Store().OnLoad(ctx, "mongo", "set", hit, err) }()
	if err := errors.ValidateSetName(name); err != nil {
		return nil, false, err
	}
	doc, err := s.find(ctx, name)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStorage, err, "load set %s", name)
	}
	if doc == nil || doc.Vectors == nil {
		return nil, false, nil
	}
	set, err = fromVectors(doc.Vectors)
	if err != nil {
		return nil, false, err
	}
	return set, true, nil
}

// SaveCursor implements [Store].
func (s *MongoStore) SaveCursor(ctx context.Context, name string, cp Checkpoint) (err error) {
	defer func() { observability.Store().OnSave(ctx, "mongo", "cursor", err) }()
	if err := errors.ValidateSetName(name); err != nil {
		return err
	}
	if err := s.upsert(ctx, name, bson.M{"checkpoint": cp}); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save checkpoint %s", name)
	}
	return nil
}

// LoadCursor implements [Store].
func (s *MongoStore) LoadCursor(ctx context.Context, name string) (cp Checkpoint, hit bool, err error) {
	defer func() { observability.Store().OnLoad(ctx, "mongo", "cursor", hit, err) }()
	if err := errors.ValidateSetName(name); err != nil {
		return Checkpoint{}, false, err
	}
	doc, err := s.find(ctx, name)
	if err != nil {
		return Checkpoint{}, false, errors.Wrap(errors.ErrCodeStorage, err, "load checkpoint %s", name)
	}
	if doc == nil || doc.Checkpoint == nil {
		return Checkpoint{}, false, nil
	}
	return *doc.Checkpoint, true, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
