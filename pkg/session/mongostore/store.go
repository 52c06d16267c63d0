// Package mongostore persists sessions in a MongoDB collection.
//
// Each session is one document:
//
//	{ _id: <session id>, session: <JSON-encoded data>, expires: <date> }
//
// A TTL index on expires lets the server evict expired sessions; reads also
// filter on expires so a session is never served between its expiry and the
// next TTL sweep.
package mongostore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/webseed/pkg/session"
)

const DefaultCollection = "sessions"

var ErrIndexCreation = errors.New("mongostore: failed to create ttl index")

type document struct {
	ID      string    `bson:"_id"`
	Session string    `bson:"session"`
	Expires time.Time `bson:"expires"`
}

// Store implements session.Store on a MongoDB collection.
type Store struct {
	coll *mongo.Collection
	now  func() time.Time
}

type Option func(*config)

type config struct {
	collection string
}

// WithCollection overrides the collection name.
func WithCollection(name string) Option {
	return func(o *config) {
		if name != "" {
			o.collection = name
		}
	}
}

func New(db *mongo.Database, opts ...Option) *Store {
	o := config{collection: DefaultCollection}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{coll: db.Collection(o.collection), now: time.Now}
}

// EnsureIndexes creates the TTL index on expires. It is safe to call on
// every start.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_ttl"),
	})
	if err != nil {
		return errors.Join(ErrIndexCreation, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (session.Record, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.D{
		{Key: "_id", Value: id},
		{Key: "expires", Value: bson.D{{Key: "$gt", Value: s.now()}}},
	}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return session.Record{}, session.ErrSessionNotFound
	}
	if err != nil {
		return session.Record{}, err
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(doc.Session), &data); err != nil {
		return session.Record{}, err
	}

	return session.Record{ID: doc.ID, Data: data, Expires: doc.Expires}, nil
}

func (s *Store) Set(ctx context.Context, rec session.Record) error {
	if rec.ID == "" {
		return session.ErrInvalidSession
	}

	data := rec.Data
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	_, err = s.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: rec.ID}},
		document{ID: rec.ID, Session: string(raw), Expires: rec.Expires},
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *Store) Touch(ctx context.Context, id string, expires time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: id},
			{Key: "expires", Value: bson.D{{Key: "$gt", Value: s.now()}}},
		},
		bson.D{{Key: "$set", Value: bson.D{{Key: "expires", Value: expires}}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

func (s *Store) Destroy(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	return err
}
