package app

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	mongooptions "go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/webseed/internal/metrics"
	"github.com/dmitrymomot/webseed/pkg/mongo"
	"github.com/dmitrymomot/webseed/pkg/redis"
	"github.com/dmitrymomot/webseed/pkg/session"
	"github.com/dmitrymomot/webseed/pkg/session/mongostore"
	"github.com/dmitrymomot/webseed/pkg/session/redisstore"
)

// Backend is a connected session backend owned by the App.
type Backend interface {
	// Store returns the session store bound to the connection.
	Store() session.Store
	// Ping checks the connection; used by the readiness probe.
	Ping(ctx context.Context) error
	// Close releases the connection.
	Close(ctx context.Context) error
	// Target describes what was connected to, for logs.
	Target() string
}

// Dialer connects a Backend. It must not retry: a failure is reported once
// and startup stops.
type Dialer func(ctx context.Context, cfg Config) (Backend, error)

// DefaultDialer picks the dialer for cfg.Session.Store.
func DefaultDialer(cfg Config) Dialer {
	switch cfg.Session.Store {
	case StoreRedis:
		return DialRedis
	case StoreMemory:
		return DialMemory
	default:
		return DialMongo
	}
}

type mongoBackend struct {
	client *mongodriver.Client
	store  *mongostore.Store
	target string
}

// DialMongo connects to MongoDB, pings once and ensures the session TTL index.
func DialMongo(ctx context.Context, cfg Config) (Backend, error) {
	client, err := mongo.Connect(ctx, cfg.Mongo, mongooptions.Client().SetMonitor(metrics.MongoMonitor()))
	if err != nil {
		return nil, err
	}

	store := mongostore.New(client.Database(cfg.Mongo.Name), mongostore.WithCollection(cfg.Session.Collection))
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &mongoBackend{client: client, store: store, target: cfg.Mongo.URI()}, nil
}

func (b *mongoBackend) Store() session.Store { return b.store }
func (b *mongoBackend) Target() string       { return b.target }

func (b *mongoBackend) Ping(ctx context.Context) error {
	return mongo.Healthcheck(b.client)(ctx)
}

func (b *mongoBackend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

type redisBackend struct {
	client *goredis.Client
	store  *redisstore.Store
	target string
}

// DialRedis connects to Redis and pings once.
func DialRedis(ctx context.Context, cfg Config) (Backend, error) {
	client, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	client.AddHook(&metrics.RedisHook{})

	return &redisBackend{
		client: client,
		store:  redisstore.New(client),
		target: "redis://" + client.Options().Addr,
	}, nil
}

func (b *redisBackend) Store() session.Store           { return b.store }
func (b *redisBackend) Target() string                 { return b.target }
func (b *redisBackend) Ping(ctx context.Context) error { return redis.Healthcheck(b.client)(ctx) }
func (b *redisBackend) Close(context.Context) error    { return b.client.Close() }

type memoryBackend struct {
	store *session.MemoryStore
}

// DialMemory returns an in-process backend. Sessions are lost on restart;
// meant for development and tests.
func DialMemory(context.Context, Config) (Backend, error) {
	return &memoryBackend{store: session.NewMemoryStore()}, nil
}

func (b *memoryBackend) Store() session.Store        { return b.store }
func (b *memoryBackend) Target() string              { return "memory" }
func (b *memoryBackend) Ping(context.Context) error  { return nil }
func (b *memoryBackend) Close(context.Context) error { return nil }
