// Package mongo connects to the MongoDB server that backs the application.
//
// Connect builds a pooled *mongo.Client from a Config (populated from DB_HOST,
// DB_PORT, DB_NAME and friends) and pings it once. Startup is fail-fast: a
// failed ping is returned as ErrFailedToConnectToMongo instead of being
// retried, so the caller never starts serving without a database.
//
// # Usage
//
//	client, err := mongo.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Disconnect(context.Background())
//
//	ready := mongo.Healthcheck(client)
//
// See https://pkg.go.dev/go.mongodb.org/mongo-driver/v2 for the driver itself.
package mongo
