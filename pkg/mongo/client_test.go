package mongo_test

import (
	"context"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/webseed/pkg/mongo"
)

func TestConfigURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  mongo.Config
		want string
	}{
		{"host name", mongo.Config{Host: "localhost", Port: 27017, Name: "seed"}, "mongodb://localhost:27017/seed"},
		{"ipv4", mongo.Config{Host: "10.0.0.5", Port: 27018, Name: "app"}, "mongodb://10.0.0.5:27018/app"},
		{"ipv6", mongo.Config{Host: "::1", Port: 27017, Name: "app"}, "mongodb://[::1]:27017/app"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cfg.URI())
		})
	}
}

func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()

	cfg := mongo.Config{
		Host:           "127.0.0.1",
		Port:           closedPort(t),
		Name:           "seed",
		ConnectTimeout: 300 * time.Millisecond,
		MaxPoolSize:    1,
	}

	start := time.Now()
	client, err := mongo.Connect(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, client)
	assert.ErrorIs(t, err, mongo.ErrFailedToConnectToMongo)
	assert.Less(t, time.Since(start), 5*time.Second, "connect must not retry")
}

// TestConnect_Live runs only when MONGODB_TEST_HOST/MONGODB_TEST_PORT point at a server.
func TestConnect_Live(t *testing.T) {
	host, port := os.Getenv("MONGODB_TEST_HOST"), os.Getenv("MONGODB_TEST_PORT")
	if host == "" || port == "" {
		t.Skip("MONGODB_TEST_HOST/MONGODB_TEST_PORT not set")
	}
	p, err := strconv.Atoi(port)
	require.NoError(t, err)

	cfg := mongo.Config{Host: host, Port: p, Name: "webseed_test", ConnectTimeout: 5 * time.Second, MaxPoolSize: 5}
	client, err := mongo.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	assert.NoError(t, mongo.Healthcheck(client)(context.Background()))
}
