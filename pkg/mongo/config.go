package mongo

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config describes how to reach the MongoDB server backing the application.
type Config struct {
	Host            string        `env:"DB_HOST,required"`                        // Host is the MongoDB server host name or address.
	Port            int           `env:"DB_PORT,required"`                        // Port is the MongoDB server port.
	Name            string        `env:"DB_NAME,required"`                        // Name is the database used by the application.
	ConnectTimeout  time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"10s"`     // ConnectTimeout bounds the initial connect and ping.
	MaxPoolSize     uint64        `env:"DB_MAX_POOL_SIZE" envDefault:"100"`       // MaxPoolSize is the maximum number of pooled connections.
	MinPoolSize     uint64        `env:"DB_MIN_POOL_SIZE" envDefault:"0"`         // MinPoolSize is the minimum number of pooled connections.
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"300s"` // MaxConnIdleTime is how long an idle pooled connection is kept.
}

// URI returns the connection string, mongodb://host:port/name.
func (c Config) URI() string {
	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	return u.String()
}
