package httpserver

import (
	"net"
	"strconv"
	"time"
)

// DefaultShutdownTimeout applies when Config.ShutdownTimeout is zero.
const DefaultShutdownTimeout = 5 * time.Second

// Config holds listener and timeout settings. Zero timeouts leave the
// corresponding net/http limit disabled.
type Config struct {
	Host            string        `env:"SERVER_HOST"`                           // Host is the interface to bind; empty means all interfaces.
	Port            int           `env:"SERVER_PORT,required"`                  // Port is the TCP port to listen on; 0 picks a free port.
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`    // ReadTimeout is the maximum duration for reading the entire request.
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`   // WriteTimeout is the maximum duration before timing out writes of the response.
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`   // IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"` // ShutdownTimeout is the time allowed for graceful shutdown.
}

// Addr returns the listen address, host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) shutdownTimeout() time.Duration {
	if c.ShutdownTimeout > 0 {
		return c.ShutdownTimeout
	}
	return DefaultShutdownTimeout
}
