package metrics

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisHook implements redis.Hook to collect metrics on all Redis operations
type RedisHook struct{}

var _ redis.Hook = (*RedisHook)(nil)

// DialHook is called when establishing a new Redis connection
func (h *RedisHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			RedisConnectionErrors.Inc()
		}
		return conn, err
	}
}

// ProcessHook is called for every Redis command execution
func (h *RedisHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)

		// a missing key is a normal outcome
		opErr := err
		if errors.Is(err, redis.Nil) {
			opErr = nil
		}

		RedisOpsTotal.WithLabelValues(cmd.Name(), status(opErr)).Inc()
		RedisOpDuration.WithLabelValues(cmd.Name()).Observe(time.Since(start).Seconds())

		return err
	}
}

// ProcessPipelineHook is called for pipelined Redis commands
func (h *RedisHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)

		opErr := err
		if errors.Is(err, redis.Nil) {
			opErr = nil
		}

		// Track pipeline as a single operation
		RedisOpsTotal.WithLabelValues("pipeline", status(opErr)).Inc()
		RedisOpDuration.WithLabelValues("pipeline").Observe(time.Since(start).Seconds())

		return err
	}
}
