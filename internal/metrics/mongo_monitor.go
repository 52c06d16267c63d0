package metrics

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/event"
)

// MongoMonitor returns a command monitor that feeds the MongoDB metrics.
func MongoMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Succeeded: func(_ context.Context, e *event.CommandSucceededEvent) {
			MongoCommandsTotal.WithLabelValues(e.CommandName, "success").Inc()
			MongoCommandDuration.WithLabelValues(e.CommandName).Observe(e.Duration.Seconds())
		},
		Failed: func(_ context.Context, e *event.CommandFailedEvent) {
			MongoCommandsTotal.WithLabelValues(e.CommandName, "error").Inc()
			MongoCommandDuration.WithLabelValues(e.CommandName).Observe(e.Duration.Seconds())
		},
	}
}
