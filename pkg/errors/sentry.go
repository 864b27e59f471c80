package errors

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry configures the Sentry SDK for the service. A missing DSN
// disables reporting without error.
func InitSentry(dsn, serviceName, version, environment string) error {
	if dsn == "" {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          fmt.Sprintf("%s@%s", serviceName, version),
		TracesSampleRate: 0.2,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("sentry init failed: %w", err)
	}
	return nil
}

// Flush waits for buffered events to be delivered before shutdown.
func Flush() {
	sentry.Flush(2 * time.Second)
}
