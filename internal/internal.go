package internal

import (
	"context"
	"io"

	log "github.com/sirupsen/logrus"
)

// VersionString is reported by the CLI and sent nowhere else.
const VersionString = "0.3.0"

// CloseAndLogIfError closes closer and logs the message if it errored.
// Used on response bodies where a close failure is not actionable.
func CloseAndLogIfError(ctx context.Context, closer io.Closer, message string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		log.WithContext(ctx).WithError(err).Error(message)
	}
}
