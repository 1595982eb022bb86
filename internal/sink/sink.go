// Package sink delivers decoded signals to storage backends.
package sink

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/canviz/candbc/internal/decode"
)

// Sink consumes decoded signals. Write must not block the decode loop;
// implementations queue internally and drop on overflow.
type Sink interface {
	// Start launches the sink's background processing.
	Start(ctx context.Context)

	// Write queues one decoded signal.
	Write(s decode.DecodedSignal)

	// Close flushes queued signals and releases resources.
	Close() error
}

func combineErrors(errs ...error) (err error) {
	for _, e := range errs {
		switch {
		case e == nil:
			// ignore
		case err == nil:
			err = e
		default:
			err = multierror.Append(err, e)
		}
	}
	return err
}
