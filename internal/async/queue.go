package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/tbcparser/internal/ingest"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one receipt file waiting to be parsed and stored.
type Job struct {
	Path        string
	Owner       ingest.Owner
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Processor handles a single job. ingest.FSIngestor satisfies it.
type Processor interface {
	IngestPath(ctx context.Context, owner ingest.Owner, path string) (ingest.Result, error)
}
