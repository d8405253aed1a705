package explorer

import (
	"context"
	"time"

	"github.com/xrpscan/ledgerlens/logger"
	"github.com/xrpscan/ledgerlens/models"
)

const archiveTimeout = 10 * time.Second

// Archiver receives processed results. Archiving is best effort: errors are
// logged and never reach the caller of the explorer.
type Archiver interface {
	ArchiveTransactions(ctx context.Context, account string, txs []models.ProcessedTransaction) error
	ArchiveTraceStep(ctx context.Context, item models.TracePathItem) error
}

func (e *Explorer) archiveTransactions(ctx context.Context, account string, txs []models.ProcessedTransaction) {
	if len(txs) == 0 {
		return
	}
	e.archive(ctx, func(ctx context.Context, a Archiver) error {
		return a.ArchiveTransactions(ctx, account, txs)
	})
}

func (e *Explorer) archiveTraceStep(ctx context.Context, item models.TracePathItem) {
	e.archive(ctx, func(ctx context.Context, a Archiver) error {
		return a.ArchiveTraceStep(ctx, item)
	})
}

// archive runs fn against every archiver in the background. The writes
// outlive the request that produced them.
func (e *Explorer) archive(ctx context.Context, fn func(context.Context, Archiver) error) {
	for _, a := range e.archivers {
		e.pending.Add(1)
		go func(a Archiver) {
			defer e.pending.Done()

			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
			defer cancel()

			if err := fn(ctx, a); err != nil {
				logger.Log.Warn().Err(err).Msgf("Archive write failed (%T)", a)
			}
		}(a)
	}
}
