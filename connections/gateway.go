package connections

import (
	"context"

	"github.com/pkg/errors"
	"github.com/xrpscan/ledgerlens/models"
)

var (
	// ErrAccountNotFound is returned when the ledger has no root for the address.
	ErrAccountNotFound = errors.New("account not found")
	// ErrTransactionNotFound is returned when no server knows the transaction hash.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrMalformedRequest is returned when the server rejects the request
	// parameters, such as a malformed address.
	ErrMalformedRequest = errors.New("malformed request")
	// ErrConnectivity is returned when no configured server could answer.
	ErrConnectivity = errors.New("xrpl servers unreachable")
)

// HistoryQuery selects one page of account_tx results. Zero values leave the
// corresponding request field unset.
type HistoryQuery struct {
	Marker         any
	Limit          int
	LedgerIndexMax int64
}

// HistoryPage is one page of raw account_tx items, newest first. Marker is
// nil when there are no more pages.
type HistoryPage struct {
	Items  []map[string]any
	Marker any
}

// Gateway is the read-only view of the ledger used by the explorer and the
// funds tracer.
type Gateway interface {
	AccountSnapshot(ctx context.Context, address string) (models.AccountInfo, error)
	AccountHistoryPage(ctx context.Context, address string, q HistoryQuery) (HistoryPage, error)
	Transaction(ctx context.Context, hash string) (map[string]any, error)
}
