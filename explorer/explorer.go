package explorer

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/xrpscan/ledgerlens/connections"
	"github.com/xrpscan/ledgerlens/logger"
	"github.com/xrpscan/ledgerlens/models"
	"github.com/xrpscan/ledgerlens/processor"
	"github.com/xrpscan/ledgerlens/tracer"
	"golang.org/x/sync/errgroup"
)

const DEFAULT_PAGE_LIMIT = 100

type PriceSource interface {
	Prices(ctx context.Context) models.Prices
}

type LabelProvider interface {
	Snapshot() models.Labels
}

type Config struct {
	Gateway   connections.Gateway
	Prices    PriceSource
	Labels    LabelProvider
	Archivers []Archiver
	PageLimit int
}

// Explorer coordinates the gateway, the normalizer and the tracer for the
// CLI and the HTTP surface.
type Explorer struct {
	gateway   connections.Gateway
	prices    PriceSource
	labels    LabelProvider
	tracer    *tracer.Tracer
	archivers []Archiver
	pageLimit int

	pending sync.WaitGroup
}

func New(cfg Config) *Explorer {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = DEFAULT_PAGE_LIMIT
	}
	return &Explorer{
		gateway:   cfg.Gateway,
		prices:    cfg.Prices,
		labels:    cfg.Labels,
		tracer:    tracer.New(cfg.Gateway),
		archivers: cfg.Archivers,
		pageLimit: cfg.PageLimit,
	}
}

// AccountView is everything shown for an account on first load.
type AccountView struct {
	Info         models.AccountInfo           `json:"info"`
	Prices       models.Prices                `json:"prices"`
	Transactions []models.ProcessedTransaction `json:"transactions"`
	Marker       any                          `json:"marker,omitempty"`
	Summary      processor.Summary            `json:"summary"`
	Portfolio    processor.Portfolio          `json:"portfolio"`
}

// Page is one decoded page of account history.
type Page struct {
	Transactions []models.ProcessedTransaction `json:"transactions"`
	Marker       any                          `json:"marker,omitempty"`
}

func (e *Explorer) labelSnapshot() models.Labels {
	if e.labels == nil {
		return nil
	}
	return e.labels.Snapshot()
}

func (e *Explorer) currentPrices(ctx context.Context) models.Prices {
	if e.prices == nil {
		return models.Prices{}
	}
	return e.prices.Prices(ctx)
}

// FetchAccount reads prices, the account snapshot and the first history
// page concurrently. Any failure fails the whole fetch.
func (e *Explorer) FetchAccount(ctx context.Context, address string) (*AccountView, error) {
	var (
		prices models.Prices
		info   models.AccountInfo
		page   connections.HistoryPage
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		prices = e.currentPrices(egCtx)
		return nil
	})
	eg.Go(func() error {
		var err error
		info, err = e.gateway.AccountSnapshot(egCtx, address)
		return errors.Wrap(err, "account snapshot")
	})
	eg.Go(func() error {
		var err error
		page, err = e.gateway.AccountHistoryPage(egCtx, address, connections.HistoryQuery{Limit: e.pageLimit})
		return errors.Wrap(err, "account history")
	})
	if err := eg.Wait(); err != nil {
		logger.Log.Warn().Str("address", address).Err(err).Msg("Account fetch failed")
		return nil, err
	}

	txs := processor.ProcessBatch(page.Items, address, e.labelSnapshot())
	e.archiveTransactions(ctx, address, txs)

	logger.Log.Info().
		Str("address", address).
		Int("transactions", len(txs)).
		Bool("more", page.Marker != nil).
		Msg("Fetched account")

	return &AccountView{
		Info:         info,
		Prices:       prices,
		Transactions: txs,
		Marker:       page.Marker,
		Summary:      processor.Summarize(txs),
		Portfolio:    processor.ValueAccount(info, prices),
	}, nil
}

// FetchPage reads and decodes the history page after marker.
func (e *Explorer) FetchPage(ctx context.Context, address string, marker any) (*Page, error) {
	page, err := e.gateway.AccountHistoryPage(ctx, address, connections.HistoryQuery{
		Marker: marker,
		Limit:  e.pageLimit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "account history")
	}

	txs := processor.ProcessBatch(page.Items, address, e.labelSnapshot())
	e.archiveTransactions(ctx, address, txs)
	return &Page{Transactions: txs, Marker: page.Marker}, nil
}

// FetchTransaction decodes a single transaction from its initiator's
// perspective, with valuation applied.
func (e *Explorer) FetchTransaction(ctx context.Context, hash string) (*models.ProcessedTransaction, error) {
	raw, err := e.gateway.Transaction(ctx, hash)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch transaction %s", hash)
	}

	env, ok := processor.Open(raw)
	if !ok {
		return nil, errors.Wrapf(processor.ErrMalformedRecord, "transaction %s", hash)
	}

	tx, err := processor.Process(raw, env.Account(), e.labelSnapshot())
	if err != nil {
		return nil, errors.Wrapf(err, "process transaction %s", hash)
	}
	processor.ApplyValuation(tx)

	e.archiveTransactions(ctx, env.Account(), []models.ProcessedTransaction{*tx})
	return tx, nil
}

// Trace resolves one hop of a funds trace using current prices.
func (e *Explorer) Trace(ctx context.Context, txID string) (*models.TracePathItem, error) {
	item, err := e.tracer.TraceStep(ctx, txID, e.currentPrices(ctx))
	if err != nil {
		return nil, err
	}
	e.archiveTraceStep(ctx, *item)
	return item, nil
}

// TracePath follows funds back from txID for at most maxHops hops.
func (e *Explorer) TracePath(ctx context.Context, txID string, maxHops int) ([]models.TracePathItem, error) {
	path, err := e.tracer.TracePath(ctx, txID, e.currentPrices(ctx), maxHops)
	for _, item := range path {
		e.archiveTraceStep(ctx, item)
	}
	return path, err
}

// Close waits for archive writes still in flight.
func (e *Explorer) Close() error {
	e.pending.Wait()
	return nil
}
