package connections

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/pkg/errors"
	"github.com/xrpscan/ledgerlens/config"
	"github.com/xrpscan/ledgerlens/logger"
	"github.com/xrpscan/ledgerlens/models"
)

const processedDateLayout = "2006-01-02T15:04:05.000Z"

var clickHouseSchema = []string{
	`CREATE TABLE IF NOT EXISTS balance_changes (
		tx_hash      String,
		ledger_index UInt32,
		close_time   DateTime64(3, 'UTC'),
		tx_type      LowCardinality(String),
		account      String,
		currency     LowCardinality(String),
		issuer       String,
		value        Decimal(38, 18)
	) ENGINE = ReplacingMergeTree
	ORDER BY (account, tx_hash, currency, issuer)`,
	`CREATE TABLE IF NOT EXISTS trace_steps (
		tx_hash      String,
		address      String,
		amount       String,
		currency     LowCardinality(String),
		balance      Nullable(String),
		balance_usd  Nullable(Float64),
		next_tx_hash String,
		traced_at    DateTime64(3, 'UTC')
	) ENGINE = ReplacingMergeTree(traced_at)
	ORDER BY tx_hash`,
}

// BalanceChangeRow is one party's balance change in a processed transaction.
type BalanceChangeRow struct {
	TxHash      string
	LedgerIndex uint32
	CloseTime   time.Time
	TxType      string
	Account     string
	Currency    string
	Issuer      string
	Value       string
}

// TraceStepRow is one hop resolved by the funds tracer.
type TraceStepRow struct {
	TxHash     string
	Address    string
	Amount     string
	Currency   string
	Balance    *string
	BalanceUSD *float64
	NextTxHash string
	TracedAt   time.Time
}

// ClickHouseBatchWriter handles batched writes to ClickHouse
type ClickHouseBatchWriter struct {
	conn         driver.Conn
	batchSize    int
	batchTimeout time.Duration
	changeBatch  []BalanceChangeRow
	stepBatch    []TraceStepRow
	mu           sync.Mutex
	flushTicker  *time.Ticker
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

// ClickHouseArchive stores processed balance changes and trace steps.
type ClickHouseArchive struct {
	conn   driver.Conn
	writer *ClickHouseBatchWriter
}

// NewClickHouseArchiveFromEnv connects, creates the tables when missing and
// starts the batch writer.
func NewClickHouseArchiveFromEnv(ctx context.Context) (*ClickHouseArchive, error) {
	host := config.EnvClickHouseHost()
	port := config.EnvClickHousePort()
	database := config.EnvClickHouseDatabase()

	logger.Log.Info().
		Str("host", host).
		Int("port", port).
		Str("database", database).
		Msg("Initializing ClickHouse connection")

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", host, port)},
		Auth: clickhouse.Auth{
			Database: database,
			Username: config.EnvClickHouseUser(),
			Password: config.EnvClickHousePassword(),
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "open clickhouse")
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "ping clickhouse")
	}
	for _, ddl := range clickHouseSchema {
		if err := conn.Exec(ctx, ddl); err != nil {
			_ = conn.Close()
			return nil, errors.Wrap(err, "create clickhouse schema")
		}
	}

	writer := NewClickHouseBatchWriter(
		conn,
		config.EnvClickHouseBatchSize(),
		time.Duration(config.EnvClickHouseBatchTimeoutMs())*time.Millisecond,
	)
	writer.Start()

	logger.Log.Info().Msg("ClickHouse connection initialized successfully")
	return &ClickHouseArchive{conn: conn, writer: writer}, nil
}

func (a *ClickHouseArchive) ArchiveTransactions(_ context.Context, account string, txs []models.ProcessedTransaction) error {
	return a.writer.WriteBalanceChanges(balanceChangeRows(txs))
}

func (a *ClickHouseArchive) ArchiveTraceStep(_ context.Context, item models.TracePathItem) error {
	return a.writer.WriteTraceStep(traceStepRow(item, time.Now().UTC()))
}

// Close flushes pending rows and closes the connection.
func (a *ClickHouseArchive) Close() error {
	if a == nil {
		return nil
	}
	a.writer.Stop()
	return closeWithTimeout("ClickHouse", a.conn.Close)
}

// balanceChangeRows flattens the all-party balance changes of txs.
func balanceChangeRows(txs []models.ProcessedTransaction) []BalanceChangeRow {
	var rows []BalanceChangeRow
	for _, tx := range txs {
		var closeTime time.Time
		if t, err := time.Parse(processedDateLayout, tx.Date); err == nil {
			closeTime = t
		}
		for _, c := range tx.AllBalanceChanges {
			rows = append(rows, BalanceChangeRow{
				TxHash:      tx.ID,
				LedgerIndex: uint32(tx.LedgerIndex),
				CloseTime:   closeTime,
				TxType:      tx.Type,
				Account:     c.Account,
				Currency:    c.Currency,
				Issuer:      c.Issuer,
				Value:       c.Value,
			})
		}
	}
	return rows
}

func traceStepRow(item models.TracePathItem, tracedAt time.Time) TraceStepRow {
	return TraceStepRow{
		TxHash:     item.TxID,
		Address:    item.Address,
		Amount:     item.Amount,
		Currency:   item.Currency,
		Balance:    item.Balance,
		BalanceUSD: item.BalanceUSD,
		NextTxHash: item.NextFundingTxID,
		TracedAt:   tracedAt,
	}
}

// NewClickHouseBatchWriter creates a new batch writer
func NewClickHouseBatchWriter(conn driver.Conn, batchSize int, batchTimeout time.Duration) *ClickHouseBatchWriter {
	return &ClickHouseBatchWriter{
		conn:         conn,
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
		changeBatch:  make([]BalanceChangeRow, 0, batchSize),
		stopChan:     make(chan struct{}),
	}
}

// Start starts the batch writer with periodic flushing
func (w *ClickHouseBatchWriter) Start() {
	w.flushTicker = time.NewTicker(w.batchTimeout)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-w.flushTicker.C:
				if err := w.Flush(); err != nil {
					logger.Log.Warn().Err(err).Msg("Periodic ClickHouse flush failed")
				}
			case <-w.stopChan:
				return
			}
		}
	}()
}

// Stop stops the batch writer and flushes remaining data
func (w *ClickHouseBatchWriter) Stop() {
	close(w.stopChan)
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}
	w.wg.Wait()
	if err := w.Flush(); err != nil {
		logger.Log.Warn().Err(err).Msg("Final ClickHouse flush failed")
	}
}

func (w *ClickHouseBatchWriter) WriteBalanceChanges(rows []BalanceChangeRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.changeBatch = append(w.changeBatch, rows...)
	return w.flushIfFullUnlocked()
}

func (w *ClickHouseBatchWriter) WriteTraceStep(row TraceStepRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stepBatch = append(w.stepBatch, row)
	return w.flushIfFullUnlocked()
}

func (w *ClickHouseBatchWriter) flushIfFullUnlocked() error {
	if size := len(w.changeBatch) + len(w.stepBatch); size >= w.batchSize {
		logger.Log.Debug().Int("batch_size", size).Msg("Batch is full, flushing to ClickHouse")
		return w.flushUnlocked()
	}
	return nil
}

// Pending returns the number of rows waiting for the next flush.
func (w *ClickHouseBatchWriter) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.changeBatch) + len(w.stepBatch)
}

// Flush flushes the current batch to ClickHouse
func (w *ClickHouseBatchWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushUnlocked()
}

// flushUnlocked must be called with the lock held. The lock is released
// while the inserts run.
func (w *ClickHouseBatchWriter) flushUnlocked() error {
	if len(w.changeBatch) == 0 && len(w.stepBatch) == 0 {
		return nil
	}

	changes := w.changeBatch
	steps := w.stepBatch
	w.changeBatch = make([]BalanceChangeRow, 0, w.batchSize)
	w.stepBatch = nil

	w.mu.Unlock()
	defer w.mu.Lock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := w.sendChanges(ctx, changes); err != nil {
		return err
	}
	if err := w.sendSteps(ctx, steps); err != nil {
		return err
	}

	logger.Log.Info().
		Int("balance_changes", len(changes)).
		Int("trace_steps", len(steps)).
		Msg("Successfully flushed batch to ClickHouse")
	return nil
}

func (w *ClickHouseBatchWriter) sendChanges(ctx context.Context, rows []BalanceChangeRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO balance_changes")
	if err != nil {
		logger.Log.Error().Err(err).Int("batch_size", len(rows)).Msg("Failed to prepare batch insert")
		return errors.Wrap(err, "prepare balance_changes batch")
	}
	for _, row := range rows {
		// clickhouse-go accepts decimal strings for Decimal columns
		if err := batch.Append(
			row.TxHash,
			row.LedgerIndex,
			row.CloseTime,
			row.TxType,
			row.Account,
			row.Currency,
			row.Issuer,
			row.Value,
		); err != nil {
			logger.Log.Error().Err(err).Str("tx_hash", row.TxHash).Msg("Failed to append row to batch")
			return errors.Wrap(err, "append balance change")
		}
	}
	if err := batch.Send(); err != nil {
		logger.Log.Error().Err(err).Int("batch_size", len(rows)).Msg("Failed to send batch insert")
		return errors.Wrap(err, "send balance_changes batch")
	}
	return nil
}

func (w *ClickHouseBatchWriter) sendSteps(ctx context.Context, rows []TraceStepRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO trace_steps")
	if err != nil {
		logger.Log.Error().Err(err).Int("batch_size", len(rows)).Msg("Failed to prepare batch insert")
		return errors.Wrap(err, "prepare trace_steps batch")
	}
	for _, row := range rows {
		if err := batch.Append(
			row.TxHash,
			row.Address,
			row.Amount,
			row.Currency,
			row.Balance,
			row.BalanceUSD,
			row.NextTxHash,
			row.TracedAt,
		); err != nil {
			logger.Log.Error().Err(err).Str("tx_hash", row.TxHash).Msg("Failed to append row to batch")
			return errors.Wrap(err, "append trace step")
		}
	}
	if err := batch.Send(); err != nil {
		logger.Log.Error().Err(err).Int("batch_size", len(rows)).Msg("Failed to send batch insert")
		return errors.Wrap(err, "send trace_steps batch")
	}
	return nil
}
