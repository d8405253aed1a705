package tracer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xrpscan/ledgerlens/connections"
	"github.com/xrpscan/ledgerlens/logger"
	"github.com/xrpscan/ledgerlens/models"
	"github.com/xrpscan/ledgerlens/processor"
)

// HISTORY_WINDOW is the number of earlier transactions searched for the
// payment that funded a sender.
const HISTORY_WINDOW = 50

// ErrUnsupportedTraceTarget is returned when the traced transaction is not a Payment.
var ErrUnsupportedTraceTarget = errors.New("only payments can be traced")

// Tracer follows funds backwards one payment at a time.
type Tracer struct {
	gateway connections.Gateway
}

func New(gateway connections.Gateway) *Tracer {
	return &Tracer{gateway: gateway}
}

// TraceStep resolves one hop: who sent txID, how much, and which earlier
// payment into the sender probably funded it. NextFundingTxID is empty when
// no such payment is found in the sender's recent history.
func (t *Tracer) TraceStep(ctx context.Context, txID string, prices models.Prices) (*models.TracePathItem, error) {
	raw, err := t.gateway.Transaction(ctx, txID)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch transaction %s", txID)
	}

	env, ok := processor.Open(raw)
	if !ok {
		return nil, errors.Wrapf(processor.ErrMalformedRecord, "transaction %s", txID)
	}
	if env.Type() != models.TX_PAYMENT {
		return nil, errors.Wrapf(ErrUnsupportedTraceTarget, "%s is %s", txID, env.Type())
	}

	sender := env.Account()
	amount, currency := models.DecodeAmount(env.Tx["Amount"])

	item := &models.TracePathItem{
		Address:  sender,
		Amount:   amount,
		Currency: currency,
		TxID:     txID,
	}
	t.attachBalance(ctx, item, prices)

	if env.LedgerIndex <= 1 {
		logger.Log.Debug().Str("tx_hash", txID).Msg("Traced transaction has no usable ledger index")
		return item, nil
	}

	page, err := t.gateway.AccountHistoryPage(ctx, sender, connections.HistoryQuery{
		Limit:          HISTORY_WINDOW,
		LedgerIndexMax: env.LedgerIndex - 1,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetch history of %s", sender)
	}

	if next, ok := fundingPayment(page.Items, sender, env.LedgerIndex); ok {
		item.NextFundingTxID = next
	}
	return item, nil
}

// attachBalance fills in the sender's current XRP balance. Failure leaves the
// balance fields unset.
func (t *Tracer) attachBalance(ctx context.Context, item *models.TracePathItem, prices models.Prices) {
	info, err := t.gateway.AccountSnapshot(ctx, item.Address)
	if err != nil {
		logger.Log.Warn().Str("address", item.Address).Err(err).Msg("Could not read sender balance")
		return
	}
	balance, ok := info.XRPBalance()
	if !ok {
		return
	}
	item.Balance = &balance

	price := prices.XRP()
	if price <= 0 {
		return
	}
	value, err := decimal.NewFromString(balance)
	if err != nil {
		return
	}
	usd := value.Mul(decimal.NewFromFloat(price)).InexactFloat64()
	item.BalanceUSD = &usd
}

// fundingPayment returns the hash of the first validated payment into
// sender from another account, taken from items ordered newest first.
func fundingPayment(items []map[string]any, sender string, before int64) (string, bool) {
	for _, item := range items {
		env, ok := processor.Open(item)
		if !ok || !env.Validated {
			continue
		}
		if env.Type() != models.TX_PAYMENT {
			continue
		}
		if env.Destination() != sender || env.Account() == sender {
			continue
		}
		if env.LedgerIndex >= before || env.Hash == "" {
			continue
		}
		return env.Hash, true
	}
	return "", false
}

// TracePath follows NextFundingTxID from txID for at most maxHops steps and
// returns the hops furthest first, so the last item is the traced
// transaction. It stops early at a hop without a funding payment or at a
// transaction already on the path. When a later hop fails the hops resolved
// so far are returned with the error.
func (t *Tracer) TracePath(ctx context.Context, txID string, prices models.Prices, maxHops int) ([]models.TracePathItem, error) {
	var path []models.TracePathItem
	seen := make(map[string]bool)

	next := txID
	for hop := 0; hop < maxHops && next != "" && !seen[next]; hop++ {
		seen[next] = true

		item, err := t.TraceStep(ctx, next, prices)
		if err != nil {
			return reversed(path), err
		}
		path = append(path, *item)
		next = item.NextFundingTxID
	}
	return reversed(path), nil
}

func reversed(path []models.TracePathItem) []models.TracePathItem {
	out := make([]models.TracePathItem, len(path))
	for i, item := range path {
		out[len(path)-1-i] = item
	}
	return out
}
