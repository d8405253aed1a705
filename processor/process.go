package processor

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xrpscan/ledgerlens/balances"
	"github.com/xrpscan/ledgerlens/logger"
	"github.com/xrpscan/ledgerlens/models"
	"github.com/xrpscan/xrpl-go"
)

// Residual XRP below this after removing the fee is treated as zero
var feeEpsilon = decimal.New(1, -9)

const isoMillis = "2006-01-02T15:04:05.000Z"

// Process decodes a raw transaction item into a ProcessedTransaction seen
// from perspective. Labels is a read-only snapshot of well-known names and
// may be nil.
//
// ErrMalformedRecord is returned when the item cannot be decoded and
// ErrNoChanges when the transaction had no effect on perspective.
func Process(item map[string]any, perspective string, labels models.Labels) (*models.ProcessedTransaction, error) {
	rec, err := unwrap(item)
	if err != nil {
		return nil, err
	}

	feeDrops := decimal.Zero
	if s, ok := rec.Tx["Fee"].(string); ok && s != "" {
		feeDrops, err = decimal.NewFromString(s)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedRecord, "invalid Fee %q", s)
		}
	}
	fee := feeDrops.Shift(-6)
	isSender := perspective != "" && rec.Account() == perspective

	changes := balances.ForAccount(rec.meta, perspective)
	allChanges := balances.AllParties(rec.meta)

	if len(changes) == 0 {
		if fee.IsZero() || !isSender {
			return nil, ErrNoChanges
		}
		changes = append(changes, models.Balance{Currency: models.BASE_ASSET, Value: fee.Neg().String()})
	}

	if isSender && !fee.IsZero() {
		changes = excludeFee(changes, fee)
	}

	detailsKey, detailsParams := resolveDetails(rec, perspective, changes, labels)

	raw, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return nil, errors.Wrap(ErrMalformedRecord, err.Error())
	}

	return &models.ProcessedTransaction{
		ID:                rec.Hash,
		Date:              formatCloseTime(rec),
		Type:              rec.Type(),
		DetailsKey:        detailsKey,
		DetailsParams:     detailsParams,
		Fee:               fee.String(),
		BalanceChanges:    changes,
		AllBalanceChanges: allChanges,
		Result:            rec.result(),
		LedgerIndex:       rec.LedgerIndex,
		RawData:           string(raw),
	}, nil
}

// excludeFee adds the fee back to the sender's XRP delta so the fee is not
// reported twice. An entry left at zero was fee only and is dropped.
func excludeFee(changes []models.Balance, fee decimal.Decimal) []models.Balance {
	for i, c := range changes {
		if c.Currency != models.BASE_ASSET || c.Issuer != "" {
			continue
		}
		current, err := decimal.NewFromString(c.Value)
		if err != nil {
			return changes
		}
		adjusted := current.Add(fee)
		if adjusted.Abs().LessThan(feeEpsilon) {
			return append(changes[:i:i], changes[i+1:]...)
		}
		changes[i].Value = adjusted.String()
		return changes
	}
	return changes
}

func formatCloseTime(rec record) string {
	closeTime, ok := rec.closeTime()
	if !ok || closeTime == 0 {
		return models.NOT_AVAILABLE
	}
	return time.Unix(xrpl.RippleTimeToUnixTime(closeTime), 0).UTC().Format(isoMillis)
}

// ProcessBatch decodes items from perspective, dropping the ones that fail
// or had no effect. One bad record never aborts the batch.
func ProcessBatch(items []map[string]any, perspective string, labels models.Labels) []models.ProcessedTransaction {
	result := make([]models.ProcessedTransaction, 0, len(items))
	for _, item := range items {
		tx, err := Process(item, perspective, labels)
		if err != nil {
			if !errors.Is(err, ErrNoChanges) {
				logger.Log.Debug().Err(err).Str("account", perspective).Msg("Skipping undecodable transaction")
			}
			continue
		}
		ApplyValuation(tx)
		result = append(result, *tx)
	}
	return result
}
