package balances

import (
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xrpscan/ledgerlens/logger"
	"github.com/xrpscan/ledgerlens/models"
)

// AllParties returns the balance change of every account touched by the
// transaction. Each trust line yields two mirrored entries, one per side,
// whose values sum to zero.
func AllParties(meta map[string]any) []models.DetailedBalanceChange {
	var result []models.DetailedBalanceChange

	for _, node := range ParseAffectedNodes(meta) {
		switch node.LedgerEntryType {

		case models.ENTRY_ACCOUNT_ROOT:
			if change, ok := accountRootChange(node); ok {
				result = append(result, change)
			}

		case models.ENTRY_RIPPLE_STATE:
			result = append(result, trustLineChanges(node)...)
		}
	}

	return result
}

// ForAccount returns the signed balance changes experienced by address.
// Trust line changes carry the counterparty as issuer.
func ForAccount(meta map[string]any, address string) []models.Balance {
	var result []models.Balance
	if address == "" {
		return result
	}

	for _, change := range AllParties(meta) {
		if change.Account != address {
			continue
		}
		result = append(result, models.Balance{
			Currency: change.Currency,
			Value:    change.Value,
			Issuer:   change.Issuer,
		})
	}
	return result
}

// accountRootChange computes the XRP delta of an AccountRoot entry. Drops
// are subtracted as big integers since balances exceed float precision.
func accountRootChange(node AffectedNode) (models.DetailedBalanceChange, bool) {
	account, _ := node.fields()["Account"].(string)
	if account == "" && node.PreviousFields != nil {
		account, _ = node.PreviousFields["Account"].(string)
	}
	if account == "" {
		return models.DetailedBalanceChange{}, false
	}

	beforeStr, afterStr, ok := node.balanceStrings(dropsBalance)
	if !ok {
		return models.DetailedBalanceChange{}, false
	}
	before, ok1 := new(big.Int).SetString(beforeStr, 10)
	after, ok2 := new(big.Int).SetString(afterStr, 10)
	if !ok1 || !ok2 {
		logger.Log.Debug().
			Str("account", account).
			Str("before", beforeStr).
			Str("after", afterStr).
			Msg("Skipping AccountRoot with unparseable balance")
		return models.DetailedBalanceChange{}, false
	}

	delta := new(big.Int).Sub(after, before)
	if delta.Sign() == 0 {
		return models.DetailedBalanceChange{}, false
	}

	return models.DetailedBalanceChange{
		Account:  account,
		Currency: models.BASE_ASSET,
		Value:    decimal.NewFromBigInt(delta, -6).String(),
	}, true
}

// trustLineChanges computes the mirrored deltas of a RippleState entry.
// The stored balance is from the low account's point of view, so the high
// account sees the negated delta.
func trustLineChanges(node AffectedNode) []models.DetailedBalanceChange {
	fields := node.fields()
	low := limitIssuer(fields, "LowLimit")
	high := limitIssuer(fields, "HighLimit")
	if low == "" || high == "" {
		return nil
	}

	beforeStr, afterStr, ok := node.balanceStrings(trustLineBalance)
	if !ok {
		return nil
	}
	before, err1 := strconv.ParseFloat(beforeStr, 64)
	after, err2 := strconv.ParseFloat(afterStr, 64)
	if err1 != nil || err2 != nil {
		logger.Log.Debug().
			Str("low", low).
			Str("high", high).
			Str("before", beforeStr).
			Str("after", afterStr).
			Msg("Skipping RippleState with unparseable balance")
		return nil
	}

	delta := after - before
	if delta == 0 {
		return nil
	}

	currency := models.DecodeCurrencyCode(trustLineCurrency(fields))
	return []models.DetailedBalanceChange{
		{
			Account:  low,
			Currency: currency,
			Value:    formatFloat(delta),
			Issuer:   high,
		},
		{
			Account:  high,
			Currency: currency,
			Value:    formatFloat(-delta),
			Issuer:   low,
		},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
