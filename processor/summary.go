package processor

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xrpscan/ledgerlens/models"
)

// CurrencyTotal aggregates the credits and debits of one currency.
type CurrencyTotal struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer,omitempty"`
	Credits  string `json:"credits"`
	Debits   string `json:"debits"`
	Net      string `json:"net"`
}

// Summary totals a list of processed transactions.
type Summary struct {
	Count      int             `json:"count"`
	Failed     int             `json:"failed"`
	TotalFees  string          `json:"totalFees"`
	Currencies []CurrencyTotal `json:"currencies"`
}

type totalKey struct {
	currency string
	issuer   string
}

// Summarize computes per-currency totals of the perspective changes.
// Values that do not parse are ignored.
func Summarize(txs []models.ProcessedTransaction) Summary {
	fees := decimal.Zero
	credits := map[totalKey]decimal.Decimal{}
	debits := map[totalKey]decimal.Decimal{}
	var keys []totalKey

	summary := Summary{Count: len(txs)}
	for _, tx := range txs {
		if !tx.Succeeded() {
			summary.Failed++
		}
		if f, err := decimal.NewFromString(tx.Fee); err == nil {
			fees = fees.Add(f)
		}
		for _, c := range tx.BalanceChanges {
			v, err := decimal.NewFromString(c.Value)
			if err != nil || v.IsZero() {
				continue
			}
			k := totalKey{currency: c.Currency, issuer: c.Issuer}
			if _, ok := credits[k]; !ok {
				if _, ok := debits[k]; !ok {
					keys = append(keys, k)
				}
			}
			if v.IsPositive() {
				credits[k] = credits[k].Add(v)
			} else {
				debits[k] = debits[k].Add(v.Neg())
			}
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].currency != keys[j].currency {
			return keys[i].currency < keys[j].currency
		}
		return keys[i].issuer < keys[j].issuer
	})

	summary.TotalFees = fees.String()
	for _, k := range keys {
		summary.Currencies = append(summary.Currencies, CurrencyTotal{
			Currency: k.currency,
			Issuer:   k.issuer,
			Credits:  credits[k].String(),
			Debits:   debits[k].String(),
			Net:      credits[k].Sub(debits[k]).String(),
		})
	}
	return summary
}
