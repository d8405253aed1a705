package processor

import (
	"github.com/shopspring/decimal"
	"github.com/xrpscan/ledgerlens/models"
)

// BalanceValue is one holding with its USD value. ValueUSD is nil when the
// currency has no known price. Obligations are valued by magnitude.
type BalanceValue struct {
	models.Balance
	ValueUSD *string `json:"valueUSD,omitempty"`
}

// Portfolio is the USD valuation of an account snapshot. TotalUSD sums the
// priced holdings only; obligations (negative balances) are left out.
type Portfolio struct {
	Balances []BalanceValue `json:"balances"`
	TotalUSD string         `json:"totalUSD"`
}

// ValueAccount prices every balance of info with prices.
func ValueAccount(info models.AccountInfo, prices models.Prices) Portfolio {
	total := decimal.Zero
	portfolio := Portfolio{Balances: make([]BalanceValue, 0, len(info.Balances))}

	for _, b := range info.Balances {
		entry := BalanceValue{Balance: b}

		price := prices[b.Currency]
		amount, err := decimal.NewFromString(b.Value)
		if err == nil && price > 0 {
			value := amount.Abs().Mul(decimal.NewFromFloat(price))
			s := value.String()
			entry.ValueUSD = &s
			if !amount.IsNegative() {
				total = total.Add(value)
			}
		}
		portfolio.Balances = append(portfolio.Balances, entry)
	}

	portfolio.TotalUSD = total.String()
	return portfolio
}
