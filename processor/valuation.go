package processor

import (
	"github.com/shopspring/decimal"
	"github.com/xrpscan/ledgerlens/models"
)

// ApplyValuation prices the XRP leg of an executed OfferCreate that traded
// XRP against a USD pegged currency. Other transactions are left untouched.
func ApplyValuation(tx *models.ProcessedTransaction) {
	if tx == nil || tx.Type != models.TX_OFFER_CREATE || len(tx.BalanceChanges) != 2 {
		return
	}

	var xrpLeg, usdLeg *models.Balance
	for i := range tx.BalanceChanges {
		c := &tx.BalanceChanges[i]
		if xrpLeg == nil && c.Currency == models.BASE_ASSET {
			xrpLeg = c
		}
		if usdLeg == nil && models.IsUSDLike(c.Currency) {
			usdLeg = c
		}
	}
	if xrpLeg == nil || usdLeg == nil {
		return
	}

	xrpAmount, err1 := decimal.NewFromString(xrpLeg.Value)
	usdAmount, err2 := decimal.NewFromString(usdLeg.Value)
	if err1 != nil || err2 != nil {
		return
	}
	xrpAmount, usdAmount = xrpAmount.Abs(), usdAmount.Abs()
	if !xrpAmount.IsPositive() {
		return
	}

	valueUSD := usdAmount.InexactFloat64()
	price := usdAmount.Div(xrpAmount).InexactFloat64()
	tx.XrpValueUSD = &valueUSD
	tx.XrpPriceAtTx = &price
}
