package models

// Number of drops in one XRP - https://xrpl.org/currency-formats.html#xrp-amounts
const DROPS_IN_XRP int64 = 1000000

// Native asset symbol
const BASE_ASSET string = "XRP"

// Placeholder used wherever the ledger has not supplied a value
const NOT_AVAILABLE string = "N/A"

// Successful engine result code
const RESULT_SUCCESS string = "tesSUCCESS"

// OfferCreate tfSell flag - https://xrpl.org/offercreate.html#offercreate-flags
const TF_SELL uint32 = 0x00020000

// Currencies treated as pegged 1:1 to the US dollar for valuation
var USD_LIKE_CURRENCIES = []string{"USD", "RLUSD"}

func IsUSDLike(currency string) bool {
	for _, c := range USD_LIKE_CURRENCIES {
		if c == currency {
			return true
		}
	}
	return false
}

// Transaction types with dedicated handling
const (
	TX_PAYMENT      string = "Payment"
	TX_OFFER_CREATE string = "OfferCreate"
	TX_OFFER_CANCEL string = "OfferCancel"
	TX_TRUST_SET    string = "TrustSet"
	TX_ACCOUNT_SET  string = "AccountSet"
)

// Ledger entry types read from transaction metadata
const (
	ENTRY_ACCOUNT_ROOT string = "AccountRoot"
	ENTRY_RIPPLE_STATE string = "RippleState"
)
