package models

// Balance is either a holding or a signed delta of a single currency.
// Issuer is empty for XRP and names the trust line counterparty otherwise.
type Balance struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
	Issuer   string `json:"issuer,omitempty"`
}

// DetailedBalanceChange is a Balance attributed to the account that
// experienced it. Used when reporting the changes of every party.
type DetailedBalanceChange struct {
	Account  string `json:"account"`
	Currency string `json:"currency"`
	Value    string `json:"value"`
	Issuer   string `json:"issuer,omitempty"`
}

// ProcessedTransaction is a display-ready transaction record computed from
// the point of view of one account.
type ProcessedTransaction struct {
	ID                string                  `json:"id"`
	Date              string                  `json:"date"`
	Type              string                  `json:"type"`
	DetailsKey        string                  `json:"detailsKey"`
	DetailsParams     map[string]any          `json:"detailsParams"`
	Fee               string                  `json:"fee"`
	BalanceChanges    []Balance               `json:"balanceChanges"`
	AllBalanceChanges []DetailedBalanceChange `json:"allBalanceChanges,omitempty"`
	Result            string                  `json:"result"`
	LedgerIndex       int64                   `json:"ledgerIndex,omitempty"`
	RawData           string                  `json:"rawData"`
	XrpPriceAtTx      *float64                `json:"xrpPriceAtTx,omitempty"`
	XrpValueUSD       *float64                `json:"xrpValueUSD,omitempty"`
}

// Succeeded reports whether the ledger applied the transaction.
func (tx *ProcessedTransaction) Succeeded() bool {
	return tx.Result == RESULT_SUCCESS
}

// TracePathItem is one backward hop of a funds trace. An empty
// NextFundingTxID terminates the chain.
type TracePathItem struct {
	Address         string   `json:"address"`
	Amount          string   `json:"amount"`
	Currency        string   `json:"currency"`
	TxID            string   `json:"txId"`
	Balance         *string  `json:"balance,omitempty"`
	BalanceUSD      *float64 `json:"balanceUSD,omitempty"`
	NextFundingTxID string   `json:"nextFundingTxId,omitempty"`
}

// HasNext reports whether another hop can be traced from this one.
func (item *TracePathItem) HasNext() bool {
	return item.NextFundingTxID != ""
}

// AccountInfo is a point-in-time snapshot of an account's holdings.
type AccountInfo struct {
	Address  string    `json:"address"`
	Balances []Balance `json:"balances"`
}

// XRPBalance returns the native balance of the snapshot, if present.
func (a *AccountInfo) XRPBalance() (string, bool) {
	for _, b := range a.Balances {
		if b.Currency == BASE_ASSET && b.Issuer == "" {
			return b.Value, true
		}
	}
	return "", false
}

// Prices maps a currency code to its USD price.
type Prices map[string]float64

// XRP returns the XRP/USD price, zero when unknown.
func (p Prices) XRP() float64 {
	if p == nil {
		return 0
	}
	return p[BASE_ASSET]
}

// Labels maps well-known addresses to human readable names.
type Labels map[string]string

// Lookup is safe to call on a nil snapshot.
func (l Labels) Lookup(address string) (string, bool) {
	if l == nil || address == "" {
		return "", false
	}
	label, ok := l[address]
	return label, ok && label != ""
}
