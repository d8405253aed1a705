package processor

// Envelope exposes the transaction fields of a raw item in any of the
// shapes accepted by Process, without requiring metadata.
type Envelope struct {
	Tx          map[string]any
	Hash        string
	LedgerIndex int64
	Validated   bool
}

// Open unwraps item. ok is false when no transaction type can be found.
func Open(item map[string]any) (Envelope, bool) {
	if item == nil {
		return Envelope{}, false
	}
	tx, ok := item["tx"].(map[string]any)
	if !ok {
		tx, ok = item["tx_json"].(map[string]any)
	}
	if !ok {
		tx = item
	}
	if t, _ := tx["TransactionType"].(string); t == "" {
		return Envelope{}, false
	}

	env := Envelope{Tx: tx}
	env.Hash = stringField("hash", tx, item)
	env.LedgerIndex, _ = int64Field("ledger_index", tx, item)
	env.Validated = boolField("validated", item, tx)
	return env, true
}

func (e Envelope) Type() string {
	s, _ := e.Tx["TransactionType"].(string)
	return s
}

func (e Envelope) Account() string {
	s, _ := e.Tx["Account"].(string)
	return s
}

func (e Envelope) Destination() string {
	s, _ := e.Tx["Destination"].(string)
	return s
}
