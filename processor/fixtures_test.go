package processor

const (
	alice  = "rPEPPER7kfTD9w2To4CQk6UCfuHM9c6GDY"
	bob    = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	carol  = "rf1BiGeXwwQoi8Z2ueFYTEXSwuJYfV2Jpn"
	issuer = "rhub8VRN55s94qWKDv6jmDy1pUykJzF3wq"

	txHash = "E3FE6EA3D48F0C2B639448020EA4F03D4F4F8FFDB243A852A0F59177921B4879"
)

func rootNode(account, before, after string) map[string]any {
	return map[string]any{"ModifiedNode": map[string]any{
		"LedgerEntryType": "AccountRoot",
		"FinalFields":     map[string]any{"Account": account, "Balance": after, "Sequence": float64(7)},
		"PreviousFields":  map[string]any{"Balance": before},
	}}
}

func lineNode(currency, low, high, before, after string) map[string]any {
	return map[string]any{"ModifiedNode": map[string]any{
		"LedgerEntryType": "RippleState",
		"FinalFields": map[string]any{
			"Balance":   map[string]any{"currency": currency, "issuer": "rrrrrrrrrrrrrrrrrrrrBZbvji", "value": after},
			"LowLimit":  map[string]any{"currency": currency, "issuer": low, "value": "1000000"},
			"HighLimit": map[string]any{"currency": currency, "issuer": high, "value": "0"},
		},
		"PreviousFields": map[string]any{
			"Balance": map[string]any{"currency": currency, "issuer": "rrrrrrrrrrrrrrrrrrrrBZbvji", "value": before},
		},
	}}
}

func meta(nodes ...map[string]any) map[string]any {
	affected := make([]any, 0, len(nodes))
	for _, n := range nodes {
		affected = append(affected, n)
	}
	return map[string]any{
		"AffectedNodes":     affected,
		"TransactionIndex":  float64(3),
		"TransactionResult": "tesSUCCESS",
	}
}

// accountTxItem wraps a transaction the way account_tx returns it.
func accountTxItem(tx map[string]any, m map[string]any) map[string]any {
	if _, ok := tx["hash"]; !ok {
		tx["hash"] = txHash
	}
	if _, ok := tx["ledger_index"]; !ok {
		tx["ledger_index"] = float64(80000000)
	}
	if _, ok := tx["date"]; !ok {
		tx["date"] = float64(700000000)
	}
	return map[string]any{"tx": tx, "meta": m, "validated": true}
}

// xrpPayment is a 10 XRP payment from alice to bob with a 12 drop fee.
func xrpPayment() map[string]any {
	return accountTxItem(
		map[string]any{
			"TransactionType": "Payment",
			"Account":         alice,
			"Destination":     bob,
			"Amount":          "10000000",
			"Fee":             "12",
		},
		meta(
			rootNode(alice, "50000000", "39999988"),
			rootNode(bob, "20000000", "30000000"),
		),
	)
}

// filledOffer is an OfferCreate where alice sold 100 XRP for 50 USD.
func filledOffer(currency string) map[string]any {
	return accountTxItem(
		map[string]any{
			"TransactionType": "OfferCreate",
			"Account":         alice,
			"Fee":             "12",
			"Flags":           float64(0),
			"TakerGets":       "100000000",
			"TakerPays":       map[string]any{"currency": currency, "issuer": issuer, "value": "50"},
		},
		meta(
			rootNode(alice, "1000000000", "899999988"),
			rootNode(carol, "500000000", "600000000"),
			lineNode(currency, alice, issuer, "0", "50"),
			lineNode(currency, carol, issuer, "80", "30"),
		),
	)
}

// restingOffer is an OfferCreate that did not cross and only burned the fee.
func restingOffer(flags float64) map[string]any {
	return accountTxItem(
		map[string]any{
			"TransactionType": "OfferCreate",
			"Account":         alice,
			"Fee":             "10",
			"Flags":           flags,
			"TakerGets":       "100000000",
			"TakerPays":       map[string]any{"currency": "USD", "issuer": issuer, "value": "50"},
		},
		meta(rootNode(alice, "1000000000", "999999990")),
	)
}
