package processor

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xrpscan/ledgerlens/balances"
	"github.com/xrpscan/ledgerlens/models"
)

func TestProcess_PaymentFromSender(t *testing.T) {
	item := xrpPayment()

	raw := balances.ForAccount(item["meta"].(map[string]any), alice)
	require.Len(t, raw, 1)
	assert.Equal(t, "-10.000012", raw[0].Value)

	tx, err := Process(item, alice, nil)
	require.NoError(t, err)

	assert.Equal(t, txHash, tx.ID)
	assert.Equal(t, "Payment", tx.Type)
	assert.Equal(t, "0.000012", tx.Fee)
	assert.Equal(t, []models.Balance{{Currency: "XRP", Value: "-10"}}, tx.BalanceChanges)
	assert.Equal(t, DetailsPaymentTo, tx.DetailsKey)
	assert.Equal(t, map[string]any{"address": bob}, tx.DetailsParams)
	assert.Equal(t, "tesSUCCESS", tx.Result)
	assert.Equal(t, int64(80000000), tx.LedgerIndex)
	assert.Equal(t, "2022-03-07T20:26:40.000Z", tx.Date)
	assert.Len(t, tx.AllBalanceChanges, 2)
	assert.Equal(t, "-10.000012", tx.AllBalanceChanges[0].Value)
}

func TestProcess_PaymentFromReceiver(t *testing.T) {
	tx, err := Process(xrpPayment(), bob, nil)
	require.NoError(t, err)

	assert.Equal(t, []models.Balance{{Currency: "XRP", Value: "10"}}, tx.BalanceChanges)
	assert.Equal(t, "0.000012", tx.Fee)
	assert.Equal(t, DetailsPaymentFrom, tx.DetailsKey)
	assert.Equal(t, map[string]any{"address": alice}, tx.DetailsParams)
}

func TestProcess_PaymentKnownCounterparty(t *testing.T) {
	labels := models.Labels{bob: "Bitstamp", alice: "Alice Exchange"}

	tx, err := Process(xrpPayment(), alice, labels)
	require.NoError(t, err)
	assert.Equal(t, DetailsPaymentToKnown, tx.DetailsKey)
	assert.Equal(t, map[string]any{"label": "Bitstamp", "address": bob}, tx.DetailsParams)

	tx, err = Process(xrpPayment(), bob, labels)
	require.NoError(t, err)
	assert.Equal(t, DetailsPaymentFromKnown, tx.DetailsKey)
	assert.Equal(t, map[string]any{"label": "Alice Exchange", "address": alice}, tx.DetailsParams)
}

func TestProcess_SuppressedForUninvolvedAccount(t *testing.T) {
	tx, err := Process(xrpPayment(), carol, nil)
	assert.Nil(t, tx)
	assert.True(t, errors.Is(err, ErrNoChanges))
}

func TestProcess_FeeOnlyAccountSet(t *testing.T) {
	item := accountTxItem(
		map[string]any{"TransactionType": "AccountSet", "Account": alice, "Fee": "15"},
		meta(rootNode(alice, "1000000", "999985")),
	)

	tx, err := Process(item, alice, nil)
	require.NoError(t, err)
	assert.Empty(t, tx.BalanceChanges)
	assert.Equal(t, "0.000015", tx.Fee)
	assert.Equal(t, DetailsAccountSet, tx.DetailsKey)
	assert.Empty(t, tx.DetailsParams)
}

func TestProcess_FeeSynthesizedWhenMetadataIsSilent(t *testing.T) {
	item := accountTxItem(
		map[string]any{"TransactionType": "AccountSet", "Account": alice, "Fee": "15"},
		meta(),
	)

	tx, err := Process(item, alice, nil)
	require.NoError(t, err)
	assert.Empty(t, tx.BalanceChanges)
	assert.Equal(t, "0.000015", tx.Fee)

	_, err = Process(item, bob, nil)
	assert.True(t, errors.Is(err, ErrNoChanges))
}

func TestProcess_NoFeeNoChanges(t *testing.T) {
	item := accountTxItem(
		map[string]any{"TransactionType": "AccountSet", "Account": alice},
		meta(),
	)
	_, err := Process(item, alice, nil)
	assert.True(t, errors.Is(err, ErrNoChanges))
}

func TestProcess_MalformedRecords(t *testing.T) {
	tests := []struct {
		name string
		item map[string]any
	}{
		{name: "nil", item: nil},
		{name: "no metadata", item: map[string]any{"tx": map[string]any{"TransactionType": "Payment", "Account": alice}}},
		{name: "binary metadata", item: map[string]any{"tx": map[string]any{"TransactionType": "Payment"}, "meta": "201C00000000F8E5"}},
		{name: "no type", item: map[string]any{"tx": map[string]any{"Account": alice}, "meta": meta()}},
		{name: "bad fee", item: accountTxItem(map[string]any{"TransactionType": "Payment", "Account": alice, "Fee": "1x"}, meta())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := Process(tt.item, alice, nil)
			assert.Nil(t, tx)
			assert.True(t, errors.Is(err, ErrMalformedRecord), "got %v", err)
		})
	}
}

func TestProcess_FeeExclusion(t *testing.T) {
	tests := []struct {
		name     string
		before   string
		after    string
		fee      string
		expected []models.Balance
	}{
		{name: "payment", before: "50000000", after: "39999988", fee: "12", expected: []models.Balance{{Currency: "XRP", Value: "-10"}}},
		{name: "fee only", before: "50000000", after: "49999988", fee: "12", expected: []models.Balance{}},
		{name: "sender also received", before: "50000000", after: "50999990", fee: "10", expected: []models.Balance{{Currency: "XRP", Value: "1"}}},
		{name: "sub drop residue kept", before: "50000000", after: "49999987", fee: "12", expected: []models.Balance{{Currency: "XRP", Value: "-0.000001"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := accountTxItem(
				map[string]any{"TransactionType": "Payment", "Account": alice, "Destination": bob, "Fee": tt.fee},
				meta(rootNode(alice, tt.before, tt.after)),
			)
			tx, err := Process(item, alice, nil)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.expected, tx.BalanceChanges)
		})
	}
}

func TestProcess_FeeNotExcludedForReceiver(t *testing.T) {
	// bob did not pay the fee, so his XRP delta is reported as is
	item := accountTxItem(
		map[string]any{"TransactionType": "Payment", "Account": alice, "Destination": bob, "Fee": "12"},
		meta(rootNode(bob, "1000000", "1000012")),
	)
	tx, err := Process(item, bob, nil)
	require.NoError(t, err)
	assert.Equal(t, []models.Balance{{Currency: "XRP", Value: "0.000012"}}, tx.BalanceChanges)
}

func TestProcess_OfferCreateFilled(t *testing.T) {
	tx, err := Process(filledOffer("USD"), alice, nil)
	require.NoError(t, err)

	assert.Equal(t, []models.Balance{
		{Currency: "XRP", Value: "-100"},
		{Currency: "USD", Value: "50", Issuer: issuer},
	}, tx.BalanceChanges)
	assert.Equal(t, DetailsDexOrder, tx.DetailsKey)
	assert.Equal(t, map[string]any{
		"paidAmount":   float64(100),
		"paidCurrency": "XRP",
		"gotAmount":    float64(50),
		"gotCurrency":  "USD",
	}, tx.DetailsParams)
}

func TestProcess_OfferCreatePrefersIssuedDebit(t *testing.T) {
	item := accountTxItem(
		map[string]any{"TransactionType": "OfferCreate", "Account": alice, "Fee": "0"},
		meta(
			rootNode(alice, "10000000", "5000000"),
			lineNode("EUR", alice, issuer, "10", "7"),
			lineNode("USD", alice, issuer, "0", "2"),
		),
	)
	tx, err := Process(item, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, DetailsDexOrder, tx.DetailsKey)
	assert.Equal(t, "EUR", tx.DetailsParams["paidCurrency"])
	assert.Equal(t, float64(3), tx.DetailsParams["paidAmount"])
	assert.Equal(t, "USD", tx.DetailsParams["gotCurrency"])
}

func TestProcess_OfferCreateUnfilled(t *testing.T) {
	tx, err := Process(restingOffer(0), alice, nil)
	require.NoError(t, err)
	assert.Empty(t, tx.BalanceChanges)
	assert.Equal(t, DetailsDexUnfilled, tx.DetailsKey)
	assert.Equal(t, map[string]any{
		"paidAmount":   "100",
		"paidCurrency": "XRP",
		"gotAmount":    "50",
		"gotCurrency":  "USD",
	}, tx.DetailsParams)

	tx, err = Process(restingOffer(float64(models.TF_SELL)), alice, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"paidAmount":   "50",
		"paidCurrency": "USD",
		"gotAmount":    "100",
		"gotCurrency":  "XRP",
	}, tx.DetailsParams)
}

func TestProcess_OfferCancel(t *testing.T) {
	item := accountTxItem(
		map[string]any{"TransactionType": "OfferCancel", "Account": alice, "Fee": "12", "OfferSequence": float64(5)},
		meta(rootNode(alice, "1000000", "999988")),
	)
	tx, err := Process(item, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, DetailsOfferCancel, tx.DetailsKey)
	assert.Empty(t, tx.DetailsParams)
}

func TestProcess_TrustSet(t *testing.T) {
	item := accountTxItem(
		map[string]any{
			"TransactionType": "TrustSet",
			"Account":         alice,
			"Fee":             "12",
			"LimitAmount":     map[string]any{"currency": "524C555344000000000000000000000000000000", "issuer": issuer, "value": "1000"},
		},
		meta(rootNode(alice, "1000000", "999988")),
	)

	tx, err := Process(item, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, DetailsTrustSet, tx.DetailsKey)
	assert.Equal(t, map[string]any{"amount": "1000", "currency": "RLUSD", "address": issuer}, tx.DetailsParams)

	tx, err = Process(item, alice, models.Labels{issuer: "Ripple"})
	require.NoError(t, err)
	assert.Equal(t, DetailsTrustSetKnown, tx.DetailsKey)
	assert.Equal(t, "Ripple", tx.DetailsParams["label"])
}

func TestProcess_UnknownType(t *testing.T) {
	item := accountTxItem(
		map[string]any{"TransactionType": "EscrowCreate", "Account": alice, "Fee": "12"},
		meta(rootNode(alice, "100000000", "89999988")),
	)
	tx, err := Process(item, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, DetailsFallback, tx.DetailsKey)
	assert.Equal(t, map[string]any{"type": "EscrowCreate"}, tx.DetailsParams)
	assert.Equal(t, []models.Balance{{Currency: "XRP", Value: "-10"}}, tx.BalanceChanges)
}

func TestProcess_DateSentinel(t *testing.T) {
	item := xrpPayment()
	delete(item["tx"].(map[string]any), "date")

	tx, err := Process(item, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, "N/A", tx.Date)
}

func TestProcess_ResponseShapes(t *testing.T) {
	base := xrpPayment()
	txFields := base["tx"].(map[string]any)

	flat := map[string]any{"metaData": base["meta"], "validated": true}
	for k, v := range txFields {
		flat[k] = v
	}

	v2 := map[string]any{
		"tx_json":      map[string]any{"TransactionType": "Payment", "Account": alice, "Destination": bob, "Fee": "12", "date": float64(700000000)},
		"meta":         base["meta"],
		"hash":         txHash,
		"ledger_index": float64(80000000),
		"validated":    true,
	}

	for name, item := range map[string]map[string]any{"account_tx": base, "tx": flat, "api v2": v2} {
		t.Run(name, func(t *testing.T) {
			tx, err := Process(item, alice, nil)
			require.NoError(t, err)
			assert.Equal(t, txHash, tx.ID)
			assert.Equal(t, int64(80000000), tx.LedgerIndex)
			assert.Equal(t, []models.Balance{{Currency: "XRP", Value: "-10"}}, tx.BalanceChanges)
			assert.Equal(t, "2022-03-07T20:26:40.000Z", tx.Date)
		})
	}
}

func TestProcess_RawDataIsInputRecord(t *testing.T) {
	item := xrpPayment()
	tx, err := Process(item, alice, nil)
	require.NoError(t, err)

	expected, err := json.MarshalIndent(item, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, string(expected), tx.RawData)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(tx.RawData), &decoded))
	assert.Equal(t, true, decoded["validated"])
}

func TestProcessBatch_IsolatesBadRecords(t *testing.T) {
	items := []map[string]any{
		xrpPayment(),
		{"garbage": true},
		nil,
		filledOffer("USD"),
		accountTxItem(map[string]any{"TransactionType": "Payment", "Account": carol, "Destination": bob}, meta()),
	}

	txs := ProcessBatch(items, alice, nil)
	require.Len(t, txs, 2)
	assert.Equal(t, "Payment", txs[0].Type)
	assert.Equal(t, "OfferCreate", txs[1].Type)
	require.NotNil(t, txs[1].XrpValueUSD)
	assert.Equal(t, 50.0, *txs[1].XrpValueUSD)
}
