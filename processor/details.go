package processor

import (
	"math"
	"strconv"

	"github.com/xrpscan/ledgerlens/models"
)

// Template keys consumed by the presentation layer
const (
	DetailsFallback         = "details_fallback"
	DetailsPaymentTo        = "details_payment_to"
	DetailsPaymentFrom      = "details_payment_from"
	DetailsPaymentToKnown   = "details_payment_to_known"
	DetailsPaymentFromKnown = "details_payment_from_known"
	DetailsDexOrder         = "details_dex_order"
	DetailsDexUnfilled      = "details_dex_unfilled"
	DetailsOfferCancel      = "details_offer_cancel"
	DetailsTrustSet         = "details_trust_set"
	DetailsTrustSetKnown    = "details_trust_set_known"
	DetailsAccountSet       = "details_account_set"
)

// resolveDetails picks the description template for a transaction as seen
// by perspective. changes are the perspective's fee-adjusted deltas.
func resolveDetails(rec record, perspective string, changes []models.Balance, labels models.Labels) (string, map[string]any) {
	switch rec.Type() {

	case models.TX_PAYMENT:
		outgoing := rec.Account() == perspective
		counterparty := rec.Account()
		if outgoing {
			counterparty = rec.Destination()
		}
		if label, ok := labels.Lookup(counterparty); ok {
			key := DetailsPaymentFromKnown
			if outgoing {
				key = DetailsPaymentToKnown
			}
			return key, map[string]any{"label": label, "address": counterparty}
		}
		key := DetailsPaymentFrom
		if outgoing {
			key = DetailsPaymentTo
		}
		return key, map[string]any{"address": counterparty}

	case models.TX_OFFER_CREATE:
		return offerDetails(rec, changes)

	case models.TX_OFFER_CANCEL:
		return DetailsOfferCancel, map[string]any{}

	case models.TX_TRUST_SET:
		limit := models.ParseAmount(rec.Tx["LimitAmount"])
		value, currency := limit.Decode()
		if label, ok := labels.Lookup(limit.Issuer); ok {
			return DetailsTrustSetKnown, map[string]any{
				"amount":   value,
				"currency": currency,
				"label":    label,
				"address":  limit.Issuer,
			}
		}
		return DetailsTrustSet, map[string]any{
			"amount":   value,
			"currency": currency,
			"address":  limit.Issuer,
		}

	case models.TX_ACCOUNT_SET:
		return DetailsAccountSet, map[string]any{}
	}

	return DetailsFallback, map[string]any{"type": rec.Type()}
}

// offerDetails reports what an OfferCreate actually exchanged. When the
// offer did not cross, the amounts requested by the order are reported.
func offerDetails(rec record, changes []models.Balance) (string, map[string]any) {
	var debits, credits []models.Balance
	for _, c := range changes {
		v := parseValue(c.Value)
		switch {
		case v < 0:
			debits = append(debits, c)
		case v > 0:
			credits = append(credits, c)
		}
	}

	if len(debits) > 0 && len(credits) > 0 {
		paid := debits[0]
		for _, d := range debits {
			if d.Currency != models.BASE_ASSET {
				paid = d
				break
			}
		}
		got := credits[0]
		return DetailsDexOrder, map[string]any{
			"paidAmount":   math.Abs(parseValue(paid.Value)),
			"paidCurrency": paid.Currency,
			"gotAmount":    parseValue(got.Value),
			"gotCurrency":  got.Currency,
		}
	}

	paysField, getsField := "TakerGets", "TakerPays"
	if rec.flags()&models.TF_SELL == models.TF_SELL {
		paysField, getsField = "TakerPays", "TakerGets"
	}
	paidValue, paidCurrency := models.DecodeAmount(rec.Tx[paysField])
	gotValue, gotCurrency := models.DecodeAmount(rec.Tx[getsField])
	return DetailsDexUnfilled, map[string]any{
		"paidAmount":   paidValue,
		"paidCurrency": paidCurrency,
		"gotAmount":    gotValue,
		"gotCurrency":  gotCurrency,
	}
}

// parseValue is used for sign checks and display amounts only.
func parseValue(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
