package models

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Hex currency codes are 160-bit values - https://xrpl.org/currency-formats.html#nonstandard-currency-codes
const hexCurrencyMaxLen = 40

type AmountKind int

const (
	AmountInvalid AmountKind = iota
	AmountDrops
	AmountIssued
)

// Amount is the decoded form of an XRPL amount field. XRP amounts arrive as
// an integer string of drops, issued amounts as a {currency, value, issuer}
// object. Shape is inspected once, by ParseAmount.
type Amount struct {
	Kind     AmountKind
	Drops    string
	Currency string
	Value    string
	Issuer   string
}

// ParseAmount classifies a raw amount field.
func ParseAmount(raw any) Amount {
	switch v := raw.(type) {
	case string:
		if _, err := decimal.NewFromString(v); err != nil {
			return Amount{Kind: AmountInvalid}
		}
		return Amount{Kind: AmountDrops, Drops: v}
	case map[string]any:
		currency, _ := v["currency"].(string)
		if currency == "" {
			return Amount{Kind: AmountInvalid}
		}
		value, _ := v["value"].(string)
		issuer, _ := v["issuer"].(string)
		return Amount{Kind: AmountIssued, Currency: currency, Value: value, Issuer: issuer}
	}
	return Amount{Kind: AmountInvalid}
}

// Decode returns the human readable value and currency of the amount.
// Invalid amounts decode to ("N/A", "N/A").
func (a Amount) Decode() (value string, currency string) {
	switch a.Kind {
	case AmountDrops:
		xrp, err := DropsToXRP(a.Drops)
		if err != nil {
			return NOT_AVAILABLE, NOT_AVAILABLE
		}
		return xrp, BASE_ASSET
	case AmountIssued:
		return a.Value, DecodeCurrencyCode(a.Currency)
	}
	return NOT_AVAILABLE, NOT_AVAILABLE
}

// DecodeAmount is shorthand for ParseAmount(raw).Decode().
func DecodeAmount(raw any) (value string, currency string) {
	return ParseAmount(raw).Decode()
}

// DropsToXRP converts an integer drops string into an exact XRP decimal string.
func DropsToXRP(drops string) (string, error) {
	d, err := decimal.NewFromString(drops)
	if err != nil {
		return "", err
	}
	return d.Shift(-6).String(), nil
}

// DecodeCurrencyCode turns a ledger currency code into a readable symbol.
// Standard three letter codes are returned as is. Hex codes are decoded
// byte by byte up to the first NUL. Anything else is returned verbatim.
func DecodeCurrencyCode(raw string) string {
	if len(raw) == 3 {
		return raw
	}
	if len(raw) <= 3 || !isUpperHex(raw) {
		return raw
	}

	code := raw
	if len(code) > hexCurrencyMaxLen {
		code = code[:hexCurrencyMaxLen]
	}

	var sb strings.Builder
	for i := 0; i < len(code); i += 2 {
		end := i + 2
		if end > len(code) {
			end = len(code)
		}
		b, err := strconv.ParseUint(code[i:end], 16, 8)
		if err != nil {
			return raw
		}
		if b == 0 {
			break
		}
		sb.WriteRune(rune(b))
	}
	return strings.TrimRightFunc(sb.String(), unicode.IsSpace)
}

func isUpperHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
