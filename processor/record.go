package processor

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

var (
	// ErrMalformedRecord is returned for items without a transaction or metadata.
	ErrMalformedRecord = errors.New("malformed transaction record")
	// ErrNoChanges is returned when nothing observable happened for the perspective account.
	ErrNoChanges = errors.New("transaction has no effect on account")
)

// record is a raw transaction item unwrapped from the shapes returned by
// the `tx` and `account_tx` commands:
//   - account_tx entries: {"tx": {...}, "meta": {...}, "validated": true}
//   - API v2 entries:     {"tx_json": {...}, "meta": {...}, "hash": "..."}
//   - tx results:         {...transaction fields..., "meta": {...}}
type record struct {
	Envelope
	item map[string]any
	meta map[string]any
}

func unwrap(item map[string]any) (record, error) {
	env, ok := Open(item)
	if !ok {
		return record{}, errors.Wrap(ErrMalformedRecord, "missing transaction")
	}

	meta, ok := item["meta"].(map[string]any)
	if !ok {
		meta, ok = item["metaData"].(map[string]any)
	}
	if !ok {
		return record{}, errors.Wrap(ErrMalformedRecord, "missing metadata")
	}

	return record{Envelope: env, item: item, meta: meta}, nil
}

func (r record) result() string {
	s, _ := r.meta["TransactionResult"].(string)
	return s
}

func (r record) flags() uint32 {
	v, _ := int64Field("Flags", r.Tx)
	return uint32(v)
}

// closeTime returns the ledger close time in seconds since the Ripple epoch.
func (r record) closeTime() (int64, bool) {
	return int64Field("date", r.Tx, r.item)
}

func stringField(key string, sources ...map[string]any) string {
	for _, src := range sources {
		if s, ok := src[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func boolField(key string, sources ...map[string]any) bool {
	for _, src := range sources {
		if b, ok := src[key].(bool); ok {
			return b
		}
	}
	return false
}

// int64Field reads a numeric field that may have been decoded as float64,
// json.Number or a decimal string.
func int64Field(key string, sources ...map[string]any) (int64, bool) {
	for _, src := range sources {
		switch v := src[key].(type) {
		case float64:
			return int64(v), true
		case int64:
			return v, true
		case int:
			return int64(v), true
		case uint32:
			return int64(v), true
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return n, true
			}
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
