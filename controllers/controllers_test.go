package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xrpscan/ledgerlens/connections"
	"github.com/xrpscan/ledgerlens/explorer"
	"github.com/xrpscan/ledgerlens/models"
)

const (
	alice = "rPEPPER7kfTD9w2To4CQk6UCfuHM9c6GDY"
	bob   = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"

	paymentHash = "E3FE6EA3D48F0C2B639448020EA4F03D4F4F8FFDB243A852A0F59177921B4879"
	offerHash   = "0A1B2C3D4E5F60718293A4B5C6D7E8F90A1B2C3D4E5F60718293A4B5C6D7E8F9"
)

type fakeGateway struct {
	infoErr error
	pages   map[string]connections.HistoryPage
	txs     map[string]map[string]any
}

func (f *fakeGateway) AccountSnapshot(_ context.Context, address string) (models.AccountInfo, error) {
	if f.infoErr != nil {
		return models.AccountInfo{}, f.infoErr
	}
	return models.AccountInfo{Address: address, Balances: []models.Balance{{Currency: "XRP", Value: "10"}}}, nil
}

func (f *fakeGateway) AccountHistoryPage(_ context.Context, _ string, q connections.HistoryQuery) (connections.HistoryPage, error) {
	return f.pages[fmt.Sprint(q.Marker)], nil
}

func (f *fakeGateway) Transaction(_ context.Context, hash string) (map[string]any, error) {
	tx, ok := f.txs[hash]
	if !ok {
		return nil, connections.ErrTransactionNotFound
	}
	return tx, nil
}

func payment(hash string, ledger float64) map[string]any {
	return map[string]any{
		"TransactionType": "Payment",
		"Account":         alice,
		"Destination":     bob,
		"Amount":          "1000000",
		"Fee":             "10",
		"hash":            hash,
		"ledger_index":    ledger,
		"meta": map[string]any{
			"TransactionResult": "tesSUCCESS",
			"AffectedNodes": []any{
				map[string]any{"ModifiedNode": map[string]any{
					"LedgerEntryType": "AccountRoot",
					"FinalFields":     map[string]any{"Account": alice, "Balance": "8999990"},
					"PreviousFields":  map[string]any{"Balance": "10000000"},
				}},
			},
		},
	}
}

func historyItem(tx map[string]any) map[string]any {
	return map[string]any{"tx": tx, "meta": tx["meta"], "validated": true}
}

func newServer() (*echo.Echo, *explorer.SessionStore) {
	gw := &fakeGateway{
		pages: map[string]connections.HistoryPage{
			"<nil>": {Items: []map[string]any{historyItem(payment(paymentHash, 100))}, Marker: map[string]any{"ledger": float64(90), "seq": float64(1)}},
			"map[ledger:90 seq:1]": {Items: []map[string]any{historyItem(payment("OLDER", 90))}},
		},
		txs: map[string]map[string]any{
			paymentHash: payment(paymentHash, 100),
			offerHash:   {"TransactionType": "OfferCreate", "Account": alice, "hash": offerHash},
		},
	}
	sessions := explorer.NewSessionStore(time.Hour)
	ex := explorer.New(explorer.Config{Gateway: gw})

	e := echo.New()
	ctl := New(ex, sessions, nil)
	e.GET("/account/:address", ctl.GetAccountInfo)
	e.GET("/account/:address/transactions", ctl.GetAccountTransactions)
	e.POST("/session/:id/more", ctl.LoadMore)
	e.GET("/tx/:hash", ctl.GetTransaction)
	e.GET("/trace/:hash", ctl.GetTrace)
	e.GET("/health", ctl.Health)
	return e, sessions
}

func do(e *echo.Echo, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestGetAccountInfo(t *testing.T) {
	e, sessions := newServer()

	rec, body := do(e, http.MethodGet, "/account/"+alice)
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]any)
	assert.Equal(t, alice, data["info"].(map[string]any)["address"])
	assert.Len(t, data["transactions"], 1)
	assert.NotEmpty(t, data["sessionId"])
	assert.Equal(t, "0", data["portfolio"].(map[string]any)["totalUSD"])
	assert.Equal(t, 1, sessions.Len())

	rec, body = do(e, http.MethodPost, "/session/"+data["sessionId"].(string)+"/more")
	require.Equal(t, http.StatusOK, rec.Code)
	more := body["data"].(map[string]any)
	assert.Len(t, more["transactions"], 1)
	assert.Equal(t, false, more["hasMore"])

	rec, _ = do(e, http.MethodPost, "/session/"+data["sessionId"].(string)+"/more")
	assert.Equal(t, http.StatusGone, rec.Code)

	rec, _ = do(e, http.MethodPost, "/session/3f1c6a52-8d0e-4c55-9d1b-1f2a3b4c5d6e/more")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(e, http.MethodPost, "/session/unknown/more")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAccountInfoValidation(t *testing.T) {
	e, _ := newServer()

	for _, address := range []string{"xyz", "rShort", "r0OIl0OIl0OIl0OIl0OIl0OIl0OIl", "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTi"} {
		rec, body := do(e, http.MethodGet, "/account/"+address)
		assert.Equal(t, http.StatusBadRequest, rec.Code, address)
		assert.Equal(t, "invalid account address", body["message"])
	}
}

func TestGetAccountTransactions(t *testing.T) {
	e, _ := newServer()

	rec, body := do(e, http.MethodGet, "/account/"+alice+"/transactions?marker="+`%7B%22ledger%22%3A90%2C%22seq%22%3A1%7D`)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Len(t, data["transactions"], 1)
	assert.Equal(t, false, data["hasMore"])

	rec, _ = do(e, http.MethodGet, "/account/"+alice+"/transactions?marker=%7Bnope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTransaction(t *testing.T) {
	e, _ := newServer()

	rec, body := do(e, http.MethodGet, "/tx/"+paymentHash)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, paymentHash, data["id"])
	assert.Equal(t, "details_payment_to", data["detailsKey"])

	rec, _ = do(e, http.MethodGet, "/tx/"+strings.Repeat("A", 64))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(e, http.MethodGet, "/tx/not-a-hash")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTrace(t *testing.T) {
	e, _ := newServer()

	rec, body := do(e, http.MethodGet, "/trace/"+paymentHash)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, alice, data["address"])
	assert.Equal(t, "1", data["amount"])

	rec, _ = do(e, http.MethodGet, "/trace/"+offerHash)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, body = do(e, http.MethodGet, "/trace/"+paymentHash+"?hops=3")
	require.Equal(t, http.StatusOK, rec.Code)
	data = body["data"].(map[string]any)
	assert.Len(t, data["path"], 1)
	assert.Equal(t, true, data["complete"])

	rec, _ = do(e, http.MethodGet, "/trace/"+paymentHash+"?hops=99")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(e, http.MethodGet, "/trace/"+paymentHash+"?hops=many")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	e, _ := newServer()
	rec, _ := do(e, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	sick := echo.New()
	sick.GET("/health", New(nil, nil, func() error { return errors.New("down") }).Health)
	rec, _ = do(sick, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusOf(errors.Wrap(connections.ErrAccountNotFound, "x")))
	assert.Equal(t, http.StatusBadGateway, statusOf(errors.Wrap(connections.ErrConnectivity, "x")))
	assert.Equal(t, http.StatusBadRequest, statusOf(errors.Wrap(connections.ErrMalformedRequest, "actMalformed")))
	assert.Equal(t, http.StatusConflict, statusOf(explorer.ErrLoadInFlight))
	assert.Equal(t, http.StatusInternalServerError, statusOf(errors.New("boom")))
}
