package connections

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xrpscan/ledgerlens/models"
	"github.com/xrpscan/xrpl-go"
	"golang.org/x/sync/errgroup"
)

const (
	trustLinePageLimit = 400
	// Accounts holding more lines than this are cut short in the snapshot.
	maxTrustLinePages = 10
)

// AccountSnapshot reads the validated account root and the account's trust
// lines concurrently. Lines with a zero balance are left out.
func (g *XrplGateway) AccountSnapshot(ctx context.Context, address string) (models.AccountInfo, error) {
	var root map[string]any
	var lines []models.Balance

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		result, err := g.request(egCtx, xrpl.BaseRequest{
			"command":      "account_info",
			"account":      address,
			"ledger_index": "validated",
		})
		root = result
		return err
	})
	eg.Go(func() error {
		var err error
		lines, err = g.trustLines(egCtx, address)
		return err
	})
	if err := eg.Wait(); err != nil {
		return models.AccountInfo{}, err
	}

	return accountInfoFromResult(address, root, lines)
}

func (g *XrplGateway) trustLines(ctx context.Context, address string) ([]models.Balance, error) {
	var lines []models.Balance
	var marker any

	for page := 0; page < maxTrustLinePages; page++ {
		req := xrpl.BaseRequest{
			"command":      "account_lines",
			"account":      address,
			"ledger_index": "validated",
			"limit":        trustLinePageLimit,
		}
		if marker != nil {
			req["marker"] = marker
		}

		result, err := g.request(ctx, req)
		if err != nil {
			return nil, err
		}

		var pageLines []models.Balance
		pageLines, marker = linesFromResult(result)
		lines = append(lines, pageLines...)
		if marker == nil {
			break
		}
	}
	return lines, nil
}

// AccountHistoryPage reads one page of validated account_tx results, newest first.
func (g *XrplGateway) AccountHistoryPage(ctx context.Context, address string, q HistoryQuery) (HistoryPage, error) {
	req := xrpl.BaseRequest{
		"command":          "account_tx",
		"account":          address,
		"ledger_index_min": -1,
		"ledger_index_max": -1,
		"forward":          false,
	}
	if q.Limit > 0 {
		req["limit"] = q.Limit
	}
	if q.LedgerIndexMax > 0 {
		req["ledger_index_max"] = q.LedgerIndexMax
	}
	if q.Marker != nil {
		req["marker"] = q.Marker
	}

	result, err := g.request(ctx, req)
	if err != nil {
		return HistoryPage{}, err
	}
	return historyPageFromResult(result), nil
}

// Transaction fetches a transaction with its metadata in JSON form.
func (g *XrplGateway) Transaction(ctx context.Context, hash string) (map[string]any, error) {
	return g.request(ctx, xrpl.BaseRequest{
		"command":     "tx",
		"transaction": hash,
		"binary":      false,
	})
}

func accountInfoFromResult(address string, result map[string]any, lines []models.Balance) (models.AccountInfo, error) {
	data, ok := result["account_data"].(map[string]any)
	if !ok {
		return models.AccountInfo{}, errors.New("account_info result without account_data")
	}
	drops, _ := data["Balance"].(string)
	xrpBalance, err := models.DropsToXRP(drops)
	if err != nil {
		return models.AccountInfo{}, errors.Wrap(err, "account_info balance")
	}

	info := models.AccountInfo{
		Address:  address,
		Balances: make([]models.Balance, 0, len(lines)+1),
	}
	info.Balances = append(info.Balances, models.Balance{Currency: models.BASE_ASSET, Value: xrpBalance})
	info.Balances = append(info.Balances, lines...)
	return info, nil
}

// linesFromResult converts account_lines entries to balances. The issuer of
// a line is its counterparty.
func linesFromResult(result map[string]any) ([]models.Balance, any) {
	raw, _ := result["lines"].([]any)
	lines := make([]models.Balance, 0, len(raw))

	for _, entry := range raw {
		line, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		value, _ := line["balance"].(string)
		balance, err := decimal.NewFromString(value)
		if err != nil || balance.IsZero() {
			continue
		}
		currency, _ := line["currency"].(string)
		issuer, _ := line["account"].(string)

		lines = append(lines, models.Balance{
			Currency: models.DecodeCurrencyCode(currency),
			Value:    value,
			Issuer:   issuer,
		})
	}

	return lines, result["marker"]
}

func historyPageFromResult(result map[string]any) HistoryPage {
	raw, _ := result["transactions"].([]any)
	page := HistoryPage{
		Items:  make([]map[string]any, 0, len(raw)),
		Marker: result["marker"],
	}
	for _, entry := range raw {
		if item, ok := entry.(map[string]any); ok {
			page.Items = append(page.Items, item)
		}
	}
	return page
}
