package connections

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/xrpscan/ledgerlens/config"
	"github.com/xrpscan/ledgerlens/logger"
	"github.com/xrpscan/xrpl-go"
)

// Ledger error codes that say more about the server than about the request.
// A request failing with one of these is retried on the next server.
var failoverCodes = map[string]bool{
	"noNetwork":        true,
	"noCurrent":        true,
	"noClosed":         true,
	"tooBusy":          true,
	"slowDown":         true,
	"amendmentBlocked": true,
}

// XrplGateway implements Gateway over rippled websocket servers. It keeps one
// client open and moves to the next server in the list when the current one
// stops answering.
type XrplGateway struct {
	servers []string
	timeout time.Duration

	mu      sync.Mutex
	client  *xrpl.Client
	current int
}

func NewXrplGateway(servers []string, timeout time.Duration) *XrplGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &XrplGateway{servers: servers, timeout: timeout}
}

func NewXrplGatewayFromEnv() *XrplGateway {
	return NewXrplGateway(
		config.EnvXrplServers(),
		time.Duration(config.EnvXrplRequestTimeoutMs())*time.Millisecond,
	)
}

// dial opens a client and pings it. xrpl-go can hand back a client without a
// live connection, so panics from Ping are turned into errors.
func dial(URL string) (client *xrpl.Client, err error) {
	defer func() {
		if r := recover(); r != nil {
			client = nil
			err = fmt.Errorf("panic during ping: %v", r)
		}
	}()

	client = xrpl.NewClient(xrpl.ClientConfig{URL: URL})
	if client == nil {
		return nil, errors.New("xrpl client not created")
	}
	if err := client.Ping([]byte(URL)); err != nil {
		go closeQuietly(client)
		return nil, err
	}
	return client, nil
}

func closeQuietly(client *xrpl.Client) {
	defer func() { _ = recover() }()
	if err := client.Close(); err != nil {
		logger.Log.Debug().Err(err).Msg("Error closing XRPL client")
	}
}

// connection returns the open client, connecting to the first reachable
// server (starting from the last good one) when there is none.
func (g *XrplGateway) connection() (*xrpl.Client, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, g.servers[g.current], nil
	}
	if len(g.servers) == 0 {
		return nil, "", errors.Wrap(ErrConnectivity, "no servers configured")
	}

	for i := 0; i < len(g.servers); i++ {
		idx := (g.current + i) % len(g.servers)
		URL := g.servers[idx]
		logger.Log.Info().Str("url", URL).Msg("Connecting XRPL client")

		client, err := dial(URL)
		if err != nil {
			logger.Log.Warn().Str("url", URL).Err(err).Msg("XRPL connect failed; trying next server")
			continue
		}

		logger.Log.Info().Str("url", URL).Msg("Connected XRPL client")
		g.client = client
		g.current = idx
		return client, URL, nil
	}
	return nil, "", errors.Wrap(ErrConnectivity, "no server accepted the connection")
}

// drop forgets client after a failure and advances to the next server.
func (g *XrplGateway) drop(client *xrpl.Client) {
	g.mu.Lock()
	if g.client == client {
		g.client = nil
		g.current = (g.current + 1) % len(g.servers)
	}
	g.mu.Unlock()

	go closeQuietly(client)
}

func (g *XrplGateway) Close() error {
	g.mu.Lock()
	client := g.client
	g.client = nil
	g.mu.Unlock()

	if client == nil {
		return nil
	}
	return closeWithTimeout("XRPL client", client.Close)
}

// request sends req and returns its result object. Transport failures,
// timeouts and server-side availability errors move on to the next server;
// every server is tried at most once per request.
func (g *XrplGateway) request(ctx context.Context, req xrpl.BaseRequest) (map[string]any, error) {
	command, _ := req["command"].(string)
	var lastErr error

	for attempt := 0; attempt < max(len(g.servers), 1); attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		client, URL, err := g.connection()
		if err != nil {
			return nil, err
		}

		resp, err := g.send(ctx, client, attemptRequest(req))
		if err == nil {
			result, code, rerr := resultOf(resp)
			if rerr == nil {
				return result, nil
			}
			if !failoverCodes[code] {
				return nil, rerr
			}
			err = rerr
		} else if code := errorCodeIn(err.Error()); code != "" && !failoverCodes[code] {
			return nil, ledgerError(code)
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		logger.Log.Warn().
			Str("url", URL).
			Str("command", command).
			Interface("request_id", resp["id"]).
			Int("attempt", attempt+1).
			Err(err).
			Msg("XRPL request failed; failing over")
		g.drop(client)
	}

	if lastErr == nil {
		lastErr = errors.New("no attempt made")
	}
	return nil, errors.Wrap(ErrConnectivity, lastErr.Error())
}

// attemptRequest copies req for one attempt. xrpl-go stamps its own id on
// the map it is given and a timed out attempt may still hold its copy.
func attemptRequest(req xrpl.BaseRequest) xrpl.BaseRequest {
	out := maps.Clone(req)
	delete(out, "id")
	return out
}

// send runs one request with the gateway timeout. xrpl-go requests block
// without a deadline, so the call runs in its own goroutine.
func (g *XrplGateway) send(ctx context.Context, client *xrpl.Client, req xrpl.BaseRequest) (xrpl.BaseResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type reply struct {
		resp xrpl.BaseResponse
		err  error
	}
	done := make(chan reply, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: fmt.Errorf("panic during request: %v", r)}
			}
		}()
		resp, err := client.Request(req)
		done <- reply{resp: resp, err: err}
	}()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "xrpl request")
	}
}

// resultOf extracts the result object of a response. code is the ledger
// error code when the response is an error.
func resultOf(resp xrpl.BaseResponse) (map[string]any, string, error) {
	if code, _ := resp["error"].(string); code != "" {
		return nil, code, ledgerError(code)
	}

	result, ok := resp["result"].(map[string]any)
	if !ok {
		return nil, "", errors.New("xrpl response without result")
	}
	if code, _ := result["error"].(string); code != "" {
		return nil, code, ledgerError(code)
	}
	return result, "", nil
}

func ledgerError(code string) error {
	switch code {
	case "actNotFound":
		return ErrAccountNotFound
	case "txnNotFound":
		return ErrTransactionNotFound
	case "actMalformed", "invalidParams", "malformedAddress":
		return errors.Wrap(ErrMalformedRequest, code)
	}
	return errors.Errorf("xrpl error: %s", code)
}

// errorCodeIn finds a known ledger error code inside a client error message.
func errorCodeIn(msg string) string {
	for _, code := range []string{"actNotFound", "txnNotFound", "actMalformed", "invalidParams", "malformedAddress"} {
		if strings.Contains(msg, code) {
			return code
		}
	}
	return ""
}
