package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/xrpscan/ledgerlens/explorer"
	"github.com/xrpscan/ledgerlens/responses"
)

// Controller serves the explorer over HTTP.
type Controller struct {
	explorer *explorer.Explorer
	sessions *explorer.SessionStore
	health   func() error
}

// New builds a controller. health may be nil.
func New(ex *explorer.Explorer, sessions *explorer.SessionStore, health func() error) *Controller {
	return &Controller{explorer: ex, sessions: sessions, health: health}
}

type accountRequest struct {
	Address string `param:"address" validate:"xrpladdress"`
}

type pageRequest struct {
	Address string `param:"address" validate:"xrpladdress"`
	Marker  string `query:"marker"`
}

type sessionRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

type accountResponse struct {
	*explorer.AccountView
	SessionID string `json:"sessionId"`
}

type pageResponse struct {
	Transactions any  `json:"transactions"`
	Marker       any  `json:"marker,omitempty"`
	HasMore      bool `json:"hasMore"`
}

// GetAccountInfo returns the account snapshot, prices and first history
// page, and opens a session for loading further pages.
func (ctl *Controller) GetAccountInfo(c echo.Context) error {
	var req accountRequest
	if err := bindRequest(c, &req); err != nil {
		return badRequest(c, err)
	}

	view, err := ctl.explorer.FetchAccount(c.Request().Context(), req.Address)
	if err != nil {
		return fail(c, err)
	}

	session := ctl.explorer.NewSession(view)
	ctl.sessions.Put(session)

	return c.JSON(http.StatusOK, responses.Success(http.StatusOK, accountResponse{
		AccountView: view,
		SessionID:   session.ID,
	}))
}

// GetAccountTransactions returns the page after the JSON encoded marker
// query parameter. Without a marker the first page is returned.
func (ctl *Controller) GetAccountTransactions(c echo.Context) error {
	var req pageRequest
	if err := bindRequest(c, &req); err != nil {
		return badRequest(c, err)
	}

	var marker any
	if req.Marker != "" {
		if err := json.Unmarshal([]byte(req.Marker), &marker); err != nil {
			return badRequest(c, errors.New("marker must be JSON"))
		}
	}

	page, err := ctl.explorer.FetchPage(c.Request().Context(), req.Address, marker)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, responses.Success(http.StatusOK, pageResponse{
		Transactions: page.Transactions,
		Marker:       page.Marker,
		HasMore:      page.Marker != nil,
	}))
}

// LoadMore appends the next page to a session. Overlapping calls on the
// same session are rejected with 409.
func (ctl *Controller) LoadMore(c echo.Context) error {
	var req sessionRequest
	if err := bindRequest(c, &req); err != nil {
		return badRequest(c, err)
	}

	session, ok := ctl.sessions.Get(req.ID)
	if !ok {
		return c.JSON(http.StatusNotFound, responses.Error(http.StatusNotFound, "unknown session"))
	}

	added, err := session.LoadMore(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, responses.Success(http.StatusOK, pageResponse{
		Transactions: added,
		HasMore:      session.HasMore(),
	}))
}

func (ctl *Controller) Health(c echo.Context) error {
	if ctl.health != nil {
		if err := ctl.health(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, responses.Error(http.StatusServiceUnavailable, err.Error()))
		}
	}
	return c.JSON(http.StatusOK, responses.Success(http.StatusOK, echo.Map{"service": "ledgerlens"}))
}
