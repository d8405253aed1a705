package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xrpscan/ledgerlens/responses"
)

type txRequest struct {
	Hash string `param:"hash" validate:"txhash"`
}

// Hops of zero asks for a single step.
type traceRequest struct {
	Hash string `param:"hash" validate:"txhash"`
	Hops int    `query:"hops" validate:"omitempty,min=1,max=25"`
}

func (ctl *Controller) GetTransaction(c echo.Context) error {
	var req txRequest
	if err := bindRequest(c, &req); err != nil {
		return badRequest(c, err)
	}

	tx, err := ctl.explorer.FetchTransaction(c.Request().Context(), req.Hash)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, responses.Success(http.StatusOK, tx))
}

// GetTrace resolves one hop of a funds trace, or a whole path when the
// hops query parameter is given.
func (ctl *Controller) GetTrace(c echo.Context) error {
	var req traceRequest
	if err := bindRequest(c, &req); err != nil {
		return badRequest(c, err)
	}

	if req.Hops == 0 {
		item, err := ctl.explorer.Trace(c.Request().Context(), req.Hash)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, responses.Success(http.StatusOK, item))
	}

	path, err := ctl.explorer.TracePath(c.Request().Context(), req.Hash, req.Hops)
	if err != nil && len(path) == 0 {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, responses.Success(http.StatusOK, echo.Map{
		"path":     path,
		"complete": err == nil,
	}))
}
