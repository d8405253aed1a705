package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/xrpscan/ledgerlens/connections"
	"github.com/xrpscan/ledgerlens/explorer"
	"github.com/xrpscan/ledgerlens/logger"
	"github.com/xrpscan/ledgerlens/models"
	"github.com/xrpscan/ledgerlens/processor"
	"github.com/xrpscan/ledgerlens/responses"
	"github.com/xrpscan/ledgerlens/tracer"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("xrpladdress", func(fl validator.FieldLevel) bool {
		return models.IsClassicAddress(fl.Field().String())
	})
	_ = v.RegisterValidation("txhash", func(fl validator.FieldLevel) bool {
		return models.IsTxHash(fl.Field().String())
	})
	return v
}

// bindRequest fills req from path and query parameters and validates it.
func bindRequest(c echo.Context, req any) error {
	if err := (&echo.DefaultBinder{}).BindPathParams(c, req); err != nil {
		return err
	}
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, req); err != nil {
		return err
	}
	return validate.Struct(req)
}

// invalidMessage turns a bind or validation error into a client message.
func invalidMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		switch f.Tag() {
		case "xrpladdress":
			return "invalid account address"
		case "txhash":
			return "invalid transaction hash"
		}
		return "invalid " + strings.ToLower(f.Field())
	}
	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		return fmt.Sprint(herr.Message)
	}
	return err.Error()
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, connections.ErrAccountNotFound),
		errors.Is(err, connections.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, connections.ErrMalformedRequest):
		return http.StatusBadRequest
	case errors.Is(err, tracer.ErrUnsupportedTraceTarget),
		errors.Is(err, processor.ErrNoChanges),
		errors.Is(err, processor.ErrMalformedRecord):
		return http.StatusUnprocessableEntity
	case errors.Is(err, explorer.ErrLoadInFlight):
		return http.StatusConflict
	case errors.Is(err, explorer.ErrNoMorePages):
		return http.StatusGone
	case errors.Is(err, connections.ErrConnectivity):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func fail(c echo.Context, err error) error {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Log.Error().Str("path", c.Path()).Err(err).Msg("Request failed")
	}
	return c.JSON(status, responses.Error(status, err.Error()))
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, responses.Error(http.StatusBadRequest, invalidMessage(err)))
}
