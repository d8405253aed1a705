package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/xrpscan/ledgerlens/controllers"
)

func Add(e *echo.Echo, ctl *controllers.Controller) {
	e.GET("/account/:address", ctl.GetAccountInfo)
	e.GET("/account/:address/transactions", ctl.GetAccountTransactions)
	e.POST("/session/:id/more", ctl.LoadMore)
	e.GET("/tx/:hash", ctl.GetTransaction)
	e.GET("/trace/:hash", ctl.GetTrace)

	// Health check
	e.GET("/health", ctl.Health)
}
