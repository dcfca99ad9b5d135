package http

import "github.com/labstack/echo/v4"

// Handler is implemented by components that attach routes to the server.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
