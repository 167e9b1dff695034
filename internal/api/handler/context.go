package handler

import "github.com/labstack/echo/v4"

// ctxUserID returns the authenticated user's id injected by the Auth
// middleware, or empty when the route is unauthenticated.
func ctxUserID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}
