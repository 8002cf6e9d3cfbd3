package controllers

import (
	"log"

	"studioapi/services"
	"studioapi/sessions"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// SessionMiddleware resolves the token subject to a live studio session.
func SessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		store := c.Get("__store").(*sessions.Store)
		userRaw := c.Get("user")
		if userRaw == nil {
			return echo.ErrUnauthorized
		}
		token := userRaw.(*jwt.Token)
		claims := token.Claims.(jwt.MapClaims)
		sessionID, _ := claims["sub"].(string)
		if sessionID == "" {
			log.Println("Error while getting the token information!")
			return echo.ErrUnauthorized
		}

		studio, err := store.Get(sessionID)
		if err != nil {
			log.Printf("[Session: %s] not found, it may have expired", sessionID)
			return echo.ErrUnauthorized
		}
		c.Set("studio", studio)
		req := c.Request()
		c.SetRequest(req.WithContext(services.WithSessionID(req.Context(), sessionID)))
		return next(c)
	}
}
