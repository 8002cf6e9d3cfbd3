package controllers

import (
	"log"
	"net/http"

	"studioapi/models"
	"studioapi/sessions"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
)

type StudioController struct{}

func (controller *StudioController) StudioRoutes(g *echo.Group) {
	g.GET("", controller.GetStudio)
	g.POST("/app", controller.SelectApp)
	g.POST("/exit", controller.Exit)
}

// CreateSession opens a new studio on the landing screen and returns the
// bearer token bound to it.
func (controller *StudioController) CreateSession(c echo.Context) error {
	store := c.Get("__store").(*sessions.Store)
	studio := store.Create()
	token, err := GenerateSessionToken(studio.ID)
	if err != nil {
		log.Printf("[Session: %s] Error when signing session token: %v", studio.ID, err)
		sentry.CaptureException(err)
		store.Delete(c.Request().Context(), studio.ID)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not create session"})
	}
	log.Printf("[Session: %s] created", studio.ID)
	return c.JSON(http.StatusCreated, models.SessionCreatedOut{
		SessionID: studio.ID,
		Token:     token,
		ActiveApp: studio.ActiveApp(),
	})
}

func (controller *StudioController) GetStudio(c echo.Context) error {
	return c.JSON(http.StatusOK, currentStudio(c).View())
}

func (controller *StudioController) SelectApp(c echo.Context) error {
	var req models.SelectAppIn
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}
	studio := currentStudio(c)
	if err := studio.Select(models.App(req.App)); err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, studio.View())
}

func (controller *StudioController) Exit(c echo.Context) error {
	studio := currentStudio(c)
	studio.Exit(c.Request().Context())
	return c.JSON(http.StatusOK, studio.View())
}
