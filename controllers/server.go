package controllers

import (
	"net/http"
	"os"

	"studioapi/models"
	"studioapi/services"
	"studioapi/sessions"

	"github.com/go-playground/validator"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("pose", models.ValidatePose)
	v.RegisterValidation("app", models.ValidateApp)
	v.RegisterValidation("tab", models.ValidateTab)
	return &CustomValidator{validator: v}
}

func SetupServer(
	store *sessions.Store,
	catalog services.GarmentCatalogProvider,
) *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__store", store)
			return next(c)
		}
	})

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	// data URLs of full-size photos
	e.Use(middleware.BodyLimit("40M"))

	studioController := StudioController{}
	e.POST("/sessions", studioController.CreateSession)

	studioGroup := e.Group("/studio", echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))))
	studioGroup.Use(SessionMiddleware)
	studioController.StudioRoutes(studioGroup)

	editorController := EditorController{}
	editorController.EditorRoutes(studioGroup.Group("/editor"))

	tryOnController := TryOnController{Catalog: catalog}
	tryOnController.TryOnRoutes(studioGroup.Group("/tryon"))

	return e
}
