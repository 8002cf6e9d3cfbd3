package controllers

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"studioapi/models"
	"studioapi/services"
	"studioapi/sessions"

	"github.com/labstack/echo/v4"
)

type TryOnController struct {
	Catalog services.GarmentCatalogProvider
}

func (controller *TryOnController) TryOnRoutes(g *echo.Group) {
	g.GET("", controller.GetTryOn)
	g.POST("/model", controller.UploadPortrait)
	g.POST("/model/retry", controller.intakeAction((*sessions.ModelIntake).Retry))
	g.POST("/model/reset", controller.intakeAction((*sessions.ModelIntake).Reset))
	g.POST("/model/accept", controller.action((*sessions.TryOn).AcceptModel))
	g.GET("/catalog", controller.GetCatalog)
	g.POST("/garments", controller.AddGarment)
	g.POST("/garments/pop", controller.action(func(t *sessions.TryOn, ctx context.Context) error {
		_, err := t.PopLayer(ctx)
		return err
	}))
	g.POST("/pose", controller.ChangePose)
	g.POST("/pose/refresh", controller.action((*sessions.TryOn).RefreshPose))
	g.POST("/dismiss", controller.action(func(t *sessions.TryOn, ctx context.Context) error {
		return t.Dismiss()
	}))
	g.POST("/start-over", controller.action((*sessions.TryOn).StartOver))
}

func tryOnFrom(c echo.Context) (*sessions.TryOn, error) {
	return currentStudio(c).TryOn()
}

func respondTryOn(c echo.Context, tryOn *sessions.TryOn) error {
	view, err := tryOn.View(c.Request().Context())
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (controller *TryOnController) action(run func(*sessions.TryOn, context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		tryOn, err := tryOnFrom(c)
		if err != nil {
			return sessionError(c, err)
		}
		if err := run(tryOn, c.Request().Context()); err != nil {
			return sessionError(c, err)
		}
		return respondTryOn(c, tryOn)
	}
}

func (controller *TryOnController) intakeAction(run func(*sessions.ModelIntake, context.Context) error) echo.HandlerFunc {
	return controller.action(func(tryOn *sessions.TryOn, ctx context.Context) error {
		intake, err := tryOn.Intake()
		if err != nil {
			return err
		}
		return run(intake, ctx)
	})
}

func (controller *TryOnController) GetTryOn(c echo.Context) error {
	tryOn, err := tryOnFrom(c)
	if err != nil {
		return sessionError(c, err)
	}
	return respondTryOn(c, tryOn)
}

func (controller *TryOnController) UploadPortrait(c echo.Context) error {
	var req models.ImageUploadIn
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}
	portrait, err := uploadedAsset(req, "portrait.png")
	if err != nil {
		return badRequest(c, err)
	}
	return controller.intakeAction(func(intake *sessions.ModelIntake, ctx context.Context) error {
		return intake.Upload(ctx, portrait)
	})(c)
}

// GetCatalog lists the wardrobe, marking garments already worn.
func (controller *TryOnController) GetCatalog(c echo.Context) error {
	tryOn, err := tryOnFrom(c)
	if err != nil {
		return sessionError(c, err)
	}
	applied := tryOn.AppliedGarmentIDs()
	entries := controller.Catalog.Entries()
	out := make([]models.CatalogGarmentOut, 0, len(entries))
	for _, entry := range entries {
		out = append(out, models.CatalogGarmentOut{
			ID:       entry.ID,
			Name:     entry.Name,
			URL:      controller.Catalog.URL(entry),
			Disabled: slices.Contains(applied, entry.ID),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (controller *TryOnController) AddGarment(c echo.Context) error {
	var req models.AddGarmentIn
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}
	tryOn, err := tryOnFrom(c)
	if err != nil {
		return sessionError(c, err)
	}

	var garment models.Garment
	switch {
	case req.GarmentID != "":
		garment, err = controller.Catalog.Garment(c.Request().Context(), req.GarmentID)
		if err != nil {
			return sessionError(c, err)
		}
	case req.DataURL != "":
		name := req.Name
		if name == "" {
			name = "garment.png"
		}
		thumbnail, err := models.ImageAssetFromDataURL(req.DataURL, name)
		if err != nil {
			return badRequest(c, err)
		}
		garment = models.NewUploadedGarment(name, thumbnail)
	default:
		return badRequest(c, errors.New("garment_id or data_url is required"))
	}

	if err := tryOn.PushGarment(c.Request().Context(), garment); err != nil {
		return sessionError(c, err)
	}
	return respondTryOn(c, tryOn)
}

func (controller *TryOnController) ChangePose(c echo.Context) error {
	var req models.ChangePoseIn
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}
	return controller.action(func(tryOn *sessions.TryOn, ctx context.Context) error {
		return tryOn.ChangePose(ctx, req.Pose)
	})(c)
}
