package controllers

import (
	"context"
	"net/http"

	"studioapi/models"
	"studioapi/sessions"

	"github.com/labstack/echo/v4"
)

type EditorController struct{}

func (controller *EditorController) EditorRoutes(g *echo.Group) {
	g.GET("", controller.GetEditor)
	g.POST("/upload", controller.Upload)
	g.POST("/clear", controller.Clear)
	g.POST("/tab", controller.SelectTab)
	g.POST("/hotspot", controller.SetHotspot)
	g.POST("/edit", controller.promptAction((*sessions.PhotoEditor).ApplyLocalizedEdit))
	g.POST("/filter", controller.promptAction((*sessions.PhotoEditor).ApplyFilter))
	g.POST("/adjust", controller.promptAction((*sessions.PhotoEditor).ApplyAdjustment))
	g.POST("/remove-background", controller.action(func(ctx context.Context, editor *sessions.PhotoEditor) error {
		return editor.RemoveBackground(ctx)
	}))
	g.POST("/crop/select", controller.SelectCrop)
	g.POST("/crop", controller.action(func(ctx context.Context, editor *sessions.PhotoEditor) error {
		return editor.ApplyCrop(ctx)
	}))
	g.POST("/undo", controller.action(navigation((*sessions.PhotoEditor).Undo)))
	g.POST("/redo", controller.action(navigation((*sessions.PhotoEditor).Redo)))
	g.POST("/reset", controller.action(navigation((*sessions.PhotoEditor).ResetToOriginal)))
	g.POST("/dismiss", controller.action(func(ctx context.Context, editor *sessions.PhotoEditor) error {
		return editor.Dismiss()
	}))
}

func navigation(move func(*sessions.PhotoEditor, context.Context) (bool, error)) func(context.Context, *sessions.PhotoEditor) error {
	return func(ctx context.Context, editor *sessions.PhotoEditor) error {
		_, err := move(editor, ctx)
		return err
	}
}

func editorFrom(c echo.Context) (*sessions.PhotoEditor, error) {
	return currentStudio(c).Editor()
}

func respondEditor(c echo.Context, editor *sessions.PhotoEditor) error {
	view, err := editor.View(c.Request().Context())
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// action wraps a bodyless editor operation and answers with the fresh view.
func (controller *EditorController) action(run func(context.Context, *sessions.PhotoEditor) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		editor, err := editorFrom(c)
		if err != nil {
			return sessionError(c, err)
		}
		if err := run(c.Request().Context(), editor); err != nil {
			return sessionError(c, err)
		}
		return respondEditor(c, editor)
	}
}

func (controller *EditorController) promptAction(run func(*sessions.PhotoEditor, context.Context, string) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.PromptIn
		if err := bindAndValidate(c, &req); err != nil {
			return badRequest(c, err)
		}
		editor, err := editorFrom(c)
		if err != nil {
			return sessionError(c, err)
		}
		if err := run(editor, c.Request().Context(), req.Prompt); err != nil {
			return sessionError(c, err)
		}
		return respondEditor(c, editor)
	}
}

func (controller *EditorController) GetEditor(c echo.Context) error {
	editor, err := editorFrom(c)
	if err != nil {
		return sessionError(c, err)
	}
	return respondEditor(c, editor)
}

func (controller *EditorController) Upload(c echo.Context) error {
	var req models.ImageUploadIn
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}
	asset, err := uploadedAsset(req, "upload.png")
	if err != nil {
		return badRequest(c, err)
	}
	editor, err := editorFrom(c)
	if err != nil {
		return sessionError(c, err)
	}
	if err := editor.Upload(c.Request().Context(), asset); err != nil {
		return sessionError(c, err)
	}
	return respondEditor(c, editor)
}

func (controller *EditorController) Clear(c echo.Context) error {
	editor, err := editorFrom(c)
	if err != nil {
		return sessionError(c, err)
	}
	if err := editor.Clear(c.Request().Context()); err != nil {
		return sessionError(c, err)
	}
	return respondEditor(c, editor)
}

func (controller *EditorController) SelectTab(c echo.Context) error {
	var req models.SelectTabIn
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}
	editor, err := editorFrom(c)
	if err != nil {
		return sessionError(c, err)
	}
	if err := editor.SelectTab(models.EditorTab(req.Tab)); err != nil {
		return sessionError(c, err)
	}
	return respondEditor(c, editor)
}

func (controller *EditorController) SetHotspot(c echo.Context) error {
	var req models.HotspotIn
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}
	editor, err := editorFrom(c)
	if err != nil {
		return sessionError(c, err)
	}
	err = editor.SetHotspot(
		models.Point{X: req.X, Y: req.Y},
		models.Size{Width: req.DisplayWidth, Height: req.DisplayHeight},
	)
	if err != nil {
		return sessionError(c, err)
	}
	return respondEditor(c, editor)
}

func (controller *EditorController) SelectCrop(c echo.Context) error {
	var req models.CropSelectIn
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}
	editor, err := editorFrom(c)
	if err != nil {
		return sessionError(c, err)
	}
	err = editor.SelectCrop(models.CropSelection{
		Region:    models.Rect{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height},
		Displayed: models.Size{Width: req.DisplayWidth, Height: req.DisplayHeight},
	})
	if err != nil {
		return sessionError(c, err)
	}
	return respondEditor(c, editor)
}
