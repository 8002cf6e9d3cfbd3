package controllers

import (
	"net/http"
	"testing"

	"studioapi/models"
	"studioapi/services"
	"studioapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acceptModel(t *testing.T, client *studioClient) models.TryOnOut {
	t.Helper()
	rec := client.do(http.MethodPost, "/studio/tryon/model", models.ImageUploadIn{
		Name:    "me.png",
		DataURL: test.PNGDataURL(6, 8),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[models.TryOnOut](t, rec)
	require.NotNil(t, view.Intake)
	require.NotNil(t, view.Intake.Generated)

	rec = client.do(http.MethodPost, "/studio/tryon/model/accept", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[models.TryOnOut](t, rec)
	require.Equal(t, models.TryOnScreenMain, view.Screen)
	return view
}

func TestTryOnModelIntake(t *testing.T) {
	client, images, _ := setupStudio(t)
	client.open(models.AppVirtualTryOn)

	rec := client.do(http.MethodPost, "/studio/tryon/model/accept", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = client.do(http.MethodPost, "/studio/tryon/model/retry", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	images.FailWith(services.OpGenerateModel, &services.ImageServiceError{
		Operation: services.OpGenerateModel,
		Reason:    "The model did not return an image.",
		Err:       services.ErrNoImage,
	})
	rec = client.do(http.MethodPost, "/studio/tryon/model", models.ImageUploadIn{DataURL: test.PNGDataURL(6, 8)})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = client.do(http.MethodGet, "/studio/tryon", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[models.TryOnOut](t, rec)
	require.NotNil(t, view.Intake)
	require.NotNil(t, view.Intake.Error)
	assert.NotNil(t, view.Intake.Source)
	assert.Nil(t, view.Intake.Generated)

	images.FailWith(services.OpGenerateModel, nil)
	rec = client.do(http.MethodPost, "/studio/tryon/model/retry", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[models.TryOnOut](t, rec)
	assert.Nil(t, view.Intake.Error)
	assert.NotNil(t, view.Intake.Generated)
	assert.Equal(t, 2, images.Calls(services.OpGenerateModel))

	rec = client.do(http.MethodPost, "/studio/tryon/model/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[models.TryOnOut](t, rec)
	assert.Nil(t, view.Intake.Source)
	assert.Nil(t, view.Intake.Generated)
}

func TestTryOnOutfitFlow(t *testing.T) {
	client, images, _ := setupStudio(t, "denim-jacket", "white-tee")
	client.open(models.AppVirtualTryOn)
	view := acceptModel(t, client)
	assert.Equal(t, models.DefaultPose(), view.CurrentPose)
	assert.Empty(t, view.Layers)
	assert.NotNil(t, view.Display)

	rec := client.do(http.MethodPost, "/studio/tryon/garments", models.AddGarmentIn{GarmentID: "denim-jacket"})
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[models.TryOnOut](t, rec)
	require.Len(t, view.Layers, 1)
	assert.Equal(t, []string{"denim-jacket"}, view.AppliedGarmentIDs)
	assert.Equal(t, 1, images.Calls(services.OpCompositeGarment))

	rec = client.do(http.MethodGet, "/studio/tryon/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	catalog := decode[[]models.CatalogGarmentOut](t, rec)
	require.Len(t, catalog, 2)
	assert.True(t, catalog[0].Disabled)
	assert.False(t, catalog[1].Disabled)
	assert.Equal(t, "https://cdn.example.com/garments/white-tee.png", catalog[1].URL)

	rec = client.do(http.MethodPost, "/studio/tryon/garments", models.AddGarmentIn{GarmentID: "denim-jacket"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = client.do(http.MethodPost, "/studio/tryon/garments", models.AddGarmentIn{GarmentID: "ball-gown"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = client.do(http.MethodPost, "/studio/tryon/garments", models.AddGarmentIn{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = client.do(http.MethodPost, "/studio/tryon/garments", models.AddGarmentIn{
		Name:    "my_red_scarf.png",
		DataURL: test.PNGDataURL(4, 4),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[models.TryOnOut](t, rec)
	require.Len(t, view.Layers, 2)
	assert.Equal(t, "My Red Scarf", view.Layers[1].GarmentName)
	assert.Equal(t, 2, images.Calls(services.OpCompositeGarment))

	rec = client.do(http.MethodPost, "/studio/tryon/garments/pop", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[models.TryOnOut](t, rec).Layers, 1)
}

func TestTryOnPose(t *testing.T) {
	client, images, _ := setupStudio(t, "denim-jacket")
	client.open(models.AppVirtualTryOn)
	acceptModel(t, client)

	rec := client.do(http.MethodPost, "/studio/tryon/pose", models.ChangePoseIn{Pose: "Doing a backflip"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = client.do(http.MethodPost, "/studio/tryon/pose/refresh", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = client.do(http.MethodPost, "/studio/tryon/garments", models.AddGarmentIn{GarmentID: "denim-jacket"})
	require.Equal(t, http.StatusOK, rec.Code)

	pose := models.Poses[2]
	rec = client.do(http.MethodPost, "/studio/tryon/pose", models.ChangePoseIn{Pose: pose})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[models.TryOnOut](t, rec)
	assert.Equal(t, pose, view.CurrentPose)
	assert.Equal(t, []string{models.Poses[0], pose}, view.Layers[0].CachedPoses)
	assert.Equal(t, 1, images.Calls(services.OpRegeneratePose))

	// cached poses never hit the service again
	rec = client.do(http.MethodPost, "/studio/tryon/pose", models.ChangePoseIn{Pose: models.Poses[0]})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = client.do(http.MethodPost, "/studio/tryon/pose", models.ChangePoseIn{Pose: pose})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, images.Calls(services.OpRegeneratePose))
}

func TestTryOnFailureAndStartOver(t *testing.T) {
	client, images, _ := setupStudio(t, "denim-jacket")
	client.open(models.AppVirtualTryOn)
	acceptModel(t, client)

	images.FailWith(services.OpCompositeGarment, &services.ImageServiceError{
		Operation: services.OpCompositeGarment,
		Reason:    "Image generation stopped unexpectedly. Reason: SAFETY.",
		Err:       services.ErrContentBlocked,
	})
	rec := client.do(http.MethodPost, "/studio/tryon/garments", models.AddGarmentIn{GarmentID: "denim-jacket"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = client.do(http.MethodPost, "/studio/tryon/pose", models.ChangePoseIn{Pose: models.Poses[1]})
	assert.Equal(t, http.StatusLocked, rec.Code)

	rec = client.do(http.MethodPost, "/studio/tryon/dismiss", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[models.TryOnOut](t, rec)
	assert.Nil(t, view.Error)
	assert.Empty(t, view.Layers)

	rec = client.do(http.MethodPost, "/studio/tryon/start-over", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[models.TryOnOut](t, rec)
	assert.Equal(t, models.TryOnScreenStart, view.Screen)
	require.NotNil(t, view.Intake)
	assert.Nil(t, view.Intake.Generated)
}
