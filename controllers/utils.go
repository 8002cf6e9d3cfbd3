package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"studioapi/models"
	"studioapi/services"
	"studioapi/sessions"

	"github.com/getsentry/sentry-go"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const sessionTokenLifetime = 24 * time.Hour

func GenerateSessionToken(sessionID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sessionID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTokenLifetime)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func currentStudio(c echo.Context) *sessions.Studio {
	return c.Get("studio").(*sessions.Studio)
}

// bindAndValidate binds the body into req and runs validator tags. The
// returned error is meant for a 400 response.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.New("Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return fmt.Errorf("%v", httpErr.Message)
		}
		return err
	}
	return nil
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
}

// sessionError maps session and service errors to a status code.
func sessionError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	message := err.Error()
	switch {
	case errors.Is(err, sessions.ErrExternal):
		status = http.StatusBadGateway
		message = services.UserMessage(err)
	case errors.Is(err, sessions.ErrUnacknowledgedError):
		status = http.StatusLocked
	case errors.Is(err, sessions.ErrClosed):
		status = http.StatusGone
	case errors.Is(err, sessions.ErrProcessing):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, sessions.ErrEmptyPrompt),
		errors.Is(err, sessions.ErrUnknownPose),
		errors.Is(err, sessions.ErrInvalidDisplaySize),
		errors.Is(err, models.ErrInvalidDataURL),
		errors.Is(err, models.ErrMissingMIMEType),
		errors.Is(err, models.ErrNotAnImage):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUnknownGarment):
		status = http.StatusNotFound
	case errors.Is(err, sessions.ErrBusy),
		errors.Is(err, sessions.ErrNoImage),
		errors.Is(err, sessions.ErrNoHotspot),
		errors.Is(err, sessions.ErrWrongTab),
		errors.Is(err, sessions.ErrInvalidCrop),
		errors.Is(err, sessions.ErrNoPortrait),
		errors.Is(err, sessions.ErrNoModel),
		errors.Is(err, sessions.ErrNoGarmentImage),
		errors.Is(err, sessions.ErrGarmentApplied),
		errors.Is(err, sessions.ErrPoseNotStale),
		errors.Is(err, sessions.ErrWrongScreen),
		errors.Is(err, sessions.ErrInvalidTransition):
		status = http.StatusConflict
	default:
		log.Printf("[Session: %s] unexpected error: %v", services.SessionIDFrom(c.Request().Context()), err)
		sentry.CaptureException(fmt.Errorf("%s %s: %w", c.Request().Method, c.Path(), err))
		message = "Internal error"
	}
	return c.JSON(status, map[string]string{"error": message})
}

func uploadedAsset(in models.ImageUploadIn, fallbackName string) (*models.ImageAsset, error) {
	name := in.Name
	if name == "" {
		name = fallbackName
	}
	return models.ImageAssetFromDataURL(in.DataURL, name)
}
