package models

import (
	"regexp"

	"github.com/go-playground/validator"
)

type App string

const (
	AppLanding      App = "landing"
	AppPhotoEditor  App = "photo_editor"
	AppVirtualTryOn App = "virtual_try_on"
)

var appRule = regexp.MustCompile("^(landing|photo_editor|virtual_try_on)$")

func ValidateApp(fl validator.FieldLevel) bool {
	return appRule.MatchString(fl.Field().String())
}

func ValidateAppRaw(value string) bool {
	return appRule.MatchString(value)
}

type TryOnScreen string

const (
	TryOnScreenStart TryOnScreen = "start"
	TryOnScreenMain  TryOnScreen = "main"
)

type EditorTab string

const (
	TabRetouch EditorTab = "retouch"
	TabAdjust  EditorTab = "adjust"
	TabFilters EditorTab = "filters"
	TabCrop    EditorTab = "crop"
)

var tabRule = regexp.MustCompile("^(retouch|adjust|filters|crop)$")

func ValidateTab(fl validator.FieldLevel) bool {
	return tabRule.MatchString(fl.Field().String())
}

func ValidateTabRaw(value string) bool {
	return tabRule.MatchString(value)
}

// LoadingReason names the external call a screen is waiting on.
type LoadingReason string

const (
	LoadingNone          LoadingReason = ""
	LoadingLocalizedEdit LoadingReason = "localized-edit"
	LoadingFilter        LoadingReason = "filter"
	LoadingAdjustment    LoadingReason = "adjustment"
	LoadingRemoveBG      LoadingReason = "remove-background"
	LoadingGenerateModel LoadingReason = "generate-model"
	LoadingAddGarment    LoadingReason = "add-garment"
	LoadingChangePose    LoadingReason = "change-pose"
	LoadingRefreshPose   LoadingReason = "refresh-pose"
)

func (l LoadingReason) Message() string {
	switch l {
	case LoadingLocalizedEdit, LoadingFilter, LoadingAdjustment, LoadingRemoveBG:
		return "AI is working its magic..."
	case LoadingGenerateModel:
		return "Generating your model..."
	case LoadingAddGarment:
		return "Adding garment..."
	case LoadingChangePose, LoadingRefreshPose:
		return "Changing pose..."
	}
	return ""
}
