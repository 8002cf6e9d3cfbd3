package models

import (
	"slices"

	"github.com/go-playground/validator"
)

// Poses is the fixed set of pose labels, the first one is the default.
var Poses = []string{
	"Full frontal view",
	"Walking towards camera",
	"Side view, looking left",
	"3/4 view, smiling",
	"Hands on hips",
}

func DefaultPose() string {
	return Poses[0]
}

func ValidatePoseRaw(value string) bool {
	return slices.Contains(Poses, value)
}

func ValidatePose(fl validator.FieldLevel) bool {
	return ValidatePoseRaw(fl.Field().String())
}
