package models

import (
	"image"
	"math"
)

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s Size) Positive() bool {
	return s.Width > 0 && s.Height > 0
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Hotspot is the target of a localized edit. Point is in source-image pixels,
// Display mirrors it in on-screen coordinates for visual feedback.
type Hotspot struct {
	Point   Point `json:"point"`
	Display Point `json:"display"`
}

// HotspotFromDisplay scales an on-screen click into source pixels using the
// ratio of natural to displayed dimensions.
func HotspotFromDisplay(display Point, displayed Size, natural Size) Hotspot {
	scaleX := natural.Width / displayed.Width
	scaleY := natural.Height / displayed.Height
	return Hotspot{
		Point: Point{
			X: math.Round(display.X * scaleX),
			Y: math.Round(display.Y * scaleY),
		},
		Display: display,
	}
}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CropSelection is a rectangle drawn over the displayed image.
type CropSelection struct {
	Region    Rect `json:"region"`
	Displayed Size `json:"displayed"`
}

func (c CropSelection) Valid() bool {
	return c.Region.Width > 0 && c.Region.Height > 0 && c.Displayed.Positive()
}

// SourceRect maps the selection into source pixel space, clamped to the image.
func (c CropSelection) SourceRect(natural Size) image.Rectangle {
	scaleX := natural.Width / c.Displayed.Width
	scaleY := natural.Height / c.Displayed.Height
	rect := image.Rect(
		int(math.Round(c.Region.X*scaleX)),
		int(math.Round(c.Region.Y*scaleY)),
		int(math.Round((c.Region.X+c.Region.Width)*scaleX)),
		int(math.Round((c.Region.Y+c.Region.Height)*scaleY)),
	)
	return rect.Intersect(image.Rect(0, 0, int(natural.Width), int(natural.Height)))
}
