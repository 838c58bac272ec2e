package text

import (
	"fmt"

	"golang.org/x/image/font"
)

type Weight int

const (
	WeightNormal Weight = iota
	WeightBold
)

func (w Weight) String() string {
	if w == WeightBold {
		return "bold"
	}
	return "normal"
}

type Style int

const (
	StyleRoman Style = iota
	StyleItalic
)

func (s Style) String() string {
	if s == StyleItalic {
		return "italic"
	}
	return "roman"
}

// FontKey identifies one font instance.
type FontKey struct {
	Size   int
	Weight Weight
	Style  Style
}

func (k FontKey) String() string {
	return fmt.Sprintf("%dpx %s %s", k.Size, k.Weight, k.Style)
}

// Metrics are whole-pixel line metrics.
type Metrics struct {
	Ascent     int
	Descent    int
	LineHeight int
}

// Font measures text for one FontKey.
type Font interface {
	Key() FontKey
	Measure(s string) int
	Metrics() Metrics
}

// Facer is implemented by fonts that can also be drawn.
type Facer interface {
	Face() font.Face
}

// Provider creates fonts. Each call may allocate a new face.
type Provider interface {
	Load(key FontKey) (Font, error)
}

type faceFont struct {
	key     FontKey
	face    font.Face
	metrics Metrics
}

func newFaceFont(key FontKey, face font.Face) *faceFont {
	m := face.Metrics()
	return &faceFont{
		key:  key,
		face: face,
		metrics: Metrics{
			Ascent:     m.Ascent.Ceil(),
			Descent:    m.Descent.Ceil(),
			LineHeight: m.Height.Ceil(),
		},
	}
}

func (f *faceFont) Key() FontKey     { return f.key }
func (f *faceFont) Metrics() Metrics { return f.metrics }
func (f *faceFont) Face() font.Face  { return f.face }

func (f *faceFont) Measure(s string) int {
	return font.MeasureString(f.face, s).Ceil()
}
