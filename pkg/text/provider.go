package text

import (
	"fmt"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontConfig holds optional paths to TTF files. Empty paths fall back to the
// embedded Go fonts.
type FontConfig struct {
	Regular    string `toml:"regular"`
	Bold       string `toml:"bold"`
	Italic     string `toml:"italic"`
	BoldItalic string `toml:"bold_italic"`
}

// FontPath returns the configured path for the given weight and style, or "".
func (fc FontConfig) FontPath(weight Weight, style Style) string {
	bold := weight == WeightBold
	italic := style == StyleItalic
	switch {
	case bold && italic:
		return fc.BoldItalic
	case bold:
		return fc.Bold
	case italic:
		return fc.Italic
	}
	return fc.Regular
}

func embeddedTTF(weight Weight, style Style) []byte {
	bold := weight == WeightBold
	italic := style == StyleItalic
	switch {
	case bold && italic:
		return gobolditalic.TTF
	case bold:
		return gobold.TTF
	case italic:
		return goitalic.TTF
	}
	return goregular.TTF
}

// FaceProvider loads faces at 72 DPI so that a font's size in points equals
// its size in pixels.
type FaceProvider struct {
	fonts FontConfig
}

func NewFaceProvider(fonts FontConfig) *FaceProvider {
	return &FaceProvider{fonts: fonts}
}

func (p *FaceProvider) Load(key FontKey) (Font, error) {
	if key.Size <= 0 {
		return nil, fmt.Errorf("loading font %s: size must be positive", key)
	}
	if path := p.fonts.FontPath(key.Weight, key.Style); path != "" {
		face, err := gg.LoadFontFace(path, float64(key.Size))
		if err != nil {
			return nil, fmt.Errorf("loading font %s from %s: %w", key, path, err)
		}
		return newFaceFont(key, face), nil
	}

	parsed, err := opentype.Parse(embeddedTTF(key.Weight, key.Style))
	if err != nil {
		return nil, fmt.Errorf("parsing embedded font %s: %w", key, err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(key.Size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating face %s: %w", key, err)
	}
	return newFaceFont(key, face), nil
}
