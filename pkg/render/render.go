package render

import (
	"image"
	"strings"

	"github.com/fogleman/gg"

	"slama/pkg/layout"
	"slama/pkg/text"
)

type Renderer struct {
	context *gg.Context
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{context: gg.NewContext(width, height)}
}

// NewRendererForImage draws directly into target.
func NewRendererForImage(target *image.RGBA) *Renderer {
	return &Renderer{context: gg.NewContextForRGBA(target)}
}

// Visible returns the items that intersect the window [scroll, scroll+height).
// An item is treated as VStep pixels tall.
func Visible(items []layout.DisplayItem, scroll, height int) []layout.DisplayItem {
	var out []layout.DisplayItem
	for _, item := range items {
		if item.Y > scroll+height {
			continue
		}
		if item.Y+layout.VStep < scroll {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Render clears the surface and paints the items visible at the given scroll
// offset. It returns how many items were painted.
func (r *Renderer) Render(items []layout.DisplayItem, scroll int) int {
	r.context.SetRGB(1, 1, 1)
	r.context.Clear()
	r.context.SetRGB(0, 0, 0)

	visible := Visible(items, scroll, r.context.Height())
	for _, item := range visible {
		r.drawText(item, scroll)
	}
	return len(visible)
}

func (r *Renderer) drawText(item layout.DisplayItem, scroll int) {
	facer, ok := item.Font.(text.Facer)
	if !ok {
		return
	}
	r.context.SetFontFace(facer.Face())
	// gg positions text by baseline; display items are positioned by top.
	baseline := float64(item.Y-scroll) + float64(item.Font.Metrics().Ascent)
	r.context.DrawString(strings.ReplaceAll(item.Text, "\u00ad", ""), float64(item.X), baseline)
}

func (r *Renderer) Image() image.Image {
	return r.context.Image()
}

func (r *Renderer) SavePNG(path string) error {
	return r.context.SavePNG(path)
}

// DrawScrollbar paints a thumb in the rightmost gutter pixels showing which
// part of a contentHeight tall page is on screen. Nothing is drawn when the
// page fits.
func (r *Renderer) DrawScrollbar(gutter, scroll, contentHeight int) {
	height := r.context.Height()
	if gutter <= 0 || contentHeight <= height {
		return
	}
	thumb := float64(height) * float64(height) / float64(contentHeight)
	top := float64(scroll) * float64(height) / float64(contentHeight)
	x := float64(r.context.Width() - gutter)
	r.context.SetRGB(0.2, 0.4, 0.9)
	r.context.DrawRectangle(x, top, float64(gutter), thumb)
	r.context.Fill()
}
