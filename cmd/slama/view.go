package main

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"slama/pkg/browser"
)

func (c *cli) viewCommand() *cobra.Command {
	var width, height int

	cmd := &cobra.Command{
		Use:   "view <url>",
		Short: "Open a page in a window",
		Long: `Open a page in a resizable window. Up and Down scroll by one step, the
mouse wheel by half a step per notch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := c.newBrowser(ctx, width, height)
			if err != nil {
				return err
			}
			if err := b.Load(ctx, args[0]); err != nil {
				return err
			}

			a := app.New()
			w := a.NewWindow("slama - " + b.Title())
			w.Resize(fyne.NewSize(float32(c.cfg.Width), float32(c.cfg.Height)))
			if width > 0 && height > 0 {
				w.Resize(fyne.NewSize(float32(width), float32(height)))
			}

			view := newPageView(b, loggerFromContext(ctx))
			w.SetContent(view)
			w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
				switch ev.Name {
				case fyne.KeyDown:
					b.ScrollDown()
				case fyne.KeyUp:
					b.ScrollUp()
				default:
					return
				}
				view.Refresh()
			})
			w.ShowAndRun()
			return nil
		},
	}

	c.addViewportFlags(cmd, &width, &height)
	return cmd
}

// pageView paints the browser into a raster sized to the widget and turns
// wheel events into scrolling.
type pageView struct {
	widget.BaseWidget
	browser *browser.Browser
	logger  *log.Logger
	raster  *canvas.Raster
}

func newPageView(b *browser.Browser, logger *log.Logger) *pageView {
	v := &pageView{browser: b, logger: logger}
	v.raster = canvas.NewRaster(v.draw)
	v.ExtendBaseWidget(v)
	return v
}

func (v *pageView) draw(w, h int) image.Image {
	if err := v.browser.Resize(w, h); err != nil {
		v.logger.Error("resize failed", "width", w, "height", h, "err", err)
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}
	img, err := v.browser.Draw()
	if err != nil {
		v.logger.Error("draw failed", "err", err)
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return img
}

func (v *pageView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// Scrolled implements fyne.Scrollable. Fyne reports wheel-down as a
// negative DY.
func (v *pageView) Scrolled(ev *fyne.ScrollEvent) {
	switch {
	case ev.Scrolled.DY < 0:
		v.browser.ScrollWheel(1)
	case ev.Scrolled.DY > 0:
		v.browser.ScrollWheel(-1)
	default:
		return
	}
	v.Refresh()
}

func (v *pageView) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}
