// Package browser ties retrieval, parsing, layout and painting together
// behind a scrollable, resizable page view.
package browser

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"slama/pkg/config"
	"slama/pkg/html"
	"slama/pkg/js"
	"slama/pkg/layout"
	"slama/pkg/render"
	"slama/pkg/resource"
)

var ErrNoPage = errors.New("no page loaded")

// Browser holds one loaded page and the viewport onto it. It is safe for
// use from a UI thread and a paint callback at the same time.
type Browser struct {
	cfg     config.Config
	engine  *layout.Engine
	fetcher resource.Fetcher
	logger  *log.Logger

	mu     sync.Mutex
	url    *resource.URL
	doc    *html.Document
	items  []layout.DisplayItem
	width  int
	height int
	scroll int
}

func New(cfg config.Config, fonts layout.FontSource, fetcher resource.Fetcher, logger *log.Logger) *Browser {
	return &Browser{
		cfg:     cfg,
		engine:  layout.NewEngine(fonts),
		fetcher: fetcher,
		logger:  logger,
		width:   cfg.Width,
		height:  cfg.Height,
	}
}

// Load fetches rawURL and lays the page out at the current width. A
// truncated page or a failing script is logged and the page is still shown.
func (b *Browser) Load(ctx context.Context, rawURL string) error {
	u, err := resource.ParseURL(rawURL)
	if err != nil {
		return err
	}
	body, err := b.fetcher.Fetch(ctx, u)
	if err != nil {
		return err
	}
	b.logger.Debug("fetched", "url", u.String(), "bytes", len(body))
	return b.loadDocument(ctx, u, html.Parse(body))
}

// LoadString shows markup that did not come from a URL.
func (b *Browser) LoadString(markup string) error {
	return b.loadDocument(context.Background(), nil, html.Parse(markup))
}

func (b *Browser) loadDocument(ctx context.Context, u *resource.URL, doc *html.Document) error {
	if err := doc.Err(); err != nil {
		b.logger.Warn("page truncated", "err", err)
	}
	if b.cfg.Scripts && len(doc.Scripts) > 0 {
		b.runScripts(ctx, doc)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	items, err := b.engine.Render(doc, b.cfg.ContentWidth(b.width))
	if err != nil {
		return fmt.Errorf("laying out page: %w", err)
	}
	b.url = u
	b.doc = doc
	b.items = items
	b.scroll = 0
	b.logger.Debug("laid out", "items", len(items), "width", b.width)
	return nil
}

func (b *Browser) runScripts(ctx context.Context, doc *html.Document) {
	var se *js.ScriptError
	if err := js.New(b.logger).Execute(ctx, doc); errors.As(err, &se) {
		b.logger.Error("script failed", "script", se.Index, "err", se.Message, "stack", se.Stack)
	}
}

// Resize changes the viewport. Layout is redone only when the width changes.
// If that layout fails the previous size and layout are kept.
func (b *Browser) Resize(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if width == b.width && height == b.height {
		return nil
	}
	if width != b.width && b.doc != nil {
		items, err := b.engine.Render(b.doc, b.cfg.ContentWidth(width))
		if err != nil {
			return fmt.Errorf("laying out page: %w", err)
		}
		b.items = items
	}
	b.width, b.height = width, height
	return nil
}

func (b *Browser) ScrollDown() { b.addScroll(b.cfg.ScrollStep) }

func (b *Browser) ScrollUp() { b.addScroll(-b.cfg.ScrollStep) }

// ScrollWheel scrolls by half a step per wheel notch. Positive delta moves
// down the page.
func (b *Browser) ScrollWheel(delta int) {
	b.addScroll(delta * (b.cfg.ScrollStep / 2))
}

func (b *Browser) addScroll(offset int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scroll = max(0, b.scroll+offset)
}

func (b *Browser) Scroll() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scroll
}

// Title is the page's <title>, or its URL when it has none.
func (b *Browser) Title() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.doc != nil {
		if title := b.doc.Title(); title != "" {
			return title
		}
	}
	if b.url != nil {
		return b.url.String()
	}
	return ""
}

// DisplayList returns a copy of the current display items.
func (b *Browser) DisplayList() []layout.DisplayItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]layout.DisplayItem(nil), b.items...)
}

// Document returns the loaded tree, or nil.
func (b *Browser) Document() *html.Document {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc
}

// contentHeight is the bottom of the last line of the page.
func contentHeight(items []layout.DisplayItem) int {
	bottom := 0
	for _, item := range items {
		if y := item.Y + layout.VStep; y > bottom {
			bottom = y
		}
	}
	return bottom
}

// Draw paints the visible part of the page.
func (b *Browser) Draw() (*image.RGBA, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.doc == nil {
		return nil, ErrNoPage
	}
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	b.paint(render.NewRendererForImage(img))
	return img, nil
}

// SavePNG writes the visible part of the page to path.
func (b *Browser) SavePNG(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.doc == nil {
		return ErrNoPage
	}
	r := render.NewRenderer(b.width, b.height)
	b.paint(r)
	if err := r.SavePNG(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func (b *Browser) paint(r *render.Renderer) {
	r.Render(b.items, b.scroll)
	r.DrawScrollbar(b.cfg.ScrollbarWidth, b.scroll, contentHeight(b.items))
}

// Links returns the targets of the page's <a href> elements in document
// order, resolved against the page URL. Fragment-only and unresolvable
// links are skipped.
func (b *Browser) Links() []*resource.URL {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.doc == nil {
		return nil
	}
	var links []*resource.URL
	for _, id := range b.doc.ElementsByTagName("a") {
		href, ok := b.doc.Node(id).GetAttribute("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" || strings.HasPrefix(href, "#") {
			continue
		}
		var (
			u   *resource.URL
			err error
		)
		if b.url != nil {
			u, err = b.url.Resolve(href)
		} else {
			u, err = resource.ParseURL(href)
		}
		if err != nil {
			b.logger.Debug("skipping link", "href", href, "err", err)
			continue
		}
		links = append(links, u)
	}
	return links
}
