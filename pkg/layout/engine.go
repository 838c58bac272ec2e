package layout

import (
	"fmt"
	gohtml "html"
	"strings"

	"slama/pkg/html"
	"slama/pkg/text"
)

// Engine lays out documents into display items. It holds no per-call state,
// so Render may be called again for every width change.
type Engine struct {
	fonts FontSource
}

func NewEngine(fonts FontSource) *Engine {
	return &Engine{fonts: fonts}
}

// Render walks doc in document order and returns its display items for a
// content area width pixels wide.
func (e *Engine) Render(doc *html.Document, width int) ([]DisplayItem, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWidth, width)
	}
	st := newLayoutState(width)
	if err := e.visit(st, doc, doc.Root); err != nil {
		return nil, err
	}
	st.flush()
	return st.items, nil
}

func (e *Engine) visit(st *LayoutState, doc *html.Document, id html.NodeID) error {
	n := doc.Node(id)
	if n == nil {
		return nil
	}
	switch n.Type {
	case html.TextNode:
		return e.text(st, n.Text)
	case html.CommentNode:
		return nil
	}

	// Head content is metadata, not page text.
	if n.TagName == "head" {
		return nil
	}
	st.apply(classify(n.TagName, false, n.Attributes))
	if html.IsSelfClosing(n.TagName) {
		return nil
	}
	for _, child := range n.Children {
		if err := e.visit(st, doc, child); err != nil {
			return err
		}
	}
	st.apply(classify(n.TagName, true, nil))
	return nil
}

func (e *Engine) text(st *LayoutState, raw string) error {
	for _, word := range strings.Fields(gohtml.UnescapeString(raw)) {
		if err := e.word(st, word); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) font(st *LayoutState) (text.Font, error) {
	size := st.size
	if size < 1 {
		size = 1
	}
	f, err := e.fonts.Get(size, st.weight, st.style)
	if err != nil {
		return nil, fmt.Errorf("resolving font: %w", err)
	}
	return f, nil
}

func (e *Engine) word(st *LayoutState, word string) error {
	f, err := e.font(st)
	if err != nil {
		return err
	}
	w := f.Measure(word)
	limit := st.width - HStep
	if st.cursorX+w > limit {
		if prefix := hyphenate(f, word, limit-st.cursorX); prefix != "" {
			st.line = append(st.line, pendingItem{x: st.cursorX, text: prefix, font: f, positioning: st.positioning})
		}
		st.flush()
	}
	// After a hyphenated prefix the whole word is placed again on the new
	// line; the remainder is not shortened.
	st.line = append(st.line, pendingItem{x: st.cursorX, text: word, font: f, positioning: st.positioning})
	st.cursorX += w + f.Measure(" ")
	return nil
}

// hyphenate returns the longest run of leading soft-hyphen fragments, plus a
// literal "-", whose width fits in room. It returns "" when word has no
// break points or nothing fits.
func hyphenate(f text.Font, word string, room int) string {
	parts := strings.Split(word, softHyphen)
	for k := len(parts) - 1; k >= 1; k-- {
		head := strings.Join(parts[:k], "")
		if head == "" {
			continue
		}
		candidate := head + "-"
		if f.Measure(candidate) <= room {
			return candidate
		}
	}
	return ""
}

// flush finalizes the current line: applies alignment, computes the
// baseline from the tallest font and emits display items in input order.
func (st *LayoutState) flush() {
	if len(st.line) == 0 {
		return
	}

	last := st.line[len(st.line)-1]
	offset := 0
	switch st.align {
	case AlignCenter:
		offset = (st.width - last.x) / 2
	case AlignRight:
		offset = st.width - last.x - HStep
	}

	maxAscent, maxDescent := 0, 0
	for _, item := range st.line {
		m := item.font.Metrics()
		maxAscent = max(maxAscent, m.Ascent)
		maxDescent = max(maxDescent, m.Descent)
	}
	baseline := float64(st.cursorY) + leading*float64(maxAscent)

	for _, item := range st.line {
		m := item.font.Metrics()
		var y float64
		switch item.positioning {
		case PositionSuperscript:
			y = baseline - float64(m.Ascent) - float64(m.LineHeight)
		case PositionSubscript:
			y = baseline - float64(m.Ascent)*0.5
		default:
			y = baseline - float64(m.Ascent)
		}
		st.items = append(st.items, DisplayItem{
			X:    item.x + offset,
			Y:    int(y),
			Text: item.text,
			Font: item.font,
		})
	}

	st.cursorY = int(baseline + leading*float64(maxDescent))
	st.cursorX = HStep
	st.line = st.line[:0]
}
