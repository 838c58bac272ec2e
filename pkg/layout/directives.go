package layout

import "slama/pkg/text"

// directive is a recognized inline-style instruction. Tags that map to
// dirNone have no effect on layout.
type directive int

const (
	dirNone directive = iota
	dirItalic
	dirEndItalic
	dirBold
	dirEndBold
	dirBig
	dirEndBig
	dirSmall
	dirEndSmall
	dirHeading1
	dirTitleHeading
	dirEndHeading1
	dirHeading2
	dirEndHeading2
	dirSuperscript
	dirEndSuperscript
	dirSubscript
	dirEndSubscript
	dirBreak
	dirEndParagraph
)

var openDirectives = map[string]directive{
	"i":     dirItalic,
	"b":     dirBold,
	"big":   dirBig,
	"small": dirSmall,
	"h1":    dirHeading1,
	"h2":    dirHeading2,
	"sup":   dirSuperscript,
	"sub":   dirSubscript,
	"br":    dirBreak,
}

var closeDirectives = map[string]directive{
	"i":     dirEndItalic,
	"b":     dirEndBold,
	"big":   dirEndBig,
	"small": dirEndSmall,
	"h1":    dirEndHeading1,
	"h2":    dirEndHeading2,
	"sup":   dirEndSuperscript,
	"sub":   dirEndSubscript,
	"br":    dirBreak,
	"p":     dirEndParagraph,
}

// classify maps an opening or closing tag to its directive.
func classify(tag string, closing bool, attrs map[string]string) directive {
	if closing {
		return closeDirectives[tag]
	}
	d := openDirectives[tag]
	if d == dirHeading1 && attrs["class"] == "title" {
		return dirTitleHeading
	}
	return d
}

// apply mutates the style state for d. Additive size changes are undone by
// the matching closing directive; sup and sub restore the saved size.
func (st *LayoutState) apply(d directive) {
	switch d {
	case dirItalic:
		st.style = text.StyleItalic
	case dirEndItalic:
		st.style = text.StyleRoman
	case dirBold:
		st.weight = text.WeightBold
	case dirEndBold:
		st.weight = text.WeightNormal
	case dirBig:
		st.size += 4
	case dirEndBig:
		st.size -= 4
	case dirSmall:
		st.size -= 2
	case dirEndSmall:
		st.size += 2
	case dirHeading1, dirTitleHeading:
		st.flush()
		st.size += 8
		if d == dirTitleHeading {
			st.align = AlignCenter
		}
	case dirEndHeading1:
		st.flush()
		st.size -= 8
		st.cursorY += VStep
		st.align = AlignLeft
	case dirHeading2:
		st.size += 4
	case dirEndHeading2:
		st.size -= 4
	case dirSuperscript:
		st.shrink()
		st.positioning = PositionSuperscript
	case dirEndSuperscript:
		st.unshrink()
		st.positioning = PositionNormal
	case dirSubscript:
		st.shrink()
		st.positioning = PositionSubscript
	case dirEndSubscript:
		st.unshrink()
		st.positioning = PositionNormal
	case dirBreak:
		st.flush()
	case dirEndParagraph:
		st.flush()
		st.cursorY += VStep
	default:
	}
}

// shrink halves the size for sup/sub and remembers the size it replaced.
func (st *LayoutState) shrink() {
	st.savedSizes = append(st.savedSizes, st.size)
	st.size /= 2
}

// unshrink restores the size saved by the matching shrink. A close with no
// saved size doubles instead.
func (st *LayoutState) unshrink() {
	if n := len(st.savedSizes); n > 0 {
		st.size = st.savedSizes[n-1]
		st.savedSizes = st.savedSizes[:n-1]
		return
	}
	st.size *= 2
}
