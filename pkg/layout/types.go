package layout

import (
	"errors"

	"slama/pkg/text"
)

const (
	// HStep is the left margin and the right-hand reserve of every line.
	HStep = 13
	// VStep is the top margin and the gap added after paragraphs and headings.
	VStep = 18

	defaultFontSize = 16
	leading         = 1.25
	softHyphen      = "\u00ad"
)

// ErrInvalidWidth is returned for a content width that is zero or negative.
var ErrInvalidWidth = errors.New("layout width must be positive")

// FontSource resolves fonts during layout. *text.Cache satisfies it.
type FontSource interface {
	Get(size int, weight text.Weight, style text.Style) (text.Font, error)
}

type Positioning int

const (
	PositionNormal Positioning = iota
	PositionSuperscript
	PositionSubscript
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// DisplayItem is one positioned word. X and Y are the top-left corner in
// page coordinates.
type DisplayItem struct {
	X    int
	Y    int
	Text string
	Font text.Font
}

// pendingItem waits in the current line until flush assigns its y.
type pendingItem struct {
	x           int
	text        string
	font        text.Font
	positioning Positioning
}

// LayoutState is the cursor, style and line buffer of one Render call.
type LayoutState struct {
	width int

	cursorX int
	cursorY int

	size        int
	weight      text.Weight
	style       text.Style
	align       Align
	positioning Positioning
	savedSizes  []int // sizes replaced by open sup/sub, innermost last

	line  []pendingItem
	items []DisplayItem
}

func newLayoutState(width int) *LayoutState {
	return &LayoutState{
		width:   width,
		cursorX: HStep,
		cursorY: VStep,
		size:    defaultFontSize,
		weight:  text.WeightNormal,
		style:   text.StyleRoman,
	}
}
