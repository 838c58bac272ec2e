package layout

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"slama/pkg/html"
	"slama/pkg/text"
)

// fixedFont advances size/2 pixels per rune, ascends size and descends size/4.
type fixedFont struct {
	key text.FontKey
}

func (f fixedFont) Key() text.FontKey { return f.key }

func (f fixedFont) Measure(s string) int {
	return utf8.RuneCountInString(s) * (f.key.Size / 2)
}

func (f fixedFont) Metrics() text.Metrics {
	return text.Metrics{
		Ascent:     f.key.Size,
		Descent:    f.key.Size / 4,
		LineHeight: f.key.Size + f.key.Size/4,
	}
}

type fixedFonts struct {
	gets int
}

func (s *fixedFonts) Get(size int, weight text.Weight, style text.Style) (text.Font, error) {
	s.gets++
	return fixedFont{key: text.FontKey{Size: size, Weight: weight, Style: style}}, nil
}

func render(t *testing.T, markup string, width int) []DisplayItem {
	t.Helper()
	items, err := NewEngine(&fixedFonts{}).Render(html.Parse(markup), width)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return items
}

func texts(items []DisplayItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.Text
	}
	return strings.Join(parts, " ")
}

func TestRender_SingleWord(t *testing.T) {
	items := render(t, "hi", 800)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	// ascent 16: baseline 18 + 16*1.25 = 38, top 38 - 16 = 22
	if items[0].X != HStep || items[0].Y != 22 {
		t.Errorf("expected (13, 22), got (%d, %d)", items[0].X, items[0].Y)
	}
	if items[0].Text != "hi" {
		t.Errorf("expected 'hi', got %q", items[0].Text)
	}
	if k := items[0].Font.Key(); k.Size != 16 || k.Weight != text.WeightNormal || k.Style != text.StyleRoman {
		t.Errorf("expected default font, got %s", k)
	}
}

func TestRender_WordsShareLine(t *testing.T) {
	items := render(t, "one two", 800)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	// "one" is 24px wide, then one 8px space
	if items[1].X != 13+24+8 {
		t.Errorf("expected second word at 45, got %d", items[1].X)
	}
	if items[0].Y != items[1].Y {
		t.Errorf("expected same line, got y %d and %d", items[0].Y, items[1].Y)
	}
}

func TestRender_WrapsAtWidth(t *testing.T) {
	// limit 87: "aaaa" ends at 45, next word starts at 53 and needs 40
	items := render(t, "aaaa bbbbb", 100)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[1].X != HStep {
		t.Errorf("expected wrapped word at left margin, got %d", items[1].X)
	}
	if items[1].Y <= items[0].Y {
		t.Errorf("expected second line below first, got %d <= %d", items[1].Y, items[0].Y)
	}
	// first line ends at int(38 + 4*1.25) = 43; next top = int(43+20) - 16
	if items[1].Y != 47 {
		t.Errorf("expected y 47, got %d", items[1].Y)
	}
}

func TestRender_TitleCentered(t *testing.T) {
	left := render(t, "<h1>ab cd</h1>", 200)
	center := render(t, `<h1 class="title">ab cd</h1>`, 200)
	if len(left) != 2 || len(center) != 2 {
		t.Fatalf("expected 2 items each, got %d and %d", len(left), len(center))
	}
	// 24px font: "ab" at 13, "cd" at 13+24+12 = 49
	if left[0].X != 13 || left[1].X != 49 {
		t.Errorf("expected left-aligned x 13 and 49, got %d and %d", left[0].X, left[1].X)
	}
	offset := center[0].X - left[0].X
	if offset != (200-49)/2 {
		t.Errorf("expected offset %d, got %d", (200-49)/2, offset)
	}
	if center[1].X-left[1].X != offset {
		t.Errorf("expected uniform offset %d, got %d", offset, center[1].X-left[1].X)
	}
}

func TestRender_AlignmentResetsAfterHeading(t *testing.T) {
	items := render(t, `<h1 class="title">T</h1>body`, 400)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[1].X != HStep {
		t.Errorf("expected text after the heading at the margin, got %d", items[1].X)
	}
	if items[1].Font.Key().Size != 16 {
		t.Errorf("expected size restored to 16, got %d", items[1].Font.Key().Size)
	}
}

func TestRender_ClassOtherThanTitle(t *testing.T) {
	items := render(t, `<h1 class="subtitle">x</h1>`, 400)
	if items[0].X != HStep {
		t.Errorf("expected only class=title to center, got x %d", items[0].X)
	}
}

func TestFlush_RightAlign(t *testing.T) {
	st := newLayoutState(200)
	f := fixedFont{key: text.FontKey{Size: 16}}
	st.align = AlignRight
	st.line = append(st.line,
		pendingItem{x: 13, text: "a", font: f},
		pendingItem{x: 29, text: "b", font: f},
	)
	st.flush()
	offset := 200 - 29 - HStep
	if st.items[0].X != 13+offset || st.items[1].X != 29+offset {
		t.Errorf("expected offset %d on every item, got x %d and %d", offset, st.items[0].X, st.items[1].X)
	}
	if st.cursorX != HStep || len(st.line) != 0 {
		t.Errorf("expected cursor reset and empty line, got x %d with %d pending", st.cursorX, len(st.line))
	}
}

func TestFlush_EmptyLineIsNoop(t *testing.T) {
	st := newLayoutState(200)
	st.flush()
	if st.cursorY != VStep || len(st.items) != 0 {
		t.Errorf("expected no change, got y %d with %d items", st.cursorY, len(st.items))
	}
}

func TestRender_Hyphenation(t *testing.T) {
	word := "abc\u00addef\u00adghi"
	// 11 runes = 88px, too wide for a 100px page; "abcdef-" is 56px
	items := render(t, "abc&shy;def&shy;ghi", 100)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %s", len(items), texts(items))
	}
	if items[0].Text != "abcdef-" {
		t.Errorf("expected hyphenated prefix 'abcdef-', got %q", items[0].Text)
	}
	if items[0].X != HStep {
		t.Errorf("expected prefix at margin, got %d", items[0].X)
	}
	if items[1].Text != word {
		t.Errorf("expected full word on next line, got %q", items[1].Text)
	}
	if items[1].X != HStep || items[1].Y <= items[0].Y {
		t.Errorf("expected full word at start of a lower line, got (%d, %d)", items[1].X, items[1].Y)
	}
}

func TestRender_HyphenationAfterOtherWords(t *testing.T) {
	// "xx" ends at 29, next word starts at 37 with 50px of room
	items := render(t, "xx ab\u00adcdef\u00adgh", 100)
	if texts(items) != "xx ab- ab\u00adcdef\u00adgh" {
		t.Fatalf("unexpected items: %q", texts(items))
	}
	if items[0].Y != items[1].Y {
		t.Error("expected the prefix on the overflowing line")
	}
	if items[1].X != 37 {
		t.Errorf("expected prefix at cursor 37, got %d", items[1].X)
	}
}

func TestRender_NoBreakPointsJustWraps(t *testing.T) {
	items := render(t, "xx abcdefghij", 100)
	if texts(items) != "xx abcdefghij" {
		t.Fatalf("unexpected items: %q", texts(items))
	}
	if items[1].X != HStep || items[1].Y <= items[0].Y {
		t.Errorf("expected long word on a new line, got (%d, %d)", items[1].X, items[1].Y)
	}
}

func TestHyphenate(t *testing.T) {
	f := fixedFont{key: text.FontKey{Size: 16}}
	tests := []struct {
		word string
		room int
		want string
	}{
		{"a\u00adb\u00adc", 100, "ab-"},
		{"a\u00adb\u00adc", 16, "a-"},
		{"a\u00adb\u00adc", 15, ""},
		{"abc", 100, ""},
		{"\u00adabc", 100, ""},
	}
	for _, tt := range tests {
		if got := hyphenate(f, tt.word, tt.room); got != tt.want {
			t.Errorf("hyphenate(%q, %d): expected %q, got %q", tt.word, tt.room, tt.want, got)
		}
	}
}

func TestRender_Superscript(t *testing.T) {
	items := render(t, "x<sup>2</sup>", 400)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	sup := items[1]
	if sup.Font.Key().Size != 8 {
		t.Errorf("expected halved size 8, got %d", sup.Font.Key().Size)
	}
	// baseline 38; 38 - ascent 8 - line height 10
	if sup.Y != 20 {
		t.Errorf("expected superscript y 20, got %d", sup.Y)
	}
	if items[0].Y != 22 {
		t.Errorf("expected base text y 22, got %d", items[0].Y)
	}
}

func TestRender_Subscript(t *testing.T) {
	items := render(t, "H<sub>2</sub>O", 400)
	if texts(items) != "H 2 O" {
		t.Fatalf("unexpected items: %q", texts(items))
	}
	// baseline 38; 38 - ascent 8 * 0.5
	if items[1].Y != 34 {
		t.Errorf("expected subscript y 34, got %d", items[1].Y)
	}
	if items[2].Font.Key().Size != 16 {
		t.Errorf("expected size restored after </sub>, got %d", items[2].Font.Key().Size)
	}
}

func TestRender_NestedSuperscriptRestoresSize(t *testing.T) {
	markup := strings.Repeat("<sup>", 5) + "deep" + strings.Repeat("</sup>", 5) + " after"
	items := render(t, markup, 400)
	if texts(items) != "deep after" {
		t.Fatalf("unexpected items: %q", texts(items))
	}
	if got := items[0].Font.Key().Size; got != 1 {
		t.Errorf("expected innermost size clamped to 1, got %d", got)
	}
	if got := items[1].Font.Key().Size; got != 16 {
		t.Errorf("expected size 16 after the closing tags, got %d", got)
	}
}

func TestRender_InlineStyles(t *testing.T) {
	items := render(t, "<b>bold</b> <i>it</i> <b><i>both</i></b> plain <big>big</big> <small>small</small> <h2>h2</h2>", 2000)
	want := []text.FontKey{
		{Size: 16, Weight: text.WeightBold},
		{Size: 16, Style: text.StyleItalic},
		{Size: 16, Weight: text.WeightBold, Style: text.StyleItalic},
		{Size: 16},
		{Size: 20},
		{Size: 14},
		{Size: 20},
	}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d: %s", len(want), len(items), texts(items))
	}
	for i, k := range want {
		if got := items[i].Font.Key(); got != k {
			t.Errorf("item %d (%s): expected %s, got %s", i, items[i].Text, k, got)
		}
	}
}

func TestRender_ParagraphGap(t *testing.T) {
	items := render(t, "<p>a</p><p>b</p>", 400)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	// line ends at 43, plus VStep = 61; top = int(61+20) - 16
	if items[1].Y != 65 {
		t.Errorf("expected second paragraph at y 65, got %d", items[1].Y)
	}
}

func TestRender_LineBreak(t *testing.T) {
	items := render(t, "a<br>b", 400)
	if len(items) != 2 || items[1].X != HStep || items[1].Y != 47 {
		t.Errorf("expected b on the next line at (13, 47), got %+v", items)
	}
}

func TestRender_UnknownTagsInert(t *testing.T) {
	plain := render(t, "a b c", 400)
	tagged := render(t, `<div><span class="x">a</span> <blink>b</blink> <!-- c --><em>c</em></div>`, 400)
	if len(plain) != len(tagged) {
		t.Fatalf("expected %d items, got %d", len(plain), len(tagged))
	}
	for i := range plain {
		if plain[i].X != tagged[i].X || plain[i].Y != tagged[i].Y {
			t.Errorf("item %d moved: %+v vs %+v", i, plain[i], tagged[i])
		}
	}
}

func TestRender_HeadSkipped(t *testing.T) {
	items := render(t, "<title>Title</title><style>p{}</style>Body", 400)
	if texts(items) != "Body" {
		t.Errorf("expected only body text, got %q", texts(items))
	}
}

func TestRender_Entities(t *testing.T) {
	items := render(t, "a&lt;b &amp; &gt;", 400)
	if texts(items) != "a<b & >" {
		t.Errorf("expected expanded entities, got %q", texts(items))
	}
}

func TestRender_InvalidWidth(t *testing.T) {
	for _, w := range []int{0, -5} {
		_, err := NewEngine(&fixedFonts{}).Render(html.Parse("x"), w)
		if !errors.Is(err, ErrInvalidWidth) {
			t.Errorf("width %d: expected ErrInvalidWidth, got %v", w, err)
		}
	}
}

type failingFonts struct{}

func (failingFonts) Get(int, text.Weight, text.Style) (text.Font, error) {
	return nil, errors.New("no font")
}

func TestRender_FontErrorPropagates(t *testing.T) {
	_, err := NewEngine(failingFonts{}).Render(html.Parse("x"), 400)
	if err == nil {
		t.Fatal("expected error")
	}
	if _, err := NewEngine(failingFonts{}).Render(html.Parse("<b></b>"), 400); err != nil {
		t.Errorf("no words means no font lookups, got %v", err)
	}
}

func TestRender_RepeatableAcrossWidths(t *testing.T) {
	doc := html.Parse("<p>the quick brown fox jumps over the lazy dog</p><b>end</b>")
	engine := NewEngine(&fixedFonts{})
	first, _ := engine.Render(doc, 120)
	wide, _ := engine.Render(doc, 2000)
	again, _ := engine.Render(doc, 120)
	if len(first) != len(again) {
		t.Fatalf("expected identical output, got %d and %d items", len(first), len(again))
	}
	for i := range first {
		if first[i] != again[i] {
			t.Errorf("item %d differs: %+v vs %+v", i, first[i], again[i])
		}
	}
	lastNarrow, lastWide := first[len(first)-1], wide[len(wide)-1]
	if lastNarrow.Y <= lastWide.Y {
		t.Errorf("expected narrow layout to be taller, got %d vs %d", lastNarrow.Y, lastWide.Y)
	}
	if lastWide.Font.Key().Weight != text.WeightBold {
		t.Error("expected bold state to carry into the last word")
	}
}

func TestRender_RealFonts(t *testing.T) {
	cache := text.NewCache(text.NewFaceProvider(text.FontConfig{}))
	items, err := NewEngine(cache).Render(html.Parse("Hello"), 800)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	ascent := float64(items[0].Font.Metrics().Ascent)
	want := int(VStep + ascent*1.25 - ascent)
	if items[0].X != HStep || items[0].Y != want {
		t.Errorf("expected (13, %d), got (%d, %d)", want, items[0].X, items[0].Y)
	}
}
