package html

import (
	"fmt"
	"strings"
)

// State is the tokenizer's position relative to markup structure.
type State int

const (
	StateText State = iota
	StateInTag
	StateInScript
	StateInSingleQuotedAttr
	StateInDoubleQuotedAttr
)

func (s State) String() string {
	switch s {
	case StateText:
		return "text"
	case StateInTag:
		return "tag"
	case StateInScript:
		return "script"
	case StateInSingleQuotedAttr:
		return "single-quoted attribute"
	case StateInDoubleQuotedAttr:
		return "double-quoted attribute"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type TokenType int

const (
	TokenText TokenType = iota
	// TokenTag carries everything between < and >, e.g. `a href="x"` or `/p`.
	TokenTag
	// TokenScript carries the raw body of a <script> block.
	TokenScript
)

func (t TokenType) String() string {
	switch t {
	case TokenText:
		return "text"
	case TokenTag:
		return "tag"
	case TokenScript:
		return "script"
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

type Token struct {
	Type TokenType
	Data string
}

const (
	scriptEnd  = "</script>"
	asciiSpace = " \t\n\r\f"
)

// Tokenizer is a per-character state machine. Tokens are handed to emit as
// soon as they are complete.
type Tokenizer struct {
	state State
	buf   strings.Builder
	emit  func(Token)
}

func NewTokenizer(emit func(Token)) *Tokenizer {
	return &Tokenizer{emit: emit}
}

// State returns the current state; after Run it is the final state.
func (t *Tokenizer) State() State {
	return t.state
}

// Run feeds body through the state machine and returns the final state.
// Anything still buffered outside StateText is dropped.
func (t *Tokenizer) Run(body string) State {
	for _, c := range body {
		t.step(c)
	}
	if t.state == StateText && t.buf.Len() > 0 {
		t.emit(Token{Type: TokenText, Data: t.buf.String()})
		t.buf.Reset()
	}
	return t.state
}

func (t *Tokenizer) step(c rune) {
	switch t.state {
	case StateText:
		if c == '<' {
			if t.buf.Len() > 0 {
				t.emit(Token{Type: TokenText, Data: t.buf.String()})
			}
			t.buf.Reset()
			t.state = StateInTag
			return
		}
		t.buf.WriteRune(c)

	case StateInTag:
		comment := strings.HasPrefix(t.buf.String(), "!--")
		switch {
		case c == '\'' && !comment:
			t.buf.WriteRune(c)
			t.state = StateInSingleQuotedAttr
		case c == '"' && !comment:
			t.buf.WriteRune(c)
			t.state = StateInDoubleQuotedAttr
		case c == '>' && (!comment || commentClosed(t.buf.String())):
			tag := t.buf.String()
			t.buf.Reset()
			t.emit(Token{Type: TokenTag, Data: tag})
			if tagName(tag) == "script" {
				t.state = StateInScript
			} else {
				t.state = StateText
			}
		default:
			t.buf.WriteRune(c)
		}

	case StateInSingleQuotedAttr:
		t.buf.WriteRune(c)
		if c == '\'' {
			t.state = StateInTag
		}

	case StateInDoubleQuotedAttr:
		t.buf.WriteRune(c)
		if c == '"' {
			t.state = StateInTag
		}

	case StateInScript:
		t.buf.WriteRune(c)
		if c != '>' {
			return
		}
		raw := t.buf.String()
		if len(raw) < len(scriptEnd) || !strings.EqualFold(raw[len(raw)-len(scriptEnd):], scriptEnd) {
			return
		}
		t.buf.Reset()
		t.emit(Token{Type: TokenScript, Data: raw[:len(raw)-len(scriptEnd)]})
		t.emit(Token{Type: TokenTag, Data: "/script"})
		t.state = StateText
	}
}

// commentClosed reports whether a buffer starting with "!--" has reached its
// closing "--". "!--" alone does not count.
func commentClosed(buf string) bool {
	return len(buf) >= 5 && strings.HasSuffix(buf, "--")
}

// Tokenize returns the flat token stream for body along with the final
// tokenizer state. No tree is built.
func Tokenize(body string) ([]Token, State) {
	var tokens []Token
	state := NewTokenizer(func(tok Token) {
		tokens = append(tokens, tok)
	}).Run(body)
	return tokens, state
}

// tagName returns the lowercased first whitespace-delimited word of a raw
// tag, without a trailing self-closing slash.
func tagName(raw string) string {
	end := strings.IndexAny(raw, asciiSpace)
	if end < 0 {
		end = len(raw)
	}
	name := strings.ToLower(raw[:end])
	if len(name) > 1 && strings.HasSuffix(name, "/") {
		name = name[:len(name)-1]
	}
	return name
}

// parseTag splits a raw tag into its lowercased name and attributes. Values
// may be double-quoted, single-quoted or bare; an attribute without '='
// maps to "".
func parseTag(raw string) (string, map[string]string) {
	name := tagName(raw)
	attrs := make(map[string]string)

	end := strings.IndexAny(raw, asciiSpace)
	if end < 0 {
		return name, attrs
	}
	rest := raw[end:]
	pos := 0
	for pos < len(rest) {
		for pos < len(rest) && isSpaceByte(rest[pos]) {
			pos++
		}
		if pos >= len(rest) {
			break
		}
		start := pos
		for pos < len(rest) && !isSpaceByte(rest[pos]) && rest[pos] != '=' {
			pos++
		}
		key := strings.ToLower(rest[start:pos])
		value := ""
		if pos < len(rest) && rest[pos] == '=' {
			pos++
			if pos < len(rest) && (rest[pos] == '"' || rest[pos] == '\'') {
				quote := rest[pos]
				pos++
				vstart := pos
				for pos < len(rest) && rest[pos] != quote {
					pos++
				}
				value = rest[vstart:pos]
				if pos < len(rest) {
					pos++
				}
			} else {
				vstart := pos
				for pos < len(rest) && !isSpaceByte(rest[pos]) {
					pos++
				}
				value = rest[vstart:pos]
			}
		}
		if key == "" || key == "/" {
			continue
		}
		attrs[key] = value
	}
	return name, attrs
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
