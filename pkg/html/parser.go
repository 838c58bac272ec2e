package html

import (
	"strings"
)

var selfClosingTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// headTags may appear before <body>; anything else opens the body.
var headTags = map[string]bool{
	"base": true, "basefont": true, "bgsound": true, "noscript": true,
	"link": true, "meta": true, "title": true, "style": true, "script": true,
}

// IsSelfClosing reports whether tag never has children.
func IsSelfClosing(tag string) bool {
	return selfClosingTags[tag]
}

// Parser builds a Document while the tokenizer runs. It is single use.
type Parser struct {
	body       string
	doc        *Document
	unfinished []NodeID // open elements, innermost last
	orphans    []NodeID // comments seen before any element was open
}

func NewParser(body string) *Parser {
	return &Parser{
		body: body,
		doc:  newDocument(),
	}
}

// Parse never fails on malformed markup. Check Document.Err for truncated
// input.
func Parse(body string) *Document {
	return NewParser(body).Parse()
}

func (p *Parser) Parse() *Document {
	state := NewTokenizer(p.handle).Run(p.body)
	if state != StateText {
		p.doc.Status = StatusTruncated
		p.doc.TruncatedIn = state
	}
	return p.finish()
}

func (p *Parser) handle(tok Token) {
	switch tok.Type {
	case TokenText:
		p.addText(tok.Data)
	case TokenTag:
		p.addTag(tok.Data)
	case TokenScript:
		p.doc.Scripts = append(p.doc.Scripts, tok.Data)
	}
}

// current returns the innermost open element, or NoNode.
func (p *Parser) current() NodeID {
	if len(p.unfinished) == 0 {
		return NoNode
	}
	return p.unfinished[len(p.unfinished)-1]
}

func (p *Parser) push(id NodeID) {
	if len(p.unfinished) == 0 {
		for _, c := range p.orphans {
			p.doc.appendChild(id, c)
		}
		p.orphans = nil
	}
	p.unfinished = append(p.unfinished, id)
}

// closeCurrent pops the innermost element and attaches it to its parent.
func (p *Parser) closeCurrent() {
	node := p.unfinished[len(p.unfinished)-1]
	p.unfinished = p.unfinished[:len(p.unfinished)-1]
	p.doc.appendChild(p.current(), node)
}

func (p *Parser) addText(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	p.implicitTags("")
	parent := p.current()
	if parent == NoNode {
		return
	}
	id := p.doc.newNode(Node{Type: TextNode, Text: text})
	p.doc.appendChild(parent, id)
}

func (p *Parser) addTag(raw string) {
	if strings.HasPrefix(raw, "!--") {
		p.addComment(strings.TrimSuffix(raw[3:], "--"))
		return
	}

	tag, attributes := parseTag(raw)
	// DOCTYPE and other declarations
	if tag == "" || tag == "/" || strings.HasPrefix(tag, "!") {
		return
	}

	p.implicitTags(tag)

	switch {
	case strings.HasPrefix(tag, "/"):
		// Unmatched closes at the root are tolerated.
		if len(p.unfinished) == 1 {
			return
		}
		p.closeCurrent()

	case selfClosingTags[tag]:
		id := p.doc.newNode(Node{Type: ElementNode, TagName: tag, Attributes: attributes})
		p.doc.appendChild(p.current(), id)

	default:
		// <p> and <li> do not nest directly.
		if len(p.unfinished) > 1 && (tag == "p" || tag == "li") && p.doc.Node(p.current()).TagName == tag {
			p.closeCurrent()
		}
		id := p.doc.newNode(Node{Type: ElementNode, TagName: tag, Attributes: attributes})
		p.doc.Node(id).Parent = p.current()
		p.push(id)
	}
}

func (p *Parser) addComment(text string) {
	id := p.doc.newNode(Node{Type: CommentNode, Text: text})
	parent := p.current()
	if parent == NoNode {
		p.orphans = append(p.orphans, id)
		return
	}
	p.doc.appendChild(parent, id)
}

// openTag returns the tag of the i-th open element, outermost first.
func (p *Parser) openTag(i int) string {
	return p.doc.Node(p.unfinished[i]).TagName
}

// implicitTags synthesizes html, head and body (and closes head) until the
// incoming tag fits. An empty tag stands for a text token. Only the two
// outermost open elements are inspected.
func (p *Parser) implicitTags(tag string) {
	for {
		depth := len(p.unfinished)
		switch {
		case depth == 0 && tag != "html":
			p.addTag("html")
		case depth == 1 && p.openTag(0) == "html" &&
			tag != "head" && tag != "body" && tag != "/html":
			if headTags[tag] {
				p.addTag("head")
			} else {
				p.addTag("body")
			}
		case depth == 2 && p.openTag(0) == "html" && p.openTag(1) == "head" &&
			tag != "/head" && !headTags[tag]:
			p.addTag("/head")
		default:
			return
		}
	}
}

// finish folds the open stack into a single root.
func (p *Parser) finish() *Document {
	if len(p.unfinished) == 0 {
		p.implicitTags("")
	}
	for len(p.unfinished) > 1 {
		p.closeCurrent()
	}
	p.doc.Root = p.unfinished[0]
	p.unfinished = nil
	return p.doc
}
