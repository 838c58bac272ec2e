package html

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// NodeID addresses a node inside its Document's arena.
type NodeID int

// NoNode is the parent of the root and of nodes not yet attached.
const NoNode NodeID = -1

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
	CommentNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// Node is an element, text run or comment. Children are owned; Parent is a
// lookup edge only.
type Node struct {
	Type       NodeType
	TagName    string
	Attributes map[string]string
	Text       string
	Children   []NodeID
	Parent     NodeID
}

// ParseStatus reports how the tokenizer finished.
type ParseStatus int

const (
	StatusComplete ParseStatus = iota
	// StatusTruncated means input ended inside a tag, quoted attribute or
	// script block and the buffered content was dropped.
	StatusTruncated
)

func (s ParseStatus) String() string {
	if s == StatusTruncated {
		return "truncated"
	}
	return "complete"
}

// Document is the finished tree. All nodes live in one arena.
type Document struct {
	Root        NodeID
	Scripts     []string // bodies of <script> blocks, in document order
	Status      ParseStatus
	TruncatedIn State

	nodes []Node
}

func newDocument() *Document {
	return &Document{Root: NoNode, nodes: make([]Node, 0, 16)}
}

// Node returns the node with the given id, or nil when id is out of range.
func (d *Document) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(d.nodes) {
		return nil
	}
	return &d.nodes[id]
}

// Len reports how many nodes the arena holds.
func (d *Document) Len() int {
	return len(d.nodes)
}

// Err returns a *TruncatedError when the input ended outside text state.
func (d *Document) Err() error {
	if d.Status == StatusTruncated {
		return &TruncatedError{State: d.TruncatedIn}
	}
	return nil
}

func (d *Document) newNode(n Node) NodeID {
	n.Parent = NoNode
	d.nodes = append(d.nodes, n)
	return NodeID(len(d.nodes) - 1)
}

// appendChild makes child the last child of parent.
func (d *Document) appendChild(parent, child NodeID) {
	d.nodes[child].Parent = parent
	d.nodes[parent].Children = append(d.nodes[parent].Children, child)
}

func (n *Node) GetAttribute(name string) (string, bool) {
	if n.Attributes == nil {
		return "", false
	}
	val, ok := n.Attributes[name]
	return val, ok
}

// Walk visits id and its descendants in document order. Returning false
// from fn skips the node's children.
func (d *Document) Walk(id NodeID, fn func(id NodeID, n *Node) bool) {
	n := d.Node(id)
	if n == nil {
		return
	}
	if !fn(id, n) {
		return
	}
	for _, child := range n.Children {
		d.Walk(child, fn)
	}
}

// ElementsByTagName returns every element under root with the given tag, in
// document order.
func (d *Document) ElementsByTagName(tag string) []NodeID {
	var out []NodeID
	d.Walk(d.Root, func(id NodeID, n *Node) bool {
		if n.Type == ElementNode && n.TagName == tag {
			out = append(out, id)
		}
		return true
	})
	return out
}

// TextContent concatenates the text nodes below id.
func (d *Document) TextContent(id NodeID) string {
	var sb strings.Builder
	d.Walk(id, func(_ NodeID, n *Node) bool {
		if n.Type == TextNode {
			sb.WriteString(n.Text)
		}
		return n.Type == ElementNode
	})
	return sb.String()
}

// Title is the trimmed text of the first <title> element.
func (d *Document) Title() string {
	titles := d.ElementsByTagName("title")
	if len(titles) == 0 {
		return ""
	}
	return strings.TrimSpace(d.TextContent(titles[0]))
}

// Ancestors returns the chain of parents from id up to the root.
func (d *Document) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for n := d.Node(id); n != nil && n.Parent != NoNode; n = d.Node(n.Parent) {
		out = append(out, n.Parent)
	}
	return out
}

// Serialize returns the outer markup of id.
func (d *Document) Serialize(id NodeID) string {
	var sb strings.Builder
	d.serializeNode(&sb, id)
	return sb.String()
}

func (d *Document) serializeNode(sb *strings.Builder, id NodeID) {
	n := d.Node(id)
	if n == nil {
		return
	}
	switch n.Type {
	case TextNode:
		sb.WriteString(n.Text)
		return
	case CommentNode:
		sb.WriteString("<!--")
		sb.WriteString(n.Text)
		sb.WriteString("-->")
		return
	}

	sb.WriteByte('<')
	sb.WriteString(n.TagName)
	for _, k := range sortedKeys(n.Attributes) {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(escapeAttr(n.Attributes[k]))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	if IsSelfClosing(n.TagName) {
		return
	}
	for _, child := range n.Children {
		d.serializeNode(sb, child)
	}
	sb.WriteString("</")
	sb.WriteString(n.TagName)
	sb.WriteByte('>')
}

// Dump writes the tree below id, one node per line, indented two spaces per
// level.
func (d *Document) Dump(w io.Writer, id NodeID) error {
	return d.dump(w, id, 0)
}

func (d *Document) dump(w io.Writer, id NodeID, depth int) error {
	n := d.Node(id)
	if n == nil {
		return nil
	}
	indent := strings.Repeat("  ", depth)
	var err error
	switch n.Type {
	case ElementNode:
		var sb strings.Builder
		sb.WriteString("<" + n.TagName)
		for _, k := range sortedKeys(n.Attributes) {
			fmt.Fprintf(&sb, " %s=%q", k, n.Attributes[k])
		}
		sb.WriteString(">")
		_, err = fmt.Fprintf(w, "%s%s\n", indent, sb.String())
	case TextNode:
		_, err = fmt.Fprintf(w, "%s%q\n", indent, n.Text)
	case CommentNode:
		_, err = fmt.Fprintf(w, "%s<!--%s-->\n", indent, n.Text)
	}
	if err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := d.dump(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
