package js

import (
	"strings"

	"github.com/dop251/goja"

	"slama/pkg/html"
)

// domContext holds shared state for DOM bindings within a single execution.
// The proxy cache returns the same JS object for the same node so === holds.
type domContext struct {
	vm    *goja.Runtime
	doc   *html.Document
	cache map[html.NodeID]goja.Value
}

func newDOMContext(vm *goja.Runtime, doc *html.Document) *domContext {
	return &domContext{
		vm:    vm,
		doc:   doc,
		cache: make(map[html.NodeID]goja.Value),
	}
}

// registerDocument sets the global `document` object on the runtime.
func registerDocument(vm *goja.Runtime, doc *html.Document) *domContext {
	ctx := newDOMContext(vm, doc)

	docObj := vm.NewObject()
	docObj.Set("title", doc.Title())
	docObj.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return ctx.elementArray(nil)
		}
		tag := strings.ToLower(call.Arguments[0].String())
		return ctx.elementArray(doc.ElementsByTagName(tag))
	})
	vm.Set("document", docObj)
	return ctx
}

// elementArray creates a JS array of element proxies.
func (ctx *domContext) elementArray(ids []html.NodeID) goja.Value {
	vals := make([]interface{}, len(ids))
	for i, id := range ids {
		vals[i] = ctx.elementProxy(id)
	}
	return ctx.vm.NewArray(vals...)
}

// elementProxy creates (or retrieves from cache) a read-only JS object
// wrapping a node.
func (ctx *domContext) elementProxy(id html.NodeID) goja.Value {
	if v, ok := ctx.cache[id]; ok {
		return v
	}
	v := ctx.vm.NewDynamicObject(&elementAccessor{ctx: ctx, id: id})
	ctx.cache[id] = v
	return v
}

// elementAccessor implements goja.DynamicObject. Writes are refused.
type elementAccessor struct {
	ctx *domContext
	id  html.NodeID
}

var elementKeys = []string{"tagName", "nodeType", "id", "className", "textContent", "parentElement", "children"}

func (e *elementAccessor) node() *html.Node {
	return e.ctx.doc.Node(e.id)
}

func (e *elementAccessor) Get(key string) goja.Value {
	vm := e.ctx.vm
	n := e.node()

	switch key {
	case "nodeType":
		switch n.Type {
		case html.TextNode:
			return vm.ToValue(3)
		case html.CommentNode:
			return vm.ToValue(8)
		}
		return vm.ToValue(1)
	case "tagName":
		if n.Type != html.ElementNode {
			return goja.Undefined()
		}
		return vm.ToValue(strings.ToUpper(n.TagName))
	case "id":
		id, _ := n.GetAttribute("id")
		return vm.ToValue(id)
	case "className":
		cls, _ := n.GetAttribute("class")
		return vm.ToValue(cls)
	case "textContent":
		return vm.ToValue(e.ctx.doc.TextContent(e.id))
	case "getAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return goja.Null()
			}
			val, ok := n.GetAttribute(strings.ToLower(call.Arguments[0].String()))
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(val)
		})
	case "parentElement":
		if n.Parent == html.NoNode {
			return goja.Null()
		}
		return e.ctx.elementProxy(n.Parent)
	case "children":
		var ids []html.NodeID
		for _, child := range n.Children {
			if c := e.ctx.doc.Node(child); c.Type == html.ElementNode {
				ids = append(ids, child)
			}
		}
		return e.ctx.elementArray(ids)
	}
	return goja.Undefined()
}

func (e *elementAccessor) Set(key string, val goja.Value) bool {
	return false
}

func (e *elementAccessor) Has(key string) bool {
	if key == "getAttribute" {
		return true
	}
	for _, k := range elementKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (e *elementAccessor) Delete(key string) bool {
	return false
}

func (e *elementAccessor) Keys() []string {
	return elementKeys
}
