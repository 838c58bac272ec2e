package js

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dop251/goja"

	"slama/pkg/html"
)

// Engine runs a document's scripts against a read-only view of its tree.
type Engine struct {
	vm *goja.Runtime
}

// ScriptError reports the page script that failed. Stack holds the JS call
// frames, one per line, when the runtime recorded them.
type ScriptError struct {
	Index   int
	Message string
	Stack   string
	Err     error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %d: %s", e.Index, e.Message)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// New creates an engine with a fresh goja runtime. Console output goes to
// logger.
func New(logger *log.Logger) *Engine {
	vm := goja.New()
	registerConsole(vm, logger)
	return &Engine{vm: vm}
}

// Execute runs doc.Scripts in order. The first script that throws stops the
// run and is returned as a *ScriptError; callers usually log it and keep the
// page. Cancelling ctx interrupts a running script.
func (e *Engine) Execute(ctx context.Context, doc *html.Document) error {
	registerDocument(e.vm, doc)

	stop := context.AfterFunc(ctx, func() { e.vm.Interrupt(ctx.Err()) })
	defer stop()

	for i, script := range doc.Scripts {
		if err := ctx.Err(); err != nil {
			return &ScriptError{Index: i, Message: err.Error(), Err: err}
		}
		if _, err := e.vm.RunScript(scriptName(i), script); err != nil {
			e.vm.ClearInterrupt()
			return newScriptError(ctx, i, err)
		}
	}
	return nil
}

func scriptName(i int) string { return fmt.Sprintf("script%d.js", i) }

func newScriptError(ctx context.Context, i int, err error) *ScriptError {
	se := &ScriptError{Index: i, Message: err.Error(), Err: err}

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) && ctx.Err() != nil {
		se.Message = "interrupted: " + ctx.Err().Error()
		se.Err = ctx.Err()
		return se
	}

	var ex *goja.Exception
	if errors.As(err, &ex) {
		msg, stack, _ := strings.Cut(ex.String(), "\n")
		if v := ex.Value(); v != nil {
			msg = v.String()
		}
		se.Message = msg
		se.Stack = strings.TrimSpace(stack)
	}
	return se
}
