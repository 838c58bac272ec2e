package js

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dop251/goja"
)

// consoleLevels maps console methods onto log levels.
var consoleLevels = map[string]log.Level{
	"debug": log.DebugLevel,
	"log":   log.InfoLevel,
	"info":  log.InfoLevel,
	"warn":  log.WarnLevel,
	"error": log.ErrorLevel,
}

func registerConsole(vm *goja.Runtime, logger *log.Logger) {
	console := vm.NewObject()
	for name, level := range consoleLevels {
		level := level
		console.Set(name, func(call goja.FunctionCall) goja.Value {
			logger.Log(level, formatArgs(call.Arguments), "source", "console")
			return goja.Undefined()
		})
	}
	console.Set("assert", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 && call.Arguments[0].ToBoolean() {
			return goja.Undefined()
		}
		msg := "Assertion failed"
		if len(call.Arguments) > 1 {
			msg += ": " + formatArgs(call.Arguments[1:])
		}
		logger.Error(msg, "source", "console")
		return goja.Undefined()
	})
	vm.Set("console", console)
}

// formatArgs joins arguments the way console.log prints them. Strings are
// printed bare, everything else in its JS string form.
func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		switch {
		case goja.IsUndefined(arg):
			parts[i] = "undefined"
		case goja.IsNull(arg):
			parts[i] = "null"
		default:
			parts[i] = arg.String()
		}
	}
	return strings.Join(parts, " ")
}
