// Package jsengine evaluates ${...} expressions embedded in config values
// and test data, with helpers for random test data.
package jsengine

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/aquariux/wt-automation/pkg/fake"
	"github.com/aquariux/wt-automation/pkg/logger"
)

// Engine wraps a goja runtime. It is safe for concurrent use; calls are
// serialized.
type Engine struct {
	runtime   *goja.Runtime
	variables map[string]interface{}
	mu        sync.Mutex
}

// New returns an engine with the builtins installed: console, json, env,
// uuid, formatNumber and the fake.* generators.
func New() *Engine {
	e := &Engine{runtime: goja.New(), variables: map[string]interface{}{}}
	e.installBuiltins()
	return e
}

func (e *Engine) installBuiltins() {
	e.installConsole()

	e.runtime.Set("json", e.jsonFunc())
	e.runtime.Set("env", e.envFunc())
	e.runtime.Set("uuid", func() string { return uuid.New().String() })
	e.runtime.Set("formatNumber", formatNumber)
	e.runtime.Set("fake", e.fakeObject())
}

// installConsole routes console.log/warn/error to the logger.
func (e *Engine) installConsole() {
	console := e.runtime.NewObject()
	for name, log := range map[string]func(string, ...interface{}){
		"log":   logger.Info,
		"warn":  logger.Warn,
		"error": logger.Error,
	} {
		console.Set(name, consoleFunc(log))
	}
	e.runtime.Set("console", console)
}

func consoleFunc(log func(string, ...interface{})) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, fmt.Sprint(arg.Export()))
		}
		log("%s", strings.Join(parts, " "))
		return goja.Undefined()
	}
}

// jsonFunc implements json(text): JSON.parse with a TypeError on bad input.
func (e *Engine) jsonFunc() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(e.runtime.NewTypeError("json requires 1 argument"))
		}
		parse, _ := goja.AssertFunction(e.runtime.Get("JSON").ToObject(e.runtime).Get("parse"))
		v, err := parse(goja.Undefined(), call.Arguments[0])
		if err != nil {
			panic(e.runtime.NewTypeError(fmt.Sprintf("invalid JSON: %v", err)))
		}
		return v
	}
}

// envFunc returns env(name, [fallback]).
func (e *Engine) envFunc() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(e.runtime.NewTypeError("env requires a variable name"))
		}
		if v, ok := os.LookupEnv(call.Arguments[0].String()); ok {
			return e.runtime.ToValue(v)
		}
		if len(call.Arguments) > 1 {
			return call.Arguments[1]
		}
		return e.runtime.ToValue("")
	}
}

// fakeObject exposes the random data generators as fake.*.
func (e *Engine) fakeObject() *goja.Object {
	obj := e.runtime.NewObject()
	obj.Set("userId", fake.UserID)
	obj.Set("password", fake.Password)
	obj.Set("email", fake.Email)
	obj.Set("invalidEmail", fake.InvalidEmail)
	obj.Set("username", fake.Username)
	obj.Set("digits", fake.Digits)
	obj.Set("phone", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return e.runtime.ToValue(fake.Phone(0))
		}
		return e.runtime.ToValue(fake.PhoneString(call.Arguments[0].String()))
	})
	return obj
}

// formatNumber renders n with thousands separators, e.g. 1000000 -> 1,000,000.
func formatNumber(n float64) string {
	p := message.NewPrinter(language.English)
	if n == float64(int64(n)) {
		return p.Sprintf("%d", int64(n))
	}
	return p.Sprintf("%.2f", n)
}

// SetVariable binds name as a JS global.
func (e *Engine) SetVariable(name string, value interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.variables[name] = value
	e.runtime.Set(name, value)
}

// SetVariables binds every entry of vars.
func (e *Engine) SetVariables(vars map[string]interface{}) {
	for k, v := range vars {
		e.SetVariable(k, v)
	}
}

// Eval runs script and returns its exported value.
func (e *Engine) Eval(script string) (interface{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := e.runtime.RunString(script)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", script, err)
	}
	return v.Export(), nil
}

// EvalString is Eval rendered with %v; null and undefined become "".
func (e *Engine) EvalString(script string) (string, error) {
	v, err := e.Eval(script)
	if err != nil || v == nil {
		return "", err
	}
	return fmt.Sprintf("%v", v), nil
}

// ExpandVariables replaces every ${expr} in text with the evaluated
// expression. Expansions are not rescanned. An expression that fails to
// evaluate is left as written and reported in the returned error; an
// unterminated "${" is copied through.
func (e *Engine) ExpandVariables(text string) (string, error) {
	var (
		out        strings.Builder
		unresolved []string
	)
	rest := text
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			out.WriteString(rest)
			break
		}
		end := closingBrace(rest, start+2)
		if end < 0 {
			out.WriteString(rest[:start+2])
			rest = rest[start+2:]
			continue
		}

		out.WriteString(rest[:start])
		expr := rest[start+2 : end]
		if value, err := e.EvalString(expr); err != nil {
			logger.Warn("Cannot expand ${%s}: %v", expr, err)
			unresolved = append(unresolved, expr)
			out.WriteString(rest[start : end+1])
		} else {
			out.WriteString(value)
		}
		rest = rest[end+1:]
	}

	if len(unresolved) > 0 {
		return out.String(), fmt.Errorf("unresolved expressions: %s", strings.Join(unresolved, ", "))
	}
	return out.String(), nil
}

// closingBrace returns the index of the brace closing a "{" opened just
// before from, accounting for nested braces, or -1.
func closingBrace(s string, from int) int {
	depth := 1
	for i := from; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
