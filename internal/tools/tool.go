package tools

import (
	"context"
	"fmt"
)

// Params carries the loosely-typed arguments of one tool action.
type Params map[string]any

func (p Params) String(key string) string {
	v, _ := p[key].(string)
	return v
}

func (p Params) Int(key string, fallback int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func (p Params) Bool(key string) bool {
	v, _ := p[key].(bool)
	return v
}

func (p Params) Map(key string) map[string]any {
	v, _ := p[key].(map[string]any)
	return v
}

// Result is the loosely-shaped outcome of a tool action. Every result has
// an "ok" bool; failures carry a "message". Action-specific fields ride
// alongside. No capability ever raises past this shape.
type Result map[string]any

// OK builds a success result from action-specific fields.
func OK(fields map[string]any) Result {
	r := Result{"ok": true}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

// Fail builds a failure result with a message.
func Fail(format string, args ...any) Result {
	return Result{"ok": false, "message": fmt.Sprintf(format, args...)}
}

// Succeeded reports the result's ok flag.
func (r Result) Succeeded() bool {
	ok, _ := r["ok"].(bool)
	return ok
}

// Message returns the result's message field, if any.
func (r Result) Message() string {
	msg, _ := r["message"].(string)
	return msg
}

// Capability is a narrow, independently testable tool module. Execute
// must convert every internal failure into a Result; it never panics and
// never returns an error.
type Capability interface {
	Name() string
	Actions() []string
	Execute(ctx context.Context, sessionID, action string, params Params, confirm bool) Result
}
