package agent

import (
	"strings"

	"github.com/rahul/veda/internal/brain"
	"github.com/rahul/veda/internal/tools"
)

// Action is one concrete tool invocation derived from a plan step.
type Action struct {
	Tool   string       `json:"tool"`
	Action string       `json:"action"`
	Params tools.Params `json:"params"`
}

// actionRule maps a task-text prefix to an action constructor. Rules are
// checked in order; the first match wins. A step that matches nothing
// yields no action.
type actionRule struct {
	prefix string
	build  func(rest string) (Action, bool)
}

var actionRules = []actionRule{
	{"open app ", func(rest string) (Action, bool) {
		return Action{Tool: "system", Action: "open_app", Params: tools.Params{"app_name": rest}}, true
	}},
	{"open web ", func(rest string) (Action, bool) {
		return Action{Tool: "network", Action: "open_url", Params: tools.Params{"url": rest}}, true
	}},
	{"search web ", func(rest string) (Action, bool) {
		return Action{Tool: "network", Action: "search", Params: tools.Params{"query": rest}}, true
	}},
	{"list files", func(rest string) (Action, bool) {
		return Action{Tool: "filesystem", Action: "list", Params: tools.Params{"path": "."}}, true
	}},
	{"list dir", func(rest string) (Action, bool) {
		return Action{Tool: "filesystem", Action: "list", Params: tools.Params{"path": "."}}, true
	}},
	{"read file ", func(rest string) (Action, bool) {
		return Action{Tool: "filesystem", Action: "read", Params: tools.Params{"path": rest}}, true
	}},
	{"write file ", func(rest string) (Action, bool) {
		// Format: write file path::content
		path, content, found := strings.Cut(rest, "::")
		if !found {
			return Action{}, false
		}
		return Action{
			Tool:   "filesystem",
			Action: "write",
			Params: tools.Params{"path": strings.TrimSpace(path), "content": content},
		}, true
	}},
	{"run command ", func(rest string) (Action, bool) {
		return Action{Tool: "code", Action: "run", Params: tools.Params{"command": rest}}, true
	}},
}

// ProposeActions translates plan steps into tool actions. Each step
// yields zero or one action.
func ProposeActions(steps []brain.PlanStep) []Action {
	actions := []Action{}
	for _, step := range steps {
		task := strings.TrimSpace(step.Task)
		lower := strings.ToLower(task)

		for _, rule := range actionRules {
			if !strings.HasPrefix(lower, rule.prefix) {
				continue
			}
			rest := strings.TrimSpace(task[len(rule.prefix):])
			if action, ok := rule.build(rest); ok {
				actions = append(actions, action)
			}
			break
		}
	}
	return actions
}
