package tools

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
)

// SystemCapability launches desktop applications and OS shortcuts. It
// shells out to the platform launcher and reports failures as results.
type SystemCapability struct{}

func NewSystem() *SystemCapability {
	return &SystemCapability{}
}

func (s *SystemCapability) Name() string { return "system" }

func (s *SystemCapability) Actions() []string {
	return []string{"open_app", "run_shortcut"}
}

func (s *SystemCapability) Execute(ctx context.Context, sessionID, action string, params Params, confirm bool) Result {
	switch action {
	case "open_app":
		return s.openApp(ctx, params.String("app_name"))
	case "run_shortcut":
		return s.runShortcut(ctx, params.String("shortcut_name"))
	default:
		return Fail("Unsupported tool/action: system/%s", action)
	}
}

func (s *SystemCapability) openApp(ctx context.Context, appName string) Result {
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Fail("app_name is required.")
	}

	var cmd *exec.Cmd
	if runtime.GOOS == "darwin" {
		if _, err := exec.LookPath("open"); err != nil {
			return Fail("System open command not available.")
		}
		cmd = exec.CommandContext(ctx, "open", "-a", appName)
	} else {
		path, err := exec.LookPath(appName)
		if err != nil {
			return Fail("Application '%s' not found.", appName)
		}
		cmd = exec.CommandContext(ctx, path)
		if err := cmd.Start(); err != nil {
			return Fail("Failed to open app '%s'.", appName)
		}
		return OK(map[string]any{"message": "Opened app '" + appName + "'."})
	}

	if err := cmd.Run(); err != nil {
		return Fail("Failed to open app '%s'.", appName)
	}
	return OK(map[string]any{"message": "Opened app '" + appName + "'."})
}

func (s *SystemCapability) runShortcut(ctx context.Context, shortcutName string) Result {
	shortcutName = strings.TrimSpace(shortcutName)
	if shortcutName == "" {
		return Fail("shortcut_name is required.")
	}

	if _, err := exec.LookPath("shortcuts"); err != nil {
		return Fail("Shortcuts CLI is not available.")
	}

	out, err := exec.CommandContext(ctx, "shortcuts", "run", shortcutName).CombinedOutput()
	if err != nil {
		return Fail("Failed to run shortcut '%s'.", shortcutName)
	}
	return OK(map[string]any{
		"message": "Ran shortcut '" + shortcutName + "'.",
		"stdout":  strings.TrimSpace(string(out)),
	})
}
