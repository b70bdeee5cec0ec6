package tools

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"sort"
	"strings"
	"time"
)

const (
	defaultRunTimeoutSec = 30
	outputTailBytes      = 12000
)

// CodeCapability runs commands inside the workspace under two fences: the
// first token must sit on the prefix allow-list, and no token may be a
// blocked verb regardless of prefix.
type CodeCapability struct {
	Workspace       string
	AllowedPrefixes map[string]bool
	BlockedTokens   map[string]bool
}

func NewCode(workspace string) *CodeCapability {
	return &CodeCapability{
		Workspace: workspace,
		AllowedPrefixes: map[string]bool{
			"python":  true,
			"python3": true,
			"pytest":  true,
			"go":      true,
			"pip":     true,
			"rg":      true,
			"ls":      true,
			"pwd":     true,
			"echo":    true,
		},
		BlockedTokens: map[string]bool{
			"rm":       true,
			"shutdown": true,
			"reboot":   true,
			"mkfs":     true,
			"dd":       true,
			"sudo":     true,
		},
	}
}

func (c *CodeCapability) Name() string { return "code" }

func (c *CodeCapability) Actions() []string {
	return []string{"run"}
}

func (c *CodeCapability) Execute(ctx context.Context, sessionID, action string, params Params, confirm bool) Result {
	if action != "run" {
		return Fail("Unsupported tool/action: code/%s", action)
	}
	return c.run(ctx, params.String("command"), params.Int("timeout_sec", defaultRunTimeoutSec))
}

func (c *CodeCapability) run(ctx context.Context, command string, timeoutSec int) Result {
	command = strings.TrimSpace(command)
	if command == "" {
		return Fail("command is required.")
	}

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return Fail("Invalid command.")
	}

	for _, token := range parts {
		if c.BlockedTokens[token] {
			return Fail("Command blocked by safety policy.")
		}
	}

	if !c.AllowedPrefixes[parts[0]] {
		allowed := make([]string, 0, len(c.AllowedPrefixes))
		for prefix := range c.AllowedPrefixes {
			allowed = append(allowed, prefix)
		}
		sort.Strings(allowed)
		return Result{
			"ok":      false,
			"message": "Command prefix '" + parts[0] + "' is not allowed.",
			"allowed": allowed,
		}
	}

	if timeoutSec <= 0 {
		timeoutSec = defaultRunTimeoutSec
	}
	runCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(runCtx, parts[0], parts[1:]...)
	cmd.Dir = c.Workspace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return Fail("Command timed out.")
	}

	returncode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			returncode = exitErr.ExitCode()
		} else {
			return Fail("Failed to run command: %v", err)
		}
	}

	return Result{
		"ok":         returncode == 0,
		"returncode": returncode,
		"stdout":     tail(stdout.String(), outputTailBytes),
		"stderr":     tail(stderr.String(), outputTailBytes),
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
