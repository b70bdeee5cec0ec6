package governance

import (
	"context"
	"strings"
	"testing"
)

func TestDefaultPolicyEngine_Evaluate(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	ctx := context.Background()

	// Test Allow (Default)
	req1 := Request{Tool: "network", Action: "search"}
	res1, err := engine.Evaluate(ctx, req1)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res1.Effect != EffectAllow {
		t.Errorf("Expected EffectAllow, got %s", res1.Effect)
	}

	// Test Deny
	engine.DenyTool("code")
	req2 := Request{Tool: "code", Action: "run"}
	res2, err := engine.Evaluate(ctx, req2)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res2.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny, got %s", res2.Effect)
	}
}

func TestDefaultPolicyEngine_DenyArguments(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	if err := engine.DenyArguments(`rm\s+-rf`); err != nil {
		t.Fatalf("DenyArguments failed: %v", err)
	}

	res, err := engine.Evaluate(context.Background(), Request{
		Tool:      "code",
		Action:    "run",
		Arguments: "map[command:rm  -rf /tmp/x]",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny for destructive arguments, got %s", res.Effect)
	}

	if err := engine.DenyArguments(`[invalid`); err == nil {
		t.Error("Expected an error for an invalid pattern")
	}
}

func TestIsDestructiveCommand(t *testing.T) {
	destructive := []string{
		"rm -rf /",
		"please SHUTDOWN now",
		"dd if=/dev/zero of=/dev/sda",
		"mkfs.ext4 /dev/sdb1",
	}
	for _, cmd := range destructive {
		if !IsDestructiveCommand(cmd) {
			t.Errorf("Expected %q to be destructive", cmd)
		}
	}

	for _, cmd := range []string{"ls -la", "python script.py", "echo hello"} {
		if IsDestructiveCommand(cmd) {
			t.Errorf("Safe command %q flagged as destructive", cmd)
		}
	}
}

func TestRedactSecrets(t *testing.T) {
	in := "token sk-abcdefghij1234 and ghp_abcdefghijklmnopqrst12 here"
	out := RedactSecrets(in)
	if strings.Contains(out, "sk-abcdefghij1234") || strings.Contains(out, "ghp_") {
		t.Errorf("Secrets not redacted: %q", out)
	}
	if strings.Count(out, "[REDACTED]") != 2 {
		t.Errorf("Expected 2 redactions, got %q", out)
	}

	plain := "no secrets here"
	if RedactSecrets(plain) != plain {
		t.Error("Plain text must pass through unchanged")
	}
}
