package tools

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMail_QueueAndList(t *testing.T) {
	m := NewMail(filepath.Join(t.TempDir(), "queue.json"))
	ctx := context.Background()

	res := m.Execute(ctx, "s1", "queue", Params{
		"to":      "a@example.com",
		"subject": "hi",
		"body":    "hello",
	}, false)
	if !res.Succeeded() {
		t.Fatalf("queue failed: %s", res.Message())
	}
	if res["message"] != "Email queued (dry-run)." {
		t.Errorf("Unexpected message: %v", res["message"])
	}
	if res["queued_count"] != 1 {
		t.Errorf("Expected queued_count 1, got %v", res["queued_count"])
	}

	m.Execute(ctx, "s1", "queue", Params{"to": "b@example.com"}, false)

	res = m.Execute(ctx, "s1", "list", Params{}, false)
	if !res.Succeeded() {
		t.Fatalf("list failed: %s", res.Message())
	}
	items, _ := res["items"].([]MailRecord)
	if len(items) != 2 {
		t.Fatalf("Expected 2 queued items, got %d", len(items))
	}
	if items[0].To != "a@example.com" || items[1].To != "b@example.com" {
		t.Errorf("Unexpected queue order: %+v", items)
	}
}

func TestMail_RejectsInvalidRecipient(t *testing.T) {
	m := NewMail(filepath.Join(t.TempDir(), "queue.json"))

	res := m.Execute(context.Background(), "s1", "queue", Params{"to": "not-an-address"}, false)
	if res.Succeeded() {
		t.Fatal("Invalid recipient must fail")
	}
	if res.Message() != "Invalid recipient email." {
		t.Errorf("Unexpected message: %q", res.Message())
	}
}
