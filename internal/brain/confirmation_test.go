package brain

import (
	"testing"
	"time"
)

func TestConfirmationManager_CreateAndConsume(t *testing.T) {
	m := NewConfirmationManager(0)

	token := m.Create("s1", "delete old backups")
	if len(token) != 8 {
		t.Errorf("Expected 8-char hex token, got %q", token)
	}
	if !m.HasPending("s1") {
		t.Fatal("Expected a pending confirmation after Create")
	}

	peeked, ok := m.PendingToken("s1")
	if !ok || peeked != token {
		t.Errorf("PendingToken mismatch: got %q, want %q", peeked, token)
	}

	ok, restored := m.ConsumeToken("s1", token)
	if !ok {
		t.Fatal("Expected matching token to consume")
	}
	if restored != "delete old backups" {
		t.Errorf("Expected original message back, got %q", restored)
	}
	if m.HasPending("s1") {
		t.Error("Consume must clear the pending entry")
	}
}

func TestConfirmationManager_WrongTokenPreservesPending(t *testing.T) {
	m := NewConfirmationManager(0)

	token := m.Create("s1", "wipe the drive")
	ok, restored := m.ConsumeToken("s1", "deadbeef")
	if ok || restored != "" {
		t.Fatal("Wrong token must not consume")
	}
	if !m.HasPending("s1") {
		t.Error("Wrong token must leave the pending entry intact")
	}

	// The right token still works afterwards.
	if ok, _ := m.ConsumeToken("s1", token); !ok {
		t.Error("Correct token should still consume after a wrong attempt")
	}
}

func TestConfirmationManager_TokenIsSingleUse(t *testing.T) {
	m := NewConfirmationManager(0)

	token := m.Create("s1", "transfer funds")
	if ok, _ := m.ConsumeToken("s1", token); !ok {
		t.Fatal("First consume should succeed")
	}
	if ok, _ := m.ConsumeToken("s1", token); ok {
		t.Error("Second consume of the same token must fail")
	}
}

func TestConfirmationManager_ReplacesPending(t *testing.T) {
	m := NewConfirmationManager(0)

	old := m.Create("s1", "first request")
	newer := m.Create("s1", "second request")

	if ok, _ := m.ConsumeToken("s1", old); ok {
		t.Error("Replaced token must no longer be valid")
	}
	ok, restored := m.ConsumeToken("s1", newer)
	if !ok || restored != "second request" {
		t.Errorf("Expected latest pending entry, got ok=%v msg=%q", ok, restored)
	}
}

func TestConfirmationManager_Expiry(t *testing.T) {
	m := NewConfirmationManager(time.Minute)
	base := time.Now()
	m.now = func() time.Time { return base }

	token := m.Create("s1", "reboot the server")

	m.now = func() time.Time { return base.Add(2 * time.Minute) }
	if m.HasPending("s1") {
		t.Error("Expired entry must be purged on access")
	}
	if ok, _ := m.ConsumeToken("s1", token); ok {
		t.Error("Expired token must not consume")
	}
}

func TestConfirmationManager_ConsumeFreeText(t *testing.T) {
	m := NewConfirmationManager(0)

	token := m.Create("s1", "erase logs")

	if ok, _ := m.ConsumeFreeText("s1", "confirm please"); ok {
		t.Error("'confirm' with a wrong suffix must not approve")
	}
	if !m.HasPending("s1") {
		t.Fatal("Failed free-text attempt must preserve the pending entry")
	}

	ok, restored := m.ConsumeFreeText("s1", "  Confirm "+token+"  ")
	if !ok || restored != "erase logs" {
		t.Errorf("Expected case-insensitive phrase match, got ok=%v msg=%q", ok, restored)
	}
}

func TestConfirmationManager_SessionsAreIsolated(t *testing.T) {
	m := NewConfirmationManager(0)

	token := m.Create("s1", "delete files")
	if ok, _ := m.ConsumeToken("s2", token); ok {
		t.Error("A token minted for one session must not work in another")
	}
	if !m.HasPending("s1") {
		t.Error("Cross-session attempt must not disturb the owner's entry")
	}
}
