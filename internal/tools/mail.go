package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// MailRecord is one queued outbound message.
type MailRecord struct {
	CreatedAt string `json:"created_at"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// MailCapability queues outbound mail to a JSON file. Sending is a
// dry-run: nothing ever leaves the machine from here.
type MailCapability struct {
	mu        sync.Mutex
	QueueFile string
}

func NewMail(queueFile string) *MailCapability {
	return &MailCapability{QueueFile: queueFile}
}

func (m *MailCapability) Name() string { return "mail" }

func (m *MailCapability) Actions() []string {
	return []string{"queue", "list"}
}

func (m *MailCapability) Execute(ctx context.Context, sessionID, action string, params Params, confirm bool) Result {
	switch action {
	case "queue":
		return m.queue(params.String("to"), params.String("subject"), params.String("body"))
	case "list":
		return m.list()
	default:
		return Fail("Unsupported tool/action: mail/%s", action)
	}
}

func (m *MailCapability) queue(to, subject, body string) Result {
	if !strings.Contains(to, "@") {
		return Fail("Invalid recipient email.")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.load()
	items = append(items, MailRecord{
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		To:        strings.TrimSpace(to),
		Subject:   strings.TrimSpace(subject),
		Body:      body,
	})

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return Fail("Failed to encode mail queue: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.QueueFile), 0755); err != nil {
		return Fail("Failed to create queue directory: %v", err)
	}
	if err := os.WriteFile(m.QueueFile, data, 0644); err != nil {
		return Fail("Failed to write mail queue: %v", err)
	}

	return OK(map[string]any{
		"message":      "Email queued (dry-run).",
		"queued_count": len(items),
	})
}

func (m *MailCapability) list() Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return OK(map[string]any{"items": m.load()})
}

func (m *MailCapability) load() []MailRecord {
	data, err := os.ReadFile(m.QueueFile)
	if err != nil {
		return []MailRecord{}
	}
	var items []MailRecord
	if err := json.Unmarshal(data, &items); err != nil {
		return []MailRecord{}
	}
	return items
}
