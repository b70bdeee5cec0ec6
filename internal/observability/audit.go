package observability

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rahul/veda/internal/governance"
)

// AuditRecord is one line of the append-only audit trail. Payload values
// are redacted before they reach disk; records are never rewritten.
type AuditRecord struct {
	TS      string            `json:"ts"`
	Event   string            `json:"event"`
	Payload map[string]string `json:"payload"`
}

// AuditLogger appends redacted events to audit.jsonl.
type AuditLogger struct {
	mu   sync.Mutex
	path string
}

func NewAuditLogger(logDir string) *AuditLogger {
	return &AuditLogger{path: filepath.Join(logDir, "audit.jsonl")}
}

// Write appends one event. Every payload value is stringified and passed
// through secret redaction first. Failures are logged and swallowed; the
// audit trail must never turn a tool call into a fault.
func (a *AuditLogger) Write(event string, payload map[string]any) {
	redacted := make(map[string]string, len(payload))
	for k, v := range payload {
		redacted[k] = governance.RedactSecrets(fmt.Sprintf("%v", v))
	}

	record := AuditRecord{
		TS:      time.Now().UTC().Format(time.RFC3339Nano),
		Event:   event,
		Payload: redacted,
	}

	data, err := json.Marshal(record)
	if err != nil {
		log.Printf("audit: failed to marshal event %s: %v", event, err)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(a.path), 0755); err != nil {
		log.Printf("audit: failed to create log directory: %v", err)
		return
	}
	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("audit: failed to open %s: %v", a.path, err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("audit: failed to write event: %v", err)
	}
}
