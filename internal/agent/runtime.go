package agent

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rahul/veda/internal/observability"
	"github.com/rahul/veda/internal/tools"
)

const (
	minPollInterval = 200 * time.Millisecond
	stopJoinTimeout = 1500 * time.Millisecond
	maxRecentEvents = 50
)

var audioExts = map[string]bool{
	".wav": true, ".mp3": true, ".m4a": true, ".aac": true, ".aiff": true,
}

// RuntimeEvent is one processed inbox item or error, kept in a bounded
// ring for status reporting.
type RuntimeEvent struct {
	TS      int64  `json:"ts"`
	File    string `json:"file,omitempty"`
	OK      bool   `json:"ok"`
	Command string `json:"command,omitempty"`
	Reply   string `json:"reply,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RuntimeStatus is a snapshot of the poller.
type RuntimeStatus struct {
	Running      bool           `json:"running"`
	SessionID    string         `json:"session_id"`
	SpeakReply   bool           `json:"speak_reply"`
	InboxDir     string         `json:"inbox_dir"`
	ProcessedDir string         `json:"processed_dir"`
	LastError    string         `json:"last_error"`
	RecentEvents []RuntimeEvent `json:"recent_events"`
}

// Runtime is the background poller. Each cycle it replays due scheduled
// jobs through the dispatcher and drains the inbox directory through the
// chat path, so deferred work passes the same safety gates as live
// requests. A stop request takes effect at the next poll boundary.
type Runtime struct {
	Chat         *Chat
	Dispatcher   *tools.Dispatcher
	Transcriber  SpeechToText
	Speaker      TextToSpeech
	InboxDir     string
	ProcessedDir string
	Interval     time.Duration

	mu         sync.Mutex
	running    bool
	stop       chan struct{}
	done       chan struct{}
	sessionID  string
	speakReply bool
	lastError  string
	events     []RuntimeEvent
}

func NewRuntime(chat *Chat, dispatcher *tools.Dispatcher, inboxDir, processedDir string, interval time.Duration) *Runtime {
	if interval < minPollInterval {
		interval = minPollInterval
	}
	_ = os.MkdirAll(inboxDir, 0755)
	_ = os.MkdirAll(processedDir, 0755)
	return &Runtime{
		Chat:         chat,
		Dispatcher:   dispatcher,
		InboxDir:     inboxDir,
		ProcessedDir: processedDir,
		Interval:     interval,
		sessionID:    "default",
		speakReply:   true,
	}
}

// Start launches the poll loop if it is not already running. Calling
// Start on a live runtime just updates the session settings.
func (r *Runtime) Start(sessionID string, speakReply bool) RuntimeStatus {
	r.mu.Lock()
	r.sessionID = sessionID
	r.speakReply = speakReply
	if !r.running {
		r.running = true
		r.lastError = ""
		r.stop = make(chan struct{})
		r.done = make(chan struct{})
		go r.loop(r.stop, r.done)
	}
	r.mu.Unlock()
	return r.Status()
}

// Stop requests shutdown and waits for the loop to exit, bounded by the
// join timeout so a stuck cycle cannot hang the caller.
func (r *Runtime) Stop() RuntimeStatus {
	r.mu.Lock()
	var done chan struct{}
	if r.running {
		r.running = false
		close(r.stop)
		done = r.done
	}
	r.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-time.After(stopJoinTimeout):
			log.Println("runtime: poll loop did not stop within join timeout")
		}
	}
	return r.Status()
}

func (r *Runtime) Status() RuntimeStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	recent := r.events
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	return RuntimeStatus{
		Running:      r.running,
		SessionID:    r.sessionID,
		SpeakReply:   r.speakReply,
		InboxDir:     r.InboxDir,
		ProcessedDir: r.ProcessedDir,
		LastError:    r.lastError,
		RecentEvents: append([]RuntimeEvent{}, recent...),
	}
}

func (r *Runtime) loop(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.cycle()
		}
	}
}

func (r *Runtime) cycle() {
	ctx := context.Background()
	observability.Heartbeat()

	if result := r.Dispatcher.RunDue(ctx); !result.Succeeded() {
		r.setError("Failed running due jobs: " + result.Message())
	}

	files, err := r.inboxFiles()
	if err != nil {
		r.setError("Failed reading inbox: " + err.Error())
		return
	}

	r.mu.Lock()
	sessionID := r.sessionID
	speakReply := r.speakReply
	r.mu.Unlock()

	for _, file := range files {
		r.processFile(ctx, sessionID, speakReply, file)
	}
}

func (r *Runtime) inboxFiles() ([]string, error) {
	entries, err := os.ReadDir(r.InboxDir)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		path  string
		mtime time.Time
	}
	var found []candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && !audioExts[ext] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, candidate{
			path:  filepath.Join(r.InboxDir, entry.Name()),
			mtime: info.ModTime(),
		})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].mtime.Before(found[j].mtime) })

	paths := make([]string, len(found))
	for i, c := range found {
		paths[i] = c.path
	}
	return paths, nil
}

func (r *Runtime) processFile(ctx context.Context, sessionID string, speakReply bool, path string) {
	name := filepath.Base(path)
	command, err := r.extractCommand(ctx, path)
	if err != nil {
		r.setError(fmt.Sprintf("Inbox item %s failed: %v", name, err))
		r.moveProcessed(path)
		return
	}

	reply, err := r.Chat.Handle(ctx, sessionID, command)
	event := RuntimeEvent{
		TS:      time.Now().Unix(),
		File:    name,
		OK:      err == nil,
		Command: command,
		Reply:   reply,
	}
	if err != nil {
		event.Error = err.Error()
	} else if speakReply && r.Speaker != nil {
		if err := r.Speaker.Speak(ctx, reply, ""); err != nil {
			r.setError("Speak failed: " + err.Error())
		}
	}

	r.appendEvent(event)
	r.moveProcessed(path)
}

func (r *Runtime) extractCommand(ctx context.Context, path string) (string, error) {
	if strings.ToLower(filepath.Ext(path)) == ".txt" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}
	if r.Transcriber == nil {
		return "", fmt.Errorf("no transcriber configured for audio input")
	}
	return r.Transcriber.Transcribe(ctx, path)
}

func (r *Runtime) moveProcessed(path string) {
	target := filepath.Join(r.ProcessedDir, fmt.Sprintf("%d_%s", time.Now().Unix(), filepath.Base(path)))
	if err := os.Rename(path, target); err != nil {
		r.setError("Failed to move processed file: " + err.Error())
	}
}

func (r *Runtime) setError(message string) {
	r.mu.Lock()
	r.lastError = message
	r.mu.Unlock()
	r.appendEvent(RuntimeEvent{TS: time.Now().Unix(), OK: false, Error: message})
}

func (r *Runtime) appendEvent(event RuntimeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if len(r.events) > maxRecentEvents {
		r.events = r.events[len(r.events)-maxRecentEvents:]
	}
}
