package tools

import (
	"context"
	"time"

	"github.com/rahul/veda/internal/store"
)

// SchedulerCapability exposes the durable jobs table as a tool: create a
// deferred dispatcher call, list jobs, or replay everything that is due.
// RunDue is injected by the dispatcher so replayed jobs pass through the
// same safety gates as synchronous calls.
type SchedulerCapability struct {
	Jobs   *store.Store
	RunDue func(ctx context.Context) Result
}

func NewScheduler(jobs *store.Store, runDue func(ctx context.Context) Result) *SchedulerCapability {
	return &SchedulerCapability{Jobs: jobs, RunDue: runDue}
}

func (s *SchedulerCapability) Name() string { return "scheduler" }

func (s *SchedulerCapability) Actions() []string {
	return []string{"create", "list", "run_due"}
}

func (s *SchedulerCapability) Execute(ctx context.Context, sessionID, action string, params Params, confirm bool) Result {
	switch action {
	case "create":
		return s.create(sessionID, params)
	case "list":
		return s.list(params.String("status"))
	case "run_due":
		return s.RunDue(ctx)
	default:
		return Fail("Unsupported tool/action: scheduler/%s", action)
	}
}

func (s *SchedulerCapability) create(sessionID string, params Params) Result {
	runAt := params.String("run_at")
	if runAt == "" {
		runAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	payload := store.JobPayload{
		Tool:    params.String("tool"),
		Action:  params.String("action"),
		Params:  params.Map("params"),
		Confirm: params.Bool("confirm"),
	}
	if payload.Params == nil {
		payload.Params = map[string]any{}
	}

	job, err := s.Jobs.AddJob(sessionID, runAt, payload)
	if err != nil {
		return Fail("Failed to schedule job: %v", err)
	}
	return OK(map[string]any{"job": job})
}

func (s *SchedulerCapability) list(status string) Result {
	jobs, err := s.Jobs.ListJobs(status)
	if err != nil {
		return Fail("Failed to list jobs: %v", err)
	}
	return OK(map[string]any{"jobs": jobs})
}
