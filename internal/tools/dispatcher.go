package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rahul/veda/internal/governance"
	"github.com/rahul/veda/internal/observability"
	"github.com/rahul/veda/internal/store"
)

// Dispatcher is the one boundary every execution path funnels through:
// direct calls, coordinator-driven actions, and replayed scheduled jobs.
// It routes by lookup table, enforces the destructive-action policy
// before delegating, and emits exactly one audit event per call. It
// never raises to the caller; every failure becomes an ok=false Result.
type Dispatcher struct {
	caps   map[string]Capability
	policy governance.PolicyEngine
	audit  *observability.AuditLogger
	jobs   *store.Store

	// runDueMu serializes due-job processing within the process; the
	// guarded status update in MarkJob covers races across processes.
	runDueMu sync.Mutex
}

func NewDispatcher(workspaceRoot string, st *store.Store, policy governance.PolicyEngine, audit *observability.AuditLogger) *Dispatcher {
	d := &Dispatcher{
		caps:   make(map[string]Capability),
		policy: policy,
		audit:  audit,
		jobs:   st,
	}

	for _, capability := range []Capability{
		NewFilesystem(workspaceRoot),
		NewSystem(),
		NewNetwork(),
		NewCode(workspaceRoot),
		NewMail(filepath.Join(workspaceRoot, "data", "mail_queue.json")),
		NewScheduler(st, d.RunDue),
	} {
		d.caps[capability.Name()] = capability
	}
	return d
}

// Catalog lists every registered tool and its actions.
func (d *Dispatcher) Catalog() map[string][]string {
	out := make(map[string][]string, len(d.caps))
	for name, capability := range d.caps {
		out[name] = capability.Actions()
	}
	return out
}

// Execute routes one call to its capability. Success or failure, exactly
// one redacted tool.executed audit event is written.
func (d *Dispatcher) Execute(ctx context.Context, sessionID, tool, action string, params Params, confirm bool) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Fail("Unhandled tool failure: %v", r)
		}
		d.audit.Write("tool.executed", map[string]any{
			"session_id": sessionID,
			"tool":       tool,
			"action":     action,
			"params":     fmt.Sprintf("%v", map[string]any(params)),
			"ok":         result.Succeeded(),
		})
	}()

	if verdict, err := d.policy.Evaluate(ctx, governance.Request{
		Tool:      tool,
		Action:    action,
		Arguments: fmt.Sprintf("%v", map[string]any(params)),
		SessionID: sessionID,
	}); err != nil || verdict.Effect == governance.EffectDeny {
		if err != nil {
			return Fail("Policy evaluation failed: %v", err)
		}
		return Result{"ok": false, "message": verdict.Reason, "risk": "elevated"}
	}

	// Central gates, checked before delegation on every path.
	if tool == "filesystem" && action == "delete" && !confirm {
		return Result{"ok": false, "message": "Deletion requires confirm=true.", "risk": "elevated"}
	}
	if tool == "code" && action == "run" {
		if governance.IsDestructiveCommand(params.String("command")) && !confirm {
			return Result{"ok": false, "message": "Risk level elevated. Confirmation required.", "risk": "elevated"}
		}
	}

	capability, ok := d.caps[tool]
	if !ok {
		return Fail("Unsupported tool/action: %s/%s", tool, action)
	}
	return capability.Execute(ctx, sessionID, action, params, confirm)
}

// RunDue replays every due job through Execute with its stored confirm
// flag and marks it done or failed. A job that another caller claimed
// first is skipped. One failing job never aborts the rest.
func (d *Dispatcher) RunDue(ctx context.Context) Result {
	d.runDueMu.Lock()
	defer d.runDueMu.Unlock()

	due, err := d.jobs.DueJobs()
	if err != nil {
		return Fail("Failed to query due jobs: %v", err)
	}

	ran := []map[string]any{}
	failed := []map[string]any{}

	for _, job := range due {
		result := d.Execute(ctx, job.SessionID, job.Payload.Tool, job.Payload.Action, Params(job.Payload.Params), job.Payload.Confirm)

		status := store.JobDone
		if !result.Succeeded() {
			status = store.JobFailed
		}
		claimed, err := d.jobs.MarkJob(job.ID, status)
		if err != nil || !claimed {
			continue
		}

		entry := map[string]any{"id": job.ID, "result": result}
		if result.Succeeded() {
			ran = append(ran, entry)
		} else {
			failed = append(failed, entry)
		}
	}

	return OK(map[string]any{
		"processed": len(due),
		"ran":       ran,
		"failed":    failed,
	})
}
