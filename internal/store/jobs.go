package store

import (
	"encoding/json"
	"time"
)

// Job statuses. A job transitions pending→done or pending→failed exactly
// once and never re-enters pending.
const (
	JobPending = "pending"
	JobDone    = "done"
	JobFailed  = "failed"
)

// JobPayload is the deferred dispatcher call a job replays when due.
type JobPayload struct {
	Tool    string         `json:"tool"`
	Action  string         `json:"action"`
	Params  map[string]any `json:"params"`
	Confirm bool           `json:"confirm"`
}

// Job is one row of the scheduler_jobs table.
type Job struct {
	ID        int64      `json:"id"`
	SessionID string     `json:"session_id"`
	RunAt     string     `json:"run_at"`
	Payload   JobPayload `json:"payload"`
	Status    string     `json:"status"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// AddJob inserts a pending job keyed by its ISO-8601 due time.
func (s *Store) AddJob(sessionID, runAt string, payload JobPayload) (Job, error) {
	now := nowISO()
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return Job{}, err
	}

	res, err := s.DB.Exec(
		`INSERT INTO scheduler_jobs (session_id, run_at, payload_json, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, runAt, string(payloadJSON), JobPending, now, now,
	)
	if err != nil {
		return Job{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Job{}, err
	}

	return Job{
		ID:        id,
		SessionID: sessionID,
		RunAt:     runAt,
		Payload:   payload,
		Status:    JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ListJobs returns jobs newest-first, optionally filtered by status.
func (s *Store) ListJobs(status string) ([]Job, error) {
	query := `SELECT id, session_id, run_at, payload_json, status, created_at, updated_at
		FROM scheduler_jobs ORDER BY id DESC`
	args := []any{}
	if status != "" {
		query = `SELECT id, session_id, run_at, payload_json, status, created_at, updated_at
			FROM scheduler_jobs WHERE status = ? ORDER BY id DESC`
		args = append(args, status)
	}

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// DueJobs returns pending jobs whose due time has arrived, earliest-due
// first with insertion order breaking ties.
func (s *Store) DueJobs() ([]Job, error) {
	rows, err := s.DB.Query(
		`SELECT id, session_id, run_at, payload_json, status, created_at, updated_at
		 FROM scheduler_jobs
		 WHERE status = ? AND run_at <= ?
		 ORDER BY run_at ASC, id ASC`,
		JobPending, nowISO(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// MarkJob transitions a still-pending job to the given status. It reports
// false when the job was already claimed by another caller, which is what
// keeps concurrent RunDue invocations from double-processing a job.
func (s *Store) MarkJob(id int64, status string) (bool, error) {
	res, err := s.DB.Exec(
		`UPDATE scheduler_jobs SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		status, nowISO(), id, JobPending,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanJobs(rows rowScanner) ([]Job, error) {
	var jobs []Job
	for rows.Next() {
		var job Job
		var payloadJSON string
		if err := rows.Scan(&job.ID, &job.SessionID, &job.RunAt, &payloadJSON, &job.Status, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payloadJSON), &job.Payload); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
