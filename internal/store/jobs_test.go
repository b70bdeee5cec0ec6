package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestAddJob_Roundtrip(t *testing.T) {
	st := newTestStore(t)

	payload := JobPayload{
		Tool:   "filesystem",
		Action: "write",
		Params: map[string]any{"path": "out.txt", "content": "done"},
	}
	job, err := st.AddJob("s1", "2026-01-01T00:00:00Z", payload)
	require.NoError(t, err)
	require.Equal(t, JobPending, job.Status)
	require.NotZero(t, job.ID)

	jobs, err := st.ListJobs("")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, "filesystem", jobs[0].Payload.Tool)
	require.Equal(t, "done", jobs[0].Payload.Params["content"])
}

func TestDueJobs_OnlyPastPending(t *testing.T) {
	st := newTestStore(t)

	past := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339Nano)
	future := time.Now().UTC().Add(time.Hour).Format(time.RFC3339Nano)

	pastJob, err := st.AddJob("s1", past, JobPayload{Tool: "mail", Action: "queue"})
	require.NoError(t, err)
	_, err = st.AddJob("s1", future, JobPayload{Tool: "mail", Action: "queue"})
	require.NoError(t, err)

	due, err := st.DueJobs()
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, pastJob.ID, due[0].ID)
}

func TestDueJobs_OrderedByDueTime(t *testing.T) {
	st := newTestStore(t)

	later := time.Now().UTC().Add(-time.Minute).Format(time.RFC3339Nano)
	earlier := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339Nano)

	laterJob, err := st.AddJob("s1", later, JobPayload{Tool: "mail", Action: "queue"})
	require.NoError(t, err)
	earlierJob, err := st.AddJob("s1", earlier, JobPayload{Tool: "mail", Action: "queue"})
	require.NoError(t, err)

	due, err := st.DueJobs()
	require.NoError(t, err)
	require.Len(t, due, 2)
	require.Equal(t, earlierJob.ID, due[0].ID)
	require.Equal(t, laterJob.ID, due[1].ID)
}

func TestMarkJob_ClaimsOnce(t *testing.T) {
	st := newTestStore(t)

	past := time.Now().UTC().Add(-time.Minute).Format(time.RFC3339Nano)
	job, err := st.AddJob("s1", past, JobPayload{Tool: "mail", Action: "queue"})
	require.NoError(t, err)

	claimed, err := st.MarkJob(job.ID, JobDone)
	require.NoError(t, err)
	require.True(t, claimed)

	// A second transition attempt finds no pending row.
	claimed, err = st.MarkJob(job.ID, JobFailed)
	require.NoError(t, err)
	require.False(t, claimed)

	jobs, err := st.ListJobs(JobDone)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, JobDone, jobs[0].Status)
}

func TestListJobs_NewestFirst(t *testing.T) {
	st := newTestStore(t)

	first, err := st.AddJob("s1", "2026-01-01T00:00:00Z", JobPayload{Tool: "a"})
	require.NoError(t, err)
	second, err := st.AddJob("s1", "2026-01-01T00:00:00Z", JobPayload{Tool: "b"})
	require.NoError(t, err)

	jobs, err := st.ListJobs("")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	require.Equal(t, second.ID, jobs[0].ID)
	require.Equal(t, first.ID, jobs[1].ID)
}
