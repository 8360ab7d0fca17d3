package tool

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adenhq/hive-go/store"
	"github.com/adenhq/hive-go/store/memory"
)

func seededStore(t *testing.T) store.RunStore {
	t.Helper()

	s := memory.NewMemoryRunStore()
	ctx := context.Background()

	old := &store.Run{
		ID:              "run_old",
		Agent:           "researcher",
		Status:          store.RunStatusCompleted,
		GoalDescription: "summarize the quarterly report",
		StartedAt:       time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC),
		Decisions: []store.Decision{
			{
				NodeID:         "plan",
				Intent:         "decide on an approach",
				ChosenOptionID: "outline_first",
				Reasoning:      "the report is long",
				Outcome: &store.Outcome{
					Success:    true,
					Summary:    "produced an outline",
					TokensUsed: 120,
					LatencyMS:  350,
				},
			},
		},
	}
	require.NoError(t, s.Save(ctx, old))

	latest := &store.Run{
		ID:        "run_new",
		Agent:     "researcher",
		Status:    store.RunStatusFailed,
		StartedAt: time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC),
		Decisions: []store.Decision{
			{
				NodeID:  "act",
				Outcome: &store.Outcome{Success: false, Error: "upstream timeout"},
			},
		},
		Problems: []store.Problem{
			{Severity: store.SeverityCritical, Description: "node act failed"},
			{Severity: store.SeverityWarning, Description: "retry budget exhausted"},
		},
	}
	require.NoError(t, s.Save(ctx, latest))

	return s
}

func TestAuditTrail_Timeline(t *testing.T) {
	a := NewAuditTrail(seededStore(t))

	timeline, err := a.Timeline(context.Background(), "researcher", "run_old")
	require.NoError(t, err)

	assert.Contains(t, timeline, "# Audit Trail: Run run_old")
	assert.Contains(t, timeline, "**Status**: COMPLETED")
	assert.Contains(t, timeline, "**Goal**: summarize the quarterly report")
	assert.Contains(t, timeline, "### 1. Node: `plan` ✅")
	assert.Contains(t, timeline, "**Intent**: decide on an approach")
	assert.Contains(t, timeline, "**Decision**: Chosen option `outline_first`")
	assert.Contains(t, timeline, "**Reasoning**: the report is long")
	assert.Contains(t, timeline, "**Outcome**: produced an outline")
	assert.Contains(t, timeline, "_120 tokens, 350ms_")
}

func TestAuditTrail_TimelineLatest(t *testing.T) {
	a := NewAuditTrail(seededStore(t))

	timeline, err := a.Timeline(context.Background(), "researcher", LatestRun)
	require.NoError(t, err)

	assert.Contains(t, timeline, "# Audit Trail: Run run_new")
	assert.Contains(t, timeline, "### 1. Node: `act` ❌")
	assert.Contains(t, timeline, "**Error**: upstream timeout")
	assert.Contains(t, timeline, "## Problems Encountered")
	assert.Contains(t, timeline, "🔴 **CRITICAL**: node act failed")
	assert.Contains(t, timeline, "🟡 **WARNING**: retry budget exhausted")
}

func TestAuditTrail_TimelineNoRuns(t *testing.T) {
	a := NewAuditTrail(memory.NewMemoryRunStore())

	timeline, err := a.Timeline(context.Background(), "nobody", LatestRun)
	require.NoError(t, err)
	assert.Equal(t, "No runs found for agent 'nobody'.", timeline)
}

func TestAuditTrail_Call(t *testing.T) {
	a := NewAuditTrail(seededStore(t))

	out, err := a.Call(context.Background(), "researcher run_old")
	require.NoError(t, err)
	assert.Contains(t, out, "run_old")

	out, err = a.Call(context.Background(), "researcher")
	require.NoError(t, err)
	assert.Contains(t, out, "run_new")

	_, err = a.Call(context.Background(), "")
	assert.Error(t, err)
}

func TestAuditTrail_ListRuns(t *testing.T) {
	a := NewAuditTrail(seededStore(t))

	out, err := a.ListRuns(context.Background(), "researcher")
	require.NoError(t, err)

	assert.Contains(t, out, "# Runs for researcher")
	newIdx := strings.Index(out, "run_new")
	oldIdx := strings.Index(out, "run_old")
	require.True(t, newIdx >= 0 && oldIdx >= 0)
	assert.Less(t, newIdx, oldIdx, "most recent run should be listed first")

	out, err = a.ListRuns(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, "No runs found for agent 'nobody'.", out)
}

func TestAuditTrail_TimelineHTML(t *testing.T) {
	a := NewAuditTrail(seededStore(t))

	out, err := a.TimelineHTML(context.Background(), "researcher", "run_old")
	require.NoError(t, err)

	assert.Contains(t, out, "<h1>")
	assert.Contains(t, out, "<code>plan</code>")
	assert.NotContains(t, out, "<script")
}

func TestFormatTimeline_TruncatesLongResults(t *testing.T) {
	run := &store.Run{
		ID:        "run_1",
		Status:    store.RunStatusCompleted,
		StartedAt: time.Now().UTC(),
		Decisions: []store.Decision{
			{
				NodeID: "act",
				Outcome: &store.Outcome{
					Success: true,
					Result:  strings.Repeat("x", 300),
				},
			},
		},
	}

	timeline := FormatTimeline(run)
	assert.Contains(t, timeline, strings.Repeat("x", 200)+"...")
	assert.NotContains(t, timeline, strings.Repeat("x", 201))
}
