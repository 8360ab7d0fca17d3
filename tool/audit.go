package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/adenhq/hive-go/store"
)

// LatestRun selects the most recent run when passed as a run ID.
const LatestRun = "latest"

const resultPreviewLimit = 200

// AuditTrail renders human-readable timelines of agent runs from a
// store.RunStore.
type AuditTrail struct {
	store store.RunStore
}

// NewAuditTrail creates a new audit trail tool backed by the given store.
func NewAuditTrail(s store.RunStore) *AuditTrail {
	return &AuditTrail{store: s}
}

// Name returns the name of the tool.
func (a *AuditTrail) Name() string {
	return "Audit_Trail"
}

// Description returns the description of the tool.
func (a *AuditTrail) Description() string {
	return "Get a timeline of decisions and outcomes for an agent run. " +
		"Input should be an agent name, optionally followed by a run ID " +
		"(defaults to the latest run)."
}

// Call renders the timeline for "agent [runID]" input.
func (a *AuditTrail) Call(ctx context.Context, input string) (string, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "", fmt.Errorf("agent name is required")
	}

	runID := LatestRun
	if len(fields) > 1 {
		runID = fields[1]
	}

	return a.Timeline(ctx, fields[0], runID)
}

// Timeline returns the markdown audit trail for a run. Pass LatestRun (or an
// empty run ID) to select the agent's most recent run.
func (a *AuditTrail) Timeline(ctx context.Context, agent, runID string) (string, error) {
	run, err := a.resolve(ctx, agent, runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return fmt.Sprintf("No runs found for agent '%s'.", agent), nil
		}
		return "", fmt.Errorf("failed to load audit trail: %w", err)
	}

	return FormatTimeline(run), nil
}

// TimelineHTML returns the audit trail rendered to sanitized HTML, suitable
// for embedding in dashboards.
func (a *AuditTrail) TimelineHTML(ctx context.Context, agent, runID string) (string, error) {
	md, err := a.Timeline(ctx, agent, runID)
	if err != nil {
		return "", err
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	rendered := markdown.ToHTML([]byte(md), p, renderer)

	return bluemonday.UGCPolicy().Sanitize(string(rendered)), nil
}

// ListRuns returns a markdown listing of all runs for an agent, most recent
// first.
func (a *AuditTrail) ListRuns(ctx context.Context, agent string) (string, error) {
	runs, err := a.store.List(ctx, agent)
	if err != nil {
		return "", fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		return fmt.Sprintf("No runs found for agent '%s'.", agent), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Runs for %s\n\n", agent)
	for _, run := range runs {
		fmt.Fprintf(&sb, "- **%s**: %s (%s)\n",
			run.ID, run.StartedAt.Format("2006-01-02 15:04:05"), run.Status)
	}

	return sb.String(), nil
}

func (a *AuditTrail) resolve(ctx context.Context, agent, runID string) (*store.Run, error) {
	if runID == "" || runID == LatestRun {
		return a.store.Latest(ctx, agent)
	}
	return a.store.Load(ctx, agent, runID)
}

// FormatTimeline renders a run document as a markdown timeline.
func FormatTimeline(run *store.Run) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Audit Trail: Run %s\n", run.ID)
	fmt.Fprintf(&sb, "**Status**: %s\n", strings.ToUpper(run.Status))
	goal := run.GoalDescription
	if goal == "" {
		goal = "No goal description"
	}
	fmt.Fprintf(&sb, "**Goal**: %s\n", goal)
	fmt.Fprintf(&sb, "**Started**: %s\n", run.StartedAt.Format("2006-01-02T15:04:05Z07:00"))
	sb.WriteString("\n## Timeline\n\n")

	for i, dec := range run.Decisions {
		icon := "❌"
		if dec.Outcome != nil && dec.Outcome.Success {
			icon = "✅"
		}

		fmt.Fprintf(&sb, "### %d. Node: `%s` %s\n", i+1, dec.NodeID, icon)
		intent := dec.Intent
		if intent == "" {
			intent = "No intent"
		}
		fmt.Fprintf(&sb, "**Intent**: %s\n", intent)
		fmt.Fprintf(&sb, "**Decision**: Chosen option `%s`\n", dec.ChosenOptionID)

		if dec.Reasoning != "" {
			fmt.Fprintf(&sb, "**Reasoning**: %s\n", dec.Reasoning)
		}

		if outcome := dec.Outcome; outcome != nil {
			if outcome.Summary != "" {
				fmt.Fprintf(&sb, "**Outcome**: %s\n", outcome.Summary)
			}
			if outcome.Error != "" {
				fmt.Fprintf(&sb, "**Error**: %s\n", outcome.Error)
			}
			if outcome.Result != nil {
				result := fmt.Sprintf("%v", outcome.Result)
				if len(result) > resultPreviewLimit {
					result = result[:resultPreviewLimit] + "..."
				}
				fmt.Fprintf(&sb, "**Result**: `%s`\n", result)
			}

			var metrics []string
			if outcome.TokensUsed > 0 {
				metrics = append(metrics, fmt.Sprintf("%d tokens", outcome.TokensUsed))
			}
			if outcome.LatencyMS > 0 {
				metrics = append(metrics, fmt.Sprintf("%dms", outcome.LatencyMS))
			}
			if len(metrics) > 0 {
				fmt.Fprintf(&sb, "_%s_\n", strings.Join(metrics, ", "))
			}
		}

		sb.WriteString("\n")
	}

	if len(run.Problems) > 0 {
		sb.WriteString("## Problems Encountered\n")
		for _, prob := range run.Problems {
			fmt.Fprintf(&sb, "- %s **%s**: %s\n",
				severityIcon(prob.Severity), strings.ToUpper(prob.Severity), prob.Description)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func severityIcon(severity string) string {
	switch severity {
	case store.SeverityCritical:
		return "🔴"
	case store.SeverityWarning:
		return "🟡"
	default:
		return "⚪"
	}
}
