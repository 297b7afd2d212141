package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/persistence"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45")).
			Width(15)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231"))

	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

func kindTitle(kind models.WorkflowKind) string {
	if kind == models.WorkflowKindTestAddition {
		return "Test addition"
	}

	return "Design review"
}

func statusStyle(status models.WorkflowStatus) lipgloss.Style {
	switch status {
	case models.WorkflowStatusCompleted:
		return passStyle
	case models.WorkflowStatusFailed:
		return failStyle
	case models.WorkflowStatusAborted:
		return warnStyle
	default:
		return dimStyle
	}
}

func field(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString(" ")
	b.WriteString(value)
	b.WriteString("\n")
}

func renderReport(report *models.Report, runID string) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s)", kindTitle(report.Kind), report.Stage)))
	b.WriteString("\n")

	field(&b, "Status", statusStyle(report.Status).Render(string(report.Status)))
	field(&b, "Document", valueStyle.Render(report.DocumentPath))

	if report.TaskFilePath != "" {
		field(&b, "Task file", valueStyle.Render(report.TaskFilePath))
	}

	field(&b, "Compliance", metricLine(report))
	field(&b, "Iterations", valueStyle.Render(strconv.Itoa(report.Iterations)))

	if len(report.FilesModified) > 0 {
		b.WriteString(labelStyle.Render("Files modified"))
		b.WriteString("\n")

		for _, file := range report.FilesModified {
			b.WriteString("  " + dimStyle.Render("-") + " " + file + "\n")
		}
	}

	if len(report.RemainingIssues) > 0 {
		b.WriteString(labelStyle.Render("Remaining"))
		b.WriteString("\n")

		for _, issue := range report.RemainingIssues {
			b.WriteString("  " + warnStyle.Render("!") + " " + issue + "\n")
		}
	}

	b.WriteString(dimStyle.Render("Run " + runID))
	b.WriteString("\n")

	return b.String()
}

func metricLine(report *models.Report) string {
	switch {
	case report.InitialMetric != nil && report.FinalMetric != nil:
		return fmt.Sprintf("%s %s %s",
			valueStyle.Render(fmt.Sprintf("%.1f%%", *report.InitialMetric)),
			dimStyle.Render("->"),
			valueStyle.Render(fmt.Sprintf("%.1f%% (%+.1f)", *report.FinalMetric, *report.Delta)))
	case report.InitialMetric != nil:
		return valueStyle.Render(fmt.Sprintf("%.1f%%", *report.InitialMetric))
	default:
		return dimStyle.Render("not measured")
	}
}

func renderRunList(result *persistence.RunListResult) string {
	if len(result.Runs) == 0 {
		return dimStyle.Render("No runs recorded.") + "\n"
	}

	var b strings.Builder

	b.WriteString(dimStyle.Render(fmt.Sprintf("%-36s  %-9s  %-13s  %-10s  %-16s  %s",
		"ID", "STATUS", "KIND", "STAGE", "STARTED", "DOCUMENT")))
	b.WriteString("\n")

	for _, run := range result.Runs {
		b.WriteString(fmt.Sprintf("%-36s  %s  %-13s  %-10s  %-16s  %s\n",
			run.ID,
			statusStyle(run.Status).Render(fmt.Sprintf("%-9s", run.Status)),
			run.Kind,
			run.Stage,
			run.StartedAt.Format("2006-01-02 15:04"),
			run.DocumentPath))
	}

	if result.HasNextPage {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Showing %d of %d runs", len(result.Runs), result.TotalCount)))
		b.WriteString("\n")
	}

	return b.String()
}

func renderRun(run *models.RunRecord) string {
	var b strings.Builder

	field(&b, "Run", valueStyle.Render(run.ID))
	field(&b, "Workflow", valueStyle.Render(run.WorkflowID))
	field(&b, "Status", statusStyle(run.Status).Render(string(run.Status)))
	field(&b, "Started", valueStyle.Render(run.StartedAt.Format(time.RFC3339)))

	if run.FinishedAt != nil {
		field(&b, "Finished", valueStyle.Render(run.FinishedAt.Format(time.RFC3339)))
	}

	if run.Error != "" {
		field(&b, "Error", failStyle.Render(run.Error))
	}

	if run.Report != nil {
		b.WriteString(renderReport(run.Report, run.ID))
	}

	return b.String()
}
