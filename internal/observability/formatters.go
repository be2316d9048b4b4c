// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/interview-pilot/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens a value for single-line display.
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

// PrintJobProfile outputs a human-readable summary of the extracted job profile.
func (p *Printer) PrintJobProfile(profile *types.JobProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:   %s\n", profile.CompanyName))
	sb.WriteString(fmt.Sprintf("Role:      %s\n", profile.JobTitle))
	sb.WriteString(fmt.Sprintf("Location:  %s\n", profile.JobLocation))
	sb.WriteString(fmt.Sprintf("Schedule:  %s\n", profile.WorkSchedule))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Responsibilities: %s\n", truncate(profile.ExpectationsAndResponsibilities, 45)))
	sb.WriteString(fmt.Sprintf("Requirements:     %s", truncate(profile.Requirements, 45)))

	p.printBox("EXTRACTED JOB PROFILE", sb.String())
}

// PrintResearchReports outputs a one-line summary per research report.
func (p *Printer) PrintResearchReports(reports *types.ResearchReportSet) {
	if reports == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company strategy:  %d chars\n", len(reports.CompanyStrategyReport)))
	sb.WriteString(fmt.Sprintf("Role success:      %d chars\n", len(reports.RoleSuccessReport)))
	sb.WriteString(fmt.Sprintf("Team culture:      %d chars\n", len(reports.TeamCultureReport)))
	sb.WriteString(fmt.Sprintf("Domain knowledge:  %d chars", len(reports.DomainKnowledgeReport)))

	p.printBox("RESEARCH REPORTS", sb.String())
}

// PrintGuide outputs the interview guide's section headers as a structure check.
func (p *Printer) PrintGuide(guide *types.InterviewGuide) {
	if guide == nil || guide.Markdown == "" {
		return
	}

	var sb strings.Builder
	for _, line := range strings.Split(guide.Markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") || strings.HasPrefix(trimmed, "### ") {
			sb.WriteString(trimmed + "\n")
		}
	}
	sb.WriteString(fmt.Sprintf("\nTotal: %d chars", len(guide.Markdown)))

	p.printBox("INTERVIEW GUIDE STRUCTURE", sb.String())
}

// PrintEvaluationSet outputs per-judge feedback counts.
func (p *Printer) PrintEvaluationSet(set *types.EvaluationSet) {
	if set == nil {
		return
	}

	var sb strings.Builder
	for name, eval := range set.Judges() {
		good, bad := 0, 0
		for _, item := range eval.Feedback {
			if item.Type == types.FeedbackGood {
				good++
			} else {
				bad++
			}
		}
		sb.WriteString(fmt.Sprintf("%-18s %d good, %d bad\n", name+":", good, bad))
	}

	p.printBox("JUDGE EVALUATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAggregated outputs the final coaching report summary.
func (p *Printer) PrintAggregated(agg *types.AggregatedEvaluation) {
	if agg == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString("What went well:\n")
	sb.WriteString(fmt.Sprintf("  %s\n\n", truncate(agg.WhatWentWellSummary, 45)))
	sb.WriteString("Ways to improve:\n")
	sb.WriteString(fmt.Sprintf("  %s\n\n", truncate(agg.WaysToImproveSummary, 45)))

	sb.WriteString(fmt.Sprintf("Feedback on %d answers:\n", len(agg.ConsolidatedFeedbackByMessage)))
	count := min(len(agg.ConsolidatedFeedbackByMessage), maxItemsToShow)
	for i := 0; i < count; i++ {
		cf := agg.ConsolidatedFeedbackByMessage[i]
		sb.WriteString(fmt.Sprintf("  #%d: %d good, %d bad, %d improvements\n",
			cf.MessageID,
			len(cf.ConsolidatedFeedback.ReasonsWhyThisIsGood),
			len(cf.ConsolidatedFeedback.ReasonsWhyThisIsBad),
			len(cf.ConsolidatedFeedback.WaysToImproveResponse)))
	}
	if len(agg.ConsolidatedFeedbackByMessage) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more", len(agg.ConsolidatedFeedbackByMessage)-maxItemsToShow))
	}

	p.printBox("AGGREGATED EVALUATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintClassification outputs a guardrail verdict.
func (p *Printer) PrintClassification(c *types.Classification) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Malicious: %t\n", c.Malicious))
	if c.OffTopic != nil {
		sb.WriteString(fmt.Sprintf("Off-topic: %t\n", *c.OffTopic))
	}
	sb.WriteString(fmt.Sprintf("Reason:    %s", truncate(c.Reason, 45)))

	p.printBox("SAFETY CLASSIFICATION", sb.String())
}
