package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrSnakeDoc/summon/internal/domain"
	"github.com/MrSnakeDoc/summon/internal/engine"
	"github.com/MrSnakeDoc/summon/internal/history"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	nameStyle    = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sourceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

func renderLaunch(message string, code int) string {
	if code == engine.StatusOK {
		return successStyle.Render("✓ " + message)
	}
	return errorStyle.Render("✗ " + message)
}

func renderError(err error) string {
	return errorStyle.Render("✗ " + err.Error())
}

func renderResults(query string, results []*domain.ProgramCandidate) string {
	if len(results) == 0 {
		return errorStyle.Render(fmt.Sprintf("✗ no program matches '%s'", query)) + "\n"
	}

	var sb strings.Builder
	for i, p := range results {
		sb.WriteString(fmt.Sprintf("%2d. %s %s\n", i+1,
			nameStyle.Render(p.DisplayName),
			sourceStyle.Render("("+string(p.Source)+")")))
		sb.WriteString("    " + pathStyle.Render(p.ExecutablePath) + "\n")
	}
	return sb.String()
}

func renderStats(stats engine.Stats, withUsage bool) string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("Index") + "\n")
	sb.WriteString(fmt.Sprintf("  %s %s\n", labelStyle.Render("state:"), stats.State))
	sb.WriteString(fmt.Sprintf("  %s %d\n", labelStyle.Render("programs:"), stats.Candidates))
	if !stats.LastMerge.IsZero() {
		sb.WriteString(fmt.Sprintf("  %s %s\n", labelStyle.Render("updated:"), stats.LastMerge.Format(time.RFC3339)))
	}

	sources := make([]string, 0, len(stats.BySource))
	for s := range stats.BySource {
		sources = append(sources, string(s))
	}
	sort.Strings(sources)
	for _, s := range sources {
		sb.WriteString(fmt.Sprintf("    %-12s %d\n", s, stats.BySource[domain.Source(s)]))
	}

	if !withUsage || len(stats.Usage) == 0 {
		return sb.String()
	}

	names := make([]string, 0, len(stats.Usage))
	for name := range stats.Usage {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if stats.Usage[names[i]] != stats.Usage[names[j]] {
			return stats.Usage[names[i]] > stats.Usage[names[j]]
		}
		return names[i] < names[j]
	})

	sb.WriteString(headerStyle.Render("Usage") + "\n")
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("  %5d  %s\n", stats.Usage[name], name))
	}
	return sb.String()
}

func renderHistory(events []history.Event) string {
	if len(events) == 0 {
		return pathStyle.Render("no launches recorded yet") + "\n"
	}

	var sb strings.Builder
	for _, e := range events {
		mark := successStyle.Render("✓")
		if !e.Success {
			mark = errorStyle.Render("✗")
		}
		sb.WriteString(fmt.Sprintf("%s %s %s %s\n",
			pathStyle.Render(e.OccurredAt.Local().Format("2006-01-02 15:04:05")),
			mark,
			nameStyle.Render(e.Query),
			sourceStyle.Render(e.Message)))
	}
	return sb.String()
}
