package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/hotset/internal/hotset"
	"github.com/julianstephens/hotset/internal/models"
	"github.com/julianstephens/hotset/internal/utils"
	"github.com/julianstephens/hotset/internal/variance"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	currentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	aheadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	behindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

// StatusStyle colours a variance status.
func StatusStyle(s variance.Status) lipgloss.Style {
	switch s {
	case variance.StatusAhead:
		return aheadStyle
	case variance.StatusBehind:
		return behindStyle
	case variance.StatusSignificantlyBehind:
		return alertStyle
	default:
		return lipgloss.NewStyle()
	}
}

func minutesStyle(m int) lipgloss.Style {
	switch {
	case m > 0:
		return aheadStyle
	case m < 0:
		return behindStyle
	default:
		return mutedStyle
	}
}

// RenderVariance formats a variance report as two labelled lines.
func RenderVariance(r variance.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Status:     %s\n", StatusStyle(r.Status).Render(strings.ReplaceAll(string(r.Status), "_", " ")))
	fmt.Fprintf(&b, "Cumulative: %s  (%d done, %d to go)\n",
		minutesStyle(r.CumulativeVariance).Render(utils.FormatSignedMinutes(r.CumulativeVariance)),
		r.CompletedItems, r.RemainingItems)
	fmt.Fprintf(&b, "Real time:  %s\n", minutesStyle(r.RealTimeDeviation).Render(utils.FormatSignedMinutes(r.RealTimeDeviation)))
	return b.String()
}

func itemMarker(p models.ProjectedItem) string {
	switch {
	case p.IsCurrent:
		return "▶"
	case p.Status == models.ItemCompleted:
		return "✓"
	case p.Status == models.ItemSkipped:
		return "⊘"
	case p.Status == models.ItemSwappedOut:
		return "⇄"
	default:
		return " "
	}
}

// RenderSchedule formats a projected schedule in the session's timezone.
func RenderSchedule(items []models.ProjectedItem, timezone string) string {
	var b strings.Builder
	for _, p := range items {
		line := fmt.Sprintf("%s %s-%s  %-28s %4dm  %s",
			itemMarker(p),
			utils.FormatClock(p.ProjectedStartTime, timezone),
			utils.FormatClock(p.ProjectedEndTime, timezone),
			p.Name,
			p.PlannedDurationMinutes,
			utils.FormatSignedMinutes(p.VarianceFromPlan),
		)
		switch {
		case p.IsCurrent:
			line = currentStyle.Render(line)
		case p.Status != models.ItemPending:
			line = mutedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("    " + p.ItemID))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderResult prints the session header followed by its schedule.
func (c *Context) RenderResult(res hotset.Result) {
	s := res.Session
	c.Println(titleStyle.Render(fmt.Sprintf("Day %d · %s", s.DayNumber, s.ProductionDayID)) +
		mutedStyle.Render(fmt.Sprintf("  %s  v%d", s.Status, s.Version)))
	c.Printf("%s", RenderSchedule(res.Projected, s.Timezone))
}
