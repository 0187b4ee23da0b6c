package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/hourplan/internal/constants"
	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/utils"
)

var (
	SectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	WarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(constants.UrgentColor)).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)
)

// Swatch renders a colored square for a block color.
func Swatch(color string) string {
	if color == "" {
		return " "
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
}

func FormatHours(h float64) string {
	return fmt.Sprintf("%.1fh", h)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(MutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func dayLabel(date string) string {
	wd, err := utils.Weekday(date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s %s", date, wd.String()[:3])
}

// PrintSlices lists slices in date order.
func PrintSlices(slices []models.TaskSlice) {
	sorted := append([]models.TaskSlice(nil), slices...)
	models.SortByDate(sorted)
	t := newTable("", "Date", "Worker", "Label", "Hours", "Slice")
	for _, sl := range sorted {
		label := sl.Label
		if sl.Kind == models.BlockKindUrgent {
			label += " (urgent)"
		}
		t.Row(Swatch(sl.Color), dayLabel(sl.Date), sl.WorkerID, label, FormatHours(sl.Hours), sl.ID)
	}
	fmt.Println(t.Render())
}

// PrintWorkers lists workers with their weekday schedules.
func PrintWorkers(workers []models.Worker) {
	t := newTable("ID", "Name", "Mon", "Tue", "Wed", "Thu", "Fri")
	for _, w := range workers {
		row := []string{w.ID, w.Name}
		for _, h := range w.WeekdayHours {
			row = append(row, FormatHours(h))
		}
		t.Row(row...)
	}
	fmt.Println(t.Render())
}

// PrintBlocks lists block summaries.
func PrintBlocks(blocks []models.BlockSummary) {
	t := newTable("", "Block", "Label", "Kind", "From", "To", "Total")
	for _, b := range blocks {
		t.Row(Swatch(b.Color), b.BlockID, b.Label, string(b.Kind), b.FirstDate, b.LastDate, FormatHours(b.TotalHours))
	}
	fmt.Println(t.Render())
}

// PrintDayLoads renders capacity against usage, flagging overassigned days.
// Each slice is followed by its label's description, when one is registered.
func PrintDayLoads(loads []models.DayLoad, slices []models.TaskSlice, descs models.Descriptions) {
	byDate := make(map[string][]string)
	for _, sl := range slices {
		line := fmt.Sprintf("%s %s %s", Swatch(sl.Color), sl.Label, FormatHours(sl.Hours))
		if text := descs.For(sl.Label); text != "" {
			line += " " + MutedStyle.Render(text)
		}
		byDate[sl.Date] = append(byDate[sl.Date], line)
	}

	t := newTable("Date", "Capacity", "Used", "Free", "Work")
	for _, l := range loads {
		free := FormatHours(l.Free())
		switch {
		case l.Overassigned():
			free = WarnStyle.Render("+" + FormatHours(l.Excess()))
		case l.Vacation:
			free = MutedStyle.Render("vacation")
		}
		t.Row(dayLabel(l.Date), FormatHours(l.Capacity), FormatHours(l.Used), free, strings.Join(byDate[l.Date], "\n"))
	}
	fmt.Println(t.Render())
}

// PrintDescriptions lists the label descriptions.
func PrintDescriptions(descs []models.Description) {
	t := newTable("Label", "Description")
	for _, d := range descs {
		t.Row(d.Label, d.Text)
	}
	fmt.Println(t.Render())
}

// PrintOverassigned warns about each day whose committed hours exceed capacity.
func PrintOverassigned(loads []models.DayLoad) {
	for _, l := range loads {
		fmt.Println(WarnStyle.Render(fmt.Sprintf("⚠ %s is overassigned on %s: %s used of %s capacity",
			l.WorkerID, dayLabel(l.Date), FormatHours(l.Used), FormatHours(l.Capacity))))
	}
}

// FormatOverride describes an override's effect in words.
func FormatOverride(o models.DayOverride) string {
	if o.IsDefault() {
		return "default capacity"
	}
	var parts []string
	if o.Vacation {
		parts = append(parts, "vacation")
	}
	if o.Extra > 0 {
		parts = append(parts, "+"+FormatHours(o.Extra))
	}
	wd, _ := utils.Weekday(o.Date)
	if o.SaturdayEnabled && wd == time.Saturday || o.SundayEnabled && wd == time.Sunday {
		parts = append(parts, "weekend enabled")
	}
	if len(parts) == 0 {
		return "no effect"
	}
	return strings.Join(parts, ", ")
}
