package calendar

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/hourplan/internal/cli"
	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/planner"
	"github.com/julianstephens/hourplan/internal/utils"
)

type OverrideSetCmd struct {
	Worker   string  `arg:"" help:"Worker ID."`
	Date     string  `arg:"" help:"Day to override (YYYY-MM-DD or 'today')."`
	Extra    float64 `help:"Extra weekday hours, in half-hour steps."`
	Saturday bool    `help:"Enable the day if it is a Saturday."`
	Sunday   bool    `help:"Enable the day if it is a Sunday."`
	Vacation bool    `help:"Mark the day as vacation."`
}

// Run replaces the day's override with exactly the given flags; passing none
// restores default capacity.
func (c *OverrideSetCmd) Run(ctx *cli.Context) error {
	date, err := cli.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	res, err := ctx.Service.EditDayOverride(context.Background(), models.DayOverride{
		WorkerID:        c.Worker,
		Date:            date,
		Extra:           c.Extra,
		SaturdayEnabled: c.Saturday,
		SundayEnabled:   c.Sunday,
		Vacation:        c.Vacation,
	})
	if err != nil {
		return err
	}
	cli.PrintResult(res)
	return nil
}

type RangeCmd struct {
	Worker string  `arg:"" help:"Worker ID."`
	Action string  `arg:"" enum:"extra,vacation,clear-vacation" help:"What to change on each day: extra, vacation or clear-vacation."`
	From   string  `arg:"" help:"First day of the range (YYYY-MM-DD or 'today')."`
	To     string  `arg:"" help:"Last day of the range (YYYY-MM-DD or 'today')."`
	Extra  float64 `help:"Extra hours for the extra action."`
}

func (c *RangeCmd) Run(ctx *cli.Context) error {
	from, err := cli.ResolveDate(c.From)
	if err != nil {
		return err
	}
	to, err := cli.ResolveDate(c.To)
	if err != nil {
		return err
	}
	res, err := ctx.Service.ApplyRange(context.Background(), planner.RangeInput{
		WorkerID: c.Worker,
		From:     from,
		To:       to,
		Action:   planner.RangeAction(c.Action),
		Extra:    c.Extra,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Applied %s to %d day(s) for %s\n", c.Action, len(res.Changes.Overrides), c.Worker)
	cli.PrintOverassigned(res.Overassigned)
	return nil
}

type DayCmd struct {
	Worker string `arg:"" help:"Worker ID."`
	From   string `arg:"" optional:"" help:"First day to show (YYYY-MM-DD or 'today')." default:"today"`
	Days   int    `help:"Number of days to show." default:"14"`
}

func (c *DayCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	from, err := cli.ResolveDate(c.From)
	if err != nil {
		return err
	}
	to, err := utils.AddDays(from, c.Days-1)
	if err != nil {
		return err
	}

	bg := context.Background()
	loads, err := ctx.Service.DaySummaries(bg, c.Worker, from, to)
	if err != nil {
		return err
	}
	snap, err := ctx.Service.Snapshot(bg)
	if err != nil {
		return err
	}
	var shown []models.TaskSlice
	for _, sl := range snap.SlicesFor(c.Worker) {
		if sl.Date >= from && sl.Date <= to {
			shown = append(shown, sl)
		}
	}

	w, _ := snap.Worker(c.Worker)
	fmt.Println(cli.SectionStyle.Render(fmt.Sprintf("%s: %s to %s", w.Name, from, to)))
	cli.PrintDayLoads(loads, shown, snap.Descriptions)

	var over []string
	for _, l := range loads {
		if l.Overassigned() {
			over = append(over, l.Date)
		}
	}
	if len(over) > 0 {
		fmt.Println(cli.WarnStyle.Render("Overassigned: " + strings.Join(over, ", ")))
	}
	return nil
}
